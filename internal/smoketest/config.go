// Package smoketest drives a running classifier end to end: it generates
// random valid profiles, submits them concurrently to the JSON API and checks
// every response against the catalog and the label table.
package smoketest

import (
	"time"

	"github.com/okian/gameaccess/internal/domain/outcome"
)

// Config holds configuration for a smoke run
type Config struct {
	BaseURL    string        // Base URL of the service
	Profiles   int           // Number of profiles to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional file receiving the generated profiles
	Verbose    bool          // Log every response
}

// ClassifyResponse mirrors the body of a successful POST /api/v1/classify.
type ClassifyResponse struct {
	Name   string          `json:"name"`
	Groups []outcome.Group `json:"groups"`
}

type catalogResponse struct {
	Games []string `json:"games"`
	Count int      `json:"count"`
}

// Stats holds run statistics
type Stats struct {
	RunID      string
	Generated  int
	Submitted  int
	Succeeded  int
	Rejected   int
	Failed     int
	Mismatched int
	Groups     map[string]int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
