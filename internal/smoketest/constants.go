package smoketest

import "time"

// Defaults applied to zero Config fields.
const (
	DefaultBaseURL  = "http://localhost:9080"
	DefaultProfiles = 200
	DefaultWorkers  = 8
	DefaultTimeout  = 10 * time.Second
)

// PercentageMultiplier converts ratios for the final report.
const PercentageMultiplier = 100

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 1 << 20
