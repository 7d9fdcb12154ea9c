package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/okian/gameaccess/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Profiles <= 0 {
		c.Profiles = DefaultProfiles
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Run executes the complete smoke test. It returns the collected statistics
// together with ErrRunFailed when any profile failed or mismatched.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	config.applyDefaults()
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting smoke run",
		logger.String("run_id", stats.RunID),
		logger.String("baseURL", config.BaseURL),
		logger.Int("profiles", config.Profiles),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.Timeout, stats.RunID)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch the catalog the responses are checked against
	games, err := fetchCatalog(ctx, config, client)
	if err != nil {
		return stats, fmt.Errorf("catalog retrieval failed: %w", err)
	}

	// Step 3: Generate profiles
	profiles, err := generateProfiles(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("profile generation failed: %w", err)
	}

	// Step 4: Submit and verify concurrently
	if err := submitProfiles(ctx, config, client, games, profiles, stats); err != nil {
		return stats, fmt.Errorf("profile submission failed: %w", err)
	}

	// Step 5: Save profiles to file
	if config.OutputFile != "" {
		if err := saveProfilesToFile(ctx, config.OutputFile, profiles); err != nil {
			logger.Get().Warn(ctx, "failed to save profiles to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 || stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d mismatched", ErrRunFailed, stats.Failed, stats.Mismatched)
	}
	logger.Get().Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config, client *HTTPClient) error {
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readResponseBody(resp)

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func fetchCatalog(ctx context.Context, config *Config, client *HTTPClient) ([]string, error) {
	resp, err := client.Get(ctx, config.BaseURL+"/api/v1/catalog")
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	var cat catalogResponse
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(cat.Games) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return cat.Games, nil
}

// saveProfilesToFile writes the generated profiles as a JSON array.
func saveProfilesToFile(ctx context.Context, filename string, profiles []profile.Profile) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "profiles saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, profilesPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		profilesPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("run_id", stats.RunID),
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Any("games_by_description", stats.Groups),
		logger.Duration("duration_ms", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("profilesPerSecond", profilesPerSecond))
}
