package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/okian/gameaccess/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
	runID  string
}

func newHTTPClient(timeout time.Duration, runID string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		runID:  runID,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body. Every request carries an
// X-Request-ID derived from the run ID.
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", c.runID+"-"+requestID)
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
}

type result int

const (
	resultSucceeded result = iota
	resultRejected
	resultFailed
	resultMismatched
)

// submitProfiles posts every profile with at most config.Workers requests in
// flight and verifies each response.
func submitProfiles(ctx context.Context, config *Config, client *HTTPClient, games []string, profiles []profile.Profile, stats *Stats) error {
	logger.Get().Info(ctx, "submitting profiles",
		logger.Int("profiles", len(profiles)),
		logger.Int("workers", config.Workers))

	url := config.BaseURL + "/api/v1/classify"

	var (
		submitted, succeeded, rejected, failed, mismatched atomic.Int64

		mu     sync.Mutex
		groups = make(map[string]int)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i, p := range profiles {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			res, body := submitSingleProfile(gctx, client, url, fmt.Sprint(i), p)
			submitted.Add(1)

			if res == resultSucceeded {
				if err := verifyResponse(p, body, games); err != nil {
					res = resultMismatched
					logger.Get().Warn(gctx, "response mismatch", logger.String("name", p.Name), logger.Error(err))
				}
			}

			switch res {
			case resultSucceeded:
				succeeded.Add(1)
				mu.Lock()
				for _, grp := range body.Groups {
					groups[grp.Description] += len(grp.Entries)
				}
				mu.Unlock()
				if config.Verbose {
					logger.Get().Info(gctx, "profile classified",
						logger.String("name", p.Name),
						logger.Any("descriptions", descriptions(body)))
				}
			case resultRejected:
				rejected.Add(1)
			case resultMismatched:
				mismatched.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Succeeded = int(succeeded.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())
	stats.Mismatched = int(mismatched.Load())
	stats.Groups = groups

	logger.Get().Info(ctx, "profile submission completed",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatched", stats.Mismatched))
	return err
}

// submitSingleProfile posts one profile and classifies the response.
func submitSingleProfile(ctx context.Context, client *HTTPClient, url, requestID string, p profile.Profile) (result, ClassifyResponse) {
	var out ClassifyResponse

	resp, err := client.Post(ctx, url, requestID, p)
	if err != nil {
		logger.Get().Warn(ctx, "request failed", logger.String("name", p.Name), logger.Error(err))
		return resultFailed, out
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resultFailed, out
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(body, &out); err != nil {
			return resultMismatched, out
		}
		return resultSucceeded, out
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		logger.Get().Warn(ctx, "profile rejected",
			logger.String("name", p.Name),
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(body)))
		return resultRejected, out
	default:
		logger.Get().Error(ctx, "classification failed",
			logger.String("name", p.Name),
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(body)))
		return resultFailed, out
	}
}

func descriptions(r ClassifyResponse) []string {
	out := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Description
	}
	return out
}
