// Package service provides the core business service that implements
// the dependencies required by the HTTP handlers and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/gameaccess/internal/adapters/artifacts"
	"github.com/okian/gameaccess/internal/domain/catalog"
	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/inference"
	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/okian/gameaccess/pkg/logger"
	"github.com/okian/gameaccess/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/okian/gameaccess/internal/app"

// Loader provides the fitted pipeline. *artifacts.Store implements it.
type Loader interface {
	Load(ctx context.Context) (*artifacts.Set, error)
}

// Result is the outcome of one classification.
type Result struct {
	Name        string
	Outcome     outcome.Outcome
	Predictions []inference.Prediction
}

// Service runs the classification pipeline over loaded artifacts.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   Loader
	catalog catalog.Catalog
	set     *artifacts.Set

	// Configuration
	artifactDir string
	storeOpts   []artifacts.Option

	// State
	started   bool
	startedAt time.Time

	// Counters for GetStats
	submissions   atomic.Int64
	invalidInputs atomic.Int64
	failures      atomic.Int64
	lastLatencyUs atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithArtifactDir sets the directory the default store reads from.
func WithArtifactDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.artifactDir = dir
		}
	}
}

// WithArtifactOptions passes options to the default store.
func WithArtifactOptions(opts ...artifacts.Option) Option {
	return func(s *Service) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// WithStore replaces the artifact store.
func WithStore(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.store = l
		}
	}
}

// WithCatalog replaces the game catalog.
func WithCatalog(c catalog.Catalog) Option {
	return func(s *Service) {
		if c.Len() > 0 {
			s.catalog = c
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:     catalog.Default(),
		artifactDir: "artifacts",
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = artifacts.NewStore(s.artifactDir, s.storeOpts...)
	}
	return s
}

// Start loads the artifacts. A failure here is fatal for the caller: the
// service cannot classify without them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting classifier service...", logger.String("artifact_dir", s.artifactDir))

	set, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}
	s.set = set
	s.started = true
	s.startedAt = time.Now()

	s.logger.Info(ctx, "classifier service started",
		logger.Int("games", s.catalog.Len()),
		logger.Int("classes", set.Classifier.NumClasses()),
		logger.Int("features", set.Transformer.Width()),
	)
	return nil
}

// Stop marks the service stopped. Artifacts stay cached in the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.set = nil
	s.logger.Info(context.Background(), "classifier service stopped")
}

// Catalog returns the games every profile is classified against.
func (s *Service) Catalog() catalog.Catalog { return s.catalog }

func (s *Service) pipeline() (*artifacts.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.set, nil
}

// Classify expands p into one row per game, predicts a support label for each
// and groups the games by label description. Range validation is the caller's
// job; categorical values are checked during expansion.
func (s *Service) Classify(ctx context.Context, p profile.Profile) (Result, error) {
	set, err := s.pipeline()
	if err != nil {
		return Result{}, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "service.Classify",
		trace.WithAttributes(attribute.Int("games", s.catalog.Len())))
	defer span.End()

	start := time.Now()
	res, err := s.classify(ctx, set, p)
	elapsed := time.Since(start)
	s.submissions.Add(1)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, err, elapsed)
		return Result{}, err
	}

	s.lastLatencyUs.Store(elapsed.Microseconds())
	metrics.RecordSubmission(metrics.OutcomeOK)
	metrics.RecordPipelineLatency(float64(elapsed.Microseconds()) / 1000)
	metrics.UpdateBatchRows(len(res.Predictions))
	for _, pr := range res.Predictions {
		metrics.RecordPrediction(pr.Label, pr.Confidence)
	}

	s.logger.Info(ctx, "profile classified",
		logger.String("name", p.Name),
		logger.Int("groups", len(res.Outcome.Groups)),
		logger.Int("games", res.Outcome.Len()),
		logger.Any("descriptions", res.Outcome.Descriptions()),
		logger.Duration("latency_ms", elapsed),
	)
	return res, nil
}

func (s *Service) classify(ctx context.Context, set *artifacts.Set, p profile.Profile) (Result, error) {
	rows, err := features.Expand(p, s.catalog)
	if err != nil {
		return Result{}, err
	}
	preds, err := inference.Predict(ctx, rows, set.Transformer, set.Classifier, set.Decoder)
	if err != nil {
		return Result{}, err
	}
	out, err := outcome.GroupRows(rows, preds)
	if err != nil {
		return Result{}, err
	}
	return Result{Name: p.Name, Outcome: out, Predictions: preds}, nil
}

// OutcomeOf names the error kind for logs and metrics.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, features.ErrInvalidCategoricalValue), errors.Is(err, profile.ErrOutOfRange):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, outcome.ErrUnknownLabel):
		return metrics.OutcomeLabelMismatch
	}
	return metrics.OutcomeInferenceError
}

func (s *Service) record(ctx context.Context, err error, elapsed time.Duration) {
	kind := OutcomeOf(err)
	metrics.RecordSubmission(kind)
	metrics.RecordErrorByComponent("pipeline", kind)
	metrics.RecordErrorLatency("pipeline", kind, float64(elapsed.Microseconds())/1000)

	switch kind {
	case metrics.OutcomeInvalidInput:
		s.invalidInputs.Add(1)
		metrics.RecordErrorByType(kind, "warning")
		s.logger.Warn(ctx, "profile rejected", logger.String("error_kind", kind), logger.Error(err))
	default:
		s.failures.Add(1)
		metrics.RecordErrorByType(kind, "error")
		s.logger.Error(ctx, "classification failed", logger.String("error_kind", kind), logger.Error(err))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"games":          s.catalog.Len(),
		"artifactDir":    s.artifactDir,
		"submissions":    s.submissions.Load(),
		"invalidInputs":  s.invalidInputs.Load(),
		"failures":       s.failures.Load(),
		"lastLatencyMs":  float64(s.lastLatencyUs.Load()) / 1000,
		"uptimeSeconds":  0.0,
		"classes":        0,
		"features":       0,
		"classifierKind": "",
	}

	if s.started {
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
		stats["classes"] = s.set.Classifier.NumClasses()
		stats["features"] = s.set.Transformer.Width()
		stats["classifierKind"] = s.set.Classifier.Objective()
	}

	return stats
}
