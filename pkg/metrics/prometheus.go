// Package metrics provides Prometheus metrics for the game accessibility classifier.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeInferenceError = "inference_error"
	OutcomeLabelMismatch  = "label_mismatch"
)

// Manager manages all Prometheus metrics for the classifier service.
type Manager struct {
	namespace         string
	subsystem         string
	latencyBuckets    []float64
	confidenceBuckets []float64
	enabled           atomic.Bool
	refreshInterval   time.Duration
	constLabels       map[string]string
	metricPrefix      string
	registry          prometheus.Registerer

	// Classification Metrics - one submission is one profile through the pipeline
	submissionsTotal     *prometheus.CounterVec
	predictionsTotal     *prometheus.CounterVec
	predictionConfidence prometheus.Histogram
	pipelineLatency      prometheus.Histogram
	batchRows            prometheus.Gauge

	// Artifact Metrics - loaded once at startup
	artifactsLoaded      prometheus.Gauge
	artifactLoadDuration prometheus.Gauge
	artifactLoadErrors   *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:         "gameaccess",
		subsystem:         "classifier",
		latencyBuckets:    prometheus.DefBuckets,
		confidenceBuckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		refreshInterval:   defaultRefreshInterval,
		constLabels:       make(map[string]string),
		registry:          prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recorders write to this manager.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.constLabels)

	m.submissionsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("submissions_total"),
			Help:        "Total number of profile submissions by pipeline outcome",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)

	m.predictionsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("predictions_total"),
			Help:        "Total number of per-game predictions by support label",
			ConstLabels: constLabels,
		},
		[]string{"label"},
	)

	m.predictionConfidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("prediction_confidence"),
		Help:        "Distribution of the maximum class probability per prediction",
		Buckets:     m.confidenceBuckets,
		ConstLabels: constLabels,
	})

	m.pipelineLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipeline_latency_milliseconds"),
		Help:        "Expand, predict and group latency per submission in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})

	m.batchRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("batch_rows"),
		Help:        "Number of feature rows in the last batch",
		ConstLabels: constLabels,
	})

	m.artifactsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("artifacts_loaded"),
		Help:        "Number of model artifacts currently loaded",
		ConstLabels: constLabels,
	})

	m.artifactLoadDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("artifact_load_duration_milliseconds"),
		Help:        "Time spent loading the model artifacts in milliseconds",
		ConstLabels: constLabels,
	})

	m.artifactLoadErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("artifact_load_errors_total"),
			Help:        "Total number of artifact load failures by artifact",
			ConstLabels: constLabels,
		},
		[]string{"artifact"},
	)

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.latencyBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component and type",
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type and severity",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint, method and type",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of operations that ended in an error, in milliseconds",
			Buckets:     m.latencyBuckets,
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})
}

// Classification Metrics Functions.

// RecordSubmission counts one submission with its pipeline outcome.
func RecordSubmission(outcome string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordPrediction counts one per-game prediction and observes its confidence.
func RecordPrediction(label string, confidence float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.predictionsTotal.WithLabelValues(label).Inc()
	globalManager.predictionConfidence.Observe(confidence)
}

// RecordPipelineLatency records the end-to-end pipeline latency.
func RecordPipelineLatency(latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.pipelineLatency.Observe(latencyMs)
}

// UpdateBatchRows sets the row count of the last batch.
func UpdateBatchRows(rows int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.batchRows.Set(float64(rows))
}

// Artifact Metrics Functions.

// RecordArtifactLoad records a completed artifact load.
func RecordArtifactLoad(loaded int, durationMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.artifactsLoaded.Set(float64(loaded))
	globalManager.artifactLoadDuration.Set(durationMs)
}

// RecordArtifactLoadError counts a failed load of the named artifact.
func RecordArtifactLoadError(artifact string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.artifactLoadErrors.WithLabelValues(artifact).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns how often gauge-style metrics should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
