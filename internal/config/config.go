// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and GAMEACCESS_* env vars.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ArtifactDir holds the transformer, classifier and decoder files.
	ArtifactDir string `koanf:"artifact_dir"`

	// File names inside ArtifactDir.
	TransformerFile string `koanf:"transformer_file"`
	ClassifierFile  string `koanf:"classifier_file"`
	DecoderFile     string `koanf:"decoder_file"`

	// ServiceName is reported to the tracing backend.
	ServiceName string `koanf:"service_name"`

	// OTelEnabled turns on the OTLP/HTTP trace exporter at OTelEndpoint.
	OTelEnabled  bool   `koanf:"otel_enabled"`
	OTelEndpoint string `koanf:"otel_endpoint"`

	// MetricsEnabled gates every Prometheus recorder. /metrics is served either way.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// DefaultLanguage formats confidence values when a request carries no Accept-Language.
	DefaultLanguage string `koanf:"default_language"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		ArtifactDir:     "artifacts",
		TransformerFile: "preprocessor.json",
		ClassifierFile:  "lgbm.json",
		DecoderFile:     "label_encoder.json",
		ServiceName:     "gameaccess",
		OTelEnabled:     false,
		OTelEndpoint:    "http://localhost:4318",
		MetricsEnabled:  true,
		DefaultLanguage: "en",
	}
}
