package artifacts

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrMissingArtifact means an artifact file is absent. Startup must stop.
	ErrMissingArtifact = errors.New("artifact missing")
	// ErrInvalidArtifact means an artifact file exists but cannot be used.
	ErrInvalidArtifact = errors.New("artifact invalid")
	// ErrUnknownCategory is raised by one-hot encoding for an unseen value.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrFeatureCount means a matrix row is narrower than the model needs.
	ErrFeatureCount = errors.New("feature count mismatch")
	// ErrUnseenClass means a class index has no label in the decoder.
	ErrUnseenClass = errors.New("class index not seen during fit")
)
