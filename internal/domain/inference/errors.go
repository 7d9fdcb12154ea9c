package inference

import "errors"

// Sentinel kinds for inference errors.
var (
	// ErrInference marks any rejection of the batch by the pipeline artifacts.
	ErrInference = errors.New("inference failed")

	ErrEmptyProbabilities = errors.New("empty probability vector")
	ErrProbabilityRange   = errors.New("probability outside [0,1]")
)
