package outcome

import (
	"errors"
	"fmt"
)

// Sentinel kinds for grouping errors.
var (
	// ErrUnknownLabel means the decoder produced a label missing from the
	// description table. It points at an artifact mismatch, not user input.
	ErrUnknownLabel = errors.New("unknown support label")
	ErrMisaligned   = errors.New("rows and predictions are misaligned")
)

// LabelError carries the offending label and, when known, its game.
type LabelError struct {
	Label string
	Game  string
}

func (e *LabelError) Error() string {
	if e.Game == "" {
		return fmt.Sprintf("%s: %q", ErrUnknownLabel, e.Label)
	}
	return fmt.Sprintf("%s: %q for game %q", ErrUnknownLabel, e.Label, e.Game)
}

// Unwrap exposes ErrUnknownLabel to errors.Is.
func (e *LabelError) Unwrap() error { return ErrUnknownLabel }
