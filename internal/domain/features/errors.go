package features

import (
	"errors"
	"fmt"
)

// Sentinel kinds for row expansion and column access.
var (
	ErrInvalidCategoricalValue = errors.New("invalid categorical value")
	ErrUnknownColumn           = errors.New("unknown feature column")
)

// CategoricalError names the field whose value is outside the encoding table.
type CategoricalError struct {
	Field string
	Value string
}

func (e *CategoricalError) Error() string {
	return fmt.Sprintf("%s: %s = %q", ErrInvalidCategoricalValue, e.Field, e.Value)
}

// Unwrap exposes ErrInvalidCategoricalValue to errors.Is.
func (e *CategoricalError) Unwrap() error { return ErrInvalidCategoricalValue }
