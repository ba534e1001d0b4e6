package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks input-contract violations. Always wrapped by *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData is returned when a series is empty and no defaults make sense.
	ErrInsufficientData = errors.New("insufficient data")
)

// ValidationError names the violated constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
