package config

import (
	"errors"
	"fmt"
)

// ErrValidationFailed indicates a configuration value is out of range.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	// Path is the dot-separated setting path.
	Path string
	// Value is the rejected value.
	Value any
	// Message describes the constraint.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Path, e.Value, e.Message)
}

// Unwrap returns ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
