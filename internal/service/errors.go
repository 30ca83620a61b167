package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when an operation is not valid for the
	// resource's current state, e.g. chatting with a document still processing.
	ErrInvalidState = errors.New("invalid state")
	// ErrUpstreamModel is returned when a model or embedding provider call fails.
	ErrUpstreamModel = errors.New("upstream model error")
	// ErrStorage is returned when a persistence operation fails.
	ErrStorage = errors.New("storage error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
