package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationErrors holds multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// Add records err if it is non-nil.
func (e *ValidationErrors) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors reports whether any error was added.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// FieldError is an invalid configuration key. Field is empty when the file
// as a whole could not be parsed.
type FieldError struct {
	Err   error
	Field string
	Value string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}

	return fmt.Sprintf("config field %s (%s): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a new FieldError
func NewFieldError(field, value string, err error) *FieldError {
	return &FieldError{
		Field: field,
		Value: value,
		Err:   err,
	}
}
