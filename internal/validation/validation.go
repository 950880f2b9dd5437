// Package validation provides field-level request validation. Validators
// collect all failing fields into one Error so clients see every problem
// at once instead of fixing them one round-trip at a time.
package validation

import (
	"fmt"
	"strings"
)

// Error carries per-field validation messages.
type Error struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError creates an empty validation error ready to collect fields.
func NewError() *Error {
	return &Error{Fields: make(map[string]string)}
}

// Add records a failing field.
func (e *Error) Add(field, message string) {
	e.Fields[field] = message
}

// HasErrors reports whether any field failed.
func (e *Error) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns the error when fields failed, nil otherwise.
func (e *Error) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}
