// Package apperrors holds the error taxonomy shared by the store, the
// services and the HTTP layer. Only the HTTP layer turns these into status
// codes.
package apperrors

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both a missing item and an item owned by another user.
	ErrNotFound = errors.New("item not found")
	// ErrUnauthenticated is returned when no identity can be resolved.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError reports client input that failed validation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return e.Message + " (" + strings.Join(names, ", ") + ")"
}

// NewValidationError builds a ValidationError with no field detail.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
