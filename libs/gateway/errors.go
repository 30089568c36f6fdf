package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is returned for every failed backend call: non-2xx responses and
// transport failures alike. Status is 0 when no response was received.
type Error struct {
	Status  int
	Message string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func (e *Error) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// ValidationError is raised before any network call when a required field
// for the requested operation is missing or invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AIAnalysisError wraps a failure of the AI flood analysis collaborator.
type AIAnalysisError struct {
	Err error
}

func (e *AIAnalysisError) Error() string {
	return fmt.Sprintf("ai analysis failed: %v", e.Err)
}

func (e *AIAnalysisError) Unwrap() error {
	return e.Err
}

// Message returns the human-readable message carried by err. Gateway errors
// yield their server message, anything else its Error() text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return err.Error()
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.IsUnauthorized()
}

func validationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
