// Package apperr defines the failure categories shared by the sync layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Failure categories. Match with errors.Is.
var (
	ErrValidation = errors.New("invalid request")
	ErrTransport  = errors.New("transport failure")
	ErrRejected   = errors.New("request rejected")
	ErrShape      = errors.New("unexpected payload")
	ErrEnrichment = errors.New("enrichment failed")
	ErrNotFound   = errors.New("not found")
)

// RejectedError reports a non-2xx response. Its message is what the UI shows.
type RejectedError struct {
	Status  int
	Message string
}

// NewRejected builds a RejectedError, falling back to the status line when the
// server did not send a message.
func NewRejected(status int, message string) *RejectedError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = statusLine(status)
	}
	return &RejectedError{Status: status, Message: message}
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Is reports whether target is ErrRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// RequireID fails with ErrValidation when value is blank.
func RequireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must be a non-empty string", ErrValidation, field)
	}
	return nil
}

// Shape wraps a description of a malformed payload.
func Shape(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, args...))
}

func statusLine(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return fmt.Sprintf("%d", status)
	}
	return fmt.Sprintf("%d %s", status, text)
}
