// Package apperr is the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store failure")
)

// Error carries a caller-safe message next to its kind. The cause, if any,
// is for logs only.
type Error struct {
	kind    error
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.cause }

// Message is the text that may be shown to API clients.
func (e *Error) Message() string { return e.message }

func Validation(msg string) error { return &Error{kind: ErrValidation, message: msg} }

func Auth(msg string) error { return &Error{kind: ErrAuth, message: msg} }

func NotFound(msg string) error { return &Error{kind: ErrNotFound, message: msg} }

// Store wraps an unexpected persistence failure. msg must not contain
// driver details.
func Store(msg string, cause error) error {
	return &Error{kind: ErrStore, message: msg, cause: cause}
}

// Wrap returns err unchanged when it is already classified, otherwise it
// is treated as a store failure.
func Wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Store(msg, err)
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe text for err, or fallback when err is
// unclassified.
func Message(err error, fallback string) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return fallback
	}
	return ae.message
}
