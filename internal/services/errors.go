// errors.go defines the error taxonomy shared by the service layer. Handlers
// map these onto HTTP status codes; inside services, errors.Is against the
// sentinel kinds drives control flow.
package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Wrapped by Error values and matched with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
)

// Error is a service failure with a caller-facing message
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.kind
}

// NotFoundf reports a missing entity
func NotFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbiddenf reports an authorization denial
func Forbiddenf(format string, args ...any) error {
	return &Error{kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflictf reports a uniqueness violation
func Conflictf(format string, args ...any) error {
	return &Error{kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalidf reports malformed input
func Invalidf(format string, args ...any) error {
	return &Error{kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticatedf reports a missing or bad credential
func Unauthenticatedf(format string, args ...any) error {
	return &Error{kind: ErrUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a service error to its response status. Unknown errors are
// internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage extracts the caller-facing message, falling back to a generic
// one for unexpected errors so internals never leak.
func UserMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "internal server error"
}
