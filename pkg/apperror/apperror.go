// Package apperror carries the HTTP-facing error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error with the status and code exposed to API clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so per-call errors built with a
// cause still satisfy errors.Is against the package sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates an application error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// NotFound creates a 404 error.
func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

// Validation creates a 400 error for input the caller must correct.
func Validation(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// Unauthorized creates a 401 error.
func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

// TooManyRequests creates a 429 error.
func TooManyRequests(code, message string) *Error {
	return New(http.StatusTooManyRequests, code, message)
}

// Unavailable creates a 503 error for features whose collaborator is not configured.
func Unavailable(code, message string) *Error {
	return New(http.StatusServiceUnavailable, code, message)
}

// Upstream wraps a collaborator failure (LLM, database) as an opaque 500.
func Upstream(code, message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: code, Message: message, Err: err}
}

// ProfileFormat reports LLM output that could not be turned into a profile.
// Clients are expected to offer a retry.
func ProfileFormat(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeProfileFormat, Message: message, Err: err}
}

// CodeProfileFormat is the code clients match on to offer "retry generation".
const CodeProfileFormat = "PROFILE_FORMAT_ERROR"

// StatusOf extracts the HTTP status, 500 for foreign errors.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// CodeOf extracts the error code, "INTERNAL_ERROR" for foreign errors.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// MessageOf returns the client-safe message. Wrapped vendor text never leaks.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
