// Package apperror defines the uniform application error model surfaced by
// the REST API. Services build AppError values, handlers map them to JSON.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an operational error carrying the HTTP status and a stable
// machine-readable code alongside the human message.
type AppError struct {
	Message string   `json:"error"`
	Status  int      `json:"-"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// WithDetails returns a copy of the error with the given detail lines attached
func (e *AppError) WithDetails(details ...string) *AppError {
	clone := *e
	clone.Details = append(append([]string{}, e.Details...), details...)
	return &clone
}

// New creates an AppError with an explicit status and code
func New(status int, code, format string, args ...any) *AppError {
	return &AppError{
		Message: fmt.Sprintf(format, args...),
		Status:  status,
		Code:    code,
	}
}

// NotFound creates a 404 error
func NotFound(format string, args ...any) *AppError {
	return New(http.StatusNotFound, "NOT_FOUND", format, args...)
}

// BadRequest creates a 400 error
func BadRequest(format string, args ...any) *AppError {
	return New(http.StatusBadRequest, "BAD_REQUEST", format, args...)
}

// Conflict creates a 409 error
func Conflict(format string, args ...any) *AppError {
	return New(http.StatusConflict, "CONFLICT", format, args...)
}

// Unauthorized creates a 401 error
func Unauthorized(format string, args ...any) *AppError {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", format, args...)
}

// Forbidden creates a 403 error
func Forbidden(format string, args ...any) *AppError {
	return New(http.StatusForbidden, "FORBIDDEN", format, args...)
}

// Internal creates a 500 error
func Internal(format string, args ...any) *AppError {
	return New(http.StatusInternalServerError, "INTERNAL", format, args...)
}

// From extracts an *AppError from err. Unknown errors are wrapped as an
// internal error so handlers never leak raw database messages.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error")
}
