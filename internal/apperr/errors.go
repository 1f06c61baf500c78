// Package apperr defines the coded errors returned by every service operation.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeInternal         Code = "INTERNAL"
)

// Error carries a code, a client-safe message and optional per-field messages.
// Cause is logged but never rendered to the client.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
	Cause   error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus maps the code to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation builds a VALIDATION error with per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// InvalidField is a VALIDATION error for a single field.
func InvalidField(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func Unauthenticated(msg string) *Error { return New(CodeUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return New(CodePermissionDenied, msg) }
func NotFound(msg string) *Error        { return New(CodeNotFound, msg) }
func AlreadyExists(msg string) *Error   { return New(CodeAlreadyExists, msg) }

// Internal hides the store failure behind a generic message.
func Internal(msg string, cause error) *Error {
	return Wrap(CodeInternal, msg, cause)
}

// As extracts an *Error from the chain. Unknown errors become INTERNAL.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return As(err).Code
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
