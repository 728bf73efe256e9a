package store

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category shared by every backend.
// Remote transport failures are always translated into one of these,
// never surfaced as raw HTTP errors.
type Code string

const (
	// CodeValidation marks malformed input: empty names, unknown
	// classes or types, class-mismatched assignments.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound marks a referenced id that does not exist. Deletes
	// are idempotent and never return it.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict marks a (source, target, type) relationship that
	// already exists.
	CodeConflict Code = "CONFLICT"
	// CodeStorage marks a failed disk write or a non-2xx response from
	// the remote backend. For remote failures the response body is
	// retained in the message.
	CodeStorage Code = "STORAGE"
	// CodeUnauthorized marks a rejected API key (remote backend only).
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeNetwork marks a transport failure or timeout before any
	// response arrived (remote backend only).
	CodeNetwork Code = "NETWORK"
)

// Error is a coded store error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a coded error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a coded error wrapping a cause.
func WrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ErrorCode extracts the code from err, or "" when err is not a store error.
func ErrorCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
