// Package errors provides structured error types for arbor.
//
// Errors carry a machine-readable [Code] so that hosts (the CLI, the HTTP
// server) can map failures onto exit codes and status codes without string
// matching. The two categories the tree widget itself produces are
// configuration errors (missing or inconsistent accessors and settings) and
// data errors (input that cannot be assembled into a single rooted tree).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "display text accessor is required")
//	if errors.IsConfig(err) {
//	    // report and exit
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoad, origErr, "load children of %v", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Widget errors
	ErrCodeConfig   Code = "CONFIG_INVALID"
	ErrCodeData     Code = "DATA_INVALID"
	ErrCodeInFlight Code = "LOAD_IN_FLIGHT"
	ErrCodeLoad     Code = "LOAD_FAILED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Config returns a configuration error.
func Config(format string, args ...any) *Error {
	return New(ErrCodeConfig, format, args...)
}

// Data returns a data error.
func Data(format string, args ...any) *Error {
	return New(ErrCodeData, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return Is(err, ErrCodeConfig) }

// IsData reports whether err is a data error.
func IsData(err error) bool { return Is(err, ErrCodeData) }

// IsNotFound reports whether err is any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeNodeNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound:
		return true
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
