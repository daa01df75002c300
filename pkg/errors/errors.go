// Package errors provides structured error types for the dazed scanner.
//
// Errors carry a machine-readable [Code] so callers can tell a parse failure
// from a registry lookup failure or a host outage without string matching.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input and configuration validation failures
//   - *_FAILED: A unit of scan work (parse, lookup) failed
//   - NOT_FOUND, EMPTY_REPOSITORY: Non-fatal absence conditions
//   - NETWORK_*, RATE_LIMITED: Transport errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "workers.files must be positive, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // fatal at startup
//	}
//
//	err := errors.Wrap(errors.ErrCodeLookupFailed, origErr, "lookup %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Scan unit failures
	ErrCodeParseFailed  Code = "PARSE_FAILED"
	ErrCodeLookupFailed Code = "LOOKUP_FAILED"
	ErrCodeHostFailed   Code = "HOST_FAILED"

	// Absence conditions
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeEmptyRepository Code = "EMPTY_REPOSITORY"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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

// RateLimitedError reports that a host refused a request because its
// request budget is exhausted. Reset is the unix epoch at which the budget
// refills, zero if unknown.
type RateLimitedError struct {
	Reset   int64
	Message string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.Reset > 0 {
		return fmt.Sprintf("rate limited: budget resets at %d", e.Reset)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
