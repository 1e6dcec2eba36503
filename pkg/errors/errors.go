// Package errors provides structured error types for the lockwatch application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across all checker commands
//   - Machine-readable error codes for programmatic handling
//   - User-friendly violation messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - MALFORMED_*: Input that cannot be parsed
//   - MISSING_* / VERSION_*: Reconciliation violations
//   - INVALID_*: Configuration or manifest problems
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedRequirement, "cannot parse %q", line)
//	if errors.Is(err, errors.ErrCodeMalformedRequirement) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Parse errors
	ErrCodeMalformedRequirement Code = "MALFORMED_REQUIREMENT"
	ErrCodeMalformedLock        Code = "MALFORMED_LOCK"

	// Reconciliation violations
	ErrCodeMissingFromLock Code = "MISSING_FROM_LOCK"
	ErrCodeVersionMismatch Code = "VERSION_MISMATCH"

	// Configuration errors
	ErrCodeUnknownExtra    Code = "UNKNOWN_EXTRA"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// External collaborators
	ErrCodePriorRevisionUnavailable Code = "PRIOR_REVISION_UNAVAILABLE"
	ErrCodeInvalidSpec              Code = "INVALID_SPEC"
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
