// Package errors provides structured error types for the pdfstruct application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - A real exit-code contract for the CLI
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInputNotFound, "input file not found: %s", path)
//	if errors.Is(err, errors.ErrCodeInputNotFound) {
//	    // Handle missing input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParseFailure, origErr, "parse %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeInputNotFound    Code = "INPUT_NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

	// Parsing failures
	ErrCodeAssetProvisioning Code = "ASSET_PROVISIONING"
	ErrCodeParseFailure      Code = "PARSE_FAILURE"
	ErrCodeOutputMissing     Code = "OUTPUT_MISSING"
	ErrCodeOutputMalformed   Code = "OUTPUT_MALFORMED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Exit codes for the CLI. Each failure kind maps to a distinct process
// exit status so callers can dispatch on the outcome programmatically.
const (
	ExitOK                = 0
	ExitInternal          = 1
	ExitUsage             = 2
	ExitInputNotFound     = 3
	ExitAssetProvisioning = 4
	ExitParseFailure      = 5
	ExitOutputMissing     = 6
	ExitOutputMalformed   = 7
)

// exitCodes maps error codes to process exit codes.
var exitCodes = map[Code]int{
	ErrCodeInvalidInput:      ExitUsage,
	ErrCodeInvalidFormat:     ExitUsage,
	ErrCodeInvalidPath:       ExitUsage,
	ErrCodeInputNotFound:     ExitInputNotFound,
	ErrCodeAssetProvisioning: ExitAssetProvisioning,
	ErrCodeParseFailure:      ExitParseFailure,
	ErrCodeOutputMissing:     ExitOutputMissing,
	ErrCodeOutputMalformed:   ExitOutputMalformed,
}

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

// ExitCode returns the process exit code for an error.
// A nil error maps to 0; errors without a known code map to 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := exitCodes[GetCode(err)]; ok {
		return code
	}
	return ExitInternal
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
