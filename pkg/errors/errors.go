// Package errors provides structured error types for the pretree
// application surfaces.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MALFORMED_*: Structurally broken documents
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedTree, origErr, "document %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/pretree/pkg/basic"
	"github.com/matzehuels/pretree/pkg/decomp"
	"github.com/matzehuels/pretree/pkg/engine"
	"github.com/matzehuels/pretree/pkg/registry"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPointer Code = "INVALID_POINTER"
	ErrCodeInvalidName    Code = "INVALID_TYPE_NAME"

	// Document structure errors
	ErrCodeMalformedTree     Code = "MALFORMED_TREE"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeDecomposition     Code = "DECOMPOSITION_FAILED"
	ErrCodeReconstruction    Code = "RECONSTRUCTION_FAILED"

	// Registry errors
	ErrCodeUnregisteredType   Code = "UNREGISTERED_TYPE"
	ErrCodeUnknownTypeVersion Code = "UNKNOWN_TYPE_VERSION"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

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

// FromCore classifies an error from the engine, registry, or basic
// layers into a coded Error. Errors that already carry a code pass
// through; anything unrecognized becomes INTERNAL_ERROR.
func FromCore(err error) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	code := ErrCodeInternal
	switch {
	case errors.Is(err, registry.ErrUnregisteredType):
		code = ErrCodeUnregisteredType
	case errors.Is(err, registry.ErrUnknownTypeVersion):
		code = ErrCodeUnknownTypeVersion
	case errors.Is(err, registry.ErrInvalidTypeName), errors.Is(err, registry.ErrDuplicateRegistration):
		code = ErrCodeInvalidName
	case errors.Is(err, engine.ErrDanglingReference):
		code = ErrCodeDanglingReference
	case errors.Is(err, engine.ErrMalformedTree):
		code = ErrCodeMalformedTree
	case errors.Is(err, decomp.ErrDecomposition):
		code = ErrCodeDecomposition
	case errors.Is(err, decomp.ErrReconstruction):
		code = ErrCodeReconstruction
	case errors.Is(err, basic.ErrBadPointer):
		code = ErrCodeInvalidPointer
	}
	return Wrap(code, err, "%s", err.Error())
}

// HTTPStatus maps an error code to the HTTP status the API responds
// with. Structural problems in submitted documents are client errors.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPointer, ErrCodeInvalidName,
		ErrCodeMalformedTree, ErrCodeDanglingReference,
		ErrCodeUnregisteredType, ErrCodeUnknownTypeVersion,
		ErrCodeDecomposition, ErrCodeReconstruction:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
