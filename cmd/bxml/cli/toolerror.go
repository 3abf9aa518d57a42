// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCategory classifies command errors so scripts can tell bad input
// from a missing file from a bug without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates invalid input: bad flags, wrong
	// argument count, a document that does not decode. Fix the input
	// and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a named file does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates the process lacks permission to read
	// or write a file.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict indicates the operation would clobber existing
	// state, such as an output file that already exists.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryInternal indicates an unexpected failure: I/O errors, or
	// a bug.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps the
// underlying error, so errors.Is and errors.As see through it. Use the
// category constructors rather than building one directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying message; the category is not included.
func (e *ToolError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a permission error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// FileError categorizes a filesystem error by its cause. The message
// is built from format and args, which should include err via %w.
func FileError(err error, format string, args ...any) *ToolError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound(format, args...)
	case errors.Is(err, fs.ErrPermission):
		return Forbidden(format, args...)
	case errors.Is(err, fs.ErrExist):
		return Conflict(format, args...)
	default:
		return Internal(format, args...)
	}
}

// CategoryOf returns the category of the first ToolError in err's
// chain, or CategoryInternal if there is none.
func CategoryOf(err error) ErrorCategory {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}
	return CategoryInternal
}
