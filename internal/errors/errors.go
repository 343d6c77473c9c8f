// Package errors provides a lightweight structured error type (CorpusError)
// for category-based classification of conversion and metadata failures.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a corpus error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Source parsing and metadata errors
	CategoryParse    ErrorCategory = "parse"
	CategoryMetadata ErrorCategory = "metadata"

	// Conversion and file-system errors
	CategoryConvert    ErrorCategory = "convert"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Fails the current file only
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// CorpusError is a structured error with category, severity, and context
type CorpusError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for CorpusError
type ContextFields map[string]any

// Error implements the error interface
func (e *CorpusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *CorpusError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *CorpusError) WithContext(key string, value any) *CorpusError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// IsFatal reports whether the error should abort the whole run rather than
// just the current file.
func (e *CorpusError) IsFatal() bool {
	return e.Severity == SeverityFatal
}

// New creates a new CorpusError
func New(category ErrorCategory, severity ErrorSeverity, message string) *CorpusError {
	return &CorpusError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// As is a passthrough to the standard library so callers importing this
// package do not also need the stdlib errors package.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is a passthrough to the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Wrap creates a new CorpusError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *CorpusError {
	return &CorpusError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
