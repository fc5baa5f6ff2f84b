// Package errors provides a lightweight structured error type (SitegenError)
// for category-based classification and retry semantics across the pipeline
// engine, its persistence layer, and the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a sitegen error for classification
type ErrorCategory string

const (
	// Contract errors at stage boundaries
	CategoryValidation ErrorCategory = "validation"
	CategoryHandler    ErrorCategory = "handler"

	// Misuse of the engine API (programmer errors)
	CategoryOrchestration ErrorCategory = "orchestration"

	// Collaborator errors
	CategoryStorage   ErrorCategory = "storage"
	CategoryBroadcast ErrorCategory = "broadcast"
	CategoryConfig    ErrorCategory = "config"
	CategoryPublish   ErrorCategory = "publish"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// SitegenError is a structured error with category, retryability, and context
type SitegenError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SitegenError
type ContextFields map[string]any

// Error implements the error interface
func (e *SitegenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SitegenError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SitegenError) WithContext(key string, value any) *SitegenError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithRetryable marks the error retryable or not
func (e *SitegenError) WithRetryable(retryable bool) *SitegenError {
	e.Retryable = retryable
	return e
}

// New creates a new SitegenError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SitegenError {
	return &SitegenError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Newf creates a new SitegenError with a formatted message
func Newf(category ErrorCategory, severity ErrorSeverity, format string, args ...any) *SitegenError {
	return New(category, severity, fmt.Sprintf(format, args...))
}

// Wrap creates a new SitegenError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SitegenError {
	return &SitegenError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory reports whether err is a SitegenError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var se *SitegenError
	for err != nil {
		if e, ok := err.(*SitegenError); ok {
			se = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return se != nil && se.Category == category
}
