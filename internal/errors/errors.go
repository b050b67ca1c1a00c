package errors

import (
	"fmt"
)

// CheckError is the structured error type for ragcheck.
// It provides context for error handling, logging, and user presentation.
type CheckError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the operator.
	Suggestion string
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CheckError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *CheckError) Is(target error) bool {
	if t, ok := target.(*CheckError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithSuggestion adds an actionable suggestion for the operator.
// Returns the error for method chaining.
func (e *CheckError) WithSuggestion(suggestion string) *CheckError {
	e.Suggestion = suggestion
	return e
}

// New creates a new CheckError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *CheckError {
	return &CheckError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a CheckError from an existing error.
// The error's message becomes the CheckError message.
func Wrap(code string, err error) *CheckError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *CheckError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// EnvironmentError creates a fatal environment error: the check runner
// itself cannot operate (e.g., subprocesses cannot be spawned at all).
func EnvironmentError(message string, cause error) *CheckError {
	return New(ErrCodeEnvironment, message, cause)
}

// IsFatal checks if an error (anywhere in the chain) has fatal severity.
// Fatal errors abort the entire run with a distinct exit code.
func IsFatal(err error) bool {
	for err != nil {
		if ce, ok := err.(*CheckError); ok && ce.Severity == SeverityFatal {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// GetCode extracts the error code from a CheckError.
// Returns empty string if not a CheckError.
func GetCode(err error) string {
	if ce, ok := err.(*CheckError); ok {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CheckError.
// Returns empty string if not a CheckError.
func GetCategory(err error) Category {
	if ce, ok := err.(*CheckError); ok {
		return ce.Category
	}
	return ""
}
