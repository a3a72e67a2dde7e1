package errors

import (
	"errors"
	"fmt"
)

// KBError is the structured error type for dockb.
// It provides rich context for error handling, logging, and user presentation.
type KBError struct {
	// Code is the unique error code (e.g., "ERR_302_STORAGE_UPSERT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, DocStore, Storage, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *KBError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *KBError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with KBError.
func (e *KBError) Is(target error) bool {
	if t, ok := target.(*KBError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *KBError) WithDetail(key, value string) *KBError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *KBError) WithSuggestion(suggestion string) *KBError {
	e.Suggestion = suggestion
	return e
}

// New creates a new KBError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *KBError {
	return &KBError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new KBError with a formatted message.
func Newf(code string, format string, args ...any) *KBError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a KBError from an existing error.
// The error's message becomes the KBError message.
func Wrap(code string, err error) *KBError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Wrapf creates a KBError from an existing error with a formatted message.
// The original error is retained as the cause.
func Wrapf(code string, err error, format string, args ...any) *KBError {
	if err == nil {
		return nil
	}
	return New(code, fmt.Sprintf(format, args...)+": "+err.Error(), err)
}

// StorageError creates an index-storage-related error.
func StorageError(message string, cause error) *KBError {
	return New(ErrCodeStorageUpsert, message, cause)
}

// QueryError creates a search-query-related error.
func QueryError(message string, cause error) *KBError {
	return New(ErrCodeStorageQuery, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *KBError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *KBError {
	return New(ErrCodeInternal, message, cause)
}

// CodeOf extracts the error code from an error chain.
// Returns the empty string if no KBError is present.
func CodeOf(err error) string {
	var kbe *KBError
	if errors.As(err, &kbe) {
		return kbe.Code
	}
	return ""
}

// CategoryOf extracts the error category from an error chain.
// Returns CategoryInternal if no KBError is present.
func CategoryOf(err error) Category {
	var kbe *KBError
	if errors.As(err, &kbe) {
		return kbe.Category
	}
	return CategoryInternal
}
