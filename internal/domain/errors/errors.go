// Package errors provides domain-specific errors for the markkeep application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrSyncInProgress        = errors.New("sync already in progress")
	ErrNetworkUnavailable    = errors.New("network unavailable")
	ErrBookmarkNotFound      = errors.New("bookmark not found")
	ErrBookmarkURLRequired   = errors.New("bookmark URL required")
	ErrBookmarkTitleRequired = errors.New("bookmark title required")
	ErrInvalidBookmarkURL    = errors.New("invalid bookmark URL")
	ErrDuplicateBookmark     = errors.New("bookmark already exists")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation     ErrorCode = "VALIDATION"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeSyncInProgress ErrorCode = "SYNC_IN_PROGRESS"
	CodeNetwork        ErrorCode = "NETWORK"
	CodeStorage        ErrorCode = "STORAGE"
	CodeConfiguration  ErrorCode = "CONFIG"
	CodeUnknown        ErrorCode = "UNKNOWN"
)

// MarkkeepError wraps errors with additional context for debugging and handling.
type MarkkeepError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *MarkkeepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *MarkkeepError) Unwrap() error {
	return e.Cause
}

// NewError creates a new MarkkeepError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *MarkkeepError {
	return &MarkkeepError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewStorageError creates a MarkkeepError for a failed read or write against
// the local persistence layer.
func NewStorageError(message string, cause error) *MarkkeepError {
	return NewError(CodeStorage, message, cause)
}

// NewUnknownError creates a MarkkeepError for an unexpected failure that does
// not fit any known category.
func NewUnknownError(cause error) *MarkkeepError {
	return NewError(CodeUnknown, "unexpected failure", cause)
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding multiple context values.
func WithContext(err *MarkkeepError, key string, value interface{}) *MarkkeepError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// CodeOf classifies err into an ErrorCode by walking its chain.
// Unrecognized errors classify as CodeUnknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var me *MarkkeepError
	if errors.As(err, &me) {
		return me.Code
	}

	switch {
	case errors.Is(err, ErrSyncInProgress):
		return CodeSyncInProgress
	case errors.Is(err, ErrNetworkUnavailable):
		return CodeNetwork
	case errors.Is(err, ErrBookmarkNotFound):
		return CodeNotFound
	case errors.Is(err, ErrBookmarkURLRequired),
		errors.Is(err, ErrBookmarkTitleRequired),
		errors.Is(err, ErrInvalidBookmarkURL),
		errors.Is(err, ErrDuplicateBookmark):
		return CodeValidation
	default:
		return CodeUnknown
	}
}

// Is reports whether err matches target using errors.Is semantics.
// This is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
// This is a convenience wrapper around the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
