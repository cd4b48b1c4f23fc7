package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// InvalidConfig creates an AppError for an invalid configuration value.
func InvalidConfig(field, reason string) *AppError {
	e := &AppError{Code: ErrCodeInvalidConfig, Message: reason}
	if field != "" {
		e.Message = fmt.Sprintf("%s: %s", field, reason)
		e.WithDetail("field", field)
	}
	return e
}

// UnresolvedStage creates an AppError for a stage the resolver could not produce.
func UnresolvedStage(stage string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeUnresolvedStage,
		Message: fmt.Sprintf("stage %q could not be resolved", stage),
		Details: map[string]any{"stage": stage},
		Cause:   cause,
	}
}

// InvalidStage creates an AppError for a resolved stage of the wrong kind.
func InvalidStage(stage, want string, got any) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidStage,
		Message: fmt.Sprintf("stage %q is %T, want %s", stage, got, want),
		Details: map[string]any{"stage": stage, "want": want},
	}
}

// ClassFrozen creates an AppError for a modification attempted after first use.
func ClassFrozen(class, operation string) *AppError {
	return &AppError{
		Code:    ErrCodeClassFrozen,
		Message: fmt.Sprintf("resource %q is in use; %s must run before the first request", class, operation),
		Details: map[string]any{"resource": class, "operation": operation},
	}
}

// NotFound creates an AppError for a named item that does not exist.
func NotFound(kind, name string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// InvalidInput creates an AppError for caller data that cannot be used.
func InvalidInput(reason string, cause error) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: reason, Cause: cause}
}

// Internal creates an AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "unexpected internal error", Cause: cause}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
