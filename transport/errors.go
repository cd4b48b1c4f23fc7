package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies transport errors.
type ErrorCode string

const (
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeConnection indicates a connection failure (refused, DNS, etc).
	ErrCodeConnection ErrorCode = "connection"
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeRateLimit indicates rate limiting (429).
	ErrCodeRateLimit ErrorCode = "rate_limit"
	// ErrCodeValidation indicates a rejected request (other 4xx) or one
	// that could not be built.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer ErrorCode = "server"
)

// Error is a classified transport error.
type Error struct {
	// StatusCode is the HTTP status code (0 for connection-level errors).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Retryable indicates whether the operation can be retried.
	Retryable bool
	// Body is the original response body (may be nil).
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

// NewValidationError creates an error for a request that could not be built.
func NewValidationError(msg string, err error) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg, Err: err}
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 1xx, 2xx and 3xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode, Message: http.StatusText(statusCode), Body: body}
	switch {
	case statusCode < 400:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Code = ErrCodeAuth
	case statusCode == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case statusCode == http.StatusTooManyRequests:
		e.Code = ErrCodeRateLimit
		e.Retryable = true
	case statusCode < 500:
		e.Code = ErrCodeValidation
	default:
		e.Code = ErrCodeServer
		e.Retryable = true
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return e
}

// CodeOf returns the classification of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return CodeOf(err) == ErrCodeConnection }

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool { return CodeOf(err) == ErrCodeAuth }

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsRateLimit checks if an error is a rate-limit error.
func IsRateLimit(err error) bool { return CodeOf(err) == ErrCodeRateLimit }

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool { return CodeOf(err) == ErrCodeServer }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
