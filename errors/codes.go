package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates a resource or client configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeUnresolvedStage indicates a pipeline stage could not be resolved.
	ErrCodeUnresolvedStage ErrorCode = "UNRESOLVED_STAGE"
	// ErrCodeInvalidStage indicates a resolved stage has the wrong shape.
	ErrCodeInvalidStage ErrorCode = "INVALID_STAGE"
	// ErrCodeClassFrozen indicates a resource class was modified after first use.
	ErrCodeClassFrozen ErrorCode = "CLASS_FROZEN"
)

// Lookup and payload errors
const (
	// ErrCodeNotFound indicates a named item was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates caller-supplied data could not be used.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
