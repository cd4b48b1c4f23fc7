// Package errors provides the structured error type used across railskit.
//
// Configuration problems (an invalid resource definition, a stage name the
// resolver does not know, a class that is modified after use) are reported
// as *AppError values carrying a machine-readable ErrorCode. Transport
// failures are never translated into AppError; they keep their own type so
// callers can match them with errors.As.
package errors
