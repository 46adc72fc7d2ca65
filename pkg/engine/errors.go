// Package engine provides the spaced-repetition scheduling engine: the
// Scheduler, Session Manager, Bulk Scheduler, and Statistics Aggregator.
package engine

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrItemNotFound indicates the reviewed item does not exist in the
	// external content store.
	ErrItemNotFound = errors.New("item not found")

	// ErrSessionNotFound indicates an unknown review session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed indicates an operation on an already ended session.
	ErrSessionClosed = errors.New("session already ended")

	// ErrStoreUnavailable indicates the schedule or history store kept
	// failing after the engine exhausted its retries.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// SchedulerError wraps errors with operation context.
//
// It records which engine operation failed, making error messages more
// informative for debugging.
//
// Example:
//
//	err := &SchedulerError{
//	    Op:  "ScheduleReview",
//	    Err: ErrItemNotFound,
//	}
//	// Error() returns: "srs: ScheduleReview: item not found"
type SchedulerError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "srs: <Op>: <Err>"
func (e *SchedulerError) Error() string {
	return fmt.Sprintf("srs: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with SchedulerError.
func (e *SchedulerError) Unwrap() error {
	return e.Err
}

// NewSchedulerError creates a new SchedulerError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewSchedulerError("ScheduleReview", err)
//	}
func NewSchedulerError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SchedulerError{Op: op, Err: err}
}
