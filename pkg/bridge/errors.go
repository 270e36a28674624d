package bridge

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoWorker is returned by Submit when no worker connection is active.
	// It is surfaced immediately and never retried.
	ErrNoWorker = errors.New("no AI worker connected")

	// ErrRequestTimeout matches any *TimeoutError via errors.Is.
	ErrRequestTimeout = errors.New("AI worker response timed out")

	// ErrConnectionLost is returned to callers whose request was sent on a
	// connection that has since been replaced or closed.
	ErrConnectionLost = errors.New("AI worker connection lost")

	// ErrMalformedMessage marks an inbound frame that could not be decoded.
	// It is logged by the read loop and never propagated to callers.
	ErrMalformedMessage = errors.New("malformed worker message")

	// ErrUnknownTaskType is returned for task types the worker does not handle.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrTooManyPending is returned when the outstanding request table is full.
	ErrTooManyPending = errors.New("too many pending requests")

	// ErrClosed is returned after the client has been shut down.
	ErrClosed = errors.New("bridge client closed")
)

// TimeoutError reports that no matching reply arrived before the deadline.
// The pending entry has already been removed when this error is returned.
type TimeoutError struct {
	// TaskType is the type of the task that timed out
	TaskType TaskType

	// RequestID is the id of the abandoned request
	RequestID string

	// Timeout is the configured wait duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("AI worker response timed out (%s) after %s", e.TaskType, e.Timeout)
}

// Is lets errors.Is(err, ErrRequestTimeout) match.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrRequestTimeout
}

// WorkerError carries the error string supplied by the worker, verbatim.
type WorkerError struct {
	// TaskType is the type of the failed task
	TaskType TaskType

	// RequestID is the id of the failed request
	RequestID string

	// Message is the worker's error string
	Message string
}

// Error implements the error interface.
func (e *WorkerError) Error() string {
	return e.Message
}
