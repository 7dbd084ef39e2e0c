package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPoolSize is returned by New when the requested size is not positive.
	ErrInvalidPoolSize = errors.New("pool: size must be a positive integer")

	// ErrNilTask is returned by Execute when the task is nil.
	ErrNilTask = errors.New("pool: task is nil")

	// ErrQueueClosed is reported by the job queue once the pool started shutting down.
	ErrQueueClosed = errors.New("pool: job queue is closed")

	// ErrSubmissionRejected is returned by Execute after Shutdown has begun.
	// It wraps ErrQueueClosed.
	ErrSubmissionRejected = fmt.Errorf("pool: submission rejected: %w", ErrQueueClosed)

	// ErrWorkerStartup matches any *WorkerStartupError under errors.Is.
	ErrWorkerStartup = errors.New("pool: worker startup failed")
)

// WorkerStartupError is returned by New when a worker could not be started.
// Every worker started before the failure has been stopped and joined.
type WorkerStartupError struct {
	WorkerID int
	Err      error
}

func (e *WorkerStartupError) Error() string {
	return fmt.Sprintf("pool: worker %d failed to start: %v", e.WorkerID, e.Err)
}

func (e *WorkerStartupError) Unwrap() error { return e.Err }

func (e *WorkerStartupError) Is(target error) bool { return target == ErrWorkerStartup }

// TaskPanicError describes a task that terminated abnormally.
// It is handed to the panic handler and never returned to producers.
type TaskPanicError struct {
	WorkerID int
	// Value is the value passed to panic, or nil when the task called runtime.Goexit.
	Value any
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("pool: task exited abnormally on worker %d", e.WorkerID)
	}
	return fmt.Sprintf("pool: task panicked on worker %d: %v", e.WorkerID, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
