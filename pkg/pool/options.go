package pool

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives task lifecycle notifications. Implementations must be
// safe for concurrent use; they are called from producers and workers.
type Observer interface {
	TaskSubmitted()
	TaskRejected()
	TaskStarted(workerID int)
	TaskFinished(workerID int, elapsed time.Duration, failed bool)
}

type noopObserver struct{}

func (noopObserver) TaskSubmitted()                        {}
func (noopObserver) TaskRejected()                         {}
func (noopObserver) TaskStarted(int)                       {}
func (noopObserver) TaskFinished(int, time.Duration, bool) {}

type options struct {
	logger        *zap.SugaredLogger
	observer      Observer
	panicHandler  func(*TaskPanicError)
	onWorkerStart func(workerID int) error
	onWorkerStop  func(workerID int)
}

func defaultOptions() options {
	return options{
		logger:   zap.S().Named("pool"),
		observer: noopObserver{},
	}
}

// Option configures a Pool.
type Option func(*options)

// WithLogger sets the logger used for worker lifecycle and failure messages.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an Observer for task lifecycle events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithPanicHandler is called with every contained task failure.
// When unset, failures are logged at error level.
func WithPanicHandler(fn func(*TaskPanicError)) Option {
	return func(o *options) {
		o.panicHandler = fn
	}
}

// WithWorkerStart runs fn inside each worker goroutine before it takes its
// first task. A non-nil error aborts New with a *WorkerStartupError.
func WithWorkerStart(fn func(workerID int) error) Option {
	return func(o *options) {
		o.onWorkerStart = fn
	}
}

// WithWorkerStop runs fn inside each worker goroutine right before it exits.
func WithWorkerStop(fn func(workerID int)) Option {
	return func(o *options) {
		o.onWorkerStop = fn
	}
}
