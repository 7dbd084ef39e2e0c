// Package pool implements a fixed-size worker pool executing fire-and-forget tasks.
//
// The pool owns N workers that all consume one shared, unbounded job queue.
// Producers (typically a connection accept loop) hand tasks to Execute and
// return immediately; whichever worker is idle claims the next task.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                              Pool                                   │
//	│                                                                     │
//	│                        Execute(task)                                │
//	│                               │                                     │
//	│                               ▼                                     │
//	│  ┌─────────────────────────────────────────────────────────┐        │
//	│  │                 Job Queue (mutex + cond)                │        │
//	│  │  [task1] [task2] [task3] ...                            │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                               │ take()                              │
//	│         ┌─────────────────────┼─────────────────────┐               │
//	│         ▼                     ▼                     ▼               │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │   Worker 0   │      │   Worker 1   │      │  Worker N-1  │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Core Components
//
// Job Queue:
//   - FIFO with respect to submission order of a single producer
//   - Unbounded: Execute never blocks on capacity
//   - After close, pending tasks are still delivered, new ones are rejected
//   - Exactly one worker receives each task
//
// Worker:
//   - Loops Idle -> Running -> Idle until the queue is closed and drained
//   - Recovers panics at the task boundary and keeps looping
//   - Exposes its state and counters through Pool.Stats
//
// Pool:
//   - Size is fixed at construction
//   - The only owner allowed to close the queue
//   - Shutdown closes the queue and joins every worker
//
// # Worker Lifecycle
//
//	              take() returns task
//	┌───────────┐ ──────────────────► ┌───────────┐
//	│   Idle    │                     │  Running  │
//	└───────────┘ ◄────────────────── └───────────┘
//	      │        task done/panicked
//	      │ queue closed and empty
//	      ▼
//	┌───────────┐
//	│  Stopped  │
//	└───────────┘
//
// # Failure Containment
//
// A task that panics (or calls runtime.Goexit) is turned into a
// *TaskPanicError carrying the worker id, the panic value and the stack.
// The error goes to the handler set with WithPanicHandler, or is logged
// through zap when none is set. The worker then goes back to Idle, so pool
// capacity is never reduced by a failing task.
//
// # Shutdown
//
// Shutdown performs a graceful drain:
//
//  1. The queue is closed; Execute returns ErrSubmissionRejected from now on
//  2. Workers keep taking tasks until the queue is empty
//  3. Each worker runs the WithWorkerStop hook and exits
//  4. Shutdown returns after every worker goroutine has been joined
//
// Running tasks are never interrupted. Shutdown is idempotent.
//
// # Startup Failures
//
// WithWorkerStart registers a hook run inside each worker goroutine before
// it takes work. If a hook fails, New closes the queue, joins the workers
// already started and returns a *WorkerStartupError.
//
// # Usage Example
//
//	p, err := pool.New(4, pool.WithPanicHandler(func(e *pool.TaskPanicError) {
//	    log.Errorw("task failed", "worker", e.WorkerID, "error", e)
//	}))
//	if err != nil {
//	    return err
//	}
//	defer p.Shutdown()
//
//	if err := p.Execute(func() { handle(conn) }); err != nil {
//	    conn.Close() // pool is shutting down
//	}
package pool
