package pool

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerState is the position of a worker in its Idle -> Running -> Idle loop.
type WorkerState int32

const (
	WorkerIdle WorkerState = iota
	WorkerRunning
	WorkerStopped
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerRunning:
		return "running"
	case WorkerStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

type worker struct {
	id    int
	queue *jobQueue
	opts  *options

	state    atomic.Int32
	executed atomic.Uint64
	failed   atomic.Uint64
}

func newWorker(id int, q *jobQueue, opts *options) *worker {
	w := &worker{id: id, queue: q, opts: opts}
	w.state.Store(int32(WorkerIdle))
	return w
}

// start launches the worker goroutine and waits until its start hook has run.
// On a hook failure the goroutine has already exited and released wg.
func (w *worker) start(wg *sync.WaitGroup) error {
	ready := make(chan error, 1)

	wg.Add(1)
	go func() {
		if err := w.init(); err != nil {
			w.state.Store(int32(WorkerStopped))
			wg.Done()
			ready <- err
			return
		}
		ready <- nil
		w.run(wg)
	}()

	return <-ready
}

func (w *worker) init() (err error) {
	if w.opts.onWorkerStart == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("start hook panicked: %v", rec)
		}
	}()
	return w.opts.onWorkerStart(w.id)
}

func (w *worker) run(wg *sync.WaitGroup) {
	exited := false
	defer func() {
		if !exited {
			// A task called runtime.Goexit. Keep the capacity by taking over
			// with a fresh goroutine; wg stays held on its behalf.
			go w.run(wg)
			return
		}
		w.state.Store(int32(WorkerStopped))
		if w.opts.onWorkerStop != nil {
			w.opts.onWorkerStop(w.id)
		}
		w.opts.logger.Debugw("worker stopped", "worker", w.id, "executed", w.executed.Load(), "failed", w.failed.Load())
		wg.Done()
	}()

	for {
		task, ok := w.queue.take()
		if !ok {
			exited = true
			return
		}
		w.execute(task)
	}
}

// execute runs task and contains any abnormal termination.
func (w *worker) execute(task Task) {
	w.state.Store(int32(WorkerRunning))
	w.opts.observer.TaskStarted(w.id)

	start := time.Now()
	completed := false
	defer func() {
		rec := recover()
		if completed {
			w.executed.Add(1)
		} else {
			w.failed.Add(1)
			w.report(&TaskPanicError{WorkerID: w.id, Value: rec, Stack: debug.Stack()})
		}
		w.opts.observer.TaskFinished(w.id, time.Since(start), !completed)
		w.state.Store(int32(WorkerIdle))
	}()

	task()
	completed = true
}

func (w *worker) report(perr *TaskPanicError) {
	defer func() {
		if rec := recover(); rec != nil {
			w.opts.logger.Errorw("panic handler panicked", "worker", w.id, "error", rec)
		}
	}()

	if w.opts.panicHandler != nil {
		w.opts.panicHandler(perr)
		return
	}
	w.opts.logger.Errorw("task failed", "worker", w.id, "error", perr, "stack", string(perr.Stack))
}

func (w *worker) getState() WorkerState {
	return WorkerState(w.state.Load())
}
