package pool

import (
	"sync"
	"sync/atomic"
)

// Task is a unit of work executed exactly once by exactly one worker.
type Task func()

// Pool runs tasks on a fixed set of workers fed by a single job queue.
type Pool struct {
	queue   *jobQueue
	workers []*worker
	opts    options

	wg   sync.WaitGroup
	once sync.Once

	submitted atomic.Uint64
	rejected  atomic.Uint64
}

// New starts a pool of size workers.
//
// It returns ErrInvalidPoolSize when size is not positive, and a
// *WorkerStartupError when a worker start hook fails. In the latter case
// every worker already started has been joined before New returns.
func New(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, ErrInvalidPoolSize
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool{
		queue:   newJobQueue(),
		workers: make([]*worker, 0, size),
		opts:    o,
	}

	for i := range size {
		w := newWorker(i, p.queue, &p.opts)
		if err := w.start(&p.wg); err != nil {
			p.queue.close()
			p.wg.Wait()
			p.opts.logger.Errorw("worker failed to start", "worker", i, "error", err)
			return nil, &WorkerStartupError{WorkerID: i, Err: err}
		}
		p.workers = append(p.workers, w)
	}

	p.opts.logger.Debugw("pool started", "workers", size)

	return p, nil
}

// Execute enqueues task. It never blocks on capacity: the queue is unbounded.
// After Shutdown has begun it returns ErrSubmissionRejected and task is not run.
func (p *Pool) Execute(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	// Counted before the push so Completed never overtakes Submitted.
	p.submitted.Add(1)
	if err := p.queue.submit(task); err != nil {
		p.submitted.Add(^uint64(0))
		p.rejected.Add(1)
		p.opts.observer.TaskRejected()
		return ErrSubmissionRejected
	}
	p.opts.observer.TaskSubmitted()

	return nil
}

// Shutdown stops accepting tasks, lets the workers drain every task already
// queued, and returns once all workers have exited. It is idempotent:
// concurrent and later calls block until the first one has completed.
//
// A running pool is referenced by its own worker goroutines and is never
// garbage collected, so Shutdown must be called to release them.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		pending := p.queue.len()
		p.queue.close()
		p.opts.logger.Debugw("pool shutting down", "pending", pending)
		p.wg.Wait()
		p.opts.logger.Debugw("pool stopped", "completed", p.completed(), "failed", p.failedCount())
	})
}

// Size returns the fixed number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// ActiveWorkers returns the number of workers that have not stopped.
func (p *Pool) ActiveWorkers() int {
	n := 0
	for _, w := range p.workers {
		if w.getState() != WorkerStopped {
			n++
		}
	}
	return n
}

// IsShutdown reports whether Shutdown has been called.
func (p *Pool) IsShutdown() bool {
	return p.queue.isClosed()
}

func (p *Pool) completed() uint64 {
	var n uint64
	for _, w := range p.workers {
		n += w.executed.Load()
	}
	return n
}

func (p *Pool) failedCount() uint64 {
	var n uint64
	for _, w := range p.workers {
		n += w.failed.Load()
	}
	return n
}
