package pool

import "sync"

type queue[T any] []T

func (q *queue[T]) Len() int { return len(*q) }

func (q *queue[T]) Pop() T {
	old := *q
	x := old[0]
	var zero T
	old[0] = zero
	*q = old[1:]
	return x
}

func (q *queue[T]) Push(t T) {
	*q = append(*q, t)
}

// jobQueue hands tasks from producers to workers in submission order.
// All state is guarded by mu; workers never see the lock.
type jobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  queue[Task]
	closed bool
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// submit appends t at the tail. It fails with ErrQueueClosed once close has been called.
func (q *jobQueue) submit(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.tasks.Push(t)
	q.cond.Signal()
	return nil
}

// take blocks until a task is available. It returns false only when the
// queue is closed and every pending task has been handed out.
func (q *jobQueue) take() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.tasks.Len() == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}
	return q.tasks.Pop(), true
}

// close stops further submissions and wakes every waiting worker.
// Pending tasks are still delivered. It reports whether this call closed the queue.
func (q *jobQueue) close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.closed = true
	q.cond.Broadcast()
	return true
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len()
}

func (q *jobQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
