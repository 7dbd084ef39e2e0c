package pool

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("jobQueue", func() {
	var q *jobQueue

	BeforeEach(func() {
		q = newJobQueue()
	})

	// Given tasks submitted in order
	// When a single consumer takes them
	// Then they come out in submission order
	It("should deliver tasks in FIFO order", func() {
		var got []int
		for i := range 5 {
			idx := i
			Expect(q.submit(func() { got = append(got, idx) })).To(Succeed())
		}

		for range 5 {
			task, ok := q.take()
			Expect(ok).To(BeTrue())
			task()
		}

		Expect(got).To(Equal([]int{0, 1, 2, 3, 4}))
	})

	It("should block take until a task is submitted", func() {
		taken := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			_, ok := q.take()
			Expect(ok).To(BeTrue())
			close(taken)
		}()

		Consistently(taken, 100*time.Millisecond).ShouldNot(BeClosed())
		Expect(q.submit(func() {})).To(Succeed())
		Eventually(taken, time.Second).Should(BeClosed())
	})

	It("should wake every waiting consumer on close", func() {
		const waiters = 4
		var stopped atomic.Int32
		var wg sync.WaitGroup
		for range waiters {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := q.take(); !ok {
					stopped.Add(1)
				}
			}()
		}

		time.Sleep(50 * time.Millisecond)
		Expect(q.close()).To(BeTrue())
		wg.Wait()

		Expect(stopped.Load()).To(Equal(int32(waiters)))
	})

	// Given a closed queue holding pending tasks
	// When consumers keep taking
	// Then pending tasks are delivered before the stop signal
	It("should drain pending tasks after close", func() {
		Expect(q.submit(func() {})).To(Succeed())
		Expect(q.submit(func() {})).To(Succeed())
		q.close()

		_, ok := q.take()
		Expect(ok).To(BeTrue())
		_, ok = q.take()
		Expect(ok).To(BeTrue())
		_, ok = q.take()
		Expect(ok).To(BeFalse())
	})

	It("should reject submissions after close", func() {
		q.close()
		Expect(q.submit(func() {})).To(MatchError(ErrQueueClosed))
		Expect(q.len()).To(BeZero())
	})

	It("should report only the first close", func() {
		Expect(q.close()).To(BeTrue())
		Expect(q.close()).To(BeFalse())
		Expect(q.isClosed()).To(BeTrue())
	})

	// Given many tasks and many concurrent consumers
	// When every consumer takes until the queue stops
	// Then every task is delivered exactly once
	It("should never deliver a task twice under concurrent takers", func() {
		const tasks = 2000
		const consumers = 8

		counts := make([]atomic.Int32, tasks)
		for i := range tasks {
			idx := i
			Expect(q.submit(func() { counts[idx].Add(1) })).To(Succeed())
		}
		q.close()

		var wg sync.WaitGroup
		for range consumers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					task, ok := q.take()
					if !ok {
						return
					}
					task()
				}
			}()
		}
		wg.Wait()

		for i := range counts {
			Expect(counts[i].Load()).To(Equal(int32(1)), "task %d", i)
		}
	})
})
