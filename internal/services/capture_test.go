package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campi/campi/internal/services"
	srvErrors "github.com/campi/campi/pkg/errors"
)

type fakeCamera struct {
	failures atomic.Int32 // attempts left that fail
	calls    atomic.Int32
	delay    time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (c *fakeCamera) Name() string { return "fake" }

func (c *fakeCamera) Capture(ctx context.Context) ([]byte, error) {
	c.calls.Add(1)
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		m := c.maxActive.Load()
		if n <= m || c.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.failures.Add(-1) >= 0 {
		return nil, errors.New("sensor not ready")
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

var _ = Describe("Capture", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should return a frame from a healthy camera", func() {
		cam := &fakeCamera{}
		svc := services.NewCaptureService(cam, time.Second, 0)

		frame, err := svc.Frame(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(frame).To(Equal([]byte{0xff, 0xd8, 0xff, 0xd9}))
		Expect(cam.calls.Load()).To(Equal(int32(1)))
	})

	// Given a camera failing its first two attempts
	// When a frame is requested with two retries
	// Then the third attempt succeeds
	It("should retry transient failures", func() {
		cam := &fakeCamera{}
		cam.failures.Store(2)
		svc := services.NewCaptureService(cam, time.Second, 2)

		frame, err := svc.Frame(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(frame).NotTo(BeEmpty())
		Expect(cam.calls.Load()).To(Equal(int32(3)))
	})

	It("should give up after the configured retries", func() {
		cam := &fakeCamera{}
		cam.failures.Store(10)
		svc := services.NewCaptureService(cam, time.Second, 1)

		_, err := svc.Frame(ctx)

		Expect(err).To(HaveOccurred())
		Expect(srvErrors.IsCaptureError(err)).To(BeTrue())
		Expect(cam.calls.Load()).To(Equal(int32(2)))
	})

	It("should bound each attempt by the timeout", func() {
		cam := &fakeCamera{delay: 5 * time.Second}
		svc := services.NewCaptureService(cam, 50*time.Millisecond, 0)

		start := time.Now()
		_, err := svc.Frame(ctx)

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("should stop retrying when the caller context ends", func() {
		cam := &fakeCamera{delay: 5 * time.Second}
		svc := services.NewCaptureService(cam, 10*time.Second, 5)

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := svc.Frame(cctx)

		Expect(err).To(HaveOccurred())
		Expect(cam.calls.Load()).To(Equal(int32(1)))
	})

	It("should never drive the device concurrently", func() {
		cam := &fakeCamera{delay: 10 * time.Millisecond}
		svc := services.NewCaptureService(cam, time.Second, 0)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := svc.Frame(ctx)
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		Expect(cam.calls.Load()).To(Equal(int32(8)))
		Expect(cam.maxActive.Load()).To(Equal(int32(1)))
	})
})
