package services

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/campi/campi/internal/capture"
	srvErrors "github.com/campi/campi/pkg/errors"
)

// Capture serializes access to the camera. The device can only take one
// frame at a time, so concurrent connection tasks queue on mu.
type Capture struct {
	camera  capture.Camera
	timeout time.Duration
	retries uint
	mu      sync.Mutex
}

func NewCaptureService(camera capture.Camera, timeout time.Duration, retries uint) *Capture {
	return &Capture{
		camera:  camera,
		timeout: timeout,
		retries: retries,
	}
}

// Frame takes one JPEG frame. Each attempt is bounded by the configured
// timeout; failed attempts are retried with exponential backoff.
func (c *Capture) Frame(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := zap.S().Named("capture_service")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second

	attempt := 0
	frame, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		frame, err := c.camera.Capture(attemptCtx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		if len(frame) == 0 {
			return nil, capture.ErrEmptyFrame
		}
		return frame, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.retries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warnw("capture attempt failed", "device", c.camera.Name(), "attempt", attempt, "retry_in", next, "error", err)
		}),
	)
	if err != nil {
		log.Errorw("capture failed", "device", c.camera.Name(), "attempts", attempt, "error", err)
		return nil, srvErrors.NewCaptureError(c.camera.Name(), err)
	}

	log.Debugw("frame captured", "device", c.camera.Name(), "bytes", len(frame), "attempts", attempt)
	return frame, nil
}
