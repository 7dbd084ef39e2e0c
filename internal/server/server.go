package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campi/campi/internal/config"
	"github.com/campi/campi/internal/models"
	"github.com/campi/campi/pkg/pool"
)

// Executor runs connection tasks. *pool.Pool implements it.
type Executor interface {
	Execute(task pool.Task) error
	Shutdown()
}

// ConnHandler answers the request carried by a connection.
type ConnHandler interface {
	ServeConn(ctx context.Context, conn io.ReadWriter) models.Response
}

// Recorder stores what a connection task did.
type Recorder interface {
	Record(ctx context.Context, r models.Request)
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, models.Request) {}

// Server accepts TCP connections and hands each one to the pool as a task.
type Server struct {
	cfg      config.Server
	executor Executor
	handler  ConnHandler
	recorder Recorder

	mu       sync.Mutex
	listener net.Listener

	stopping atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

func New(cfg config.Server, executor Executor, handler ConnHandler, recorder Recorder) *Server {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Server{
		cfg:      cfg,
		executor: executor,
		handler:  handler,
		recorder: recorder,
	}
}

// Start binds the listener and runs the accept loop. It blocks until Stop is
// called or ctx is done, and only returns an error when binding fails.
func (s *Server) Start(ctx context.Context) error {
	log := zap.S().Named("server")

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}

	s.mu.Lock()
	if s.stopping.Load() {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.listener = ln
	s.mu.Unlock()

	log.Infow("listening", "address", ln.Addr().String())

	loopDone := make(chan struct{})
	defer close(loopDone)
	go func() {
		select {
		case <-ctx.Done():
			s.closeListener()
		case <-loopDone:
		}
	}()

	// Tasks outlive the accept loop while the pool drains.
	taskCtx := context.WithoutCancel(ctx)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = time.Second

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopping.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				log.Infow("accept loop stopped", "address", ln.Addr().String())
				return nil
			}

			delay := b.NextBackOff()
			log.Warnw("accept failed", "error", err, "retry_in", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		b.Reset()

		s.dispatch(taskCtx, conn)
	}
}

func (s *Server) dispatch(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()

	err := s.executor.Execute(func() {
		s.serve(ctx, conn)
	})
	if err != nil {
		zap.S().Named("server").Warnw("connection rejected", "remote", remote, "error", err)
		conn.Close()
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := uuid.New()
	now := time.Now()
	_ = conn.SetReadDeadline(now.Add(s.cfg.ReadTimeout))
	_ = conn.SetWriteDeadline(now.Add(s.cfg.WriteTimeout))

	resp := s.handler.ServeConn(ctx, conn)

	zap.S().Named("server").Debugw("connection served",
		"id", id,
		"remote", conn.RemoteAddr().String(),
		"request", resp.RequestLine,
		"status", resp.Status,
		"bytes", resp.Bytes,
		"duration", resp.Duration,
	)

	s.recorder.Record(ctx, models.NewRequest(id, conn.RemoteAddr().String(), resp))
}

// Addr returns the bound address, or nil before Start has bound the listener.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopping.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}
}

// Stop closes the listener, then drains the pool: every accepted connection
// is still served. It returns ctx.Err() if ctx ends before the workers joined;
// the drain keeps going in the background in that case.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		log := zap.S().Named("server")
		s.closeListener()

		done := make(chan struct{})
		go func() {
			s.executor.Shutdown()
			close(done)
		}()

		select {
		case <-done:
			log.Info("server stopped")
		case <-ctx.Done():
			log.Warnw("server stop timed out, workers still draining", "error", ctx.Err())
			s.stopErr = ctx.Err()
		}
	})
	return s.stopErr
}
