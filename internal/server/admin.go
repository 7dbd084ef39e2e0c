package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campi/campi/internal/config"
	"github.com/campi/campi/internal/server/middlewares"
)

// AdminServer serves the HTTP admin API: health, metrics, pool status and the
// access log.
type AdminServer struct {
	cfg    config.Admin
	srv    *http.Server
	engine *gin.Engine

	mu       sync.Mutex
	listener net.Listener
}

// NewAdminServer builds the router. registerHandlerFn receives the /api/v1
// group, already behind authentication when auth is enabled.
func NewAdminServer(cfg config.Admin, auth config.Authentication, metrics http.Handler, registerHandlerFn func(router *gin.RouterGroup)) *AdminServer {
	if cfg.Mode == config.ServerModeProd {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.L(), true),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}

	api := engine.Group("/api/v1")
	if auth.Enabled {
		api.Use(middlewares.Authenticator([]byte(auth.JWTSecret)))
	}
	registerHandlerFn(api)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return &AdminServer{
		cfg:    cfg,
		engine: engine,
		srv: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for tests.
func (a *AdminServer) Handler() http.Handler {
	return a.engine
}

// Start listens on the admin address and blocks until Stop. It returns
// http.ErrServerClosed after a clean stop.
func (a *AdminServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Address, err)
	}

	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	a.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	zap.S().Named("admin").Infow("admin api listening", "address", ln.Addr().String(), "mode", a.cfg.Mode)

	return a.srv.Serve(ln)
}

// Addr returns the bound address, or nil before Start.
func (a *AdminServer) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Stop waits for in-flight requests, up to ctx.
func (a *AdminServer) Stop(ctx context.Context) error {
	if err := a.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
