package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/campi/campi/internal/capture"
	"github.com/campi/campi/internal/config"
	"github.com/campi/campi/internal/events"
	"github.com/campi/campi/internal/handlers"
	"github.com/campi/campi/internal/metrics"
	"github.com/campi/campi/internal/responder"
	"github.com/campi/campi/internal/server"
	"github.com/campi/campi/internal/services"
	"github.com/campi/campi/internal/store"
	"github.com/campi/campi/internal/store/migrations"
	"github.com/campi/campi/pkg/pool"
)

const shutdownTimeout = 30 * time.Second

func NewRunCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Start the camera server and the admin API",
		Args:    cobra.NoArgs,
		PreRunE: preRunE(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := newLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			undo := zap.ReplaceGlobals(logger)
			defer undo()

			printBanner(cfg)
			zap.S().Named("main").Infow("configuration", "config", cfg.DebugMap())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}

	RegisterRunFlags(cmd.Flags(), cfg)

	return cmd
}

func RegisterRunFlags(flags *pflag.FlagSet, cfg *config.Configuration) {
	flags.StringVar(&cfg.Server.Address, "server-address", cfg.Server.Address, "address the camera server listens on")
	flags.StringVar(&cfg.Server.StaticsFolder, "server-statics-folder", cfg.Server.StaticsFolder, "folder overriding index.html and 404.html")
	flags.DurationVar(&cfg.Server.ReadTimeout, "server-read-timeout", cfg.Server.ReadTimeout, "deadline for reading the request line")
	flags.DurationVar(&cfg.Server.WriteTimeout, "server-write-timeout", cfg.Server.WriteTimeout, "deadline for writing the response")

	flags.IntVar(&cfg.Pool.NumWorkers, "pool-workers", cfg.Pool.NumWorkers, "number of workers serving connections")

	flags.StringVar(&cfg.Capture.Device, "capture-device", cfg.Capture.Device, "camera: pattern or command")
	flags.StringVar(&cfg.Capture.Command, "capture-command", cfg.Capture.Command, "still capture binary for the command device")
	flags.IntVar(&cfg.Capture.Width, "capture-width", cfg.Capture.Width, "frame width")
	flags.IntVar(&cfg.Capture.Height, "capture-height", cfg.Capture.Height, "frame height")
	flags.DurationVar(&cfg.Capture.Timeout, "capture-timeout", cfg.Capture.Timeout, "deadline for one capture attempt")
	flags.UintVar(&cfg.Capture.Retries, "capture-retries", cfg.Capture.Retries, "retries after a failed capture attempt")

	flags.BoolVar(&cfg.Admin.Enabled, "admin-enabled", cfg.Admin.Enabled, "serve the admin api")
	flags.StringVar(&cfg.Admin.Mode, "admin-mode", cfg.Admin.Mode, "admin api mode: dev or prod")
	flags.StringVar(&cfg.Admin.Address, "admin-address", cfg.Admin.Address, "address the admin api listens on")

	flags.BoolVar(&cfg.Auth.Enabled, "auth-enabled", cfg.Auth.Enabled, "require a jwt on /api/v1")
	flags.StringVar(&cfg.Auth.JWTSecret, "auth-jwt-secret", cfg.Auth.JWTSecret, "HS256 secret used to verify tokens")

	flags.StringVar(&cfg.Store.DataFolder, "store-data-folder", cfg.Store.DataFolder, "folder holding campi.duckdb; empty keeps the access log in memory")

	flags.StringVar(&cfg.Events.NatsURL, "events-nats-url", cfg.Events.NatsURL, "nats server receiving request and failure events")
	flags.StringVar(&cfg.Events.SubjectPrefix, "events-subject-prefix", cfg.Events.SubjectPrefix, "prefix of the event subjects")

	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
}

func run(ctx context.Context, cfg *config.Configuration) error {
	log := zap.S().Named("main")

	db, err := store.NewDBFromFolder(cfg.Store.DataFolder)
	if err != nil {
		return err
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	st := store.NewStore(db)
	defer st.Close()

	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	poolMetrics := metrics.NewPoolMetrics()
	registry, err := metrics.NewRegistry(poolMetrics)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	accessLog := services.NewAccessLogService(st, publisher)

	p, err := pool.New(cfg.Pool.NumWorkers,
		pool.WithLogger(zap.S().Named("pool")),
		pool.WithObserver(poolMetrics),
		pool.WithPanicHandler(func(perr *pool.TaskPanicError) {
			accessLog.RecordFailure(context.WithoutCancel(ctx), perr)
		}),
		pool.WithWorkerStart(func(id int) error {
			zap.S().Named("pool").Debugw("worker started", "worker", id)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	captureSrv := services.NewCaptureService(newCamera(cfg.Capture), cfg.Capture.Timeout, cfg.Capture.Retries)

	resp, err := responder.New(cfg.Server.StaticsFolder, captureSrv)
	if err != nil {
		p.Shutdown()
		return err
	}

	srv := server.New(cfg.Server, p, resp, accessLog)

	var admin *server.AdminServer
	if cfg.Admin.Enabled {
		h := handlers.New(p, accessLog)
		metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
		admin = server.NewAdminServer(cfg.Admin, cfg.Auth, metricsHandler, func(router *gin.RouterGroup) {
			h.Register(router)
		})
	}

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()
	if admin != nil {
		go func() {
			if err := admin.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case runErr = <-errCh:
		log.Errorw("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if admin != nil {
		if err := admin.Stop(shutdownCtx); err != nil {
			log.Warnw("failed to stop admin api", "error", err)
		}
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to drain worker pool: %w", err))
	}

	stats := p.Stats()
	log.Infow("campi stopped", "completed", stats.Completed, "failed", stats.Failed, "rejected", stats.Rejected)

	return runErr
}

func newPublisher(cfg config.Events) (events.Publisher, error) {
	if cfg.NatsURL == "" {
		return events.NoopPublisher{}, nil
	}
	return events.NewNatsPublisher(cfg.NatsURL, cfg.SubjectPrefix)
}

func newCamera(cfg config.Capture) capture.Camera {
	if cfg.Device == config.CaptureDeviceCommand {
		return capture.NewCommandCamera(cfg.Command, cfg.Width, cfg.Height)
	}
	return capture.NewPatternCamera(cfg.Width, cfg.Height)
}

func printBanner(cfg *config.Configuration) {
	bold := color.New(color.FgCyan, color.Bold)
	faint := color.New(color.Faint)

	bold.Println("campi " + version)
	faint.Printf("  camera server  %s (%d workers, %s camera)\n", cfg.Server.Address, cfg.Pool.NumWorkers, cfg.Capture.Device)
	if cfg.Admin.Enabled {
		faint.Printf("  admin api      %s (%s)\n", cfg.Admin.Address, cfg.Admin.Mode)
	}
}
