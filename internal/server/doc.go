// Package server provides the two listeners of campi: the camera server,
// which answers one request per TCP connection on the worker pool, and the
// admin API.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                    Server (0.0.0.0:49000)                     │
//	├───────────────────────────────────────────────────────────────┤
//	│  accept loop (one goroutine)                                  │
//	│     │ conn                                                    │
//	│     ▼                                                         │
//	│  pool.Execute(task) ──rejected──► conn.Close()                │
//	│     │                                                         │
//	│     ▼ (on a worker)                                           │
//	│  deadlines → responder.ServeConn → access log → conn.Close()  │
//	└───────────────────────────────────────────────────────────────┘
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                 AdminServer (127.0.0.1:8000)                  │
//	├───────────────────────────────────────────────────────────────┤
//	│  Middleware: Logger, Recovery (ginzap)                        │
//	│  /health, /metrics                                            │
//	│  /api/v1 (+ Authenticator when auth is enabled)               │
//	│     handlers registered via callback                          │
//	└───────────────────────────────────────────────────────────────┘
//
// # Accept Loop
//
// The loop never does connection work itself; the only thing it does per
// connection is submit a task. Accept errors other than a closed listener
// are retried with exponential backoff (5ms up to 1s), reset after every
// successful accept.
//
// # Server Lifecycle
//
//	srv := server.New(cfg.Server, p, resp, accessLog)
//
//	go func() {
//	    if err := srv.Start(ctx); err != nil {
//	        // bind failed
//	    }
//	}()
//
//	<-shutdownCh
//	srv.Stop(ctx)
//
// Stop closes the listener first, so no new task is submitted, then shuts
// the pool down. Tasks already queued are still served; Stop returns once
// every worker has joined, or with ctx.Err() if ctx ends first.
//
// # Admin Modes
//
// Development Mode (Mode = "dev"): gin runs in debug mode.
// Production Mode (Mode = "prod"): gin runs in release mode.
//
// # Authentication
//
// With auth enabled, /api/v1 requires "Authorization: Bearer <jwt>", HS256
// signed with the configured secret. /health and /metrics stay open.
package server
