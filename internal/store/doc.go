// Package store implements the data access layer for campi.
//
// This package provides persistent storage using DuckDB for the access log
// and the log of contained task failures. Queries are built with squirrel.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├────────────────────────────────┬────────────────────────────────┤
//	│          RequestStore          │          FailureStore          │
//	│               ▼                │               ▼                │
//	│            requests            │         task_failures          │
//	└────────────────────────────────┴────────────────────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  requests          │  One row per served connection              │
//	│  task_failures     │  One row per panicking connection task      │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	db, _ := store.NewDBFromFolder(cfg.Store.DataFolder)
//	migrations.Run(ctx, db)
//	st := store.NewStore(db)
//
// An empty data folder opens an in-memory database: the access log then
// lives as long as the process.
//
// # RequestStore
//
// Methods:
//   - Create(ctx, models.Request) → error
//   - Get(ctx, id) → *models.Request (ResourceNotFoundError when missing)
//   - List(ctx, ...ListOption) → []models.Request, newest first
//   - Count(ctx, ...ListOption) → int
//
// List Options:
//
// RequestStore.List uses the functional options pattern. Each ListOption is a
// function that modifies the SQL query builder:
//
//	requests, err := st.Requests().List(ctx,
//	    store.ByStatus(404),
//	    store.ByPath("/capture"),
//	    store.WithLimit(50),
//	    store.WithOffset(100),
//	)
//
// # FailureStore
//
// Methods:
//   - Create(ctx, models.TaskFailure) → error
//   - List(ctx, limit) → []models.TaskFailure, newest first
//
// # Concurrency
//
// Every worker of the connection pool writes its own access log row. The
// *sql.DB connection pool and DuckDB's MVCC make concurrent appends safe.
package store
