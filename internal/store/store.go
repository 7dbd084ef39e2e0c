package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

const dbFile = "campi.duckdb"

// QueryInterceptor is the subset of *sql.DB the repositories use.
type QueryInterceptor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens a DuckDB database. ":memory:" keeps everything in memory.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping duckdb %q: %w", path, err)
	}
	return db, nil
}

// NewDBFromFolder opens campi.duckdb inside folder, or an in-memory
// database when folder is empty.
func NewDBFromFolder(folder string) (*sql.DB, error) {
	if folder == "" {
		return NewDB(":memory:")
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data folder: %w", err)
	}
	return NewDB(filepath.Join(folder, dbFile))
}

// Store provides access to all storage repositories.
type Store struct {
	db       *sql.DB
	requests *RequestStore
	failures *FailureStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		requests: NewRequestStore(db),
		failures: NewFailureStore(db),
	}
}

func (s *Store) Requests() *RequestStore {
	return s.requests
}

func (s *Store) Failures() *FailureStore {
	return s.failures
}

func (s *Store) Close() error {
	return s.db.Close()
}
