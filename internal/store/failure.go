package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/campi/campi/internal/models"
)

const failuresTable = "task_failures"

// FailureStore persists contained task failures.
type FailureStore struct {
	db QueryInterceptor
}

func NewFailureStore(db QueryInterceptor) *FailureStore {
	return &FailureStore{db: db}
}

func (s *FailureStore) Create(ctx context.Context, f models.TaskFailure) error {
	query, args, err := sq.Insert(failuresTable).
		Columns("id", "worker_id", "message", "stack", "created_at").
		Values(f.ID.String(), f.WorkerID, f.Message, f.Stack, f.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// List returns the most recent failures first.
func (s *FailureStore) List(ctx context.Context, limit uint64) ([]models.TaskFailure, error) {
	builder := sq.Select("id", "worker_id", "message", "stack", "created_at").
		From(failuresTable).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []models.TaskFailure
	for rows.Next() {
		var (
			f     models.TaskFailure
			id    string
			stack sql.NullString
		)
		if err := rows.Scan(&id, &f.WorkerID, &f.Message, &stack, &f.CreatedAt); err != nil {
			return nil, err
		}
		if f.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		f.Stack = stack.String
		failures = append(failures, f)
	}

	return failures, rows.Err()
}
