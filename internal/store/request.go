package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/campi/campi/internal/models"
	srvErrors "github.com/campi/campi/pkg/errors"
)

const requestsTable = "requests"

var requestColumns = []string{
	"id", "remote_addr", "request_line", "path", "status", "bytes", "duration_ms", "error_message", "created_at",
}

// RequestStore persists the access log.
type RequestStore struct {
	db QueryInterceptor
}

func NewRequestStore(db QueryInterceptor) *RequestStore {
	return &RequestStore{db: db}
}

func (s *RequestStore) Create(ctx context.Context, r models.Request) error {
	var errMsg any
	if r.Error != "" {
		errMsg = r.Error
	}

	query, args, err := sq.Insert(requestsTable).
		Columns(requestColumns...).
		Values(r.ID.String(), r.RemoteAddr, r.RequestLine, r.Path, r.Status, r.Bytes, r.DurationMs, errMsg, r.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *RequestStore) Get(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	query, args, err := sq.Select(requestColumns...).From(requestsTable).Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return nil, err
	}

	r, err := scanRequest(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRequestNotFoundError(id.String())
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns entries newest first.
func (s *RequestStore) List(ctx context.Context, opts ...ListOption) ([]models.Request, error) {
	builder := sq.Select(requestColumns...).From(requestsTable).OrderBy("created_at DESC", "id")

	for _, opt := range opts {
		builder = opt(builder)
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

	var requests []models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}

	return requests, rows.Err()
}

func (s *RequestStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(requestsTable)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		r      models.Request
		id     string
		errMsg sql.NullString
	)
	if err := row.Scan(&id, &r.RemoteAddr, &r.RequestLine, &r.Path, &r.Status, &r.Bytes, &r.DurationMs, &errMsg, &r.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	r.ID = parsed
	r.Error = errMsg.String

	return &r, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByStatus(statuses ...int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		return b.Where(sq.Eq{"status": statuses})
	}
}

func ByPath(paths ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(paths) == 0 {
			return b
		}
		return b.Where(sq.Eq{"path": paths})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}
