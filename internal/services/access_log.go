package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/campi/campi/internal/events"
	"github.com/campi/campi/internal/models"
	"github.com/campi/campi/internal/store"
	"github.com/campi/campi/pkg/pool"
)

const exportSheet = "Sheet1"

// AccessLog records what every connection task did and every task that failed.
type AccessLog struct {
	store     *store.Store
	publisher events.Publisher
}

func NewAccessLogService(st *store.Store, publisher events.Publisher) *AccessLog {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AccessLog{store: st, publisher: publisher}
}

// Record stores one served request. Errors are logged, never returned: a
// broken access log must not affect the connection.
func (a *AccessLog) Record(ctx context.Context, r models.Request) {
	log := zap.S().Named("access_log")

	if err := a.store.Requests().Create(ctx, r); err != nil {
		log.Errorw("failed to save request", "id", r.ID, "error", err)
	}
	if err := a.publisher.Publish(ctx, events.SubjectRequests, r); err != nil {
		log.Warnw("failed to publish request event", "id", r.ID, "error", err)
	}
}

// RecordFailure stores a contained task failure.
func (a *AccessLog) RecordFailure(ctx context.Context, perr *pool.TaskPanicError) {
	log := zap.S().Named("access_log")

	f := models.TaskFailure{
		ID:        uuid.New(),
		WorkerID:  perr.WorkerID,
		Message:   perr.Error(),
		Stack:     string(perr.Stack),
		CreatedAt: time.Now().UTC(),
	}

	log.Errorw("connection task failed", "worker", f.WorkerID, "error", f.Message)

	if err := a.store.Failures().Create(ctx, f); err != nil {
		log.Errorw("failed to save task failure", "error", err)
	}
	if err := a.publisher.Publish(ctx, events.SubjectFailures, f); err != nil {
		log.Warnw("failed to publish failure event", "error", err)
	}
}

type RequestListParams struct {
	Statuses []int
	Paths    []string
	Limit    uint64
	Offset   uint64
}

type RequestListResult struct {
	Requests []models.Request
	Total    int
}

func (a *AccessLog) List(ctx context.Context, params RequestListParams) (*RequestListResult, error) {
	filters := []store.ListOption{
		store.ByStatus(params.Statuses...),
		store.ByPath(params.Paths...),
	}

	opts := append([]store.ListOption{}, filters...)
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	requests, err := a.store.Requests().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	total, err := a.store.Requests().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	return &RequestListResult{Requests: requests, Total: total}, nil
}

func (a *AccessLog) Failures(ctx context.Context, limit uint64) ([]models.TaskFailure, error) {
	return a.store.Failures().List(ctx, limit)
}

// Export writes the whole access log as an xlsx workbook.
func (a *AccessLog) Export(ctx context.Context, w io.Writer) error {
	requests, err := a.store.Requests().List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	header := []any{"ID", "Time", "Remote address", "Request line", "Path", "Status", "Bytes", "Duration (ms)", "Error"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range requests {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.ID.String(),
			r.CreatedAt.Format(time.RFC3339),
			r.RemoteAddr,
			r.RequestLine,
			r.Path,
			r.Status,
			r.Bytes,
			r.DurationMs,
			r.Error,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
