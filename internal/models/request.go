package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/campi/campi/internal/util"
)

// Response describes what a connection task wrote back to its client.
type Response struct {
	RequestLine string
	Path        string
	Status      int
	Bytes       int
	Duration    time.Duration
	Err         error
}

// Request is one access log entry.
type Request struct {
	ID          uuid.UUID `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	RequestLine string    `json:"request_line"`
	Path        string    `json:"path"`
	Status      int       `json:"status"`
	Bytes       int       `json:"bytes"`
	DurationMs  float64   `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewRequest(id uuid.UUID, remoteAddr string, resp Response) Request {
	r := Request{
		ID:          id,
		RemoteAddr:  remoteAddr,
		RequestLine: resp.RequestLine,
		Path:        resp.Path,
		Status:      resp.Status,
		Bytes:       resp.Bytes,
		DurationMs:  util.Milliseconds(resp.Duration),
		CreatedAt:   time.Now().UTC(),
	}
	if resp.Err != nil {
		r.Error = resp.Err.Error()
	}
	return r
}

// TaskFailure is a connection task that terminated abnormally.
type TaskFailure struct {
	ID        uuid.UUID `json:"id"`
	WorkerID  int       `json:"worker_id"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
