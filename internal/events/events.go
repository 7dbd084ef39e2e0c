package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectRequests = "requests"
	SubjectFailures = "failures"
)

// Publisher delivers events to subscribers outside the process.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// NatsPublisher publishes JSON encoded events on core NATS subjects
// "<prefix>.<subject>".
type NatsPublisher struct {
	conn   *nats.Conn
	prefix string
	log    *zap.SugaredLogger
}

func NewNatsPublisher(url, prefix string) (*NatsPublisher, error) {
	log := zap.S().Named("events")

	conn, err := nats.Connect(url,
		nats.Name("campi"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infow("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NatsPublisher{conn: conn, prefix: prefix, log: log}, nil
}

func (p *NatsPublisher) Publish(_ context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.conn.Publish(Subject(p.prefix, subject), data)
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}

// Subject joins prefix and subject into a NATS subject.
func Subject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}
