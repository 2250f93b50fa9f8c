package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/transitcat/internal/core/domain"
)

// SnapshotLoaded is the payload published on <prefix>.loaded.
type SnapshotLoaded struct {
	domain.NetworkSummary
	PublishedAt time.Time `json:"published_at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	prefix string
}

// NewPublisher connects to NATS and ensures the snapshot event stream exists.
func NewPublisher(url, prefix string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamName(prefix),
		Subjects:  []string{LoadedSubject(prefix)},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		MaxMsgs:   1000,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, prefix: prefix}, nil
}

// PublishSnapshotLoaded announces a freshly built snapshot.
func (p *Publisher) PublishSnapshotLoaded(ctx context.Context, summary domain.NetworkSummary) error {
	data, err := json.Marshal(SnapshotLoaded{NetworkSummary: summary, PublishedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(LoadedSubject(p.prefix), data,
		nats.Context(ctx),
		nats.MsgId(summary.SnapshotID),
	)
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for request-reply subscriptions.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("transitcat"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
