// Package broadcast forwards pipeline lifecycle events to NATS JetStream so
// dashboards and other processes can follow a generation run. Delivery is
// fire-and-forget; a publish failure is logged, never propagated into the
// engine's state transitions.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Config controls the NATS publisher.
type Config struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Stream        string `yaml:"stream"`
}

// DefaultConfig returns a disabled publisher config with sane values.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "sitegen.pipeline",
		Stream:        "SITEGEN_PIPELINE",
	}
}

// Publisher forwards pipeline events for one or more projects.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// envelope is the wire shape of a forwarded event.
type envelope struct {
	ProjectID string             `json:"projectId"`
	Kind      pipeline.EventKind `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Event     any                `json:"event"`
}

// NewPublisher connects to NATS and ensures the event stream exists.
func NewPublisher(cfg Config) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	slog.Info("NATS publisher initialized",
		"url", cfg.URL, "stream", cfg.Stream, "subject_prefix", cfg.SubjectPrefix)

	return &Publisher{conn: conn, js: js, subject: cfg.SubjectPrefix}, nil
}

// Publish forwards one event. Errors are returned for logging by the caller;
// the engine never blocks on them.
func (p *Publisher) Publish(projectID string, evt pipeline.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(envelope{
		ProjectID: projectID,
		Kind:      evt.Kind(),
		Timestamp: evt.When(),
		Event:     evt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s.%s", p.subject, projectID, evt.Kind())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.Debug("Published pipeline event",
		"project", projectID, "kind", string(evt.Kind()))
	return nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
