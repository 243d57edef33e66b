// Package events publishes catalog pass notifications to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

const (
	SubjectPassCompleted = "catalog.pass.completed"
	streamName           = "CATALOG"
)

// Publisher publishes catalog events. Without a NATS connection it only logs.
type Publisher struct {
	nc  *nats.Conn
	js  nats.JetStreamContext
	log *zap.Logger
}

// New connects to NATS and ensures the CATALOG stream exists.
// If natsURL is empty, returns a no-op publisher (stub).
func New(natsURL string, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if natsURL == "" {
		log.Warn("NATS_URL not set, catalog events will not be published (stub mode)")
		return &Publisher{log: log}, nil
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("mytv-catalog"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"catalog.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		log.Warn("failed to create NATS stream (may already exist)", zap.Error(err))
	}

	log.Info("NATS publisher initialised", zap.String("stream", streamName))
	return &Publisher{nc: nc, js: js, log: log}, nil
}

// PassEvent is the payload published when an aggregation pass completes.
type PassEvent struct {
	EventID    string                 `json:"event_id"`
	EventType  string                 `json:"event_type"`
	PassID     string                 `json:"pass_id"`
	StartedAt  time.Time              `json:"started_at"`
	DurationMS int64                  `json:"duration_ms"`
	GenreCount int                    `json:"genre_count"`
	Total      int                    `json:"total"`
	Sections   []domain.SectionReport `json:"sections"`
}

// NewPassEvent builds the event for pass. The event ID is the pass ID, so
// JetStream deduplicates redeliveries of the same pass.
func NewPassEvent(pass domain.Pass) PassEvent {
	sections := pass.Sections
	if sections == nil {
		sections = []domain.SectionReport{}
	}
	return PassEvent{
		EventID:    pass.ID,
		EventType:  SubjectPassCompleted,
		PassID:     pass.ID,
		StartedAt:  pass.StartedAt,
		DurationMS: pass.Duration().Milliseconds(),
		GenreCount: pass.GenreCount,
		Total:      pass.Total,
		Sections:   sections,
	}
}

// Stub reports whether the publisher drops events.
func (p *Publisher) Stub() bool {
	return p.js == nil
}

// PassCompleted publishes a completed pass.
func (p *Publisher) PassCompleted(ctx context.Context, pass domain.Pass) error {
	evt := NewPassEvent(pass)
	if p.js == nil {
		p.log.Debug("NATS stub: skipping publish", zap.String("subject", SubjectPassCompleted), zap.String("event_id", evt.EventID))
		return nil
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	ack, err := p.js.Publish(SubjectPassCompleted, data, nats.Context(ctx), nats.MsgId(evt.EventID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", SubjectPassCompleted, err)
	}

	p.log.Debug("NATS event published",
		zap.String("subject", SubjectPassCompleted),
		zap.String("event_id", evt.EventID),
		zap.Uint64("seq", ack.Sequence),
	)
	return nil
}

// Close drains the connection, if any.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("NATS drain failed", zap.Error(err))
	}
}
