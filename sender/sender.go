// Package sender batches buffered metric lines into result envelopes and publishes them
package sender

import (
	"context"
	"log/slog"
	"sync"

	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/encoders"
	"github.com/statsbridge/statsbridge/metrics"
	"github.com/statsbridge/statsbridge/publisher"
)

const (
	metricsPublish         = "publish_total"
	metricsPublishFailures = "publish_failures_total"
)

// Sender drains the buffer and publishes its content as a single envelope
type Sender struct {
	config    Config
	client    string
	buffer    *Buffer
	publisher publisher.Publisher
	encoder   encoders.Encoder

	// serializes send cycles
	mu sync.Mutex

	metrics metrics.Instrumenter
	log     *slog.Logger
}

// NewSender builds a sender; it fails on unknown encodings
func NewSender(c Config, client string, b *Buffer, p publisher.Publisher, m metrics.Instrumenter, l *slog.Logger) (*Sender, error) {
	encoder, err := encoders.FromName(c.Encoding)

	if err != nil {
		return nil, err
	}

	s := &Sender{
		config:    c,
		client:    client,
		buffer:    b,
		publisher: p,
		encoder:   encoder,
		metrics:   m,
		log:       l.With("context", "sender"),
	}

	s.metrics.RegisterCounter(metricsPublish, "The total number of published envelopes")
	s.metrics.RegisterCounter(metricsPublishFailures, "The total number of failed publish attempts")

	return s, nil
}

// Send publishes all buffered lines. Nothing is published if the buffer is empty.
// On failure lines are either returned to the buffer or dropped, depending on RetainOnFailure.
func (s *Sender) Send(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.buffer.Drain()

	if len(lines) == 0 {
		return nil
	}

	err := s.publish(ctx, lines)

	if err == nil {
		s.metrics.CounterIncrement(metricsPublish)
		s.log.Debug("published metrics", "lines", len(lines), "publisher", s.publisher.ID())
		return nil
	}

	s.metrics.CounterIncrement(metricsPublishFailures)

	if s.config.RetainOnFailure {
		s.buffer.Prepend(lines)
		s.log.Error("failed to publish metrics, lines are kept for the next attempt", "lines", len(lines), "error", err)
	} else {
		s.buffer.Drop(len(lines))
		s.log.Error("failed to publish metrics, lines are dropped", "lines", len(lines), "error", err)
	}

	return err
}

func (s *Sender) publish(ctx context.Context, lines []string) error {
	payload, err := s.encoder.Encode(NewResult(s.client, lines))

	if err != nil {
		return errorx.Decorate(err, "failed to encode result")
	}

	if err := s.publisher.Publish(ctx, payload); err != nil {
		return errorx.Decorate(err, "failed to publish via %s", s.publisher.ID())
	}

	return nil
}
