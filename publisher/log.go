package publisher

import (
	"context"
	"log/slog"
)

// LogPublisher writes payloads to the log; handy for local runs
type LogPublisher struct {
	log *slog.Logger
}

var _ Publisher = (*LogPublisher)(nil)

func NewLogPublisher(l *slog.Logger) *LogPublisher {
	return &LogPublisher{log: l.With("context", "publisher").With("publisher", "log")}
}

func (LogPublisher) ID() string {
	return "log"
}

func (p *LogPublisher) Start(ctx context.Context) error {
	p.log.Info("results are printed to the log")
	return nil
}

func (p *LogPublisher) Publish(ctx context.Context, payload []byte) error {
	p.log.Info("publish result", "payload", string(payload))
	return nil
}

func (LogPublisher) Shutdown(ctx context.Context) error {
	return nil
}
