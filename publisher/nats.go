package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joomcode/errorx"
	natsgo "github.com/nats-io/nats.go"

	nconfig "github.com/statsbridge/statsbridge/nats"
)

const natsFlushTimeout = 5 * time.Second

// NATSPublisher publishes payloads to a NATS subject
type NATSPublisher struct {
	config *nconfig.NATSConfig
	conn   *natsgo.Conn

	log *slog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

func NewNATSPublisher(c *nconfig.NATSConfig, l *slog.Logger) *NATSPublisher {
	return &NATSPublisher{
		config: c,
		log:    l.With("context", "publisher").With("publisher", "nats"),
	}
}

func (NATSPublisher) ID() string {
	return "nats"
}

func (p *NATSPublisher) Start(ctx context.Context) error {
	nc, err := natsgo.Connect(p.config.Servers, p.config.ToConnectOptions("statsbridge", p.log)...)

	if err != nil {
		return errorx.Decorate(err, "failed to connect to NATS at %s", p.config.Servers)
	}

	p.conn = nc

	p.log.Info(fmt.Sprintf("Publishing results to NATS: %s (subject: %s)", p.config.Servers, p.config.Subject))

	return nil
}

// Publish sends the payload and waits for the server to acknowledge the flush,
// so connection failures are reported to the caller
func (p *NATSPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.conn == nil {
		return errorx.IllegalState.New("NATS publisher is not started")
	}

	if err := p.conn.Publish(p.config.Subject, payload); err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); ok {
		return p.conn.FlushWithContext(ctx)
	}

	return p.conn.FlushTimeout(natsFlushTimeout)
}

func (p *NATSPublisher) Shutdown(ctx context.Context) error {
	if p.conn != nil {
		p.conn.Close()
	}

	return nil
}
