package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joomcode/errorx"
	"github.com/redis/rueidis"

	rconfig "github.com/statsbridge/statsbridge/redis"
)

// RedisPublisher publishes payloads to a Redis channel or appends them to a list
type RedisPublisher struct {
	config *rconfig.RedisConfig
	client rueidis.Client

	log *slog.Logger
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(c *rconfig.RedisConfig, l *slog.Logger) *RedisPublisher {
	return &RedisPublisher{
		config: c,
		log:    l.With("context", "publisher").With("publisher", "redis"),
	}
}

func (RedisPublisher) ID() string {
	return "redis"
}

func (p *RedisPublisher) Start(ctx context.Context) error {
	options, err := p.config.ToRueidisOptions()

	if err != nil {
		return errorx.Decorate(err, "failed to parse Redis URL")
	}

	client, err := rueidis.NewClient(*options)

	if err != nil {
		return errorx.Decorate(err, "failed to connect to Redis")
	}

	p.client = client

	p.log.Info(fmt.Sprintf("Publishing results to Redis: %s (%s: %s)", p.config.URL, p.config.Mode, p.config.Channel))

	return nil
}

func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.client == nil {
		return errorx.IllegalState.New("Redis publisher is not started")
	}

	var cmd rueidis.Completed

	if p.config.Mode == rconfig.ModeList {
		cmd = p.client.B().Rpush().Key(p.config.Channel).Element(rueidis.BinaryString(payload)).Build()
	} else {
		cmd = p.client.B().Publish().Channel(p.config.Channel).Message(rueidis.BinaryString(payload)).Build()
	}

	return p.client.Do(ctx, cmd).Error()
}

func (p *RedisPublisher) Shutdown(ctx context.Context) error {
	if p.client != nil {
		p.client.Close()
	}

	return nil
}
