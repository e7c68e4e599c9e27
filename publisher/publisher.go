// Package publisher contains sinks result envelopes are delivered to
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joomcode/errorx"

	nconfig "github.com/statsbridge/statsbridge/nats"
	rconfig "github.com/statsbridge/statsbridge/redis"
)

// Publisher delivers encoded payloads to an external system
type Publisher interface {
	Start(ctx context.Context) error
	Publish(ctx context.Context, payload []byte) error
	Shutdown(ctx context.Context) error
	ID() string
}

// Config contains publisher selection and publisher-specific settings
// not covered by the connection configs
type Config struct {
	Adapter string     `toml:"adapter"`
	HTTP    HTTPConfig `toml:"http"`
}

// NewConfig builds a new config with defaults
func NewConfig() Config {
	return Config{
		Adapter: "log",
		HTTP:    NewHTTPConfig(),
	}
}

// Adapters returns the list of supported adapter names
func Adapters() []string {
	return []string{"log", "nats", "redis", "http"}
}

// Validate checks that the adapter is known
func (c Config) Validate() error {
	for _, name := range Adapters() {
		if name == c.Adapter {
			return nil
		}
	}

	return errorx.IllegalArgument.New("unknown publisher: %s (supported: %s)", c.Adapter, strings.Join(Adapters(), ", "))
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("# Publisher adapter (%s)\n", strings.Join(Adapters(), ", ")))
	result.WriteString(fmt.Sprintf("adapter = \"%s\"\n", c.Adapter))

	result.WriteString(c.HTTP.ToToml())

	return result.String()
}

// FromConfig creates a publisher by the configured adapter name.
// Content type is used by transports which carry it (http).
func FromConfig(c *Config, nc *nconfig.NATSConfig, rc *rconfig.RedisConfig, contentType string, l *slog.Logger) (Publisher, error) {
	switch c.Adapter {
	case "log":
		return NewLogPublisher(l), nil
	case "nats":
		return NewNATSPublisher(nc, l), nil
	case "redis":
		if err := rc.Validate(); err != nil {
			return nil, err
		}

		return NewRedisPublisher(rc, l), nil
	case "http":
		if err := c.HTTP.Validate(); err != nil {
			return nil, err
		}

		return NewHTTPPublisher(&c.HTTP, contentType, l), nil
	}

	return nil, c.Validate()
}
