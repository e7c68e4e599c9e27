package nats

import (
	"fmt"
	"log/slog"
	"strings"

	natsgo "github.com/nats-io/nats.go"
)

// NATSConfig contains NATS connection settings for the nats publisher
type NATSConfig struct {
	Servers              string `toml:"servers"`
	Subject              string `toml:"subject"`
	DontRandomizeServers bool   `toml:"dont_randomize_servers"`
	MaxReconnectAttempts int    `toml:"max_reconnect_attempts"`
}

func NewNATSConfig() NATSConfig {
	return NATSConfig{Servers: natsgo.DefaultURL, Subject: "results", MaxReconnectAttempts: 5}
}

// ToConnectOptions builds connection options logging connection state changes
func (c NATSConfig) ToConnectOptions(name string, l *slog.Logger) []natsgo.Option {
	opts := []natsgo.Option{
		natsgo.Name(name),
		natsgo.MaxReconnects(c.MaxReconnectAttempts),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				l.Warn("connection failed", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			l.Info("connection restored", "url", nc.ConnectedUrl())
		}),
	}

	if c.DontRandomizeServers {
		opts = append(opts, natsgo.DontRandomize())
	}

	return opts
}

func (c NATSConfig) ToToml() string {
	var result strings.Builder

	result.WriteString("# NATS server URLs (comma-separated)\n")
	result.WriteString(fmt.Sprintf("servers = \"%s\"\n", c.Servers))

	result.WriteString("# Subject to publish results to\n")
	result.WriteString(fmt.Sprintf("subject = \"%s\"\n", c.Subject))

	result.WriteString("# Don't randomize servers during connection\n")
	if c.DontRandomizeServers {
		result.WriteString("dont_randomize_servers = true\n")
	} else {
		result.WriteString("# dont_randomize_servers = true\n")
	}

	result.WriteString("# Max number of reconnect attempts\n")
	result.WriteString(fmt.Sprintf("max_reconnect_attempts = %d\n", c.MaxReconnectAttempts))

	result.WriteString("\n")

	return result.String()
}
