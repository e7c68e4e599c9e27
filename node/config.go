package node

import (
	"fmt"
	"strings"

	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/utils"
)

// Config contains pipeline schedule settings
type Config struct {
	// How often aggregated metrics are flushed to the outgoing buffer (seconds)
	FlushInterval int `toml:"flush_interval"`
	// How often the outgoing buffer is published (seconds)
	SendInterval int `toml:"send_interval"`
	// Client name used in result envelopes and as a metric path prefix
	ClientName string `toml:"client_name"`
}

// NewConfig builds a new config
func NewConfig() Config {
	return Config{
		FlushInterval: 10,
		SendInterval:  30,
		ClientName:    utils.Hostname("statsbridge"),
	}
}

// Validate checks schedule intervals and the client name
func (c Config) Validate() error {
	if c.FlushInterval <= 0 {
		return errorx.IllegalArgument.New("flush interval must be positive, got %d", c.FlushInterval)
	}

	if c.SendInterval <= 0 {
		return errorx.IllegalArgument.New("send interval must be positive, got %d", c.SendInterval)
	}

	if c.ClientName == "" {
		return errorx.IllegalArgument.New("client name must not be empty")
	}

	return nil
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# How often to flush aggregated metrics (seconds)\n")
	result.WriteString(fmt.Sprintf("flush_interval = %d\n", c.FlushInterval))

	result.WriteString("# How often to publish flushed metrics (seconds)\n")
	result.WriteString(fmt.Sprintf("send_interval = %d\n", c.SendInterval))

	result.WriteString("# Client name (defaults to the short hostname)\n")
	result.WriteString(fmt.Sprintf("client_name = \"%s\"\n", c.ClientName))

	result.WriteString("\n")

	return result.String()
}
