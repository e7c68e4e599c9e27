package metrics

import (
	"fmt"
	"strings"
)

// Config contains internal metrics configuration
type Config struct {
	Log            bool `toml:"log"`
	RotateInterval int  `toml:"rotate_interval"`
	// Print only specified metrics
	LogFilter []string     `toml:"log_filter"`
	Statsd    StatsdConfig `toml:"statsd"`
}

// NewConfig creates a Config struct with defaults
func NewConfig() Config {
	return Config{
		RotateInterval: 15,
		Statsd:         NewStatsdConfig(),
	}
}

// Enabled returns true if any writer is configured
func (c *Config) Enabled() bool {
	return c.Log || c.Statsd.Enabled()
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# Enable internal metrics logging\n")
	if c.Log {
		result.WriteString("log = true\n")
	} else {
		result.WriteString("# log = true\n")
	}

	result.WriteString("# Metrics rotation interval (seconds)\n")
	result.WriteString(fmt.Sprintf("rotate_interval = %d\n", c.RotateInterval))

	result.WriteString("# Log filter (show only selected metrics)\n")
	if len(c.LogFilter) > 0 {
		result.WriteString(fmt.Sprintf("log_filter = [ \"%s\" ]\n", strings.Join(c.LogFilter, "\", \"")))
	} else {
		result.WriteString("# log_filter = []\n")
	}

	result.WriteString("# Statsd server to report internal metrics to\n")
	if c.Statsd.Host != "" {
		result.WriteString(fmt.Sprintf("statsd.host = \"%s\"\n", c.Statsd.Host))
	} else {
		result.WriteString("# statsd.host = \"localhost:8125\"\n")
	}

	result.WriteString("# Metric names prefix\n")
	result.WriteString(fmt.Sprintf("statsd.prefix = \"%s\"\n", c.Statsd.Prefix))

	result.WriteString("# Max UDP packet size\n")
	result.WriteString(fmt.Sprintf("statsd.max_packet_size = %d\n", c.Statsd.MaxPacketSize))

	result.WriteString("# Tags format (datadog, influxdb or graphite)\n")
	result.WriteString(fmt.Sprintf("statsd.tags_format = \"%s\"\n", c.Statsd.TagFormat))

	result.WriteString("# Default tags\n")
	if len(c.Statsd.Tags) > 0 {
		for key, value := range c.Statsd.Tags {
			result.WriteString(fmt.Sprintf("statsd.tags.%s = \"%s\"\n", key, value))
		}
	} else {
		result.WriteString("# statsd.tags.key = \"value\"\n")
	}

	result.WriteString("\n")

	return result.String()
}
