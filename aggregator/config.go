package aggregator

import (
	"fmt"
	"strings"

	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/statsd"
)

// Config contains metrics aggregation and path rendering settings
type Config struct {
	// Percentile used for the upper_<pct> timer statistic (1..100)
	Percentile int `toml:"percentile"`
	// Prepend the client name to every metric path
	AddClientPrefix bool `toml:"add_client_prefix"`
	// Path segment after the client name (empty to skip)
	PathPrefix string `toml:"path_prefix"`
	// Use "guages" instead of "gauges" as the gauge path label
	LegacyGaugesLabel bool `toml:"legacy_gauges_label"`
}

// NewConfig builds a new config with defaults
func NewConfig() Config {
	return Config{
		Percentile:      90,
		AddClientPrefix: true,
		PathPrefix:      "statsd",
	}
}

// Validate checks that the config values are within the allowed ranges
func (c Config) Validate() error {
	if c.Percentile <= 0 || c.Percentile > 100 {
		return errorx.IllegalArgument.New("percentile must be within 1..100, got %d", c.Percentile)
	}

	if c.PathPrefix != "" && strings.Trim(c.PathPrefix, ".") == "" {
		return errorx.IllegalArgument.New("path prefix must not consist of dots only: %q", c.PathPrefix)
	}

	if c.PathPrefix != "" && !statsd.ValidPath(c.PathPrefix) {
		return errorx.IllegalArgument.New("path prefix contains characters outside of [A-Za-z0-9._-]: %q", c.PathPrefix)
	}

	return nil
}

// ValidateClientName checks that the client name can be used as a path prefix
func (c Config) ValidateClientName(name string) error {
	if c.AddClientPrefix && !statsd.ValidPath(name) {
		return errorx.IllegalArgument.New("client name contains characters outside of [A-Za-z0-9._-]: %q", name)
	}

	return nil
}

// GaugesLabel returns the path label used for gauges
func (c Config) GaugesLabel() string {
	if c.LegacyGaugesLabel {
		return "guages"
	}

	return "gauges"
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# Percentile for timers upper_<pct> value\n")
	result.WriteString(fmt.Sprintf("percentile = %d\n", c.Percentile))

	result.WriteString("# Prepend client name to metric paths\n")
	result.WriteString(fmt.Sprintf("add_client_prefix = %t\n", c.AddClientPrefix))

	result.WriteString("# Metric paths prefix\n")
	result.WriteString(fmt.Sprintf("path_prefix = \"%s\"\n", c.PathPrefix))

	result.WriteString("# Use the legacy \"guages\" label for gauges\n")
	if c.LegacyGaugesLabel {
		result.WriteString("legacy_gauges_label = true\n")
	} else {
		result.WriteString("# legacy_gauges_label = true\n")
	}

	result.WriteString("\n")

	return result.String()
}
