package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/aggregator"
	"github.com/statsbridge/statsbridge/encoders"
	"github.com/statsbridge/statsbridge/enats"
	"github.com/statsbridge/statsbridge/listener"
	"github.com/statsbridge/statsbridge/logger"
	"github.com/statsbridge/statsbridge/metrics"
	nconfig "github.com/statsbridge/statsbridge/nats"
	"github.com/statsbridge/statsbridge/node"
	"github.com/statsbridge/statsbridge/publisher"
	rconfig "github.com/statsbridge/statsbridge/redis"
	"github.com/statsbridge/statsbridge/sender"
	"github.com/statsbridge/statsbridge/server"
)

// Config contains main application configuration
type Config struct {
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	UserPresets     []string `toml:"presets"`

	Listener     listener.Config     `toml:"listener"`
	Pipeline     node.Config         `toml:"pipeline"`
	Aggregator   aggregator.Config   `toml:"aggregator"`
	Sender       sender.Config       `toml:"sender"`
	Publisher    publisher.Config    `toml:"publisher"`
	NATS         nconfig.NATSConfig  `toml:"nats"`
	Redis        rconfig.RedisConfig `toml:"redis"`
	EmbeddedNats enats.Config        `toml:"embedded_nats"`
	Log          logger.Config       `toml:"logging"`
	Metrics      metrics.Config      `toml:"metrics"`
	Server       server.Config       `toml:"server"`

	// Path of the loaded config file (if any)
	ConfigFilePath string `toml:"-"`
}

// NewConfig returns a new config with defaults
func NewConfig() Config {
	return Config{
		ShutdownTimeout: 30,
		Listener:        listener.NewConfig(),
		Pipeline:        node.NewConfig(),
		Aggregator:      aggregator.NewConfig(),
		Sender:          sender.NewConfig(),
		Publisher:       publisher.NewConfig(),
		NATS:            nconfig.NewNATSConfig(),
		Redis:           rconfig.NewRedisConfig(),
		EmbeddedNats:    enats.NewConfig(),
		Log:             logger.NewConfig(),
		Metrics:         metrics.NewConfig(),
		Server:          server.NewConfig(),
	}
}

// LoadFromFile decodes the TOML file at path on top of the current values.
// Unknown keys are reported as an error to catch typos early.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return errorx.Decorate(err, "failed to read config file")
	}

	md, err := toml.Decode(string(data), c)

	if err != nil {
		return errorx.Decorate(err, "failed to parse config file %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))

		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return errorx.IllegalArgument.New("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	c.ConfigFilePath = path

	return nil
}

// Validate checks that all the sections are valid
func (c *Config) Validate() error {
	if c.ShutdownTimeout <= 0 {
		return errorx.IllegalArgument.New("shutdown timeout must be positive, got %d", c.ShutdownTimeout)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return err
	}

	if err := c.Aggregator.Validate(); err != nil {
		return err
	}

	if err := c.Aggregator.ValidateClientName(c.Pipeline.ClientName); err != nil {
		return err
	}

	if _, err := encoders.FromName(c.Sender.Encoding); err != nil {
		return err
	}

	return c.Publisher.Validate()
}

// ToToml renders the effective configuration as a TOML document
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# statsbridge configuration\n\n")

	result.WriteString("# Graceful shutdown timeout (seconds)\n")
	result.WriteString(fmt.Sprintf("shutdown_timeout = %d\n", c.ShutdownTimeout))

	result.WriteString("# Configuration presets (fly)\n")
	if len(c.UserPresets) > 0 {
		result.WriteString(fmt.Sprintf("presets = [\"%s\"]\n", strings.Join(c.UserPresets, "\", \"")))
	} else {
		result.WriteString("# presets = [\"fly\"]\n")
	}

	result.WriteString("\n[listener]\n")
	result.WriteString(c.Listener.ToToml())

	result.WriteString("[pipeline]\n")
	result.WriteString(c.Pipeline.ToToml())

	result.WriteString("[aggregator]\n")
	result.WriteString(c.Aggregator.ToToml())

	result.WriteString("[sender]\n")
	result.WriteString(c.Sender.ToToml())

	result.WriteString("[publisher]\n")
	result.WriteString(c.Publisher.ToToml())

	result.WriteString("[nats]\n")
	result.WriteString(c.NATS.ToToml())

	result.WriteString("[redis]\n")
	result.WriteString(c.Redis.ToToml())

	result.WriteString("[embedded_nats]\n")
	result.WriteString(c.EmbeddedNats.ToToml())

	result.WriteString("[logging]\n")
	result.WriteString(c.Log.ToToml())

	result.WriteString("[metrics]\n")
	result.WriteString(c.Metrics.ToToml())

	result.WriteString("[server]\n")
	result.WriteString(c.Server.ToToml())

	return result.String()
}
