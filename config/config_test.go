package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, 30, config.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1", config.Listener.Host)
	assert.Equal(t, 8125, config.Listener.Port)
	assert.Equal(t, 10, config.Pipeline.FlushInterval)
	assert.Equal(t, 30, config.Pipeline.SendInterval)
	assert.Equal(t, 90, config.Aggregator.Percentile)
	assert.True(t, config.Aggregator.AddClientPrefix)
	assert.Equal(t, "statsd", config.Aggregator.PathPrefix)
	assert.Equal(t, "log", config.Publisher.Adapter)
	assert.Equal(t, "json", config.Sender.Encoding)
	assert.NotEmpty(t, config.Pipeline.ClientName)

	require.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("bad shutdown timeout", func(t *testing.T) {
		config := NewConfig()
		config.ShutdownTimeout = 0

		assert.Error(t, config.Validate())
	})

	t.Run("bad flush interval", func(t *testing.T) {
		config := NewConfig()
		config.Pipeline.FlushInterval = -1

		assert.Error(t, config.Validate())
	})

	t.Run("bad percentile", func(t *testing.T) {
		config := NewConfig()
		config.Aggregator.Percentile = 101

		assert.Error(t, config.Validate())
	})

	t.Run("client name with spaces", func(t *testing.T) {
		config := NewConfig()
		config.Pipeline.ClientName = "web 1"

		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client name")

		config.Aggregator.AddClientPrefix = false
		assert.NoError(t, config.Validate())
	})

	t.Run("path prefix with slashes", func(t *testing.T) {
		config := NewConfig()
		config.Aggregator.PathPrefix = "apps/statsd"

		assert.Error(t, config.Validate())
	})

	t.Run("unknown encoding", func(t *testing.T) {
		config := NewConfig()
		config.Sender.Encoding = "xml"

		assert.Error(t, config.Validate())
	})

	t.Run("unknown publisher", func(t *testing.T) {
		config := NewConfig()
		config.Publisher.Adapter = "kafka"

		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown publisher: kafka")
	})
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
shutdown_timeout = 5

[listener]
port = 9125

[pipeline]
flush_interval = 2
client_name = "box"

[aggregator]
percentile = 95
legacy_gauges_label = true

[publisher]
adapter = "http"
http.url = "http://localhost:8080/results"

[redis]
mode = "list"

[metrics]
statsd.host = "localhost:8126"
statsd.tags.env = "test"

[server]
port = 8127
`)

	config := NewConfig()
	err := config.LoadFromFile(path)

	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFilePath)
	assert.Equal(t, 5, config.ShutdownTimeout)
	assert.Equal(t, 9125, config.Listener.Port)
	assert.Equal(t, "127.0.0.1", config.Listener.Host)
	assert.Equal(t, 2, config.Pipeline.FlushInterval)
	assert.Equal(t, 30, config.Pipeline.SendInterval)
	assert.Equal(t, "box", config.Pipeline.ClientName)
	assert.Equal(t, 95, config.Aggregator.Percentile)
	assert.True(t, config.Aggregator.LegacyGaugesLabel)
	assert.Equal(t, "http", config.Publisher.Adapter)
	assert.Equal(t, "http://localhost:8080/results", config.Publisher.HTTP.URL)
	assert.Equal(t, "list", config.Redis.Mode)
	assert.Equal(t, "localhost:8126", config.Metrics.Statsd.Host)
	assert.Equal(t, map[string]string{"env": "test"}, config.Metrics.Statsd.Tags)
	assert.Equal(t, 8127, config.Server.Port)
	assert.Equal(t, "/health", config.Server.HealthPath)
}

func TestLoadFromFile_unknown_keys(t *testing.T) {
	path := writeConfigFile(t, `
[listener]
prot = 9125
`)

	config := NewConfig()
	err := config.LoadFromFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener.prot")
}

func TestLoadFromFile_missing(t *testing.T) {
	config := NewConfig()
	err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))

	require.Error(t, err)
}

func TestLoadFromFile_malformed(t *testing.T) {
	path := writeConfigFile(t, "[listener\nport = ")

	config := NewConfig()
	err := config.LoadFromFile(path)

	require.Error(t, err)
}

func TestToToml(t *testing.T) {
	config := NewConfig()
	config.ShutdownTimeout = 12
	config.UserPresets = []string{"fly"}
	config.Listener.Port = 9125
	config.Pipeline.ClientName = "box"
	config.Aggregator.PathPrefix = "apps"
	config.Publisher.Adapter = "nats"
	config.Publisher.HTTP.URL = "http://example.com/results"
	config.NATS.Subject = "metrics"
	config.Redis.Channel = "metrics"
	config.EmbeddedNats.Enabled = true
	config.Log.LogLevel = "debug"
	config.Metrics.Log = true
	config.Metrics.Statsd.Host = "localhost:8126"
	config.Metrics.Statsd.Tags = map[string]string{"env": "test"}
	config.Server.Port = 8126

	tomlStr := config.ToToml()

	assert.Contains(t, tomlStr, "shutdown_timeout = 12")
	assert.Contains(t, tomlStr, "[listener]")
	assert.Contains(t, tomlStr, "[embedded_nats]")

	actual := NewConfig()
	_, err := toml.Decode(tomlStr, &actual)
	require.NoError(t, err)

	assert.Equal(t, config, actual)
}

func TestToToml_defaults_round_trip(t *testing.T) {
	config := NewConfig()

	actual := NewConfig()
	md, err := toml.Decode(config.ToToml(), &actual)
	require.NoError(t, err)

	assert.Empty(t, md.Undecoded())
	assert.Equal(t, config, actual)
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "statsbridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}
