package metrics

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigEnabled(t *testing.T) {
	config := NewConfig()
	assert.False(t, config.Enabled())

	config.Log = true
	assert.True(t, config.Enabled())

	config = NewConfig()
	config.Statsd.Host = "localhost:8125"
	assert.True(t, config.Enabled())
}

func TestConfig_ToToml(t *testing.T) {
	conf := NewConfig()
	conf.Log = true
	conf.RotateInterval = 30
	conf.LogFilter = []string{"samples_total", "publish_total"}
	conf.Statsd.Host = "localhost:8125"
	conf.Statsd.Prefix = "self."
	conf.Statsd.Tags = map[string]string{"env": "prod", "region": "us-west"}

	tomlStr := conf.ToToml()

	assert.Contains(t, tomlStr, "log = true")
	assert.Contains(t, tomlStr, "rotate_interval = 30")
	assert.Contains(t, tomlStr, "log_filter = [ \"samples_total\", \"publish_total\" ]")
	assert.Contains(t, tomlStr, "statsd.host = \"localhost:8125\"")
	assert.Contains(t, tomlStr, "statsd.host = \"localhost:8125\"")
	assert.Contains(t, tomlStr, "statsd.prefix = \"self.\"")
	assert.Contains(t, tomlStr, "statsd.tags.env = \"prod\"")
	assert.Contains(t, tomlStr, "statsd.tags.region = \"us-west\"")

	// Round-trip test
	conf2 := NewConfig()

	_, err := toml.Decode(tomlStr, &conf2)
	require.NoError(t, err)

	assert.Equal(t, conf, conf2)
}

func TestConfig_ToToml_Defaults(t *testing.T) {
	conf := NewConfig()

	tomlStr := conf.ToToml()

	assert.Contains(t, tomlStr, "# log = true")
	assert.Contains(t, tomlStr, "# statsd.host = \"localhost:8125\"")

	conf2 := NewConfig()

	_, err := toml.Decode(tomlStr, &conf2)
	require.NoError(t, err)

	assert.Equal(t, conf, conf2)
}
