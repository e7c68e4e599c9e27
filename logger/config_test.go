package logger

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	conf := NewConfig()

	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, "text", conf.LogFormat)
	assert.False(t, conf.Debug)
}

func TestConfig_Resolve(t *testing.T) {
	t.Run("debug overrides level and format", func(t *testing.T) {
		conf := Config{LogLevel: "error", LogFormat: "json", Debug: true}
		conf.Resolve()

		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "text", conf.LogFormat)
	})

	t.Run("no debug keeps values", func(t *testing.T) {
		conf := Config{LogLevel: "error", LogFormat: "json"}
		conf.Resolve()

		assert.Equal(t, "error", conf.LogLevel)
		assert.Equal(t, "json", conf.LogFormat)
	})
}

func TestConfig_DecodeToml(t *testing.T) {
	conf := NewConfig()

	_, err := toml.Decode(`
level = "warn"
format = "json"
`, &conf)
	require.NoError(t, err)

	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, "json", conf.LogFormat)
	assert.False(t, conf.Debug)
}

func TestConfig_ToToml(t *testing.T) {
	for _, debug := range []bool{true, false} {
		conf := Config{LogLevel: "warn", LogFormat: "json", Debug: debug}

		tomlStr := conf.ToToml()

		assert.Contains(t, tomlStr, "level = \"warn\"")
		assert.Contains(t, tomlStr, "format = \"json\"")

		decoded := Config{}
		_, err := toml.Decode(tomlStr, &decoded)
		require.NoError(t, err)

		assert.Equal(t, conf, decoded)
	}
}
