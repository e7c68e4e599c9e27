package sender

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ToToml(t *testing.T) {
	conf := NewConfig()
	conf.MaxBufferLines = 500
	conf.RetainOnFailure = false
	conf.Encoding = "msgpack"

	tomlStr := conf.ToToml()

	assert.Contains(t, tomlStr, "max_buffer_lines = 500")
	assert.Contains(t, tomlStr, "retain_on_failure = false")
	assert.Contains(t, tomlStr, "encoding = \"msgpack\"")

	// Round-trip test
	conf2 := NewConfig()

	_, err := toml.Decode(tomlStr, &conf2)
	require.NoError(t, err)

	assert.Equal(t, conf, conf2)
}
