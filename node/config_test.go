package node

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.Validate())
	assert.NotEmpty(t, conf.ClientName)

	conf.FlushInterval = 0
	assert.Error(t, conf.Validate())

	conf = NewConfig()
	conf.SendInterval = -1
	assert.Error(t, conf.Validate())

	conf = NewConfig()
	conf.ClientName = ""
	assert.Error(t, conf.Validate())
}

func TestConfig_ToToml(t *testing.T) {
	conf := NewConfig()
	conf.FlushInterval = 5
	conf.SendInterval = 15
	conf.ClientName = "web-1"

	tomlStr := conf.ToToml()

	assert.Contains(t, tomlStr, "flush_interval = 5")
	assert.Contains(t, tomlStr, "send_interval = 15")
	assert.Contains(t, tomlStr, "client_name = \"web-1\"")

	// Round-trip test
	conf2 := NewConfig()

	_, err := toml.Decode(tomlStr, &conf2)
	require.NoError(t, err)

	assert.Equal(t, conf, conf2)
}
