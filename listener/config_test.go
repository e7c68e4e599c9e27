package listener

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Address(t *testing.T) {
	conf := NewConfig()
	assert.Equal(t, "127.0.0.1:8125", conf.Address())

	conf.Host = "::1"
	conf.Port = 9125
	assert.Equal(t, "[::1]:9125", conf.Address())
}

func TestConfig_ToToml(t *testing.T) {
	conf := NewConfig()
	conf.Host = "0.0.0.0"
	conf.Port = 9125
	conf.MaxConn = 100

	tomlStr := conf.ToToml()

	assert.Contains(t, tomlStr, "host = \"0.0.0.0\"")
	assert.Contains(t, tomlStr, "port = 9125")
	assert.Contains(t, tomlStr, "max_packet_size = 65535")
	assert.Contains(t, tomlStr, "max_conn = 100")

	// Round-trip test
	conf2 := NewConfig()

	_, err := toml.Decode(tomlStr, &conf2)
	require.NoError(t, err)

	assert.Equal(t, conf, conf2)
}
