package listener

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Config contains statsd listener settings
type Config struct {
	// Address to bind both TCP and UDP sockets to
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// UDP read buffer size (and the max chunk size for TCP lines without a newline)
	MaxPacketSize int `toml:"max_packet_size"`
	// Max number of simultaneous TCP connections (0 means unlimited)
	MaxConn int `toml:"max_conn"`
}

// NewConfig builds a new config with defaults
func NewConfig() Config {
	return Config{
		Host:          "127.0.0.1",
		Port:          8125,
		MaxPacketSize: 65535,
	}
}

// Address returns the host:port pair to bind to
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# Statsd listener host (both TCP and UDP)\n")
	result.WriteString(fmt.Sprintf("host = \"%s\"\n", c.Host))

	result.WriteString("# Statsd listener port\n")
	result.WriteString(fmt.Sprintf("port = %d\n", c.Port))

	result.WriteString("# Max UDP packet size\n")
	result.WriteString(fmt.Sprintf("max_packet_size = %d\n", c.MaxPacketSize))

	result.WriteString("# Max number of TCP connections (0 means unlimited)\n")
	if c.MaxConn > 0 {
		result.WriteString(fmt.Sprintf("max_conn = %d\n", c.MaxConn))
	} else {
		result.WriteString("# max_conn = 1000\n")
	}

	result.WriteString("\n")

	return result.String()
}
