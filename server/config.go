package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Config contains the HTTP server settings (health checks and stats)
type Config struct {
	Host string `toml:"host"`
	// Zero port disables the server
	Port       int    `toml:"port"`
	HealthPath string `toml:"health_path"`
	StatsPath  string `toml:"stats_path"`
}

func NewConfig() Config {
	return Config{
		Host:       "localhost",
		HealthPath: "/health",
		StatsPath:  "/stats",
	}
}

func (c Config) Enabled() bool {
	return c.Port > 0
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# Host address to bind to\n")
	result.WriteString(fmt.Sprintf("host = %q\n", c.Host))

	result.WriteString("# Port to listen on (the server is disabled unless set)\n")
	if c.Port > 0 {
		result.WriteString(fmt.Sprintf("port = %d\n", c.Port))
	} else {
		result.WriteString("# port = 8126\n")
	}

	result.WriteString("# Health check endpoint path\n")
	result.WriteString(fmt.Sprintf("health_path = %q\n", c.HealthPath))

	result.WriteString("# Internal stats endpoint path (JSON)\n")
	result.WriteString(fmt.Sprintf("stats_path = %q\n", c.StatsPath))

	result.WriteString("\n")

	return result.String()
}
