package enats

import (
	"fmt"
	"strings"
)

// Config represents embedded NATS server configuration
type Config struct {
	Enabled     bool     `toml:"enabled"`
	Debug       bool     `toml:"debug"`
	Trace       bool     `toml:"trace"`
	Name        string   `toml:"name"`
	ServiceAddr string   `toml:"service_addr"`
	ClusterAddr string   `toml:"cluster_addr"`
	ClusterName string   `toml:"cluster_name"`
	Routes      []string `toml:"routes"`
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# Enable embedded NATS server (the nats publisher connects to it by default)\n")
	if c.Enabled {
		result.WriteString("enabled = true\n")
	} else {
		result.WriteString("# enabled = true\n")
	}

	result.WriteString("# Enable NATS server logs\n")
	if c.Debug {
		result.WriteString("debug = true\n")
	} else {
		result.WriteString("# debug = true\n")
	}

	result.WriteString("# Enable NATS server protocol tracing\n")
	if c.Trace {
		result.WriteString("trace = true\n")
	} else {
		result.WriteString("# trace = true\n")
	}

	result.WriteString("# Server name\n")
	if c.Name != "" {
		result.WriteString(fmt.Sprintf("name = \"%s\"\n", c.Name))
	} else {
		result.WriteString("# name = \"statsbridge-nats\"\n")
	}

	result.WriteString("# Client connections address\n")
	result.WriteString(fmt.Sprintf("service_addr = \"%s\"\n", c.ServiceAddr))

	result.WriteString("# Cluster address\n")
	if c.ClusterAddr != "" {
		result.WriteString(fmt.Sprintf("cluster_addr = \"%s\"\n", c.ClusterAddr))
	} else {
		result.WriteString("# cluster_addr = \"nats://localhost:6222\"\n")
	}

	result.WriteString("# Cluster name\n")
	result.WriteString(fmt.Sprintf("cluster_name = \"%s\"\n", c.ClusterName))

	result.WriteString("# Cluster routes\n")
	if len(c.Routes) > 0 {
		result.WriteString(fmt.Sprintf("routes = [\"%s\"]\n", strings.Join(c.Routes, "\", \"")))
	} else {
		result.WriteString("# routes = []\n")
	}

	result.WriteString("\n")

	return result.String()
}
