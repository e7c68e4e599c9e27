package sender

import (
	"fmt"
	"strings"
)

// Config contains outgoing buffer and publishing settings
type Config struct {
	// Max number of lines kept in the outgoing buffer; the oldest lines are dropped (0 means unlimited)
	MaxBufferLines int `toml:"max_buffer_lines"`
	// Put lines back into the buffer if publishing fails
	RetainOnFailure bool `toml:"retain_on_failure"`
	// Envelope encoding (json or msgpack)
	Encoding string `toml:"encoding"`
}

// NewConfig builds a new config with defaults
func NewConfig() Config {
	return Config{
		MaxBufferLines:  100000,
		RetainOnFailure: true,
		Encoding:        "json",
	}
}

// ToToml converts the Config to a TOML string representation
func (c Config) ToToml() string {
	var result strings.Builder

	result.WriteString("# Max number of lines in the outgoing buffer (0 means unlimited)\n")
	result.WriteString(fmt.Sprintf("max_buffer_lines = %d\n", c.MaxBufferLines))

	result.WriteString("# Keep lines in the buffer when publishing fails\n")
	result.WriteString(fmt.Sprintf("retain_on_failure = %t\n", c.RetainOnFailure))

	result.WriteString("# Result envelope encoding (json, msgpack)\n")
	result.WriteString(fmt.Sprintf("encoding = \"%s\"\n", c.Encoding))

	result.WriteString("\n")

	return result.String()
}
