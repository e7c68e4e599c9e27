//go:build freebsd && !amd64
// +build freebsd,!amd64

package enats

import (
	"errors"
	"log/slog"
)

// NewConfig returns defaults for the embedded NATS server
func NewConfig() Config {
	return Config{}
}

type Service struct {
	config *Config
}

func (Service) Description() string { return "" }
func (s Service) ClientURL() string { return s.config.ServiceAddr }
func (Service) Start() error {
	return errors.New("embedded NATS is not supported for the current platform")
}
func (Service) Shutdown() error { return nil }

func NewService(c *Config, l *slog.Logger) *Service {
	return &Service{config: c}
}
