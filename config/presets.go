package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joomcode/errorx"
)

func (c *Config) Presets() []string {
	if c.UserPresets != nil {
		return c.UserPresets
	}

	return detectPresetsFromEnv()
}

// LoadPresets applies environment-specific defaults.
// Only values which are still equal to the defaults are changed.
func (c *Config) LoadPresets(l *slog.Logger) error {
	presets := c.Presets()

	if len(presets) == 0 {
		return nil
	}

	l.With("context", "config").Info(fmt.Sprintf("load presets: %s", strings.Join(presets, ",")))

	defaults := NewConfig()

	for _, preset := range presets {
		switch preset {
		case "fly":
			if err := c.loadFlyPreset(&defaults); err != nil {
				return err
			}
		default:
			return errorx.IllegalArgument.New("unknown preset: %s", preset)
		}
	}

	return nil
}

func (c *Config) loadFlyPreset(defaults *Config) error {
	// Fly routes UDP only to this address
	if c.Listener.Host == defaults.Listener.Host {
		c.Listener.Host = "fly-global-services"
	}

	region, ok := os.LookupEnv("FLY_REGION")

	if !ok {
		return errors.New("FLY_REGION env is missing")
	}

	appName, ok := os.LookupEnv("FLY_APP_NAME")

	if !ok {
		return errors.New("FLY_APP_NAME env is missing")
	}

	if c.Pipeline.ClientName == defaults.Pipeline.ClientName {
		if allocID, ok := os.LookupEnv("FLY_ALLOC_ID"); ok {
			c.Pipeline.ClientName = fmt.Sprintf("%s-%s-%s", appName, region, shortAllocID(allocID))
		}
	}

	if !c.EmbeddedNats.Enabled {
		return nil
	}

	if c.EmbeddedNats.ServiceAddr == defaults.EmbeddedNats.ServiceAddr {
		c.EmbeddedNats.ServiceAddr = "nats://0.0.0.0:4222"
	}

	if c.EmbeddedNats.ClusterAddr == defaults.EmbeddedNats.ClusterAddr {
		c.EmbeddedNats.ClusterAddr = "nats://0.0.0.0:5222"
	}

	if c.EmbeddedNats.ClusterName == defaults.EmbeddedNats.ClusterName {
		c.EmbeddedNats.ClusterName = fmt.Sprintf("%s-%s-cluster", appName, region)
	}

	if c.EmbeddedNats.Routes == nil {
		c.EmbeddedNats.Routes = []string{fmt.Sprintf("nats://%s.%s.internal:5222", region, appName)}
	}

	return nil
}

func shortAllocID(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}

	return id
}

func detectPresetsFromEnv() []string {
	presets := []string{}

	if isFlyEnv() {
		presets = append(presets, "fly")
	}

	return presets
}

func isFlyEnv() bool {
	if _, ok := os.LookupEnv("FLY_APP_NAME"); !ok {
		return false
	}

	if _, ok := os.LookupEnv("FLY_ALLOC_ID"); !ok {
		return false
	}

	if _, ok := os.LookupEnv("FLY_REGION"); !ok {
		return false
	}

	return true
}
