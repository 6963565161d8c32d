package persist

import (
	"fmt"
	"time"

	"github.com/navbus/navbus/core/factory"
)

// Config defines the persistence settings. An empty Type disables
// recording.
type Config struct {
	Type                 string         `json:"type"`
	Conf                 map[string]any `json:"conf"`
	FlushIntervalSeconds int            `json:"flush_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.FlushIntervalSeconds == 0 {
		c.FlushIntervalSeconds = 5
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Type == "" {
		return nil
	}
	known := false
	for _, n := range StoreTypes() {
		if n == c.Type {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("persistence.type %q not one of %v", c.Type, StoreTypes())
	}
	if c.FlushIntervalSeconds <= 0 {
		return fmt.Errorf("persistence.flush_interval_seconds must be positive")
	}
	return nil
}

// Enabled reports whether a store is configured.
func (c Config) Enabled() bool { return c.Type != "" }

// Module returns the factory configuration of the store.
func (c Config) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Type, Conf: c.Conf}
}

// FlushInterval returns the recorder flush period.
func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalSeconds) * time.Second
}
