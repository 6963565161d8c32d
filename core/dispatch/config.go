package dispatch

import (
	"fmt"

	"github.com/navbus/navbus/core/history"
)

// Config defines dispatcher settings.
type Config struct {
	// HistoryCapacity is the number of samples retained per (channel, source).
	HistoryCapacity int `json:"history_capacity"`
	// Priorities seeds the source priority table.
	Priorities map[string]int `json:"priorities"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.HistoryCapacity == 0 {
		c.HistoryCapacity = history.DefaultCapacity
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.HistoryCapacity < 1 {
		return fmt.Errorf("history_capacity must be positive, got %d", c.HistoryCapacity)
	}
	for name := range c.Priorities {
		if name == "" {
			return fmt.Errorf("priority set for empty source name")
		}
	}
	return nil
}
