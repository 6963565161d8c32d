package serialport

import (
	"fmt"

	"github.com/navbus/navbus/core/model"
)

// Config is the serial section of the service configuration.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Device   string `json:"device"`
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
	// Source names every value decoded from this port.
	Source string `json:"source"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Source == "" {
		c.Source = model.SourceNMEA0183
	}
	if opts, err := c.Options().Normalize(); err == nil {
		c.BaudRate, c.DataBits, c.StopBits, c.Parity = opts.BaudRate, opts.DataBits, opts.StopBits, opts.Parity
	}
}

// Options returns the port parameters.
func (c Config) Options() PortOptions {
	return PortOptions{BaudRate: c.BaudRate, DataBits: c.DataBits, StopBits: c.StopBits, Parity: c.Parity}
}

// Validate checks an enabled port has a device and sane line settings.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Device == "" {
		return fmt.Errorf("serial.device is required")
	}
	if _, err := c.Options().Normalize(); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	return nil
}
