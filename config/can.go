package config

import "fmt"

// CANConfig selects the candump log fed to the NMEA 2000 reader. Path "-"
// reads standard input.
type CANConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

func (c CANConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("can.path is required")
	}
	return nil
}
