package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/metrics"
	"github.com/navbus/navbus/core/persist"
	"github.com/navbus/navbus/infra/monitoring"
	"github.com/navbus/navbus/infra/mqtt"
	"github.com/navbus/navbus/infra/serialport"
)

type Config struct {
	Dispatcher  dispatch.Config   `json:"dispatcher"`
	Serial      serialport.Config `json:"serial"`
	CAN         CANConfig         `json:"can"`
	Persistence persist.Config    `json:"persistence"`
	Telemetry   TelemetryConfig   `json:"telemetry"`
	MQTT        mqtt.Config       `json:"mqtt"`
	Metrics     metrics.Config    `json:"metrics"`
	Monitoring  monitoring.Config `json:"monitoring"`
}

// Load reads a yaml or json file, applies K_ prefixed environment overrides
// (K_SERIAL__DEVICE sets serial.device), fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset values of every section.
func (c *Config) SetDefaults() {
	c.Dispatcher.SetDefaults()
	c.Serial.SetDefaults()
	c.Persistence.SetDefaults()
	c.Telemetry.SetDefaults()
}

// Validate checks every section. The mqtt section is only checked when
// telemetry upload is enabled.
func (c Config) Validate() error {
	if err := c.Dispatcher.Validate(); err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	if err := c.Serial.Validate(); err != nil {
		return err
	}
	if err := c.CAN.Validate(); err != nil {
		return err
	}
	if err := c.Persistence.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if c.Telemetry.Enabled {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	return nil
}
