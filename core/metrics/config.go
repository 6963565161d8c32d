package metrics

import (
	"fmt"

	"github.com/navbus/navbus/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort is the listen address of the /metrics endpoint, e.g.
	// ":9100". Empty disables the endpoint.
	PrometheusPort string `json:"prometheus_port"`
}

// Validate checks that every configured sink type is known.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
	}
	return nil
}
