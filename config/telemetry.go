package config

import (
	"fmt"
	"time"

	"github.com/navbus/navbus/infra/mqtt"
)

// TelemetryConfig holds configuration for the MQTT uploader.
type TelemetryConfig struct {
	Enabled         bool   `json:"enabled"`
	TopicPrefix     string `json:"topic_prefix"`
	IntervalSeconds int    `json:"interval_seconds"`
	MaxAgeSeconds   int    `json:"max_age_seconds"`
	Retain          bool   `json:"retain"`
}

func (c *TelemetryConfig) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "navbus"
	}
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 1
	}
	if c.MaxAgeSeconds == 0 {
		c.MaxAgeSeconds = 5
	}
}

func (c TelemetryConfig) Validate() error {
	if c.IntervalSeconds < 0 || c.MaxAgeSeconds < 0 {
		return fmt.Errorf("telemetry intervals must not be negative")
	}
	return nil
}

func (c TelemetryConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c TelemetryConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}

// UploaderOptions converts the section for mqtt.NewUploader.
func (c TelemetryConfig) UploaderOptions() mqtt.UploaderOptions {
	return mqtt.UploaderOptions{
		TopicPrefix: c.TopicPrefix,
		Interval:    c.Interval(),
		MaxAge:      c.MaxAge(),
		Retain:      c.Retain,
	}
}
