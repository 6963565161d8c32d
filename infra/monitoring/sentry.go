package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	coremon "github.com/navbus/navbus/core/monitoring"
)

// Config holds the Sentry settings. An empty DSN disables reporting.
type Config struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	// Boat tags every event so reports from several installations can be
	// told apart.
	Boat string `json:"boat"`
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("monitoring.traces_sample_rate must be within [0,1]")
	}
	return nil
}

// NewSentryMonitor returns a Sentry backed Monitor, or a NopMonitor when no
// DSN is configured.
func NewSentryMonitor(cfg Config) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "navbus")
		if cfg.Boat != "" {
			scope.SetTag("boat", cfg.Boat)
		}
	})
	return &sentryMonitor{}, nil
}

type sentryMonitor struct{}

// CaptureException reports err with tags scoped to this event only.
func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) { scope.SetTags(tags) })
	hub.CaptureException(err)
}

func (s *sentryMonitor) CapturePanic(v any) { sentry.CurrentHub().Recover(v) }

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
