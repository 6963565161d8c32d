package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/navbus/navbus/core/metrics"
	"github.com/navbus/navbus/core/units"
)

// PromSink exposes the winning values of scalar channels as gauges.
type PromSink struct {
	value   *prometheus.GaugeVec
	changes *prometheus.CounterVec
	sources *prometheus.CounterVec
	dropped prometheus.Gauge
}

// NewPromSink registers the sink metrics on the default Prometheus
// registerer. The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	value := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "navbus_channel_value",
		Help: "Winning value per channel in display units (degrees, knots, meters, seconds)",
	}, []string{"channel", "source"})
	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navbus_channel_updates_total",
		Help: "Winning value changes observed on the event bus",
	}, []string{"channel", "source"})
	sources := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navbus_sources_seen_total",
		Help: "Sources seen for the first time per channel",
	}, []string{"channel"})
	dropped := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "navbus_bus_dropped_events",
		Help: "Events dropped by the metrics collector subscription",
	})

	var err error
	if value, err = register(reg, value); err != nil {
		return nil, err
	}
	if changes, err = register(reg, changes); err != nil {
		return nil, err
	}
	if sources, err = register(reg, sources); err != nil {
		return nil, err
	}
	if dropped, err = register(reg, dropped); err != nil {
		return nil, err
	}
	return &PromSink{value: value, changes: changes, sources: sources, dropped: dropped}, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordValue updates the channel gauge. Values without a scalar projection
// only count as updates.
func (s *PromSink) RecordValue(ev coremetrics.ValueChange) error {
	label := ev.Channel.String()
	s.changes.WithLabelValues(label, ev.Source).Inc()
	if f, ok := units.Scalar(ev.Value); ok {
		s.value.WithLabelValues(label, ev.Source).Set(f)
	}
	return nil
}

// RecordSource counts a newly seen source.
func (s *PromSink) RecordSource(ev coremetrics.SourceSeen) error {
	s.sources.WithLabelValues(ev.Channel.String()).Inc()
	return nil
}

// RecordDropped publishes the bus drop total.
func (s *PromSink) RecordDropped(total uint64) error {
	s.dropped.Set(float64(total))
	return nil
}
