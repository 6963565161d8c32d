package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	samplesPublished *prometheus.CounterVec
	winnerSwitches   *prometheus.CounterVec
	valueChanges     *prometheus.CounterVec
	channelSources   *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec) {
	pub := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navbus_samples_published_total",
			Help: "Number of samples published or inserted per channel",
		},
		[]string{"channel"},
	)
	sw := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navbus_winner_switches_total",
			Help: "Number of times the winning source of a channel changed",
		},
		[]string{"channel"},
	)
	chg := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navbus_value_changes_total",
			Help: "Number of winning value changes notified to listeners",
		},
		[]string{"channel"},
	)
	src := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "navbus_channel_sources",
			Help: "Number of sources that have published on a channel",
		},
		[]string{"channel"},
	)
	return pub, sw, chg, src
}

func init() {
	samplesPublished, winnerSwitches, valueChanges, channelSources = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatcher metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(samplesPublished, winnerSwitches, valueChanges, channelSources)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	samplesPublished, winnerSwitches, valueChanges, channelSources = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
