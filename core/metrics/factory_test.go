package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbus/navbus/core/factory"
	metrics "github.com/navbus/navbus/core/metrics"
)

func TestNewSinkSelection(t *testing.T) {
	checks := []struct {
		name    string
		cfgs    []factory.ModuleConfig
		want    string
		wantErr bool
	}{
		{name: "none", want: "metrics.NopSink"},
		{name: "single", cfgs: []factory.ModuleConfig{{Type: "nop"}}, want: "metrics.NopSink"},
		{name: "fan-out", cfgs: []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}, want: "*metrics.MultiSink"},
		{name: "unknown", cfgs: []factory.ModuleConfig{{Type: "statsd"}}, wantErr: true},
		{name: "unknown in list", cfgs: []factory.ModuleConfig{{Type: "nop"}, {Type: "statsd"}}, wantErr: true},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			s, err := metrics.NewSink(c.cfgs)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, typeName(s))
		})
	}
}

func TestNewSinkFanOutSize(t *testing.T) {
	s, err := metrics.NewSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	m, ok := s.(*metrics.MultiSink)
	require.True(t, ok)
	assert.Len(t, m.Sinks, 3)
}

func typeName(s metrics.ValueSink) string {
	switch s.(type) {
	case metrics.NopSink:
		return "metrics.NopSink"
	case *metrics.MultiSink:
		return "*metrics.MultiSink"
	default:
		return "other"
	}
}
