package metrics

import (
	"time"

	"github.com/navbus/navbus/core/channel"
)

// ValueChange is a new winning value of a channel.
type ValueChange struct {
	Channel channel.Code
	Source  string
	Time    time.Time
	Value   any
}

// ValueSink records winning value changes.
type ValueSink interface {
	RecordValue(ev ValueChange) error
}

// SourceSeen is emitted the first time a source publishes on a channel.
type SourceSeen struct {
	Channel channel.Code
	Source  string
	Time    time.Time
}

// SourceRecorder records newly seen sources.
type SourceRecorder interface {
	RecordSource(ev SourceSeen) error
}

// DropRecorder records events lost by a saturated event bus subscriber.
type DropRecorder interface {
	RecordDropped(total uint64) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordValue(ValueChange) error { return nil }
func (NopSink) RecordSource(SourceSeen) error { return nil }
func (NopSink) RecordDropped(uint64) error    { return nil }

// MultiSink fans out events to multiple sinks.
type MultiSink struct {
	Sinks []ValueSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...ValueSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordValue forwards the change to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordValue(ev ValueChange) error {
	for _, s := range m.Sinks {
		if err := s.RecordValue(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSource forwards to the sinks implementing SourceRecorder.
func (m *MultiSink) RecordSource(ev SourceSeen) error {
	for _, s := range m.Sinks {
		if r, ok := s.(SourceRecorder); ok {
			if err := r.RecordSource(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDropped forwards to the sinks implementing DropRecorder.
func (m *MultiSink) RecordDropped(total uint64) error {
	for _, s := range m.Sinks {
		if r, ok := s.(DropRecorder); ok {
			if err := r.RecordDropped(total); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
