package metrics

import (
	"context"
	"time"

	"github.com/navbus/navbus/core/events"
	coremetrics "github.com/navbus/navbus/core/metrics"
	"github.com/navbus/navbus/core/monitoring"
	"github.com/navbus/navbus/infra/logger"
	"github.com/navbus/navbus/internal/eventbus"
)

// dropReporter is implemented by buses that count lost deliveries.
type dropReporter interface {
	Dropped() uint64
}

// StartEventCollector subscribes to the event bus and forwards dispatcher
// events to sink. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector goroutine exits.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.ValueSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer monitoring.Recover()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
				if dr, ok := bus.(dropReporter); ok {
					if r, ok := sink.(coremetrics.DropRecorder); ok {
						_ = r.RecordDropped(dr.Dropped())
					}
				}
			}
		}
	}()
	return done
}

func forward(sink coremetrics.ValueSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.ValueEvent:
		return sink.RecordValue(coremetrics.ValueChange{
			Channel: e.Code,
			Source:  e.Source,
			Time:    e.Time,
			Value:   e.Value,
		})
	case events.SourceEvent:
		if r, ok := sink.(coremetrics.SourceRecorder); ok {
			return r.RecordSource(coremetrics.SourceSeen{Channel: e.Code, Source: e.Source, Time: time.Now()})
		}
	}
	return nil
}
