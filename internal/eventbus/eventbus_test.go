package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/events"
)

func TestBusCarriesMixedEvents(t *testing.T) {
	bus := New()
	defer bus.Close()
	sub := bus.Subscribe()
	bus.Publish(events.SourceEvent{Code: channel.CodeTWS, Source: "calc"})
	bus.Publish(events.ValueEvent{Code: channel.CodeTWS, Source: "calc"})

	_, isSource := (<-sub).(events.SourceEvent)
	assert.True(t, isSource)
	_, isValue := (<-sub).(events.ValueEvent)
	assert.True(t, isValue)
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := New()
	subs := []<-chan Event{bus.Subscribe(), bus.Subscribe()}
	bus.Close()
	for i, sub := range subs {
		_, open := <-sub
		assert.False(t, open, "subscriber %d still open", i)
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewWithBuffer(2)
	sub := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	assert.Equal(t, uint64(3), bus.Dropped())
	assert.Equal(t, 0, <-sub)
	assert.Equal(t, 1, <-sub)
}
