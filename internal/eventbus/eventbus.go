// Package eventbus provides the asynchronous fan-out used to hand dispatcher
// events to slow consumers (uploaders, metric sinks) without blocking
// publishers.
package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the untyped EventBus implementation.
type Bus struct {
	*TypedBus[Event]
}

// New creates a new Bus with DefaultBuffer.
func New() *Bus { return NewWithBuffer(DefaultBuffer) }

// NewWithBuffer creates a Bus whose subscribers buffer up to n events.
func NewWithBuffer(n int) *Bus { return &Bus{NewTypedWithBuffer[Event](n)} }

var _ EventBus = (*Bus)(nil)
