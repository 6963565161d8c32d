package dispatch

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/history"
	"github.com/navbus/navbus/core/logger"
	"github.com/navbus/navbus/core/model"
	"github.com/navbus/navbus/core/units"
	"github.com/navbus/navbus/internal/eventbus"
)

// Dispatcher is the entry point used by every producer and consumer. It owns
// one ChannelDispatcher per channel code, created on first access, and the
// source priority table.
type Dispatcher struct {
	cfg        Config
	priorities *SourcePriorityTable
	log        logger.Logger

	mu       sync.Mutex
	channels map[channel.Code]Channel
	clock    model.Clock
	bus      eventbus.EventBus
}

// SourceKey names one (channel, source) pair.
type SourceKey struct {
	Code   channel.Code
	Source string
}

func (k SourceKey) String() string { return k.Code.String() + "/" + k.Source }

// New creates a Dispatcher. A nil logger disables logging.
func New(cfg Config, log logger.Logger) *Dispatcher {
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop
	}
	return &Dispatcher{
		cfg:        cfg,
		priorities: NewSourcePriorityTable(cfg.Priorities),
		log:        log,
		channels:   make(map[channel.Code]Channel),
		clock:      model.SystemClock,
	}
}

// SetClock replaces the clock used to stamp Publish calls and to evaluate
// freshness.
func (d *Dispatcher) SetClock(c model.Clock) {
	if c == nil {
		c = model.SystemClock
	}
	d.mu.Lock()
	d.clock = c
	d.mu.Unlock()
}

// SetBus configures the bus receiving events.ValueEvent and
// events.SourceEvent. Delivery on the bus is asynchronous and may drop events;
// listeners registered with Subscribe are the synchronous path.
func (d *Dispatcher) SetBus(bus eventbus.EventBus) {
	d.mu.Lock()
	d.bus = bus
	d.mu.Unlock()
}

// Now returns the dispatcher clock reading.
func (d *Dispatcher) Now() time.Time {
	d.mu.Lock()
	c := d.clock
	d.mu.Unlock()
	return c()
}

func (d *Dispatcher) capacity() int { return d.cfg.HistoryCapacity }

func (d *Dispatcher) emit(ev eventbus.Event) {
	d.mu.Lock()
	bus := d.bus
	d.mu.Unlock()
	if bus != nil {
		bus.Publish(ev)
	}
}

// Priorities returns the source priority table.
func (d *Dispatcher) Priorities() *SourcePriorityTable { return d.priorities }

// SourcePriority returns the priority of a source, 0 when unset.
func (d *Dispatcher) SourcePriority(name string) int { return d.priorities.Get(name) }

// SetSourcePriority changes the priority of a source for future arbitration.
func (d *Dispatcher) SetSourcePriority(name string, priority int) {
	d.priorities.Set(name, priority)
	d.log.Infof("source %s priority set to %d", name, priority)
}

// Channel returns the type erased dispatcher of code, creating it if needed.
// It panics for an unregistered code.
func (d *Dispatcher) Channel(code channel.Code) Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ch, ok := d.channels[code]; ok {
		return ch
	}
	var ch Channel
	switch code.Kind() {
	case units.KindAngle:
		ch = newChannelDispatcher[units.Angle](d, code)
	case units.KindVelocity:
		ch = newChannelDispatcher[units.Velocity](d, code)
	case units.KindLength:
		ch = newChannelDispatcher[units.Length](d, code)
	case units.KindDuration:
		ch = newChannelDispatcher[units.Duration](d, code)
	case units.KindGeoPosition:
		ch = newChannelDispatcher[units.GeoPosition](d, code)
	case units.KindOrientation:
		ch = newChannelDispatcher[units.Orientation](d, code)
	case units.KindDateTime:
		ch = newChannelDispatcher[units.DateTime](d, code)
	default:
		panic(fmt.Sprintf("dispatch: unknown channel %s", code))
	}
	d.channels[code] = ch
	return ch
}

// Channels returns the channels created so far, ordered by code.
func (d *Dispatcher) Channels() []Channel {
	d.mu.Lock()
	out := make([]Channel, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ch)
	}
	d.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}

func (d *Dispatcher) lookup(code channel.Code) (Channel, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch, ok := d.channels[code]
	return ch, ok
}

// SourcesForChannel returns the sources of code in first-publish order.
func (d *Dispatcher) SourcesForChannel(code channel.Code) []string {
	ch, ok := d.lookup(code)
	if !ok {
		return nil
	}
	return ch.SourcesForChannel()
}

// HasSource reports whether source has published on code.
func (d *Dispatcher) HasSource(code channel.Code, source string) bool {
	ch, ok := d.lookup(code)
	return ok && ch.HasSource(source)
}

// AllSources lists every (channel, source) pair that has published, ordered
// by channel code and then by first publish.
func (d *Dispatcher) AllSources() []SourceKey {
	var out []SourceKey
	for _, ch := range d.Channels() {
		for _, src := range ch.SourcesForChannel() {
			out = append(out, SourceKey{Code: ch.Code(), Source: src})
		}
	}
	return out
}

// PublishAny publishes a dynamically typed value. It panics when v is not of
// the quantity type of code.
func (d *Dispatcher) PublishAny(code channel.Code, source string, v any, t time.Time) {
	d.Channel(code).PublishAny(source, v, t)
}

// InsertAny inserts dynamically typed samples. It panics when a value is not
// of the quantity type of code.
func (d *Dispatcher) InsertAny(code channel.Code, source string, samples []Sample) {
	d.Channel(code).InsertAny(source, samples)
}

// Get returns the typed dispatcher of key, creating it on first access.
func Get[V units.Quantity](d *Dispatcher, key channel.Key[V]) *ChannelDispatcher[V] {
	ch := d.Channel(key.Code())
	cd, ok := ch.(*ChannelDispatcher[V])
	if !ok {
		panic(fmt.Sprintf("dispatch: channel %s does not carry %s values", key, units.KindOf[V]()))
	}
	return cd
}

// PublishValue publishes v on key stamped with the dispatcher clock.
func PublishValue[V units.Quantity](d *Dispatcher, key channel.Key[V], source string, v V) {
	Get(d, key).Publish(source, v)
}

// PublishValueAt publishes v on key stamped with t.
func PublishValueAt[V units.Quantity](d *Dispatcher, key channel.Key[V], source string, v V, t time.Time) {
	Get(d, key).PublishAt(source, v, t)
}

// InsertValues bulk inserts historical samples for one source.
func InsertValues[V units.Quantity](d *Dispatcher, key channel.Key[V], source string, samples []history.TimedValue[V]) {
	Get(d, key).InsertValues(source, samples)
}

// Val returns the winning value of key.
func Val[V units.Quantity](d *Dispatcher, key channel.Key[V]) (V, bool) {
	return Get(d, key).Value()
}

// ValueFromSourceAt returns the value published by source on key closest to
// t, if within tolerance.
func ValueFromSourceAt[V units.Quantity](d *Dispatcher, key channel.Key[V], source string, t time.Time, tolerance time.Duration) (V, bool) {
	return Get(d, key).ValueFromSourceAt(source, t, tolerance)
}

// Subscribe registers a listener on key.
func Subscribe[V units.Quantity](d *Dispatcher, key channel.Key[V], l Listener[V]) *Subscription {
	return Get(d, key).Subscribe(l)
}
