package dispatch

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/events"
	"github.com/navbus/navbus/core/history"
	"github.com/navbus/navbus/core/model"
	"github.com/navbus/navbus/core/units"
)

// State is the life cycle state of a channel.
type State int

const (
	// Empty means nothing has been published on the channel yet.
	Empty State = iota
	// HasValue means at least one source has published. A channel never
	// leaves this state.
	HasValue
)

func (s State) String() string {
	if s == HasValue {
		return "has_value"
	}
	return "empty"
}

// Sample is a type erased TimedValue.
type Sample struct {
	Time  time.Time
	Value any
}

// Channel is the type erased view of a ChannelDispatcher used by consumers
// that handle every channel alike, such as persistence and telemetry.
type Channel interface {
	Code() channel.Code
	State() State
	SourcesForChannel() []string
	HasSource(source string) bool
	WinningSource() (string, bool)
	LastSample() (Sample, bool)
	Samples(source string) []Sample
	SampleAt(source string, t time.Time, tolerance time.Duration) (Sample, bool)
	RetainedCount() int
	IsFresh(maxAge time.Duration) bool
	// Watch registers fn to be called with the channel whenever its winning
	// value changes.
	Watch(fn func(Channel)) *Subscription
	// PublishAny and InsertAny panic when a value does not have the
	// channel's quantity type.
	PublishAny(source string, v any, t time.Time)
	InsertAny(source string, samples []Sample)
}

// Listener is called synchronously, on the publishing goroutine, after the
// winning value of a channel changed. It must return promptly and copy out
// whatever it needs.
type Listener[V units.Quantity] func(*ChannelDispatcher[V])

type sourceState[V units.Quantity] struct {
	name    string
	hist    *history.History[V]
	updated uint64
}

// ChannelDispatcher arbitrates between the sources of one channel and keeps
// the merged best-known value.
//
// The winner is the highest priority source that has published. Among equal
// priorities the source that published most recently wins, where a batch
// insert only counts when it advanced the source's newest sample; sample
// time stamps are not compared.
type ChannelDispatcher[V units.Quantity] struct {
	d    *Dispatcher
	code channel.Code

	mu        sync.Mutex
	sources   map[string]*sourceState[V]
	order     []string
	winner    *sourceState[V]
	winning   history.TimedValue[V]
	seq       uint64
	listeners []*listenerEntry
}

func newChannelDispatcher[V units.Quantity](d *Dispatcher, code channel.Code) *ChannelDispatcher[V] {
	return &ChannelDispatcher[V]{d: d, code: code, sources: make(map[string]*sourceState[V])}
}

// Code returns the channel code.
func (c *ChannelDispatcher[V]) Code() channel.Code { return c.code }

// State reports whether anything was published on the channel.
func (c *ChannelDispatcher[V]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.winner == nil {
		return Empty
	}
	return HasValue
}

// Publish appends v stamped with the dispatcher clock.
func (c *ChannelDispatcher[V]) Publish(source string, v V) {
	c.PublishAt(source, v, c.d.Now())
}

// PublishAt appends v stamped with t to the history of source. An undefined
// t is replaced by the dispatcher clock.
func (c *ChannelDispatcher[V]) PublishAt(source string, v V, t time.Time) {
	if !model.IsDefined(t) {
		t = c.d.Now()
	}
	c.update(source, 1, true, func(h *history.History[V]) {
		h.Insert(history.At(t, v))
	})
}

// InsertValues merges a batch of samples into the history of source. It is
// query equivalent to publishing the samples one by one in time order. An
// unsorted batch is sorted first.
func (c *ChannelDispatcher[V]) InsertValues(source string, samples []history.TimedValue[V]) {
	if len(samples) == 0 {
		return
	}
	if !sort.SliceIsSorted(samples, func(i, j int) bool { return samples[i].Time.Before(samples[j].Time) }) {
		sorted := make([]history.TimedValue[V], len(samples))
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
		samples = sorted
	}
	c.update(source, len(samples), false, func(h *history.History[V]) {
		h.InsertBatch(samples)
	})
}

// update applies a change to the history of source. A single publish always
// counts as the newest update of its source; a batch only does when it
// changed the newest retained sample, so repeating a batch is a no-op.
func (c *ChannelDispatcher[V]) update(source string, n int, single bool, apply func(*history.History[V])) {
	c.mu.Lock()
	st, known := c.sources[source]
	if !known {
		st = &sourceState[V]{name: source, hist: history.New[V](c.d.capacity())}
		c.sources[source] = st
		c.order = append(c.order, source)
	}
	prevLast, had := st.hist.Last()
	apply(st.hist)
	if last, ok := st.hist.Last(); ok && (single || !had || !sameSample(prevLast, last)) {
		c.seq++
		st.updated = c.seq
	}

	prevWinner, prevValue := c.winner, c.winning
	c.arbitrate()
	switched := c.winner != prevWinner
	changed := switched || !sameSample(prevValue, c.winning)
	var notify []*listenerEntry
	if changed {
		notify = make([]*listenerEntry, len(c.listeners))
		copy(notify, c.listeners)
	}
	winnerName, winning := c.winner.name, c.winning
	nsources := len(c.order)
	c.mu.Unlock()

	label := c.code.String()
	samplesPublished.WithLabelValues(label).Add(float64(n))
	if !known {
		channelSources.WithLabelValues(label).Set(float64(nsources))
		c.d.log.Debugf("new source %s on %s", source, label)
		c.d.emit(events.SourceEvent{Code: c.code, Source: source})
	}
	if switched {
		winnerSwitches.WithLabelValues(label).Inc()
		c.d.log.Debugf("%s now served by %s", label, winnerName)
	}
	if !changed {
		return
	}
	valueChanges.WithLabelValues(label).Inc()
	c.d.emit(events.ValueEvent{Code: c.code, Source: winnerName, Time: winning.Time, Value: winning.Value})
	for _, l := range notify {
		if l.sub.Active() {
			l.fn()
		}
	}
}

// arbitrate recomputes the winning source. Caller holds c.mu.
func (c *ChannelDispatcher[V]) arbitrate() {
	var best *sourceState[V]
	bestPrio := 0
	for _, name := range c.order {
		st := c.sources[name]
		if !st.hist.HasValue() {
			continue
		}
		p := c.d.priorities.Get(name)
		if best == nil || p > bestPrio || (p == bestPrio && st.updated > best.updated) {
			best, bestPrio = st, p
		}
	}
	c.winner = best
	if best != nil {
		c.winning, _ = best.hist.Last()
	}
}

func sameSample[V units.Quantity](a, b history.TimedValue[V]) bool {
	return a.Time.Equal(b.Time) && a.Value == b.Value
}

// Value returns the winning value.
func (c *ChannelDispatcher[V]) Value() (V, bool) {
	tv, ok := c.LastTimedValue()
	return tv.Value, ok
}

// LastTimedValue returns the newest sample of the winning source.
func (c *ChannelDispatcher[V]) LastTimedValue() (history.TimedValue[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.winner == nil {
		return history.TimedValue[V]{}, false
	}
	return c.winning, true
}

// WinningSource returns the name of the source currently serving the channel.
func (c *ChannelDispatcher[V]) WinningSource() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.winner == nil {
		return "", false
	}
	return c.winner.name, true
}

// IsFresh reports whether the winning value is no older than maxAge.
func (c *ChannelDispatcher[V]) IsFresh(maxAge time.Duration) bool {
	now := c.d.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.winner == nil {
		return false
	}
	return c.winner.hist.IsFresh(now, maxAge)
}

// ValueFromSourceAt returns the sample of source closest to t if it lies
// within tolerance.
func (c *ChannelDispatcher[V]) ValueFromSourceAt(source string, t time.Time, tolerance time.Duration) (V, bool) {
	tv, ok := c.nearest(source, t, tolerance)
	return tv.Value, ok
}

func (c *ChannelDispatcher[V]) nearest(source string, t time.Time, tolerance time.Duration) (history.TimedValue[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sources[source]
	if !ok {
		return history.TimedValue[V]{}, false
	}
	return st.hist.Nearest(t, tolerance)
}

// SourcesForChannel returns the sources in first-publish order.
func (c *ChannelDispatcher[V]) SourcesForChannel() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// HasSource reports whether source has published on the channel.
func (c *ChannelDispatcher[V]) HasSource(source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sources[source]
	return ok
}

// History returns a copy of the samples retained for source.
func (c *ChannelDispatcher[V]) History(source string) []history.TimedValue[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sources[source]
	if !ok {
		return nil
	}
	return st.hist.Values()
}

// RetainedCount returns the number of samples retained for the winning
// source.
func (c *ChannelDispatcher[V]) RetainedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.winner == nil {
		return 0
	}
	return c.winner.hist.Len()
}

// Subscribe registers l. Close the returned subscription to unregister.
func (c *ChannelDispatcher[V]) Subscribe(l Listener[V]) *Subscription {
	return c.addListener(func() { l(c) })
}

// Watch is the type erased form of Subscribe.
func (c *ChannelDispatcher[V]) Watch(fn func(Channel)) *Subscription {
	return c.addListener(func() { fn(c) })
}

func (c *ChannelDispatcher[V]) addListener(fn func()) *Subscription {
	sub := newSubscription()
	entry := &listenerEntry{sub: sub, fn: fn}
	sub.cancel = func() { c.removeListener(entry) }
	c.mu.Lock()
	c.listeners = append(c.listeners, entry)
	c.mu.Unlock()
	return sub
}

func (c *ChannelDispatcher[V]) removeListener(entry *listenerEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.listeners {
		if l == entry {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (c *ChannelDispatcher[V]) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// LastSample returns the winning sample in type erased form.
func (c *ChannelDispatcher[V]) LastSample() (Sample, bool) {
	tv, ok := c.LastTimedValue()
	if !ok {
		return Sample{}, false
	}
	return Sample{Time: tv.Time, Value: tv.Value}, true
}

// Samples returns the retained samples of source in type erased form.
func (c *ChannelDispatcher[V]) Samples(source string) []Sample {
	values := c.History(source)
	if values == nil {
		return nil
	}
	out := make([]Sample, len(values))
	for i, tv := range values {
		out[i] = Sample{Time: tv.Time, Value: tv.Value}
	}
	return out
}

// SampleAt is the type erased form of ValueFromSourceAt.
func (c *ChannelDispatcher[V]) SampleAt(source string, t time.Time, tolerance time.Duration) (Sample, bool) {
	tv, ok := c.nearest(source, t, tolerance)
	if !ok {
		return Sample{}, false
	}
	return Sample{Time: tv.Time, Value: tv.Value}, true
}

// PublishAny publishes a dynamically typed value.
func (c *ChannelDispatcher[V]) PublishAny(source string, v any, t time.Time) {
	c.PublishAt(source, c.cast(v), t)
}

// InsertAny inserts dynamically typed samples.
func (c *ChannelDispatcher[V]) InsertAny(source string, samples []Sample) {
	typed := make([]history.TimedValue[V], len(samples))
	for i, s := range samples {
		typed[i] = history.At(s.Time, c.cast(s.Value))
	}
	c.InsertValues(source, typed)
}

func (c *ChannelDispatcher[V]) cast(v any) V {
	tv, ok := v.(V)
	if !ok {
		panic(fmt.Sprintf("dispatch: channel %s carries %s values, got %T", c.code, units.KindOf[V](), v))
	}
	return tv
}
