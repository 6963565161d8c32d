// Package history implements the bounded, time ordered sample buffer kept
// for every (channel, source) pair.
package history

import (
	"sort"
	"time"

	"github.com/navbus/navbus/core/model"
	"github.com/navbus/navbus/core/units"
)

// DefaultCapacity is the number of samples retained per source.
const DefaultCapacity = 3

// TimedValue is an immutable sample.
type TimedValue[V units.Quantity] struct {
	Time  time.Time
	Value V
}

// At builds a TimedValue.
func At[V units.Quantity](t time.Time, v V) TimedValue[V] {
	return TimedValue[V]{Time: t, Value: v}
}

// History keeps the newest samples of one source in time order. It is not
// safe for concurrent use; the owning channel dispatcher serializes access.
type History[V units.Quantity] struct {
	capacity int
	values   []TimedValue[V]
}

// New returns an empty history retaining at most capacity samples. A
// capacity below one falls back to DefaultCapacity.
func New[V units.Quantity](capacity int) *History[V] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History[V]{capacity: capacity, values: make([]TimedValue[V], 0, capacity+1)}
}

// Capacity returns the maximum number of retained samples.
func (h *History[V]) Capacity() int { return h.capacity }

// Len returns the number of retained samples.
func (h *History[V]) Len() int { return len(h.values) }

// HasValue reports whether at least one sample is retained.
func (h *History[V]) HasValue() bool { return len(h.values) > 0 }

// Last returns the newest sample.
func (h *History[V]) Last() (TimedValue[V], bool) {
	if len(h.values) == 0 {
		return TimedValue[V]{}, false
	}
	return h.values[len(h.values)-1], true
}

// IsFresh reports whether the newest sample is no older than maxAge at now.
func (h *History[V]) IsFresh(now time.Time, maxAge time.Duration) bool {
	last, ok := h.Last()
	if !ok {
		return false
	}
	return now.Sub(last.Time) <= maxAge
}

// Values returns a copy of the retained samples, oldest first.
func (h *History[V]) Values() []TimedValue[V] {
	out := make([]TimedValue[V], len(h.values))
	copy(out, h.values)
	return out
}

// Insert adds v at its place in time order. Samples sharing a time stamp keep
// their arrival order. When the buffer is full the oldest sample is evicted,
// which drops v itself if it is older than everything retained.
func (h *History[V]) Insert(v TimedValue[V]) {
	n := len(h.values)
	// Fast path for monotonic producers.
	if n == 0 || !v.Time.Before(h.values[n-1].Time) {
		h.values = append(h.values, v)
	} else {
		i := h.upperBound(v.Time)
		h.values = append(h.values, TimedValue[V]{})
		copy(h.values[i+1:], h.values[i:])
		h.values[i] = v
	}
	h.trim()
}

// InsertBatch merges samples sorted by time. Samples equal in time and value
// to a retained one are skipped, so inserting the same batch twice leaves the
// history unchanged. Only the newest Capacity samples of the merged sequence
// survive, whatever the batch size.
func (h *History[V]) InsertBatch(sorted []TimedValue[V]) {
	if len(sorted) == 0 {
		return
	}
	merged := make([]TimedValue[V], 0, len(h.values)+len(sorted))
	i, j := 0, 0
	for i < len(h.values) || j < len(sorted) {
		switch {
		case j == len(sorted):
			merged = append(merged, h.values[i])
			i++
		case i == len(h.values):
			merged = appendUnique(merged, sorted[j])
			j++
		case sorted[j].Time.Before(h.values[i].Time):
			merged = appendUnique(merged, sorted[j])
			j++
		default:
			merged = append(merged, h.values[i])
			i++
		}
	}
	h.values = merged
	h.trim()
}

// appendUnique appends v unless a sample with the same time and value is
// already at the tail of the equal-time run.
func appendUnique[V units.Quantity](dst []TimedValue[V], v TimedValue[V]) []TimedValue[V] {
	for k := len(dst) - 1; k >= 0 && dst[k].Time.Equal(v.Time); k-- {
		if dst[k].Value == v.Value {
			return dst
		}
	}
	return append(dst, v)
}

// Nearest returns the retained sample closest in time to t, provided it lies
// within tolerance. Among samples sharing a time stamp the last one inserted
// is returned. When the nearest samples lie at equal distance on either side
// of t the earlier one wins. A query that falls inside a gap wider than twice
// the tolerance misses even though both neighbours would be hits for queries
// close to them.
func (h *History[V]) Nearest(t time.Time, tolerance time.Duration) (TimedValue[V], bool) {
	n := len(h.values)
	if n == 0 || tolerance < 0 {
		return TimedValue[V]{}, false
	}
	if j := h.upperBound(t); j > 0 && h.values[j-1].Time.Equal(t) {
		return h.values[j-1], true
	}
	i := sort.Search(n, func(k int) bool { return !h.values[k].Time.Before(t) })
	best := -1
	var bestDist time.Duration
	if i > 0 {
		best = i - 1
		bestDist = model.AbsDuration(t, h.values[i-1].Time)
	}
	if i < n {
		if d := model.AbsDuration(t, h.values[i].Time); best < 0 || d < bestDist {
			best, bestDist = h.upperBound(h.values[i].Time)-1, d
		}
	}
	if bestDist > tolerance {
		return TimedValue[V]{}, false
	}
	return h.values[best], true
}

// upperBound returns the first index whose time is after t.
func (h *History[V]) upperBound(t time.Time) int {
	return sort.Search(len(h.values), func(k int) bool { return h.values[k].Time.After(t) })
}

func (h *History[V]) trim() {
	if extra := len(h.values) - h.capacity; extra > 0 {
		h.values = append(h.values[:0], h.values[extra:]...)
	}
}
