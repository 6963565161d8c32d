package dispatch

import "sync"

// SourcePriorityTable maps source names to arbitration priorities. Unknown
// sources have priority 0. Changes only affect arbitrations performed after
// them.
type SourcePriorityTable struct {
	mu   sync.RWMutex
	prio map[string]int
}

// NewSourcePriorityTable returns a table seeded with initial.
func NewSourcePriorityTable(initial map[string]int) *SourcePriorityTable {
	t := &SourcePriorityTable{prio: make(map[string]int, len(initial))}
	for k, v := range initial {
		t.prio[k] = v
	}
	return t
}

// Get returns the priority of name.
func (t *SourcePriorityTable) Get(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prio[name]
}

// Set assigns a priority to name.
func (t *SourcePriorityTable) Set(name string, priority int) {
	t.mu.Lock()
	t.prio[name] = priority
	t.mu.Unlock()
}

// Snapshot returns a copy of the explicitly set priorities.
func (t *SourcePriorityTable) Snapshot() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]int, len(t.prio))
	for k, v := range t.prio {
		out[k] = v
	}
	return out
}
