package dispatch

import (
	"sync"
	"sync/atomic"
)

// Subscription is the handle returned when registering a listener. Closing it
// unregisters the listener; a closed listener is never invoked again, even
// from a notification round that is already running.
type Subscription struct {
	active atomic.Bool
	once   sync.Once
	cancel func()
}

func newSubscription() *Subscription {
	s := &Subscription{}
	s.active.Store(true)
	return s
}

// Active reports whether the listener is still registered.
func (s *Subscription) Active() bool { return s != nil && s.active.Load() }

// Close unregisters the listener. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.active.Store(false)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// listenerEntry binds a subscription to the closure invoking the listener.
type listenerEntry struct {
	sub *Subscription
	fn  func()
}
