package reactive

import "sync"

// Subscription is the handle for one or more registered callbacks. Cancel
// deregisters them; Persist detaches them so they run for the rest of the
// cell's life.
type Subscription struct {
	mu        sync.Mutex
	cancels   []func()
	persisted bool
	cancelled bool
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancels: []func(){cancel}}
}

// Cancel deregisters every callback held by s. Callbacks already running
// finish; no later generation reaches them. Cancel on a persisted or nil
// subscription is a no-op.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.persisted || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Persist turns s into a detached subscription that can no longer be
// cancelled.
func (s *Subscription) Persist() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.persisted = true
	s.cancels = nil
}

// And moves the callbacks held by other into s and returns s, so a single
// Cancel tears down both.
func (s *Subscription) And(other *Subscription) *Subscription {
	if other == nil || other == s {
		return s
	}
	other.mu.Lock()
	moved := other.cancels
	otherPersisted := other.persisted
	other.cancels = nil
	other.cancelled = !otherPersisted
	other.mu.Unlock()

	if otherPersisted {
		return s
	}

	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		for _, cancel := range moved {
			cancel()
		}
		return s
	}
	if !s.persisted {
		s.cancels = append(s.cancels, moved...)
	}
	s.mu.Unlock()
	return s
}

// Active reports whether s still delivers callbacks.
func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled
}

// Persisted reports whether Persist was called.
func (s *Subscription) Persisted() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// ForEach registers fn to run after every write, in registration order
// relative to the cell's other callbacks. fn receives a copy of the new
// value and may write to d; that write becomes a further notification round.
func (d *Dynamic[T]) ForEach(fn func(T)) *Subscription {
	return newSubscription(d.c.subscribe(func(g Generational[T]) {
		fn(g.Value)
	}))
}

// ForEachGenerational is ForEach with the generation of each delivered
// value.
func (d *Dynamic[T]) ForEachGenerational(fn func(Generational[T])) *Subscription {
	return newSubscription(d.c.subscribe(fn))
}

// Subscribers returns the number of registered callbacks, including the
// forwarding callbacks of derived values.
func (d *Dynamic[T]) Subscribers() int {
	return d.c.subscriberCount()
}
