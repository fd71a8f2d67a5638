package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// subscriber is one registered callback. live is cleared before the
// subscriber is removed so an in-flight dispatch snapshot skips it.
type subscriber[T any] struct {
	id   uint64
	fn   func(Generational[T])
	live atomic.Bool
}

// cell is the shared state behind every Dynamic handle.
type cell[T any] struct {
	info CellInfo

	mu      sync.Mutex
	current Generational[T]
	subs    []*subscriber[T]

	// wake is closed and replaced on every publish and on disconnect. It is
	// the single primitive both blocking and context-aware readers park on.
	wake chan struct{}

	handles      int
	readers      int
	disconnected bool
	onDisconnect []func()

	// pending holds published generations not yet delivered to subscribers,
	// in generation order. Only the goroutine that set dispatching drains it.
	pending     []Generational[T]
	dispatching bool

	equal func(a, b T) bool

	// refresh is set on derived cells and brings the cached value up to date
	// with the sources before a read.
	refresh func()

	// writeThrough is set on linked cells; writes go to the source instead.
	writeThrough func(T)
}

func newCell[T any](initial T, kind Kind, name string) *cell[T] {
	c := &cell[T]{
		info:    CellInfo{ID: nextID(), Name: name, Kind: kind},
		current: Generational[T]{Value: initial},
		wake:    make(chan struct{}),
		handles: 1,
	}
	if o := observer(); o != nil {
		o.CellCreated(c.info)
	}
	return c
}

// get brings a derived cell up to date and returns the current value and
// generation.
func (c *cell[T]) get() Generational[T] {
	if c.refresh != nil {
		c.refresh()
	}
	return c.peek()
}

// peek returns the stored value without refreshing.
func (c *cell[T]) peek() Generational[T] {
	c.mu.Lock()
	g := c.current
	c.mu.Unlock()
	return g
}

// publishLocked stores v as the next generation, wakes parked readers and
// queues the notification. It reports whether the caller became the
// dispatcher and must call dispatch after unlocking. c.mu must be held.
func (c *cell[T]) publishLocked(v T) bool {
	c.current = Generational[T]{Value: v, Generation: c.current.Generation.Next()}
	close(c.wake)
	c.wake = make(chan struct{})

	if len(c.subs) > 0 {
		c.pending = append(c.pending, c.current)
	}
	if c.dispatching || len(c.pending) == 0 {
		return false
	}
	c.dispatching = true
	return true
}

type writeResult[T any] struct {
	prev, next Generational[T]
	published  bool
	dispatch   bool
}

// apply runs fn under the lock. fn returns the new value and whether it
// should be published.
func (c *cell[T]) apply(fn func(cur T) (T, bool)) (res writeResult[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res.prev = c.current
	next, ok := fn(c.current.Value)
	if !ok {
		res.next = c.current
		return res
	}
	res.dispatch = c.publishLocked(next)
	res.next = c.current
	res.published = true
	return res
}

// write applies fn and, after the lock is released, reports the write and
// delivers notifications.
func (c *cell[T]) write(fn func(cur T) (T, bool)) writeResult[T] {
	res := c.apply(fn)
	if res.published {
		if o := observer(); o != nil {
			o.CellWritten(c.info, res.next.Generation)
		}
	}
	if res.dispatch {
		c.dispatch()
	}
	return res
}

// dispatch drains the pending queue, invoking live subscribers outside the
// lock. Writes made by callbacks are appended to the queue and delivered as
// further rounds by this same loop.
func (c *cell[T]) dispatch() {
	limit := CurrentConfig().MaxNotifyRounds
	rounds := 0
	finished := false
	defer func() {
		if !finished {
			// A callback panicked: hand the queue to the next writer.
			c.mu.Lock()
			c.dispatching = false
			c.mu.Unlock()
		}
	}()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.dispatching = false
			c.mu.Unlock()
			finished = true
			return
		}
		next := c.pending[0]
		c.pending[0] = Generational[T]{}
		c.pending = c.pending[1:]
		subs := make([]*subscriber[T], len(c.subs))
		copy(subs, c.subs)
		c.mu.Unlock()

		rounds++
		if limit > 0 && rounds > limit {
			c.mu.Lock()
			c.pending = nil
			c.mu.Unlock()
			panic(notifyLoopPanic(c.info, rounds))
		}

		invoked := 0
		for _, s := range subs {
			if s.live.Load() {
				s.fn(next)
				invoked++
			}
		}
		if o := observer(); o != nil {
			o.Notified(c.info, next.Generation, invoked)
		}
	}
}

// subscribe registers fn and returns the function that removes it.
func (c *cell[T]) subscribe(fn func(Generational[T])) func() {
	s := &subscriber[T]{id: nextID(), fn: fn}
	s.live.Store(true)

	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()

	return func() {
		if !s.live.Swap(false) {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, existing := range c.subs {
			if existing == s {
				// Keep registration order for the remaining subscribers.
				c.subs = slices.Delete(c.subs, i, i+1)
				return
			}
		}
	}
}

func (c *cell[T]) subscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// poll reports whether the cell moved past last. When it has not and the
// cell is still connected, it returns the channel to park on.
func (c *cell[T]) poll(last Generation) (wake <-chan struct{}, updated, live bool) {
	if c.refresh != nil {
		c.refresh()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.Generation != last {
		return nil, true, true
	}
	if c.disconnected {
		return nil, false, false
	}
	return c.wake, false, true
}

func (c *cell[T]) retain() {
	c.mu.Lock()
	c.handles++
	c.mu.Unlock()
}

// release drops one handle. When the last one goes, parked readers are
// woken and the disconnect hooks run.
func (c *cell[T]) release() {
	c.mu.Lock()
	c.handles--
	if c.handles > 0 || c.disconnected {
		c.mu.Unlock()
		return
	}
	c.disconnected = true
	close(c.wake)
	c.wake = make(chan struct{})
	hooks := c.onDisconnect
	c.onDisconnect = nil
	c.mu.Unlock()

	if o := observer(); o != nil {
		o.CellDisconnected(c.info)
	}
	for _, hook := range hooks {
		hook()
	}
}

// whenDisconnected runs fn once the last handle is released, or right away
// if that already happened.
func (c *cell[T]) whenDisconnected(fn func()) {
	c.mu.Lock()
	if c.disconnected {
		c.mu.Unlock()
		fn()
		return
	}
	c.onDisconnect = append(c.onDisconnect, fn)
	c.mu.Unlock()
}

func (c *cell[T]) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

func (c *cell[T]) addReader(delta int) {
	c.mu.Lock()
	c.readers += delta
	c.mu.Unlock()
}

func (c *cell[T]) equals(a, b T) bool {
	c.mu.Lock()
	eq := c.equal
	c.mu.Unlock()
	if eq != nil {
		return eq(a, b)
	}
	return defaultEqual(a, b)
}

// equalsLocked is equals for callers that already hold c.mu.
func (c *cell[T]) equalsLocked(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEqual(a, b)
}
