package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// upstream is the type-erased view a derivation has of one of its sources.
// currentGeneration refreshes the source first and must not be called with a
// derivation lock held.
type upstream interface {
	currentGeneration() Generation
	forward(fn func()) func()
	whenDisconnected(fn func())
}

func (c *cell[T]) currentGeneration() Generation {
	return c.get().Generation
}

func (c *cell[T]) forward(fn func()) func() {
	return c.subscribe(func(Generational[T]) { fn() })
}

// set routes a write through a linked cell or stores it directly.
func (c *cell[T]) set(v T) {
	if wt := c.writeThrough; wt != nil {
		wt(v)
		return
	}
	c.write(func(T) (T, bool) { return v, true })
}

// derivation keeps a derived cell in step with its sources. gens is the
// source generation tuple the cached value was computed from. compute only
// peeks at the sources: refreshing them may dispatch into other
// derivations, so it happens before mu is taken.
type derivation[O any] struct {
	mu      sync.Mutex
	sources []upstream
	gens    []Generation
	compute func() (O, []Generation)
	unique  bool
	target  *cell[O]
}

func (d *derivation[O]) sourceGenerations() []Generation {
	gens := make([]Generation, len(d.sources))
	for i, s := range d.sources {
		gens[i] = s.currentGeneration()
	}
	return gens
}

// refresh recomputes the projection if any source generation moved and
// delivers the republished value.
func (d *derivation[O]) refresh() {
	if d.recompute() {
		d.target.dispatch()
	}
}

func (d *derivation[O]) recompute() (dispatch bool) {
	current := d.sourceGenerations()

	d.mu.Lock()
	defer d.mu.Unlock()

	if slices.Equal(current, d.gens) {
		return false
	}

	// A panicking projection still records the tuple; the cache keeps the
	// last good value until a source moves.
	failed := true
	defer func() {
		if failed {
			d.gens = current
		}
	}()

	start := time.Now()
	v, gens := d.compute()
	failed = false
	d.gens = gens

	o := observer()
	if o != nil {
		o.Recomputed(d.target.info, time.Since(start))
	}

	res := d.target.apply(func(cur O) (O, bool) {
		if d.unique && d.target.equalsLocked(cur, v) {
			return cur, false
		}
		return v, true
	})
	if res.published && o != nil {
		o.CellWritten(d.target.info, res.next.Generation)
	}
	return res.dispatch
}

// newDerived computes the initial value once, then forwards every source
// write into a refresh of the new cell. The cell carries a second handle
// owned by its sources; it is released when the last source disconnects.
func newDerived[O any](kind Kind, name string, sources []upstream, compute func() (O, []Generation), unique bool) *Dynamic[O] {
	for _, s := range sources {
		s.currentGeneration()
	}
	v, gens := compute()
	c := newCell(v, kind, name)
	c.handles = 2

	d := &derivation[O]{
		sources: sources,
		gens:    gens,
		compute: compute,
		unique:  unique,
		target:  c,
	}
	c.refresh = d.refresh

	var live atomic.Int32
	live.Store(int32(len(sources)))
	for _, s := range sources {
		s.forward(d.refresh)
		s.whenDisconnected(func() {
			if live.Add(-1) == 0 {
				c.release()
			}
		})
	}
	return &Dynamic[O]{c: c}
}

// MapEach returns a cell holding f(src). f runs once now, then again only
// when src has moved to a new generation, either on read or when the
// forwarded write arrives. Subscribers of the result are notified once per
// write to src.
func MapEach[T, R any](src *Dynamic[T], f func(T) R, opts ...Option) *Dynamic[R] {
	o := applyOptions(opts)
	return newDerived(KindDerived, o.name, []upstream{src.c}, func() (R, []Generation) {
		g := src.c.peek()
		return f(g.Value), []Generation{g.Generation}
	}, false)
}

// MapEachUnique is MapEach that only publishes when the projected value
// differs from the cached one.
func MapEachUnique[T, R any](src *Dynamic[T], f func(T) R, opts ...Option) *Dynamic[R] {
	o := applyOptions(opts)
	return newDerived(KindDerived, o.name, []upstream{src.c}, func() (R, []Generation) {
		g := src.c.peek()
		return f(g.Value), []Generation{g.Generation}
	}, true)
}

// MapEach2 projects two cells. Each source is sampled on its own; f must
// not assume both samples come from the same instant.
func MapEach2[A, B, R any](a *Dynamic[A], b *Dynamic[B], f func(A, B) R, opts ...Option) *Dynamic[R] {
	o := applyOptions(opts)
	return newDerived(KindDerived, o.name, []upstream{a.c, b.c}, func() (R, []Generation) {
		ga := a.c.peek()
		gb := b.c.peek()
		return f(ga.Value, gb.Value), []Generation{ga.Generation, gb.Generation}
	}, false)
}

// MapEach3 projects three cells.
func MapEach3[A, B, C, R any](a *Dynamic[A], b *Dynamic[B], c *Dynamic[C], f func(A, B, C) R, opts ...Option) *Dynamic[R] {
	o := applyOptions(opts)
	return newDerived(KindDerived, o.name, []upstream{a.c, b.c, c.c}, func() (R, []Generation) {
		ga := a.c.peek()
		gb := b.c.peek()
		gc := c.c.peek()
		return f(ga.Value, gb.Value, gc.Value), []Generation{ga.Generation, gb.Generation, gc.Generation}
	}, false)
}

// Linked returns a two-way projection of src. Reads see get(src). Writes
// call set and store the result in src through its normal write path; the
// linked cell then picks up the change through its forwarding callback,
// which only ever calls get.
func Linked[S, T any](src *Dynamic[S], get func(S) T, set func(T) S, opts ...Option) *Dynamic[T] {
	o := applyOptions(opts)
	linked := newDerived(KindLinked, o.name, []upstream{src.c}, func() (T, []Generation) {
		g := src.c.peek()
		return get(g.Value), []Generation{g.Generation}
	}, false)
	linked.c.writeThrough = func(v T) {
		src.c.set(set(v))
	}
	return linked
}
