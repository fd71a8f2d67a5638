package reactive

import "sync/atomic"

// Option configures a cell at construction.
type Option func(*options)

type options struct {
	name string
}

// WithName labels the cell for observers and the inspector.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Dynamic is a handle to a shared reactive cell. Handles obtained with Clone
// share the cell; the cell counts as disconnected once every handle has been
// released, which ends blocked readers.
type Dynamic[T any] struct {
	c        *cell[T]
	released atomic.Bool
}

// New allocates a cell holding initial at generation zero.
func New[T any](initial T, opts ...Option) *Dynamic[T] {
	o := applyOptions(opts)
	return &Dynamic[T]{c: newCell(initial, KindPrimary, o.name)}
}

// ID returns the cell's process-unique identifier. Clones share it.
func (d *Dynamic[T]) ID() uint64 {
	return d.c.info.ID
}

// Name returns the label given with WithName.
func (d *Dynamic[T]) Name() string {
	return d.c.info.Name
}

// Kind reports whether the cell is primary, derived or linked.
func (d *Dynamic[T]) Kind() Kind {
	return d.c.info.Kind
}

// Info returns the cell description passed to observers.
func (d *Dynamic[T]) Info() CellInfo {
	return d.c.info
}

// Get returns a copy of the current value.
func (d *Dynamic[T]) Get() T {
	return d.c.get().Value
}

// GetGenerational returns the current value with its generation.
func (d *Dynamic[T]) GetGenerational() Generational[T] {
	return d.c.get()
}

// Generation returns the current generation.
func (d *Dynamic[T]) Generation() Generation {
	return d.c.get().Generation
}

// Set stores v, advances the generation and notifies subscribers after the
// lock is released.
func (d *Dynamic[T]) Set(v T) {
	d.checkLive()
	if wt := d.c.writeThrough; wt != nil {
		wt(v)
		return
	}
	d.c.write(func(T) (T, bool) { return v, true })
}

// Update replaces the value with fn(current) while holding the cell lock for
// the whole read-modify-write, and returns the stored value. fn must not
// access d.
func (d *Dynamic[T]) Update(fn func(T) T) T {
	d.checkLive()
	if wt := d.c.writeThrough; wt != nil {
		wt(fn(d.Get()))
		return d.Get()
	}
	res := d.c.write(func(cur T) (T, bool) { return fn(cur), true })
	return res.next.Value
}

// Replace stores v and returns the previous value.
func (d *Dynamic[T]) Replace(v T) T {
	d.checkLive()
	if wt := d.c.writeThrough; wt != nil {
		prev := d.Get()
		wt(v)
		return prev
	}
	res := d.c.write(func(T) (T, bool) { return v, true })
	return res.prev.Value
}

// Take returns the current value and stores the zero value in its place.
func (d *Dynamic[T]) Take() T {
	var zero T
	return d.Replace(zero)
}

// SetIfChanged stores v only when it differs from the current value under
// the cell's equality function. It reports whether a write happened.
func (d *Dynamic[T]) SetIfChanged(v T) bool {
	d.checkLive()
	if wt := d.c.writeThrough; wt != nil {
		if d.c.equals(d.Get(), v) {
			return false
		}
		wt(v)
		return true
	}
	res := d.c.write(func(cur T) (T, bool) {
		if d.c.equalsLocked(cur, v) {
			return cur, false
		}
		return v, true
	})
	return res.published
}

// Mutate edits the value in place under the lock, then publishes it.
func (d *Dynamic[T]) Mutate(fn func(*T)) {
	d.checkLive()
	if wt := d.c.writeThrough; wt != nil {
		v := d.Get()
		fn(&v)
		wt(v)
		return
	}
	d.c.write(func(cur T) (T, bool) {
		fn(&cur)
		return cur, true
	})
}

// WithEqual configures the equality used by SetIfChanged and MapEachUnique
// and returns d. The default is == for scalar kinds and reflect.DeepEqual
// otherwise.
func (d *Dynamic[T]) WithEqual(fn func(a, b T) bool) *Dynamic[T] {
	d.c.mu.Lock()
	d.c.equal = fn
	d.c.mu.Unlock()
	return d
}

// Clone returns a new handle to the same cell.
func (d *Dynamic[T]) Clone() *Dynamic[T] {
	d.checkLive()
	d.c.retain()
	return &Dynamic[T]{c: d.c}
}

// WithClone calls fn with a fresh handle, typically to hand it to a
// goroutine.
func (d *Dynamic[T]) WithClone(fn func(*Dynamic[T])) {
	fn(d.Clone())
}

// Release drops this handle. Releasing twice is a no-op; writing through a
// released handle panics.
func (d *Dynamic[T]) Release() {
	if d.released.Swap(true) {
		return
	}
	d.c.release()
}

// IsReleased reports whether Release was called on this handle.
func (d *Dynamic[T]) IsReleased() bool {
	return d.released.Load()
}

// Disconnected reports whether every handle to the cell has been released.
func (d *Dynamic[T]) Disconnected() bool {
	return d.c.isDisconnected()
}

// Value wraps d as a read-only Value.
func (d *Dynamic[T]) Value() Value[T] {
	return Value[T]{dyn: d}
}

func (d *Dynamic[T]) checkLive() {
	if d.released.Load() {
		panic(releasedPanic(d.c.info))
	}
}
