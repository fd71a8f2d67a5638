package reactive

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// Reader is a last-value cursor over a cell's generations. It reports only
// changes made after it was created; writes that land between two reads are
// coalesced into the latest one.
//
// A Reader belongs to one consumer at a time. Close may be called from any
// goroutine.
type Reader[T any] struct {
	c         *cell[T]
	lastSeen  Generation
	coalesced atomic.Uint64

	stop      chan struct{}
	closeOnce sync.Once
}

// CreateReader returns a reader positioned at the current generation.
func (d *Dynamic[T]) CreateReader() *Reader[T] {
	d.c.addReader(1)
	return &Reader[T]{
		c:        d.c,
		lastSeen: d.c.get().Generation,
		stop:     make(chan struct{}),
	}
}

// Values returns an iterator over future values of d. It blocks between
// updates and ends once every handle to d has been released or the loop
// breaks.
func (d *Dynamic[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		r := d.CreateReader()
		defer r.Close()
		for v := range r.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Get returns the current value and marks its generation as read.
func (r *Reader[T]) Get() T {
	return r.capture().Value
}

// GetGenerational is Get with the generation that was read.
func (r *Reader[T]) GetGenerational() Generational[T] {
	return r.capture()
}

func (r *Reader[T]) capture() Generational[T] {
	g := r.c.get()
	if g.Generation > r.lastSeen {
		if skipped := uint64(g.Generation-r.lastSeen) - 1; skipped > 0 {
			r.coalesced.Add(skipped)
			if o := observer(); o != nil {
				o.Coalesced(r.c.info, skipped)
			}
		}
		r.lastSeen = g.Generation
	}
	return g
}

// LastSeen returns the generation of the last value read through r.
func (r *Reader[T]) LastSeen() Generation {
	return r.lastSeen
}

// HasUpdated reports whether the cell moved past the last read generation.
func (r *Reader[T]) HasUpdated() bool {
	_, updated, _ := r.c.poll(r.lastSeen)
	return updated
}

// Coalesced returns how many generations were never observed because a
// newer one replaced them first.
func (r *Reader[T]) Coalesced() uint64 {
	return r.coalesced.Load()
}

// Wait parks until the cell moves past the last read generation. It returns
// true when there is something new to read, false once the cell is
// disconnected or r is closed, and ctx.Err() when ctx ends first.
func (r *Reader[T]) Wait(ctx context.Context) (bool, error) {
	for {
		wake, updated, live := r.c.poll(r.lastSeen)
		if updated {
			return true, nil
		}
		if !live {
			return false, nil
		}
		select {
		case <-wake:
		case <-r.stop:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// BlockUntilUpdated parks the calling goroutine until the cell changes. It
// returns false once no writer handle remains and nothing unread is left.
func (r *Reader[T]) BlockUntilUpdated() bool {
	ok, _ := r.Wait(context.Background())
	return ok
}

// Next blocks until the next update and returns the latest value.
func (r *Reader[T]) Next() (T, bool) {
	if !r.BlockUntilUpdated() {
		var zero T
		return zero, false
	}
	return r.Get(), true
}

// All returns an iterator where each step is one Next call. It ends when
// the cell is disconnected or r is closed.
func (r *Reader[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := r.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Stream delivers updates on a channel until ctx ends, r is closed or the
// cell is disconnected, then closes the channel. The channel holds at most
// one value: when the consumer falls behind, the unread value is replaced
// by the newer one.
func (r *Reader[T]) Stream(ctx context.Context) <-chan T {
	return stream(ctx, r, func(g Generational[T]) T { return g.Value })
}

// StreamGenerational is Stream with the generation of each value.
func (r *Reader[T]) StreamGenerational(ctx context.Context) <-chan Generational[T] {
	return stream(ctx, r, func(g Generational[T]) Generational[T] { return g })
}

func stream[T, V any](ctx context.Context, r *Reader[T], conv func(Generational[T]) V) <-chan V {
	out := make(chan V, 1)
	go func() {
		defer close(out)
		for {
			ok, err := r.Wait(ctx)
			if err != nil || !ok {
				return
			}
			v := conv(r.capture())
			select {
			case out <- v:
				continue
			default:
			}
			select {
			case <-out:
				r.coalesced.Add(1)
				if o := observer(); o != nil {
					o.Coalesced(r.c.info, 1)
				}
			default:
			}
			// The consumer only receives, so the slot is free now.
			out <- v
		}
	}()
	return out
}

// Close detaches r and ends any Wait, Next or Stream in progress.
func (r *Reader[T]) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		r.c.addReader(-1)
	})
}

// Readers returns the number of open readers on the cell.
func (d *Dynamic[T]) Readers() int {
	d.c.mu.Lock()
	defer d.c.mu.Unlock()
	return d.c.readers
}
