package reactive

// Number is the set of types the arithmetic helpers accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Add adds n to d atomically and returns the stored value.
func Add[T Number](d *Dynamic[T], n T) T {
	return d.Update(func(v T) T { return v + n })
}

// Increment adds one to d atomically.
func Increment[T Number](d *Dynamic[T]) T {
	return Add(d, 1)
}

// Decrement subtracts one from d atomically.
func Decrement[T Number](d *Dynamic[T]) T {
	return d.Update(func(v T) T { return v - 1 })
}

// Clamp stores min(max(v, lo), hi) only when that differs from the current
// value, so a callback that clamps its own cell converges after one round.
func Clamp[T Number](d *Dynamic[T], lo, hi T) bool {
	clamp := func(v T) (T, bool) {
		switch {
		case v < lo:
			return lo, true
		case v > hi:
			return hi, true
		}
		return v, false
	}
	if d.c.writeThrough != nil {
		if v, changed := clamp(d.Get()); changed {
			d.Set(v)
			return true
		}
		return false
	}
	d.checkLive()
	return d.c.write(clamp).published
}

// Toggle flips a boolean cell atomically and returns the new value.
func Toggle(d *Dynamic[bool]) bool {
	return d.Update(func(v bool) bool { return !v })
}
