package reactive

// Value is either a constant or a handle to a Dynamic. Code that only reads
// accepts a Value; writing or subscribing requires the *Dynamic itself. The
// zero Value is the constant zero value of T.
type Value[T any] struct {
	constant T
	dyn      *Dynamic[T]
}

// Constant returns a Value that never changes.
func Constant[T any](v T) Value[T] {
	return Value[T]{constant: v}
}

// Get returns the current value.
func (v Value[T]) Get() T {
	if v.dyn != nil {
		return v.dyn.Get()
	}
	return v.constant
}

// IsConstant reports whether v can never change.
func (v Value[T]) IsConstant() bool {
	return v.dyn == nil
}

// Generation returns the generation of the backing cell; ok is false for
// constants.
func (v Value[T]) Generation() (gen Generation, ok bool) {
	if v.dyn == nil {
		return 0, false
	}
	return v.dyn.Generation(), true
}

// CreateReader returns a reader over the backing cell so read-only code can
// find out when to re-read. ok is false for constants.
func (v Value[T]) CreateReader() (r *Reader[T], ok bool) {
	if v.dyn == nil {
		return nil, false
	}
	return v.dyn.CreateReader(), true
}

// MapValue projects v with f. A constant maps to a constant; a dynamic maps
// to a derived cell.
func MapValue[T, R any](v Value[T], f func(T) R) Value[R] {
	if v.dyn == nil {
		return Constant(f(v.constant))
	}
	return MapEach(v.dyn, f).Value()
}
