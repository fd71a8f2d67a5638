package reactive

import "strconv"

// Generation identifies one revision of a cell. It starts at zero and every
// successful write advances it by exactly one.
type Generation uint64

// Next returns the generation that follows g.
func (g Generation) Next() Generation {
	return g + 1
}

// String implements fmt.Stringer.
func (g Generation) String() string {
	return "g" + strconv.FormatUint(uint64(g), 10)
}

// Generational pairs a value with the generation it was published at.
type Generational[T any] struct {
	Value      T
	Generation Generation
}
