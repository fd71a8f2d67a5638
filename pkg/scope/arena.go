package scope

import "fmt"

// NodeID addresses a slot in a Tree. Slots are reused after a scope is
// closed; the generation tells a stale id from the slot's new occupant.
type NodeID struct {
	Index      uint32
	Generation uint32
}

// String formats the id as index:generation.
func (id NodeID) String() string {
	return fmt.Sprintf("%d:%d", id.Index, id.Generation)
}

type slot[V any] struct {
	generation uint32
	used       bool
	value      V
}

// arena is an index-addressed store with slot reuse. It is not safe for
// concurrent use; Tree guards it.
type arena[V any] struct {
	slots []slot[V]
	free  []uint32
	live  int
}

func (a *arena[V]) insert(v V) NodeID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[V]{})
	}
	s := &a.slots[idx]
	s.used = true
	s.value = v
	a.live++
	return NodeID{Index: idx, Generation: s.generation}
}

func (a *arena[V]) get(id NodeID) (*V, bool) {
	if int(id.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[id.Index]
	if !s.used || s.generation != id.Generation {
		return nil, false
	}
	return &s.value, true
}

func (a *arena[V]) remove(id NodeID) bool {
	if _, ok := a.get(id); !ok {
		return false
	}
	s := &a.slots[id.Index]
	var zero V
	s.value = zero
	s.used = false
	s.generation++
	a.free = append(a.free, id.Index)
	a.live--
	return true
}

func (a *arena[V]) len() int {
	return a.live
}
