package reactive

import "sync/atomic"

var globalIDCounter uint64

// nextID returns the next unique ID for a cell or subscriber.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
