package reactive

import (
	"sync/atomic"
	"time"
)

// Kind classifies a cell.
type Kind uint8

const (
	KindPrimary Kind = iota + 1
	KindDerived
	KindLinked
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindDerived:
		return "derived"
	case KindLinked:
		return "linked"
	default:
		return "unknown"
	}
}

// CellInfo describes a cell to an Observer.
type CellInfo struct {
	ID   uint64
	Name string
	Kind Kind
}

// Observer receives instrumentation events from every cell in the process.
// Implementations must be safe for concurrent use and must not call back
// into the cell that reported the event.
type Observer interface {
	CellCreated(info CellInfo)
	CellWritten(info CellInfo, gen Generation)
	Notified(info CellInfo, gen Generation, callbacks int)
	Recomputed(info CellInfo, took time.Duration)
	Coalesced(info CellInfo, skipped uint64)
	CellDisconnected(info CellInfo)
}

// NopObserver ignores every event. Embed it to implement a subset of
// Observer.
type NopObserver struct{}

func (NopObserver) CellCreated(CellInfo) {}
func (NopObserver) CellWritten(CellInfo, Generation) {}
func (NopObserver) Notified(CellInfo, Generation, int) {}
func (NopObserver) Recomputed(CellInfo, time.Duration) {}
func (NopObserver) Coalesced(CellInfo, uint64) {}
func (NopObserver) CellDisconnected(CellInfo) {}

type observerBox struct {
	o Observer
}

var currentObserver atomic.Pointer[observerBox]

// SetObserver installs o as the process-wide observer. Passing nil removes
// the current one.
func SetObserver(o Observer) {
	if o == nil {
		currentObserver.Store(nil)
		return
	}
	currentObserver.Store(&observerBox{o: o})
}

// observer returns the installed observer, or nil.
func observer() Observer {
	if box := currentObserver.Load(); box != nil {
		return box.o
	}
	return nil
}
