package observe

import (
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

type multi []Observer

// Multi returns an observer that forwards every event to each of obs in
// order. Nil entries are skipped.
func Multi(obs ...Observer) Observer {
	out := make(multi, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multi) CellCreated(info reactive.CellInfo) {
	for _, o := range m {
		o.CellCreated(info)
	}
}

func (m multi) CellWritten(info reactive.CellInfo, gen reactive.Generation) {
	for _, o := range m {
		o.CellWritten(info, gen)
	}
}

func (m multi) Notified(info reactive.CellInfo, gen reactive.Generation, callbacks int) {
	for _, o := range m {
		o.Notified(info, gen, callbacks)
	}
}

func (m multi) Recomputed(info reactive.CellInfo, took time.Duration) {
	for _, o := range m {
		o.Recomputed(info, took)
	}
}

func (m multi) Coalesced(info reactive.CellInfo, skipped uint64) {
	for _, o := range m {
		o.Coalesced(info, skipped)
	}
}

func (m multi) CellDisconnected(info reactive.CellInfo) {
	for _, o := range m {
		o.CellDisconnected(info)
	}
}

func (m multi) ScopeOpened(info scope.Info) {
	for _, o := range m {
		o.ScopeOpened(info)
	}
}

func (m multi) ScopeClosed(info scope.Info) {
	for _, o := range m {
		o.ScopeClosed(info)
	}
}
