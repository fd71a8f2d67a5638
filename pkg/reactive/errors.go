package reactive

import (
	"errors"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// ErrReleased is wrapped by the panic raised when a released handle is
// written through.
var ErrReleased = errors.New("reactive: dynamic handle released")

// ErrNotifyLoop is wrapped by the panic raised when a dispatch exceeds
// Config.MaxNotifyRounds.
var ErrNotifyLoop = errors.New("reactive: notification loop bound exceeded")

func releasedPanic(info CellInfo) *rerrors.Error {
	return rerrors.New("E202").
		WithCaller(3).
		WithDetailf("cell %d %q", info.ID, info.Name).
		WithSuggestion("Keep a live handle with Clone before releasing the original").
		Wrap(ErrReleased)
}

func notifyLoopPanic(info CellInfo, rounds int) *rerrors.Error {
	return rerrors.New("E203").
		WithDetailf("cell %d %q drained %d rounds in one dispatch", info.ID, info.Name, rounds).
		WithSuggestion("Make callbacks that write back into their own cell converge, or raise MaxNotifyRounds").
		Wrap(ErrNotifyLoop)
}
