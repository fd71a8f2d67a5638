package scope

import (
	"errors"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// ErrChildrenAlive is wrapped by the panic raised when a scope is closed
// while it still has open children.
var ErrChildrenAlive = errors.New("scope: closed with open children")

// ErrClosed is wrapped by the panic raised when a closed scope is used to
// create children or cells.
var ErrClosed = errors.New("scope: use of closed scope")

func childrenAlivePanic(info Info, children []Info) *rerrors.Error {
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.label())
	}
	return rerrors.New("E201").
		WithCaller(2).
		WithDetailf("scope %s still has %d open children: %v", info.label(), len(children), names).
		WithSuggestion("Close child scopes before their parent").
		Wrap(ErrChildrenAlive)
}

func closedPanic(id NodeID) *rerrors.Error {
	return rerrors.New("E204").
		WithCaller(3).
		WithDetailf("scope %s", id).
		Wrap(ErrClosed)
}
