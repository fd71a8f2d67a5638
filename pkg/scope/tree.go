package scope

import (
	"log/slog"
	"slices"
	"sync"
)

// releaser is anything the scope drops on close: cell handles, readers.
type releaser interface {
	Release()
}

type node struct {
	parent   NodeID
	isRoot   bool
	children []NodeID
	widget   string
	name     string

	cleanups []func()
	tracked  []interface{ Cancel() }
	owned    []releaser
}

// Tree is an arena of scopes. All methods are safe for concurrent use; user
// callbacks never run while the tree lock is held.
type Tree struct {
	mu    sync.Mutex
	nodes arena[node]
	roots []NodeID

	observer Observer
	logger   *slog.Logger
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithObserver reports scope lifecycle events to o.
func WithObserver(o Observer) TreeOption {
	return func(t *Tree) {
		t.observer = o
	}
}

// WithLogger sets the logger used for lifecycle debug records.
// If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) TreeOption {
	return func(t *Tree) {
		t.logger = l
	}
}

// NewTree creates an empty tree.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// NewRoot opens a scope with no parent.
func (t *Tree) NewRoot(widget string, opts ...NodeOption) *Scope {
	return t.open(NodeID{}, true, widget, opts)
}

func (t *Tree) open(parent NodeID, isRoot bool, widget string, opts []NodeOption) *Scope {
	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	t.mu.Lock()
	if !isRoot {
		if _, ok := t.nodes.get(parent); !ok {
			t.mu.Unlock()
			panic(closedPanic(parent))
		}
	}
	id := t.nodes.insert(node{parent: parent, isRoot: isRoot, widget: widget, name: o.name})
	if isRoot {
		t.roots = append(t.roots, id)
	} else {
		// insert may have grown the slot slice, so look the parent up after it.
		p, _ := t.nodes.get(parent)
		p.children = append(p.children, id)
	}
	info := t.infoLocked(id)
	t.mu.Unlock()

	t.opened(info)
	return &Scope{tree: t, id: id}
}

func (t *Tree) opened(info Info) {
	t.logger.Debug("scope opened", "scope", info.ID.String(), "widget", info.Widget, "depth", info.Depth)
	if t.observer != nil {
		t.observer.ScopeOpened(info)
	}
}

// infoLocked describes the node at id. t.mu must be held and id live.
func (t *Tree) infoLocked(id NodeID) Info {
	n, _ := t.nodes.get(id)
	info := Info{
		ID:       id,
		Parent:   n.parent,
		IsRoot:   n.isRoot,
		Widget:   n.widget,
		Name:     n.name,
		Cells:    len(n.owned),
		Tracked:  len(n.tracked),
		Cleanups: len(n.cleanups),
	}
	for cur := n; !cur.isRoot; {
		info.Depth++
		cur, _ = t.nodes.get(cur.parent)
	}
	return info
}

// Len returns the number of open scopes.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes.len()
}

// Get returns the scope at id, or false if it was closed.
func (t *Tree) Get(id NodeID) (*Scope, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes.get(id); !ok {
		return nil, false
	}
	return &Scope{tree: t, id: id}, true
}

// Roots returns the open root scopes in creation order.
func (t *Tree) Roots() []*Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Scope, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, &Scope{tree: t, id: id})
	}
	return out
}

// Walk visits every open scope depth-first, parents before children, in
// creation order. It works on a snapshot taken when Walk starts; returning
// false from fn stops the walk.
func (t *Tree) Walk(fn func(Info) bool) {
	t.mu.Lock()
	var infos []Info
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n, ok := t.nodes.get(id)
		if !ok {
			return
		}
		infos = append(infos, t.infoLocked(id))
		for _, child := range slices.Clone(n.children) {
			visit(child)
		}
	}
	for _, id := range t.roots {
		visit(id)
	}
	t.mu.Unlock()

	for _, info := range infos {
		if !fn(info) {
			return
		}
	}
}

// Close closes every open scope bottom-up.
func (t *Tree) Close() {
	for _, root := range t.Roots() {
		root.CloseAll()
	}
}
