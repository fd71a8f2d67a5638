package scope

import (
	"slices"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// NodeOption configures a scope at creation.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	name string
}

// WithName labels the scope for logs and the inspector.
func WithName(name string) NodeOption {
	return func(o *nodeOptions) {
		o.name = name
	}
}

// Scope is a handle to one node of a Tree. Handles are cheap values; two
// handles with the same ID refer to the same node.
type Scope struct {
	tree *Tree
	id   NodeID
}

// ID returns the arena address of the scope.
func (s *Scope) ID() NodeID {
	return s.id
}

// Tree returns the tree the scope belongs to.
func (s *Scope) Tree() *Tree {
	return s.tree
}

// Closed reports whether the scope has been closed.
func (s *Scope) Closed() bool {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	_, ok := s.tree.nodes.get(s.id)
	return !ok
}

// Info describes the scope. ok is false once it is closed.
func (s *Scope) Info() (info Info, ok bool) {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	if _, ok := s.tree.nodes.get(s.id); !ok {
		return Info{}, false
	}
	return s.tree.infoLocked(s.id), true
}

// Widget returns the widget the scope was opened for, or "" once closed.
func (s *Scope) Widget() string {
	info, _ := s.Info()
	return info.Widget
}

// Parent returns the parent scope. ok is false for roots and closed scopes.
func (s *Scope) Parent() (*Scope, bool) {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	n, ok := s.tree.nodes.get(s.id)
	if !ok || n.isRoot {
		return nil, false
	}
	return &Scope{tree: s.tree, id: n.parent}, true
}

// Children returns the open children in creation order.
func (s *Scope) Children() []*Scope {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	n, ok := s.tree.nodes.get(s.id)
	if !ok {
		return nil
	}
	out := make([]*Scope, 0, len(n.children))
	for _, id := range n.children {
		out = append(out, &Scope{tree: s.tree, id: id})
	}
	return out
}

// NewChild opens a scope under s. It panics with E204 if s is closed.
func (s *Scope) NewChild(widget string, opts ...NodeOption) *Scope {
	s.checkOpen()
	return s.tree.open(s.id, false, widget, opts)
}

// OnCleanup registers fn to run when s closes. Cleanups run in reverse
// registration order. If s is already closed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if !s.attach(func(n *node) { n.cleanups = append(n.cleanups, fn) }) {
		fn()
	}
}

// Track cancels sub when s closes. If s is already closed, sub is
// cancelled immediately.
func (s *Scope) Track(sub *reactive.Subscription) {
	if !s.attach(func(n *node) { n.tracked = append(n.tracked, sub) }) {
		sub.Cancel()
	}
}

// Own releases r when s closes. Use it for cell handles and readers the
// scope should outlive no longer than itself.
func (s *Scope) Own(r interface{ Release() }) {
	if !s.attach(func(n *node) { n.owned = append(n.owned, r) }) {
		r.Release()
	}
}

// NewDynamic creates a cell owned by s. The scope keeps its own handle and
// releases it on close; the returned handle belongs to the caller.
func NewDynamic[T any](s *Scope, initial T, opts ...reactive.Option) *reactive.Dynamic[T] {
	s.checkOpen()
	d := reactive.New(initial, opts...)
	s.Own(d.Clone())
	return d
}

func (s *Scope) attach(fn func(*node)) bool {
	s.tree.mu.Lock()
	defer s.tree.mu.Unlock()
	n, ok := s.tree.nodes.get(s.id)
	if !ok {
		return false
	}
	fn(n)
	return true
}

func (s *Scope) checkOpen() {
	if s.Closed() {
		panic(closedPanic(s.id))
	}
}

// Close tears the scope down: cleanups run in reverse order, tracked
// subscriptions are cancelled and owned handles released, then the scope
// is detached from its parent and its slot freed. Closing an already
// closed scope does nothing.
//
// Close panics with E201 if any child scope is still open.
func (s *Scope) Close() {
	t := s.tree
	t.mu.Lock()
	n, ok := t.nodes.get(s.id)
	if !ok {
		t.mu.Unlock()
		return
	}
	if len(n.children) > 0 {
		info := t.infoLocked(s.id)
		children := make([]Info, 0, len(n.children))
		for _, id := range n.children {
			children = append(children, t.infoLocked(id))
		}
		t.mu.Unlock()
		panic(childrenAlivePanic(info, children))
	}

	info := t.infoLocked(s.id)
	cleanups := n.cleanups
	tracked := n.tracked
	owned := n.owned

	if n.isRoot {
		if i := slices.Index(t.roots, s.id); i >= 0 {
			t.roots = slices.Delete(t.roots, i, i+1)
		}
	} else if p, ok := t.nodes.get(n.parent); ok {
		if i := slices.Index(p.children, s.id); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	t.nodes.remove(s.id)
	t.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	for _, sub := range tracked {
		sub.Cancel()
	}
	for _, r := range owned {
		r.Release()
	}

	t.logger.Debug("scope closed", "scope", info.ID.String(), "widget", info.Widget,
		"cells", info.Cells, "tracked", info.Tracked, "cleanups", info.Cleanups)
	if t.observer != nil {
		t.observer.ScopeClosed(info)
	}
}

// CloseAll closes the subtree rooted at s, children before parents, last
// opened child first.
func (s *Scope) CloseAll() {
	children := s.Children()
	for i := len(children) - 1; i >= 0; i-- {
		children[i].CloseAll()
	}
	s.Close()
}
