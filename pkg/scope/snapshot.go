package scope

// Node is a serializable view of one scope and its subtree.
type Node struct {
	ID       string `json:"id"`
	Widget   string `json:"widget"`
	Name     string `json:"name,omitempty"`
	Cells    int    `json:"cells"`
	Tracked  int    `json:"tracked"`
	Cleanups int    `json:"cleanups"`
	Children []Node `json:"children,omitempty"`
}

// Snapshot returns the open scopes as a forest, roots in creation order.
func (t *Tree) Snapshot() []Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	var build func(id NodeID) Node
	build = func(id NodeID) Node {
		n, _ := t.nodes.get(id)
		out := Node{
			ID:       id.String(),
			Widget:   n.widget,
			Name:     n.name,
			Cells:    len(n.owned),
			Tracked:  len(n.tracked),
			Cleanups: len(n.cleanups),
		}
		for _, child := range n.children {
			out.Children = append(out.Children, build(child))
		}
		return out
	}

	roots := make([]Node, 0, len(t.roots))
	for _, id := range t.roots {
		roots = append(roots, build(id))
	}
	return roots
}
