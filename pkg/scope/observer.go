package scope

// Info describes a scope to observers and the inspector.
type Info struct {
	ID       NodeID
	Parent   NodeID
	IsRoot   bool
	Widget   string
	Name     string
	Depth    int
	Cells    int
	Tracked  int
	Cleanups int
}

func (i Info) label() string {
	if i.Name != "" {
		return i.Widget + "(" + i.Name + ")@" + i.ID.String()
	}
	return i.Widget + "@" + i.ID.String()
}

// Observer receives scope lifecycle events. Implementations must be safe
// for concurrent use.
type Observer interface {
	ScopeOpened(info Info)
	ScopeClosed(info Info)
}
