// Package scope ties reactive cells and subscriptions to the lifetime of
// widgets.
//
// A Tree is an arena of scopes. Each scope belongs to one widget, may own
// cells created with NewDynamic, subscriptions registered with Track and
// cleanup functions registered with OnCleanup. Closing a scope releases all
// of them.
//
// Teardown is strictly bottom-up: closing a scope that still has open
// children is a programming error and panics with E201. Parents must close
// their children first.
//
//	tree := scope.NewTree()
//	window := tree.NewRoot("window")
//	panel := window.NewChild("panel")
//	count := scope.NewDynamic(panel, 0)
//	count.Set(1)
//	panel.Close()
//	window.Close()
package scope
