package scope

import (
	"errors"
	"sync"
	"testing"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func TestScopeHierarchy(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("window")
	child1 := root.NewChild("panel", WithName("left"))
	child2 := root.NewChild("panel", WithName("right"))
	grandchild := child1.NewChild("button")

	if _, ok := root.Parent(); ok {
		t.Error("root should have no parent")
	}
	if p, ok := grandchild.Parent(); !ok || p.ID() != child1.ID() {
		t.Error("grandchild parent should be child1")
	}

	children := root.Children()
	if len(children) != 2 || children[0].ID() != child1.ID() || children[1].ID() != child2.ID() {
		t.Errorf("expected children in creation order, got %v", children)
	}
	if tree.Len() != 4 {
		t.Errorf("expected 4 scopes, got %d", tree.Len())
	}
	if grandchild.Widget() != "button" {
		t.Errorf("expected button, got %q", grandchild.Widget())
	}

	info, ok := grandchild.Info()
	if !ok || info.Depth != 2 {
		t.Errorf("expected depth 2, got %d", info.Depth)
	}
}

func TestScopeCloseBottomUp(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("window")
	child := root.NewChild("panel")

	var order []string
	child.OnCleanup(func() { order = append(order, "child") })
	root.OnCleanup(func() { order = append(order, "root") })

	child.Close()
	root.Close()

	if len(order) != 2 || order[0] != "child" || order[1] != "root" {
		t.Errorf("expected [child root], got %v", order)
	}
	if tree.Len() != 0 {
		t.Errorf("expected empty tree, got %d", tree.Len())
	}
	if !root.Closed() || !child.Closed() {
		t.Error("both scopes should be closed")
	}
}

func TestScopeCloseWithChildrenPanics(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("window")
	root.NewChild("panel")

	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic closing parent before child")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrChildrenAlive) {
				t.Errorf("expected ErrChildrenAlive, got %v", r)
			}
		}()
		root.Close()
	}()

	if root.Closed() {
		t.Error("failed close must leave the scope open")
	}
	if tree.Len() != 2 {
		t.Errorf("expected 2 scopes, got %d", tree.Len())
	}
}

func TestScopeCloseTwice(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")
	calls := 0
	s.OnCleanup(func() { calls++ })

	s.Close()
	s.Close()
	if calls != 1 {
		t.Errorf("expected cleanup once, got %d", calls)
	}
}

func TestScopeCleanupReverseOrder(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")

	var order []int
	for i := 1; i <= 3; i++ {
		s.OnCleanup(func() { order = append(order, i) })
	}
	s.Close()

	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("expected [3 2 1], got %v", order)
	}
}

func TestScopeOnCleanupAfterClose(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")
	s.Close()

	ran := false
	s.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup on a closed scope should run immediately")
	}
}

func TestScopeUseAfterClosePanics(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")
	s.Close()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", r)
		}
	}()
	s.NewChild("panel")
}

func TestScopeStaleIDAfterReuse(t *testing.T) {
	tree := NewTree()
	old := tree.NewRoot("first")
	oldID := old.ID()
	old.Close()

	fresh := tree.NewRoot("second")
	if fresh.ID().Index != oldID.Index {
		t.Fatalf("expected slot reuse, got %s after %s", fresh.ID(), oldID)
	}
	if _, ok := tree.Get(oldID); ok {
		t.Error("stale id must not resolve to the new scope")
	}
	if !old.Closed() {
		t.Error("old handle must stay closed after its slot is reused")
	}
	if s, ok := tree.Get(fresh.ID()); !ok || s.Widget() != "second" {
		t.Error("fresh id should resolve")
	}
}

func TestNewDynamicReleasedOnClose(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")

	count := NewDynamic(s, 0, reactive.WithName("count"))
	r := count.CreateReader()
	defer r.Close()

	count.Set(1)
	count.Release()
	if count.Disconnected() {
		t.Error("scope handle should keep the cell connected")
	}

	if !r.BlockUntilUpdated() || r.Get() != 1 {
		t.Fatal("expected the pending write")
	}

	s.Close()
	if !count.Disconnected() {
		t.Error("closing the scope should release its handle")
	}
	if r.BlockUntilUpdated() {
		t.Error("reader should end once the scope is closed")
	}
}

func TestTrackCancelsOnClose(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")
	d := reactive.New(0)

	calls := 0
	sub := d.ForEach(func(int) { calls++ })
	s.Track(sub)

	d.Set(1)
	s.Close()
	d.Set(2)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if sub.Active() {
		t.Error("subscription should be cancelled")
	}
}

func TestTrackPersistedSurvivesClose(t *testing.T) {
	tree := NewTree()
	s := tree.NewRoot("window")
	d := reactive.New(0)

	calls := 0
	sub := d.ForEach(func(int) { calls++ })
	sub.Persist()
	s.Track(sub)
	s.Close()

	d.Set(1)
	if calls != 1 {
		t.Errorf("persisted subscription should outlive the scope, got %d calls", calls)
	}
}

func TestTreeWalkAndSnapshot(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("window")
	a := root.NewChild("a")
	a.NewChild("a1")
	root.NewChild("b")
	NewDynamic(a, "x").Release()

	var widgets []string
	tree.Walk(func(info Info) bool {
		widgets = append(widgets, info.Widget)
		return true
	})
	want := []string{"window", "a", "a1", "b"}
	if len(widgets) != len(want) {
		t.Fatalf("expected %v, got %v", want, widgets)
	}
	for i := range want {
		if widgets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, widgets)
			break
		}
	}

	snap := tree.Snapshot()
	if len(snap) != 1 || len(snap[0].Children) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap[0].Children[0].Cells != 1 {
		t.Errorf("expected 1 owned cell on a, got %d", snap[0].Children[0].Cells)
	}

	visited := 0
	tree.Walk(func(Info) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("walk should stop early, visited %d", visited)
	}
}

func TestTreeClose(t *testing.T) {
	tree := NewTree()
	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	root := tree.NewRoot("window")
	root.OnCleanup(record("window"))
	a := root.NewChild("a")
	a.OnCleanup(record("a"))
	a.NewChild("a1").OnCleanup(record("a1"))
	root.NewChild("b").OnCleanup(record("b"))

	tree.Close()

	want := []string{"b", "a1", "a", "window"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}
	if tree.Len() != 0 {
		t.Errorf("expected empty tree, got %d", tree.Len())
	}
}

type countingObserver struct {
	mu             sync.Mutex
	opened, closed int
}

func (o *countingObserver) ScopeOpened(Info) {
	o.mu.Lock()
	o.opened++
	o.mu.Unlock()
}

func (o *countingObserver) ScopeClosed(Info) {
	o.mu.Lock()
	o.closed++
	o.mu.Unlock()
}

func TestTreeObserver(t *testing.T) {
	obs := &countingObserver{}
	tree := NewTree(WithObserver(obs))
	root := tree.NewRoot("window")
	root.NewChild("panel")
	tree.Close()

	if obs.opened != 2 || obs.closed != 2 {
		t.Errorf("expected 2 opened and 2 closed, got %d and %d", obs.opened, obs.closed)
	}
}

func TestConcurrentChildren(t *testing.T) {
	tree := NewTree()
	root := tree.NewRoot("window")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c := root.NewChild("item")
				NewDynamic(c, j).Release()
				c.Close()
			}
		}()
	}
	wg.Wait()

	if tree.Len() != 1 {
		t.Errorf("expected only the root left, got %d", tree.Len())
	}
	if len(root.Children()) != 0 {
		t.Errorf("expected no children, got %d", len(root.Children()))
	}
}
