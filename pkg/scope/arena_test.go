package scope

import "testing"

func TestArenaReuseBumpsGeneration(t *testing.T) {
	var a arena[string]

	first := a.insert("a")
	if first.Index != 0 || first.Generation != 0 {
		t.Errorf("expected 0:0, got %s", first)
	}
	if !a.remove(first) {
		t.Fatal("remove should succeed")
	}
	if a.remove(first) {
		t.Error("second remove should fail")
	}

	second := a.insert("b")
	if second.Index != first.Index {
		t.Errorf("expected slot %d to be reused, got %d", first.Index, second.Index)
	}
	if second.Generation != 1 {
		t.Errorf("expected generation 1, got %d", second.Generation)
	}

	if _, ok := a.get(first); ok {
		t.Error("stale id must not resolve")
	}
	if v, ok := a.get(second); !ok || *v != "b" {
		t.Errorf("expected b, got %v (%v)", v, ok)
	}
	if a.len() != 1 {
		t.Errorf("expected 1 live slot, got %d", a.len())
	}
}

func TestArenaOutOfRange(t *testing.T) {
	var a arena[int]
	if _, ok := a.get(NodeID{Index: 5}); ok {
		t.Error("out-of-range id should not resolve")
	}
}
