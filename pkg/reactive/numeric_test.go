package reactive

import "testing"

func TestNumericHelpers(t *testing.T) {
	d := New(10)

	if got := Add(d, 5); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}
	if got := Increment(d); got != 16 {
		t.Errorf("expected 16, got %d", got)
	}
	if got := Decrement(d); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}

	f := New(1.5)
	Add(f, 0.5)
	if f.Get() != 2.0 {
		t.Errorf("expected 2.0, got %v", f.Get())
	}
}

func TestClamp(t *testing.T) {
	d := New(50)

	if Clamp(d, 0, 100) {
		t.Error("in-range value should not be written")
	}
	d.Set(150)
	if !Clamp(d, 0, 100) || d.Get() != 100 {
		t.Errorf("expected clamp to 100, got %d", d.Get())
	}
	d.Set(-5)
	if !Clamp(d, 0, 100) || d.Get() != 0 {
		t.Errorf("expected clamp to 0, got %d", d.Get())
	}
}

func TestClampInCallback(t *testing.T) {
	d := New(0)
	d.ForEach(func(int) { Clamp(d, 0, 10) })

	d.Set(42)
	if d.Get() != 10 {
		t.Errorf("expected 10, got %d", d.Get())
	}
	if d.Generation() != 2 {
		t.Errorf("expected generation 2, got %d", d.Generation())
	}
}

func TestToggle(t *testing.T) {
	d := New(false)
	if !Toggle(d) {
		t.Error("expected true after first toggle")
	}
	if Toggle(d) {
		t.Error("expected false after second toggle")
	}
	if d.Generation() != 2 {
		t.Errorf("expected generation 2, got %d", d.Generation())
	}
}
