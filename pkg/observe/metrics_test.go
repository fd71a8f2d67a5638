package observe

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

func TestMetricsCellEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	primary := reactive.CellInfo{ID: 1, Name: "count", Kind: reactive.KindPrimary}
	derived := reactive.CellInfo{ID: 2, Name: "double", Kind: reactive.KindDerived}

	m.CellCreated(primary)
	m.CellCreated(derived)
	m.CellWritten(primary, 1)
	m.CellWritten(primary, 2)
	m.Notified(primary, 1, 3)
	m.Recomputed(derived, 2*time.Millisecond)
	m.Coalesced(primary, 4)
	m.CellDisconnected(primary)

	if got := testutil.ToFloat64(m.cellsCreated.WithLabelValues("primary")); got != 1 {
		t.Errorf("expected 1 primary cell created, got %v", got)
	}
	if got := testutil.ToFloat64(m.writes.WithLabelValues("primary")); got != 2 {
		t.Errorf("expected 2 writes, got %v", got)
	}
	if got := testutil.ToFloat64(m.callbacks.WithLabelValues("primary")); got != 3 {
		t.Errorf("expected 3 callbacks, got %v", got)
	}
	if got := testutil.ToFloat64(m.coalesced.WithLabelValues("primary")); got != 4 {
		t.Errorf("expected 4 coalesced, got %v", got)
	}
	if got := testutil.ToFloat64(m.liveCells.WithLabelValues("primary")); got != 0 {
		t.Errorf("expected 0 live primary cells, got %v", got)
	}
	if got := testutil.ToFloat64(m.liveCells.WithLabelValues("derived")); got != 1 {
		t.Errorf("expected 1 live derived cell, got %v", got)
	}
	if got := testutil.CollectAndCount(m.recomputeDuration); got != 1 {
		t.Errorf("expected 1 recompute series, got %d", got)
	}
}

func TestMetricsScopeEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	tree := scope.NewTree(scope.WithObserver(m))
	root := tree.NewRoot("window")
	child := root.NewChild("panel")

	if got := testutil.ToFloat64(m.openScopes); got != 2 {
		t.Errorf("expected 2 open scopes, got %v", got)
	}

	child.Close()
	if got := testutil.ToFloat64(m.openScopes); got != 1 {
		t.Errorf("expected 1 open scope, got %v", got)
	}
	if got := testutil.ToFloat64(m.scopesClosed); got != 1 {
		t.Errorf("expected 1 closed scope, got %v", got)
	}
	root.Close()
}

func TestMetricsInstalled(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	reactive.SetObserver(m)
	defer reactive.SetObserver(nil)

	a := reactive.New(1)
	d := reactive.MapEach(a, func(v int) int { return v + 1 })
	a.Set(2)
	if d.Get() != 3 {
		t.Fatalf("expected 3, got %d", d.Get())
	}

	if got := testutil.ToFloat64(m.writes.WithLabelValues("primary")); got != 1 {
		t.Errorf("expected 1 primary write, got %v", got)
	}
	if got := testutil.ToFloat64(m.writes.WithLabelValues("derived")); got != 1 {
		t.Errorf("expected 1 derived write, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "reactive_writes_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected reactive_writes_total to be registered")
	}
}

func TestMetricsDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	NewMetrics(WithRegistry(reg))
}
