// Package observe provides instrumentation for the reactive core and the
// scope tree.
//
// Each type here implements both reactive.Observer and scope.Observer:
//
//   - Metrics exports Prometheus counters, gauges and a recompute histogram
//   - Tracer records OpenTelemetry spans for recomputations and scope teardown
//   - Logger writes slog debug records
//
// Combine them with Multi and install the result once at startup:
//
//	reg := prometheus.NewRegistry()
//	obs := observe.Multi(
//	    observe.NewMetrics(observe.WithRegistry(reg)),
//	    observe.NewTracer(),
//	    observe.NewLogger(logger),
//	)
//	reactive.SetObserver(obs)
//	tree := scope.NewTree(scope.WithObserver(obs))
package observe

import (
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

// Observer is the union of the cell and scope observer interfaces.
type Observer interface {
	reactive.Observer
	scope.Observer
}
