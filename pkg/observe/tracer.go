package observe

import (
	"context"
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the reactive core.
const defaultTracerName = "reactive"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "reactive").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// MinDuration drops recompute spans shorter than this.
	MinDuration time.Duration
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracer uses t instead of the global tracer provider.
func WithTracer(t trace.Tracer) TracerOption {
	return func(c *TracerConfig) {
		c.Tracer = t
	}
}

// WithMinDuration only traces recomputations that took at least d.
func WithMinDuration(d time.Duration) TracerOption {
	return func(c *TracerConfig) {
		c.MinDuration = d
	}
}

// Tracer is an observer that records OpenTelemetry spans: one per derived
// recomputation and one per scope teardown. Writes and notifications are
// too frequent to trace and are left to Metrics.
type Tracer struct {
	reactive.NopObserver
	tracer      trace.Tracer
	minDuration time.Duration
}

var _ Observer = (*Tracer)(nil)

// NewTracer creates the tracing observer. Without WithTracer it uses the
// global OpenTelemetry tracer provider; configure it in main() before
// installing the observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{tracer: config.Tracer, minDuration: config.MinDuration}
}

func cellAttributes(info reactive.CellInfo) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("reactive.cell_id", int64(info.ID)),
		attribute.String("reactive.cell_name", info.Name),
		attribute.String("reactive.cell_kind", info.Kind.String()),
	}
}

func (t *Tracer) Recomputed(info reactive.CellInfo, took time.Duration) {
	if took < t.minDuration {
		return
	}
	end := time.Now()
	_, span := t.tracer.Start(context.Background(), "reactive.recompute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(cellAttributes(info)...),
		trace.WithTimestamp(end.Add(-took)),
	)
	span.End(trace.WithTimestamp(end))
}

func (t *Tracer) CellDisconnected(info reactive.CellInfo) {
	_, span := t.tracer.Start(context.Background(), "reactive.disconnect",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(cellAttributes(info)...),
	)
	span.End()
}

func (t *Tracer) ScopeOpened(scope.Info) {}

func (t *Tracer) ScopeClosed(info scope.Info) {
	_, span := t.tracer.Start(context.Background(), "reactive.scope.close",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("reactive.scope_id", info.ID.String()),
			attribute.String("reactive.widget", info.Widget),
			attribute.Int("reactive.depth", info.Depth),
		),
	)
	span.AddEvent("released", trace.WithAttributes(
		attribute.Int("reactive.cells", info.Cells),
		attribute.Int("reactive.tracked", info.Tracked),
		attribute.Int("reactive.cleanups", info.Cleanups),
	))
	span.End()
}
