package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for recompute duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactive",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is an observer that exports Prometheus metrics. Cell metrics are
// labelled by kind only; cell names are unbounded and stay out of labels.
type Metrics struct {
	cellsCreated      *prometheus.CounterVec
	cellsDisconnected *prometheus.CounterVec
	liveCells         *prometheus.GaugeVec
	writes            *prometheus.CounterVec
	notifyRounds      *prometheus.CounterVec
	callbacks         *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	coalesced         *prometheus.CounterVec

	scopesOpened prometheus.Counter
	scopesClosed prometheus.Counter
	openScopes   prometheus.Gauge
}

var (
	_ reactive.Observer = (*Metrics)(nil)
	_ scope.Observer    = (*Metrics)(nil)
)

// NewMetrics registers the reactive metrics with the configured registry.
// It panics if they are already registered there, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, []string{"kind"})
	}

	return &Metrics{
		cellsCreated:      counter("cells_created_total", "Total number of reactive cells created"),
		cellsDisconnected: counter("cells_disconnected_total", "Total number of cells whose last handle was released"),
		writes:            counter("writes_total", "Total number of published writes"),
		notifyRounds:      counter("notify_rounds_total", "Total number of notification rounds delivered"),
		callbacks:         counter("callbacks_total", "Total number of subscriber callbacks invoked"),
		coalesced:         counter("coalesced_generations_total", "Total number of generations readers never observed"),

		liveCells: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_cells",
			Help:        "Number of cells with at least one handle",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		recomputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_duration_seconds",
			Help:        "Derived value recomputation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		scopesOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_opened_total",
			Help:        "Total number of scopes opened",
			ConstLabels: config.ConstLabels,
		}),
		scopesClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_closed_total",
			Help:        "Total number of scopes closed",
			ConstLabels: config.ConstLabels,
		}),
		openScopes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "open_scopes",
			Help:        "Number of open scopes",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) CellCreated(info reactive.CellInfo) {
	kind := info.Kind.String()
	m.cellsCreated.WithLabelValues(kind).Inc()
	m.liveCells.WithLabelValues(kind).Inc()
}

func (m *Metrics) CellWritten(info reactive.CellInfo, _ reactive.Generation) {
	m.writes.WithLabelValues(info.Kind.String()).Inc()
}

func (m *Metrics) Notified(info reactive.CellInfo, _ reactive.Generation, callbacks int) {
	kind := info.Kind.String()
	m.notifyRounds.WithLabelValues(kind).Inc()
	m.callbacks.WithLabelValues(kind).Add(float64(callbacks))
}

func (m *Metrics) Recomputed(info reactive.CellInfo, took time.Duration) {
	m.recomputeDuration.WithLabelValues(info.Kind.String()).Observe(took.Seconds())
}

func (m *Metrics) Coalesced(info reactive.CellInfo, skipped uint64) {
	m.coalesced.WithLabelValues(info.Kind.String()).Add(float64(skipped))
}

func (m *Metrics) CellDisconnected(info reactive.CellInfo) {
	kind := info.Kind.String()
	m.cellsDisconnected.WithLabelValues(kind).Inc()
	m.liveCells.WithLabelValues(kind).Dec()
}

func (m *Metrics) ScopeOpened(scope.Info) {
	m.scopesOpened.Inc()
	m.openScopes.Inc()
}

func (m *Metrics) ScopeClosed(scope.Info) {
	m.scopesClosed.Inc()
	m.openScopes.Dec()
}
