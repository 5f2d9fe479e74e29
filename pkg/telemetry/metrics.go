package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ActorStatus labels the terminal state of one actor execution.
type ActorStatus string

const (
	// StatusSucceeded labels a successful execution.
	StatusSucceeded ActorStatus = "succeeded"

	// StatusFailed labels a failed execution.
	StatusFailed ActorStatus = "failed"

	// StatusSkipped labels a condition-gated skip.
	StatusSkipped ActorStatus = "skipped"
)

// Metrics collects Prometheus metrics for actor executions.
type Metrics struct {
	config MetricsConfig

	actorsExecuted *prometheus.CounterVec
	actorDuration  *prometheus.HistogramVec
	runsStarted    prometheus.Counter
	errorsByKind   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector. A disabled configuration returns a
// no-op instance.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,
		actorsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actors_executed_total",
			Help:      "Actor executions by actor name and terminal status.",
		}, []string{"actor", "status"}),
		actorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_duration_seconds",
			Help:      "Wall-clock duration of actor executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"actor"}),
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Orchestration runs started.",
		}),
		errorsByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Actor failures by taxonomy kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(m.actorsExecuted, m.actorDuration, m.runsStarted, m.errorsByKind)
	return m
}

// Registry returns the Prometheus registry, nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveActor records one actor execution.
func (m *Metrics) ObserveActor(actor string, status ActorStatus, elapsed time.Duration) {
	if m.registry == nil {
		return
	}
	m.actorsExecuted.WithLabelValues(actor, string(status)).Inc()
	if status != StatusSkipped {
		m.actorDuration.WithLabelValues(actor).Observe(elapsed.Seconds())
	}
}

// RunStarted records the start of an orchestration run.
func (m *Metrics) RunStarted() {
	if m.registry == nil {
		return
	}
	m.runsStarted.Inc()
}

// ObserveError records a failure by taxonomy kind.
func (m *Metrics) ObserveError(kind string) {
	if m.registry == nil {
		return
	}
	m.errorsByKind.WithLabelValues(kind).Inc()
}

var (
	defaultMetricsMu sync.RWMutex
	defaultMetrics   = NewMetrics(MetricsConfig{Enabled: true, Namespace: "overture"})
)

// SetDefault replaces the process-wide metrics collector.
func SetDefault(m *Metrics) {
	defaultMetricsMu.Lock()
	defer defaultMetricsMu.Unlock()
	defaultMetrics = m
}

// Default returns the process-wide metrics collector.
func Default() *Metrics {
	defaultMetricsMu.RLock()
	defer defaultMetricsMu.RUnlock()
	return defaultMetrics
}

// ObserveActor records one actor execution on the default collector.
func ObserveActor(actor string, status ActorStatus, elapsed time.Duration) {
	Default().ObserveActor(actor, status, elapsed)
}
