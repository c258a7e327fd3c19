package fiber

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a Scheduler.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fiber").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the commit duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "fiber",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Pass outcomes used as the "outcome" label.
const (
	outcomeCommitted  = "committed"
	outcomeSuperseded = "superseded"
	outcomeFailed     = "failed"
)

// Metrics holds the scheduler's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	workUnits      prometheus.Counter
	yields         prometheus.Counter
	passes         *prometheus.CounterVec
	effects        *prometheus.CounterVec
	hostMutations  prometheus.Counter
	commitDuration prometheus.Histogram
}

// NewMetrics registers the scheduler collectors.
//
// Metrics collected:
//   - fiber_work_units_total: work units performed
//   - fiber_yields_total: times a render pass returned control to the host
//   - fiber_render_passes_total: passes by outcome (committed, superseded, failed)
//   - fiber_effects_total: committed effects by kind
//   - fiber_update_mutations_total: attribute and text calls made by updates
//   - fiber_commit_duration_seconds: commit phase duration
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		workUnits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "work_units_total",
			Help:        "Total number of render work units performed",
			ConstLabels: config.ConstLabels,
		}),
		yields: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "yields_total",
			Help:        "Total number of times a render pass yielded to the host",
			ConstLabels: config.ConstLabels,
		}),
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_passes_total",
			Help:        "Total number of finished render passes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),
		effects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of committed effects by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"effect"}),
		hostMutations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_mutations_total",
			Help:        "Total number of attribute and text mutations issued by updates",
			ConstLabels: config.ConstLabels,
		}),
		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) recordUnits(n int) {
	if m == nil || n == 0 {
		return
	}
	m.workUnits.Add(float64(n))
}

func (m *Metrics) recordYield() {
	if m == nil {
		return
	}
	m.yields.Inc()
}

func (m *Metrics) recordPass(outcome string) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordCommit(info *CommitInfo, d time.Duration) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues("placement").Add(float64(info.Placements))
	m.effects.WithLabelValues("update").Add(float64(info.Updates))
	m.effects.WithLabelValues("deletion").Add(float64(info.Deletions))
	m.hostMutations.Add(float64(info.Mutations))
	m.commitDuration.Observe(d.Seconds())
}
