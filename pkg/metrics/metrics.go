package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tenantkit"

// Metrics groups the collectors shared by the tenant-isolation layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheRequests     *prometheus.CounterVec
	cacheErrors       *prometheus.CounterVec
	provisions        *prometheus.CounterVec
	provisionDuration prometheus.Histogram
	conflicts         *prometheus.CounterVec
	events            *prometheus.CounterVec
	fanoutSchemas     prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Point lookups served by the repository cache, by result.",
		}, []string{"cache_namespace", "result"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Cache backend failures that degraded to storage.",
		}, []string{"cache_namespace", "op"}),
		provisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_provisions_total",
			Help:      "Schema provisioning runs, by result.",
		}, []string{"result"}),
		provisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schema_provision_duration_seconds",
			Help:      "Duration of successful schema provisioning runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimistic_conflicts_total",
			Help:      "Writes rejected by the version check.",
		}, []string{"table"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Domain events by publication outcome.",
		}, []string{"result"}),
		fanoutSchemas: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fanout_schemas",
			Help:      "Number of tenant schemas covered by one cross-tenant query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	collectors := []prometheus.Collector{
		m.cacheRequests, m.cacheErrors, m.provisions, m.provisionDuration,
		m.conflicts, m.events, m.fanoutSchemas,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Join(ErrRegister, err)
		}
	}
	return m, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) CacheHit(ns string) {
	if m != nil {
		m.cacheRequests.WithLabelValues(ns, "hit").Inc()
	}
}

func (m *Metrics) CacheMiss(ns string) {
	if m != nil {
		m.cacheRequests.WithLabelValues(ns, "miss").Inc()
	}
}

func (m *Metrics) CacheError(ns, op string) {
	if m != nil {
		m.cacheErrors.WithLabelValues(ns, op).Inc()
	}
}

func (m *Metrics) ProvisionSucceeded(d time.Duration) {
	if m != nil {
		m.provisions.WithLabelValues("success").Inc()
		m.provisionDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ProvisionFailed() {
	if m != nil {
		m.provisions.WithLabelValues("failure").Inc()
	}
}

func (m *Metrics) OptimisticConflict(table string) {
	if m != nil {
		m.conflicts.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) EventsPublished(n int) {
	if m != nil {
		m.events.WithLabelValues("published").Add(float64(n))
	}
}

func (m *Metrics) EventsFailed(n int) {
	if m != nil {
		m.events.WithLabelValues("failed").Add(float64(n))
	}
}

// EventsDiscarded counts events dropped because their unit of work completed before registration.
func (m *Metrics) EventsDiscarded(n int) {
	if m != nil {
		m.events.WithLabelValues("discarded").Add(float64(n))
	}
}

func (m *Metrics) FanoutSchemas(n int) {
	if m != nil {
		m.fanoutSchemas.Observe(float64(n))
	}
}
