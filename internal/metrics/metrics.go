// Package metrics holds the prometheus instruments for linkage and disclosure.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Disclosure decision reasons.
const (
	ReasonStaff       = "staff"
	ReasonFreeTrial   = "free_trial"
	ReasonEntitlement = "entitlement"
	ReasonPublic      = "public"
	ReasonPremium     = "premium"
)

// Metrics provides observability for the matching and disclosure engine.
type Metrics struct {
	LinkageRuns       prometheus.Counter
	LinkageFailures   prometheus.Counter
	LinksCreated      prometheus.Counter
	LinkageDuration   prometheus.Histogram
	DisclosureChecks  *prometheus.CounterVec
	TierCacheRequests *prometheus.CounterVec
}

// New registers the instruments with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinkageRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "scamcatalog_linkage_runs_total",
			Help: "Total number of identifier saves processed by the linkage maintainer",
		}),
		LinkageFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "scamcatalog_linkage_failures_total",
			Help: "Linkage runs that failed and were rolled back to their savepoint",
		}),
		LinksCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "scamcatalog_links_created_total",
			Help: "New related-case edges written",
		}),
		LinkageDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scamcatalog_linkage_duration_seconds",
			Help:    "Duration of a single linkage run",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DisclosureChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scamcatalog_disclosure_decisions_total",
			Help: "Field visibility decisions by deciding rule",
		}, []string{"reason"}),
		TierCacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scamcatalog_tier_cache_requests_total",
			Help: "Field tier cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveLinkage records one linkage run. Call with time.Now() at the start.
func (m *Metrics) ObserveLinkage(start time.Time, created int, failed bool) {
	if m == nil {
		return
	}
	m.LinkageRuns.Inc()
	m.LinkageDuration.Observe(time.Since(start).Seconds())
	if failed {
		m.LinkageFailures.Inc()
		return
	}
	m.LinksCreated.Add(float64(created))
}

// IncrementDisclosure records which rule decided a field's visibility.
func (m *Metrics) IncrementDisclosure(reason string) {
	if m == nil {
		return
	}
	m.DisclosureChecks.WithLabelValues(reason).Inc()
}

// IncrementTierCache records a tier cache hit or miss.
func (m *Metrics) IncrementTierCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TierCacheRequests.WithLabelValues(result).Inc()
}
