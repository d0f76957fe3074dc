package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLinkage(time.Now(), 3, false)
	m.IncrementDisclosure(ReasonStaff)
	m.IncrementTierCache(true)
}

func TestObserveLinkage(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLinkage(time.Now(), 2, false)
	m.ObserveLinkage(time.Now(), 0, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinkageRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkageFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinksCreated))
}

func TestDisclosureAndCacheCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementDisclosure(ReasonPremium)
	m.IncrementDisclosure(ReasonPremium)
	m.IncrementTierCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DisclosureChecks.WithLabelValues(ReasonPremium)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TierCacheRequests.WithLabelValues("miss")))
}
