package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.ObserveFetch(OutcomeSuccess, 0.2, 1000)
	m.ObserveFetch(OutcomeFailure, 0.1, 0)
	m.ObserveFetch(OutcomeShared, 0, 1000)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues(OutcomeShared)))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.RecordsFetched), "shared results are not counted twice")
}

func TestIncrementPageLoads(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.IncrementPageLoads(false)
	m.IncrementPageLoads(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PageLoads))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HighlightedLoads))
}

func TestNewWith_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWith(prometheus.NewRegistry())
		NewWith(prometheus.NewRegistry())
	})
}
