package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeShared  = "shared"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UpstreamFetches   *prometheus.CounterVec
	UpstreamLatency   prometheus.Histogram
	RecordsFetched    prometheus.Counter
	RecordsUnbucketed prometheus.Counter
	PageRenders       *prometheus.CounterVec
	PageLoads         prometheus.Counter
	HighlightedLoads  prometheus.Counter
	EndpointLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics with the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg. Tests pass a fresh registry so
// repeated construction does not panic on duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agedist_upstream_fetches_total",
			Help: "Total number of person batch fetches, labeled by outcome",
		}, []string{"outcome"}),
		UpstreamLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "agedist_upstream_fetch_latency_seconds",
			Help:    "Latency of person batch fetches in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RecordsFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_records_fetched_total",
			Help: "Total number of person records received from upstream",
		}),
		RecordsUnbucketed: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_records_unbucketed_total",
			Help: "Records whose age matched no age bucket",
		}),
		PageRenders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agedist_page_renders_total",
			Help: "Total number of page renders, labeled by view state",
		}, []string{"state"}),
		PageLoads: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_page_loads_total",
			Help: "Total number of counted page loads",
		}),
		HighlightedLoads: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_highlighted_page_loads_total",
			Help: "Page loads that received the highlighted background",
		}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agedist_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(outcome string, durationSeconds float64, records int) {
	m.UpstreamFetches.WithLabelValues(outcome).Inc()
	if outcome == OutcomeShared {
		return
	}
	m.UpstreamLatency.Observe(durationSeconds)
	m.RecordsFetched.Add(float64(records))
}

func (m *Metrics) AddUnbucketed(n int) {
	m.RecordsUnbucketed.Add(float64(n))
}

// IncrementPageRenders counts a page render in the given state (idle, report, error).
func (m *Metrics) IncrementPageRenders(state string) {
	m.PageRenders.WithLabelValues(state).Inc()
}

func (m *Metrics) IncrementPageLoads(highlighted bool) {
	m.PageLoads.Inc()
	if highlighted {
		m.HighlightedLoads.Inc()
	}
}

// ObserveEndpointLatency records the latency for a given endpoint
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
