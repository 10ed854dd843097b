// Package metrics defines the Prometheus collectors for txtseek and serves
// them for scraping while `txtseek watch` runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SearchQueriesTotal *prometheus.CounterVec
	SearchLatency      prometheus.Histogram
	SearchResultsCount prometheus.Histogram
	IndexOpensTotal    *prometheus.CounterVec
	IndexBuildDuration prometheus.Histogram
	IndexedDocuments   prometheus.Gauge
	IndexedTerms       prometheus.Gauge
	ReadErrorsTotal    prometheus.Counter
	WatchEventsTotal   prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txtseek_search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, cached).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "txtseek_search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "txtseek_search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		IndexOpensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txtseek_index_opens_total",
				Help: "Index opens by outcome (cache_hit or the rebuild reason).",
			},
			[]string{"outcome"},
		),
		IndexBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "txtseek_index_build_duration_seconds",
				Help:    "Duration of index opens that rebuilt the index.",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
			},
		),
		IndexedDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "txtseek_indexed_documents",
				Help: "Documents tracked by the published index.",
			},
		),
		IndexedTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "txtseek_indexed_terms",
				Help: "Distinct terms in the published index.",
			},
		),
		ReadErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "txtseek_read_errors_total",
				Help: "Documents that could not be read during builds.",
			},
		),
		WatchEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "txtseek_watch_events_total",
				Help: "Debounced filesystem events that triggered a refresh.",
			},
		),
	}

	m.registry.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.IndexOpensTotal,
		m.IndexBuildDuration,
		m.IndexedDocuments,
		m.IndexedTerms,
		m.ReadErrorsTotal,
		m.WatchEventsTotal,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSearch records one query.
func (m *Metrics) ObserveSearch(d time.Duration, results int, cached bool) {
	if m == nil {
		return
	}
	resultType := "hit"
	switch {
	case cached:
		resultType = "cached"
	case results == 0:
		resultType = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.Observe(d.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

// ObserveOpen records one index open. outcome is "cache_hit" or the rebuild
// reason.
func (m *Metrics) ObserveOpen(outcome string, rebuilt bool, d time.Duration, docs, terms, readErrors int) {
	if m == nil {
		return
	}
	m.IndexOpensTotal.WithLabelValues(outcome).Inc()
	if rebuilt {
		m.IndexBuildDuration.Observe(d.Seconds())
	}
	m.IndexedDocuments.Set(float64(docs))
	m.IndexedTerms.Set(float64(terms))
	m.ReadErrorsTotal.Add(float64(readErrors))
}

// ObserveWatchBatch records a debounced batch of filesystem events.
func (m *Metrics) ObserveWatchBatch(events int) {
	if m == nil {
		return
	}
	m.WatchEventsTotal.Add(float64(events))
}
