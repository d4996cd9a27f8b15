// Package metrics provides Prometheus metrics for the match service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the match pipeline. A
// custom registry keeps the scrape output limited to our own series.
type Metrics struct {
	registry *prometheus.Registry

	matchesTotal    *prometheus.CounterVec
	stopReasons     *prometheus.CounterVec
	queriesExecuted prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	matchDuration   prometheus.Histogram
	jobsDropped     prometheus.Counter
}

// New creates the metric set on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	m := &Metrics{registry: registry}

	m.matchesTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cratematch",
			Name:      "matches_total",
			Help:      "Total number of finished match runs by confidence tier",
		},
		[]string{"confidence"},
	)

	m.stopReasons = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cratematch",
			Name:      "match_stops_total",
			Help:      "Total number of finished match runs by stop reason",
		},
		[]string{"reason"},
	)

	m.queriesExecuted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "cratematch",
		Name:      "queries_executed_total",
		Help:      "Total number of search queries issued against the catalog",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "cratematch",
		Name:      "candidate_cache_hits_total",
		Help:      "Total number of candidate pages served from the cache",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "cratematch",
		Name:      "candidate_cache_misses_total",
		Help:      "Total number of candidate pages fetched from the catalog",
	})

	m.matchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cratematch",
		Name:      "match_duration_seconds",
		Help:      "Histogram of wall time spent per match run",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	m.jobsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "cratematch",
		Name:      "batch_jobs_dropped_total",
		Help:      "Total number of batch jobs dropped because the queue was full",
	})

	return m
}

// RecordMatch records one finished match run.
func (m *Metrics) RecordMatch(confidence, stopReason string, queriesRun int, seconds float64) {
	m.matchesTotal.WithLabelValues(confidence).Inc()
	m.stopReasons.WithLabelValues(stopReason).Inc()
	m.queriesExecuted.Add(float64(queriesRun))
	m.matchDuration.Observe(seconds)
}

// RecordCacheHit increments the candidate cache hit counter.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss increments the candidate cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

// RecordJobDropped increments the dropped batch job counter.
func (m *Metrics) RecordJobDropped() {
	m.jobsDropped.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
