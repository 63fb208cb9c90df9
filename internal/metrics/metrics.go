// Package metrics provides Prometheus collectors for search and ingestion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricSearchRequestsTotal = "blogsearch_search_requests_total"
	MetricSearchDuration      = "blogsearch_search_duration_seconds"
	MetricSearchResults       = "blogsearch_search_results"
	MetricCorpusArticles      = "blogsearch_corpus_articles"
	MetricIndexTokens         = "blogsearch_index_tokens"
	MetricFeedFetchesTotal    = "blogsearch_feed_fetches_total"
)

// Backend labels.
const (
	BackendMemory      = "memory"
	BackendMeilisearch = "meilisearch"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors. All methods are safe for concurrent use.
type Metrics struct {
	searchTotal    *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchResults  prometheus.Histogram
	corpusArticles prometheus.Gauge
	indexTokens    prometheus.Gauge
	feedFetches    *prometheus.CounterVec
}

// New creates unregistered collectors; call Register to expose them.
func New() *Metrics {
	return &Metrics{
		searchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSearchRequestsTotal,
				Help: "Total number of search requests by backend and status",
			},
			[]string{"backend", "status"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricSearchDuration,
				Help:    "Histogram of search latency in seconds by backend",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"backend"},
		),
		searchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricSearchResults,
				Help:    "Number of articles returned per search",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
		corpusArticles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricCorpusArticles,
				Help: "Number of articles in the loaded corpus",
			},
		),
		indexTokens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricIndexTokens,
				Help: "Number of distinct tokens in the inverted index",
			},
		),
		feedFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricFeedFetchesTotal,
				Help: "Total number of feed fetches by source and status",
			},
			[]string{"source", "status"},
		),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns every collector, for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.searchTotal,
		m.searchDuration,
		m.searchResults,
		m.corpusArticles,
		m.indexTokens,
		m.feedFetches,
	}
}

// ObserveSearch records one search request.
func (m *Metrics) ObserveSearch(backend string, seconds float64, results int, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.searchTotal.WithLabelValues(backend, status).Inc()
	m.searchDuration.WithLabelValues(backend).Observe(seconds)
	if err == nil {
		m.searchResults.Observe(float64(results))
	}
}

// SetCorpus records the size of the loaded corpus and its index.
func (m *Metrics) SetCorpus(articles, tokens int) {
	m.corpusArticles.Set(float64(articles))
	m.indexTokens.Set(float64(tokens))
}

// IncFeedFetch counts one feed fetch outcome.
func (m *Metrics) IncFeedFetch(source, status string) {
	m.feedFetches.WithLabelValues(source, status).Inc()
}
