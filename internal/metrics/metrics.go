package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Startup state
	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_catalog_books",
			Help: "Number of books loaded into the catalog",
		},
	)

	IndexEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_index_entries",
			Help: "Number of corpus entries in the semantic index",
		},
	)

	IndexBuildDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_index_build_duration_seconds",
			Help: "Time spent embedding the corpus at startup",
		},
	)

	// Embedding calls
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_embedding_requests_total",
			Help: "Embedding provider calls by phase and outcome",
		},
		[]string{"phase", "outcome"}, // phase: "build", "query"
	)

	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_query_cache_hits_total",
			Help: "Query embeddings served from the LRU cache",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_query_cache_misses_total",
			Help: "Query embeddings that required a provider call",
		},
	)

	// Recommendation pipeline
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_recommendations_total",
			Help: "Recommendation queries by tone and outcome",
		},
		[]string{"tone", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_recommendation_duration_seconds",
			Help:    "End to end duration of a recommendation query",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_recommendation_results",
			Help:    "Number of books returned per query",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	MalformedIdentifiers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_malformed_identifiers_total",
			Help: "Search hits whose leading token was not a valid book identifier",
		},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)
)
