// Package metrics provides Prometheus metrics for the search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jiaoxue"

var (
	// SearchRequestsTotal counts searches by category filter and outcome.
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"category", "status"},
	)

	// SearchDuration measures end-to-end search latency.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of search requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	// SearchMatches observes the full match count of each search.
	SearchMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_matches",
			Help:      "Distribution of matched records per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 300},
		},
	)

	// CollectionFetchTotal counts upstream collection fetches.
	CollectionFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_fetch_total",
			Help:      "Total number of content collection fetches",
		},
		[]string{"collection", "status"},
	)

	// CollectionFetchDuration measures upstream fetch latency.
	CollectionFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_fetch_duration_seconds",
			Help:      "Duration of content collection fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// HistoryOperationsTotal counts history storage operations.
	HistoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_operations_total",
			Help:      "Total number of search history storage operations",
		},
		[]string{"operation", "status"},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSearch records a completed search.
func RecordSearch(category string, matches int, duration float64, err error) {
	SearchRequestsTotal.WithLabelValues(category, status(err)).Inc()
	SearchDuration.WithLabelValues(category).Observe(duration)
	if err == nil {
		SearchMatches.Observe(float64(matches))
	}
}

// RecordCollectionFetch records one upstream fetch.
func RecordCollectionFetch(collection string, duration float64, err error) {
	CollectionFetchTotal.WithLabelValues(collection, status(err)).Inc()
	CollectionFetchDuration.WithLabelValues(collection).Observe(duration)
}

// RecordHistoryOperation records a history mutation or read.
func RecordHistoryOperation(operation string, err error) {
	HistoryOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

// RecordRateLimited records a rejected request.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}
