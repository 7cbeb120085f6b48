package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinerate_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinerate_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	idsAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinerate_ids_allocated_total",
		Help: "Sequential ids handed out by the id allocator",
	}, []string{"kind", "result"})

	cascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinerate_cascade_deletes_total",
		Help: "User cascade deletions by result",
	}, []string{"result"})

	cascadeRatingsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinerate_cascade_ratings_removed_total",
		Help: "Ratings removed as part of user cascade deletions",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinerate_rating_cache_lookups_total",
		Help: "Rating list cache lookups by outcome",
	}, []string{"outcome"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordIDAllocation counts an allocator call; result is "ok" or "error"
func RecordIDAllocation(kind, result string) {
	idsAllocated.WithLabelValues(kind, result).Inc()
}

// RecordCascadeDelete counts a cascade run and the ratings it removed
func RecordCascadeDelete(result string, ratingsRemoved int64) {
	cascadeDeletes.WithLabelValues(result).Inc()
	if ratingsRemoved > 0 {
		cascadeRatingsRemoved.Add(float64(ratingsRemoved))
	}
}

// RecordCacheLookup counts a cache lookup; outcome is "hit", "miss" or "error"
func RecordCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}
