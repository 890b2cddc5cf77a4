package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wiuRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wiu_client_requests_total",
		Help: "Total WIU API requests by method, resource, and response status.",
	}, []string{"method", "resource", "status"})

	wiuRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wiu_client_request_duration_seconds",
		Help:    "WIU API round trip duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource"})

	wiuCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wiu_cache_lookups_total",
		Help: "Cache lookups made by CachingClient by kind and result.",
	}, []string{"kind", "result"})
)

// status is "error" when no response was received.
func recordRequest(method, resource, status string, elapsed time.Duration) {
	wiuRequestsTotal.WithLabelValues(method, resource, status).Inc()
	wiuRequestDuration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

func recordCacheLookup(kind, result string) {
	wiuCacheLookupsTotal.WithLabelValues(kind, result).Inc()
}
