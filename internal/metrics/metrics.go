package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "schedule_board"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	providerFetch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetch_total",
			Help:      "Count of record fetches by operation and result.",
		},
		[]string{"op", "result"},
	)

	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_duration_seconds",
			Help:      "Record fetch latency by operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of provider cache lookups by result.",
		},
		[]string{"result"},
	)

	viewFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_fetch_failures_total",
			Help:      "Count of view loads that failed to fetch records.",
		},
		[]string{"view"},
	)

	cacheWarmRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_warm_runs_total",
			Help:      "Count of scheduled cache warm runs by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			providerFetch, providerDuration,
			cacheLookups, viewFailures, cacheWarmRuns,
		)
	})
}

func ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveProviderFetch(op string, err error, elapsed time.Duration) {
	providerFetch.WithLabelValues(op, result(err)).Inc()
	providerDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func IncCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

func IncCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

func IncCacheError() {
	cacheLookups.WithLabelValues("error").Inc()
}

func IncViewFailure(view string) {
	viewFailures.WithLabelValues(view).Inc()
}

func IncCacheWarm(err error) {
	cacheWarmRuns.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
