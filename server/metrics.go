package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackpulse_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackpulse_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	chatUpstream = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackpulse_chat_upstream_total",
			Help: "Completion requests forwarded upstream, by upstream status or error",
		},
		[]string{"status"},
	)

	chatUpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hackpulse_chat_upstream_duration_seconds",
			Help:    "Latency of upstream completion requests",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackpulse_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	connectionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackpulse_connection_requests_total",
			Help: "Connection request transitions",
		},
		[]string{"event"},
	)
)

func metricsHandler() http.Handler { return promhttp.Handler() }

// observeRequest labels by route pattern so ids in paths do not explode
// cardinality.
func observeRequest(r *http.Request, status int, dur time.Duration) {
	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(r.Method, route).Observe(dur.Seconds())
}
