// Package monitoring 提供指标与实时推送
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Classifications counts classification attempts by serving path and
	// outcome (ok, timeout, unavailable, protocol, invalid_response, unknown).
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exoserve_classifications_total",
		Help: "Classification attempts by path and outcome.",
	}, []string{"path", "outcome"})

	// Fallbacks counts degraded answers served by the local heuristic.
	Fallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exoserve_fallback_results_total",
		Help: "Degraded results served by the fallback heuristic.",
	})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exoserve_http_request_duration_seconds",
		Help:    "HTTP request duration by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// MetricsHandler exposes the prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
