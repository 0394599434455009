// Package metrics exposes Prometheus instrumentation for the scoring service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Custom registry to avoid the default Go runtime collectors.
var registry = prometheus.NewRegistry()

var (
	TxCommits = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "setpoint",
		Name:      "tx_commits_total",
		Help:      "Scoring transactions committed.",
	})
	TxRetries = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "setpoint",
		Name:      "tx_retries_total",
		Help:      "Transaction bodies re-run after a write conflict.",
	})
	TxExhausted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "setpoint",
		Name:      "tx_retries_exhausted_total",
		Help:      "Transactions abandoned after the retry bound.",
	})
	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "setpoint",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
)

// Handler serves the metrics endpoint from the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Middleware counts requests per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
	})
}
