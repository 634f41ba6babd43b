package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var totalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of requests per route.",
	},
	[]string{"path", "method"},
)

var responseStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "response_status",
		Help: "Status of HTTP response",
	},
	[]string{"status"},
)

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path"},
)

// PrometheusMiddleware adds basic metrics to a handler
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		timer := prometheus.NewTimer(nil)
		next.ServeHTTP(rw, r)
		elapsed := timer.ObserveDuration()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "<invalid_path>"
		}

		sanitizedPath := strings.ToValidUTF8(routePattern, "<INVALID_UTF_SEQ>")

		responseStatus.WithLabelValues(strconv.Itoa(rw.Status())).Inc()
		totalRequests.WithLabelValues(sanitizedPath, r.Method).Inc()
		requestDuration.WithLabelValues(sanitizedPath).Observe(elapsed.Seconds())
	})
}
