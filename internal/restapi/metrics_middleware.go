package restapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"kavyashar.org/intake/internal/metrics"
)

// MetricsHandler returns middleware that records request counts and
// latencies by route pattern. With nil metrics it passes requests through.
func MetricsHandler(m *metrics.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newStatusWriter(w)

			next.ServeHTTP(wrapped, r)

			// r.Pattern keeps label cardinality bounded
			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// metricsEndpoint exposes the application's own registry.
func (api *RestAPI) metricsEndpoint() http.Handler {
	if api.Metrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{Registry: api.Metrics.Registry})
}
