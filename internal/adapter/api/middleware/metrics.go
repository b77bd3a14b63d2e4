package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/V4T54L/leadstore/internal/adapter/metrics"
)

// Metrics records request counts and latencies labelled by the matched
// ServeMux pattern, so ids never become label values.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r)

			// ServeMux fills in Pattern on the request it routed.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
