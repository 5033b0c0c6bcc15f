package metrics

import (
	"net/http"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Routes whose path continues with a ticker, optionally followed by a record
// id. Both are replaced by placeholders in metric labels to bound cardinality.
var tickerRoutes = []string{"/api/analyze/", "/api/history/", "/api/archive/"}

func routeLabel(path string) string {
	for _, prefix := range tickerRoutes {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			if strings.Contains(path[len(prefix):], "/") {
				return prefix + "{ticker}/{id}"
			}
			return prefix + "{ticker}"
		}
	}
	return path
}

// HTTPMiddleware returns middleware that records HTTP metrics.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			reg.RecordRequest(r.Method, routeLabel(r.URL.Path), rw.statusCode, duration)
		})
	}
}
