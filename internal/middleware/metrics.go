// Package middleware provides HTTP middleware for metrics collection.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nadmax/servicetime/internal/metrics"
)

var recordHTTPRequest = metrics.RecordHTTPRequest

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := normalizeEndpoint(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		recordHTTPRequest(r.Method, endpoint, status, duration)
	})
}

// normalizeEndpoint collapses path parameters so that label cardinality
// stays bounded.
func normalizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/services/"):
		parts := strings.Split(strings.TrimPrefix(path, "/api/services/"), "/")
		if len(parts) == 2 && parts[1] == "complete" {
			return "/api/services/:id/complete"
		}

		return path
	case strings.HasPrefix(path, "/api/inventory/"):
		parts := strings.Split(strings.TrimPrefix(path, "/api/inventory/"), "/")
		if len(parts) >= 2 && parts[1] == "consume" {
			return "/api/inventory/:model/consume"
		}

		return "/api/inventory/:model"
	case strings.HasPrefix(path, "/api/history/service/"):
		return "/api/history/service/:id"
	case strings.HasPrefix(path, "/api/history/model/"):
		return "/api/history/model/:model"
	case strings.HasPrefix(path, "/api/history/parts/"):
		return "/api/history/parts/:model"
	default:
		return path
	}
}
