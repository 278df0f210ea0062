package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// HTTPRecorder receives one sample per completed request
type HTTPRecorder interface {
	RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration)
}

// Metrics records request counts and latency keyed by the chi route pattern,
// so /api/leads/{leadId} is one series regardless of the ID.
func Metrics(recorder HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			endpoint := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			recorder.RecordHTTPRequest(endpoint, status, time.Since(start))
		})
	}
}
