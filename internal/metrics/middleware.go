package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID on responses. An incoming
// value is reused if present.
const RequestIDHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records metrics for each HTTP request under method,
// assigns a request ID, and logs the request at debug level.
// Responses with a status of 400 or above count as errors.
func Middleware(exporter *PrometheusExporter, logger *slog.Logger, method string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		exporter.RecordRequest(TransportHTTP, method)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		exporter.RecordDuration(TransportHTTP, method, elapsed.Seconds())
		if rec.status >= http.StatusBadRequest {
			exporter.RecordError(TransportHTTP, method)
		}

		logger.DebugContext(r.Context(), "http request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", elapsed),
		)
	})
}
