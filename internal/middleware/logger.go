package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder captures the response status. It forwards Flush so SSE
// handlers keep streaming through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logger logs each request once it has been handled, at a level chosen by
// the response status.
func Logger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", requestID,
			"status", rec.status,
			"method", r.Method,
			"path", r.URL.Path,
			"latency", time.Since(start),
			"remote_addr", r.RemoteAddr,
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Error("Request handled", attrs...)
		case rec.status >= http.StatusBadRequest:
			logger.Warn("Request handled", attrs...)
		default:
			logger.Info("Request handled", attrs...)
		}
	})
}
