package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type attrsKey struct{}

// requestAttrs collects attributes that handlers attach to the access log
// line of the request they are serving.
type requestAttrs struct {
	mu    sync.Mutex
	attrs []any
}

// Annotate attaches key/value pairs to the access log line of the request
// carried by ctx. It is a no-op outside a Logger middleware.
func Annotate(ctx context.Context, args ...any) {
	ra, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		return
	}
	ra.mu.Lock()
	ra.attrs = append(ra.attrs, args...)
	ra.mu.Unlock()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logger returns middleware that writes one access log line per request
// with its method, URI, status, and duration, followed by any attributes
// handlers attached with Annotate. Server errors log at error level.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			ra := &requestAttrs{}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), attrsKey{}, ra)))

			args := []any{
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", rec.status,
				"duration", time.Since(start),
			}
			ra.mu.Lock()
			args = append(args, ra.attrs...)
			ra.mu.Unlock()

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "request", args...)
		})
	}
}
