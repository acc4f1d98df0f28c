package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewTraceMiddleware returns middleware that assigns a trace ID to every
// request and stores a logger tagged with it in the request context. The
// chi request ID, when present, is attached as well.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			log := base.With(slog.String("trace_id", shared.GetTraceID(ctx)))
			ctx = logger.WithLogger(ctx, log)
			if reqID := chimw.GetReqID(ctx); reqID != "" {
				ctx = logger.WithRequestID(ctx, reqID)
			}

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
