package web

import (
	"context"
	"net/http"
	"time"
	"zelus/internal/logging"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKeyLogger, s.log.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logger returns the request-scoped logger, tagged with the request id.
func (s *Server) logger(ctx context.Context) *logging.Logger {
	if log, ok := ctx.Value(ctxKeyLogger).(*logging.Logger); ok {
		return log
	}

	return s.log
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// rateLimit sheds load with a 429 once the configured rate is exceeded.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.error(w, r, nil, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
