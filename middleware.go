package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// requestID takes X-Request-ID from the caller or mints one, and echoes it.
func (s *service) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}

func (s *service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		zap.L().Info("request",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("duration", m.Duration),
		)
	})
}

// rateLimit applies one limiter to the whole server. It is a no-op unless
// --limiter-rps is set.
func (s *service) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.rateLimited(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *service) recoverPanic(w http.ResponseWriter, r *http.Request, rec interface{}) {
	w.Header().Set("Connection", "close")
	writeError(w, r, unknownError(fmt.Errorf("panic: %v", rec)))
}
