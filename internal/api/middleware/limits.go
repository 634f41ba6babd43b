package middleware

import (
	"context"
	"net/http"
	"time"
)

// NewBodyLimitMiddleware bounds the size of accepted request bodies. An
// oversized body surfaces as a read error in the handler and a 413 from
// the decoder path.
func NewBodyLimitMiddleware(maxBytes int64) Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewTimeoutMiddleware enforces the per-request deadline. In-flight
// database transactions roll back on cancellation so a timed-out request
// leaves no partial writes.
func NewTimeoutMiddleware(timeout time.Duration) Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
