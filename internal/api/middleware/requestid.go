package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

// NewRequestIDMiddleware adds a request ID to the logger context
func NewRequestIDMiddleware() Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			w.Header().Set("X-Request-Id", requestID)
			ctx := logger.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
