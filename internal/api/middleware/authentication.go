package middleware

import (
	"net/http"

	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/auth"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

// NewAuthenticationMiddleware rejects requests whose bearer credential is
// missing or invalid and attaches the authenticated caller to the context.
func NewAuthenticationMiddleware(
	authenticator *auth.Authenticator,
	logger logger.Logger,
	respWriter response.Writer,
) Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := authenticator.Authenticate(r.Context(), auth.FindToken(r))
			if err != nil {
				logger.WithContextFields(r.Context()).Infof("Unauthorized request to %s %s: %v", r.Method, r.URL.Path, err)
				respWriter.RespondWithError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}
