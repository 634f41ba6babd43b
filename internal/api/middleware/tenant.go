package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/services/endpoint"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

type tenantContextKey string

const endpointContextKey tenantContextKey = "endpoint"

// TenantContext carries the resolved tenant and its advertised base URL
// for the duration of one request.
type TenantContext struct {
	Endpoint *models.Endpoint
	BaseURL  string
}

// EndpointFromContext returns the tenant context attached by the resolver
// middleware.
func EndpointFromContext(ctx context.Context) *TenantContext {
	tenant, _ := ctx.Value(endpointContextKey).(*TenantContext)
	return tenant
}

// leveledLoggers caches derived loggers for per-tenant log level
// overrides. The level space is tiny so this never grows past a handful
// of entries.
type leveledLoggers struct {
	lock    sync.Mutex
	loggers map[string]logger.Logger
}

func (l *leveledLoggers) get(level string) logger.Logger {
	normalized := strings.ToUpper(strings.TrimSpace(level))

	l.lock.Lock()
	defer l.lock.Unlock()

	if cached, ok := l.loggers[normalized]; ok {
		return cached
	}

	derived := logger.NewAtLevel(normalized)
	l.loggers[normalized] = derived
	return derived
}

// NewEndpointResolverMiddleware resolves the {endpointID} path segment to
// an endpoint, rejects inactive tenants and attaches the tenant context.
// Tenants with a logLevel override get their SCIM traffic logged through
// a logger at that level.
func NewEndpointResolverMiddleware(
	endpointService endpoint.Service,
	respWriter response.Writer,
	apiPrefix string,
) Handler {
	tenantLoggers := &leveledLoggers{loggers: map[string]logger.Logger{}}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpointID := chi.URLParam(r, "endpointID")

			resolved, err := endpointService.GetEndpointByID(r.Context(), endpointID)
			if err != nil {
				respWriter.RespondWithError(w, err)
				return
			}

			// Inactive endpoints reject every SCIM operation, including
			// reads and discovery.
			if !resolved.Active {
				respWriter.RespondWithError(w, errors.New(
					"endpoint %s is not active", resolved.Name,
					errors.WithErrorCode(errors.EForbidden),
				))
				return
			}

			tenant := &TenantContext{
				Endpoint: resolved,
				BaseURL:  tenantBaseURL(r, apiPrefix, endpointID),
			}

			if level := resolved.Config.LogLevel(); level != "" {
				tenantLoggers.get(level).
					WithContextFields(r.Context()).
					Debugw("Handling SCIM request.",
						"endpoint", resolved.Name,
						"method", r.Method,
						"path", r.URL.Path,
					)
			}

			ctx := context.WithValue(r.Context(), endpointContextKey, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tenantBaseURL derives the advertised base URL for a tenant from the
// forwarding headers when present, else from the transport host. The
// advertised prefix always carries the /v2 segment.
func tenantBaseURL(r *http.Request, apiPrefix, endpointID string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}

	return fmt.Sprintf("%s://%s/%s/v2/endpoints/%s", scheme, host, apiPrefix, endpointID)
}
