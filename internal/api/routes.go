// Package api package
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gitlab.com/identity-lab/scim-target-api/internal/api/controllers"
	"gitlab.com/identity-lab/scim-target-api/internal/api/middleware"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/apiserver/config"
	"gitlab.com/identity-lab/scim-target-api/internal/auth"
	"gitlab.com/identity-lab/scim-target-api/internal/services/auditlog"
	"gitlab.com/identity-lab/scim-target-api/internal/services/endpoint"
	"gitlab.com/identity-lab/scim-target-api/internal/services/resource"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

// BuildRouter builds the http router for the API server
func BuildRouter(
	cfg *config.Config,
	logger logger.Logger,
	respWriter response.Writer,
	authenticator *auth.Authenticator,
	idp *auth.IdentityProvider,
	endpointService endpoint.Service,
	resourceService resource.Service,
	auditService auditlog.Service,
	version string,
	buildTimestamp string,
) chi.Router {
	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		allowedOrigins = strings.Split(cfg.CorsAllowedOrigins, ",")
		for i, part := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(part)
		}
	}

	/* Root router */
	router := chi.NewRouter()
	router.Use(
		newURLRewriteMiddleware(cfg.APIPrefix),
		cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "If-Match", "If-None-Match"},
		}),
		middleware.NewRequestIDMiddleware(),
		middleware.PrometheusMiddleware,
		// The audit pipeline wraps the whole surface, outside the request
		// deadline so timed-out requests still get a row.
		middleware.NewAuditMiddleware(auditService, cfg.APIPrefix),
		middleware.NewTimeoutMiddleware(time.Duration(cfg.RequestTimeout)*time.Second),
		middleware.NewBodyLimitMiddleware(cfg.MaxBodyBytes),
	)

	apiRouter := chi.NewRouter()
	router.Mount("/"+cfg.APIPrefix, apiRouter)

	authMiddleware := middleware.NewAuthenticationMiddleware(authenticator, logger, respWriter)
	tenantMiddleware := middleware.NewEndpointResolverMiddleware(endpointService, respWriter, cfg.APIPrefix)

	// Public routes.
	AddRoutes(apiRouter, controllers.NewHealthController(respWriter))
	AddRoutes(apiRouter, controllers.NewOAuthController(logger, respWriter, idp))

	// Admin surface.
	apiRouter.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		AddRoutes(r, controllers.NewAdminController(
			logger,
			respWriter,
			endpointService,
			auditService,
			version,
			buildTimestamp,
		))
	})

	// Tenant-scoped SCIM surface.
	apiRouter.Route("/endpoints/{endpointID}", func(r chi.Router) {
		r.Group(func(discoveryRouter chi.Router) {
			if !cfg.PublicDiscovery {
				discoveryRouter.Use(authMiddleware)
			}
			discoveryRouter.Use(tenantMiddleware)
			AddRoutes(discoveryRouter, controllers.NewDiscoveryController(respWriter))
		})

		r.Group(func(resourceRouter chi.Router) {
			resourceRouter.Use(authMiddleware, tenantMiddleware)
			AddRoutes(resourceRouter, controllers.NewResourceController(
				logger,
				respWriter,
				resourceService,
			))
		})
	})

	return router
}

// AddRoutes adds the controllers routes to the path
func AddRoutes(router chi.Router, controller controllers.Controller) {
	router.Group(func(groupRouter chi.Router) {
		controller.RegisterRoutes(groupRouter)
	})
}

// newURLRewriteMiddleware canonicalizes inbound paths: leading double
// slashes collapse to a single slash and the advertised /<prefix>/v2
// segment rewrites to the internal /<prefix> prefix.
func newURLRewriteMiddleware(apiPrefix string) middleware.Handler {
	internalPrefix := "/" + apiPrefix
	advertisedPrefix := internalPrefix + "/v2"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			for strings.HasPrefix(path, "//") {
				path = path[1:]
			}

			if path == advertisedPrefix {
				path = internalPrefix
			} else if strings.HasPrefix(path, advertisedPrefix+"/") {
				path = internalPrefix + path[len(advertisedPrefix):]
			}

			if path != r.URL.Path {
				r.URL.Path = path
			}

			next.ServeHTTP(w, r)
		})
	}
}
