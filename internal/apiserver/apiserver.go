// Package apiserver is used to initialize the api
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/identity-lab/scim-target-api/internal/api"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/apiserver/config"
	"gitlab.com/identity-lab/scim-target-api/internal/auth"
	"gitlab.com/identity-lab/scim-target-api/internal/db"
	"gitlab.com/identity-lab/scim-target-api/internal/services/auditlog"
	"gitlab.com/identity-lab/scim-target-api/internal/services/endpoint"
	"gitlab.com/identity-lab/scim-target-api/internal/services/resource"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

// APIServer represents an instance of a server
type APIServer struct {
	logger        logger.Logger
	dbClient      *db.Client
	srv           *http.Server
	traceShutdown func(context.Context) error
	shutdownOnce  sync.Once
}

// New creates a new APIServer instance
func New(ctx context.Context, cfg *config.Config, logger logger.Logger, apiVersion string, buildTimestamp string) (*APIServer, error) {
	// Initialize a trace provider.
	traceProviderShutdown, err := tracing.NewProvider(ctx,
		&tracing.NewProviderInput{
			Enabled: cfg.OtelTraceEnabled,
			Host:    cfg.OtelTraceCollectorHost,
			Port:    cfg.OtelTraceCollectorPort,
			Version: apiVersion,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trace provider: %w", err)
	}
	if !cfg.OtelTraceEnabled {
		logger.Info("Tracing is disabled.")
	}

	dbClient, err := db.NewClient(
		ctx,
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBAutoMigrateEnabled,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB client %v", err)
	}

	// Outside production a missing shared secret is generated once per
	// process so the endpoint is still usable as a test target.
	sharedSecret := cfg.SCIMSharedSecret
	if sharedSecret == "" {
		sharedSecret = uuid.New().String()
		logger.Warnf("SCIM_SHARED_SECRET is not configured; generated shared secret for this process: %s", sharedSecret)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.New().String()
		logger.Warn("JWT_SECRET is not configured; OAuth tokens will not survive a restart")
	}

	authenticator := auth.NewAuthenticator(sharedSecret, jwtSecret)
	idp := auth.NewIdentityProvider(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthClientScopes, jwtSecret)

	respWriter := response.NewWriter(logger)

	// Services.
	var (
		endpointService = endpoint.NewService(logger, dbClient)
		resourceService = resource.NewService(logger, dbClient)
		auditService    = auditlog.NewService(logger, dbClient, cfg.LogBodyBytes, cfg.BlobBackupAccount, cfg.BlobBackupContainer)
	)

	router := api.BuildRouter(
		cfg,
		logger,
		respWriter,
		authenticator,
		idp,
		endpointService,
		resourceService,
		auditService,
		apiVersion,
		buildTimestamp,
	)

	return &APIServer{
		logger:   logger,
		dbClient: dbClient,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%v", cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: time.Minute,
		},
		traceShutdown: traceProviderShutdown,
	}, nil
}

// Start will start the server
func (api *APIServer) Start() {
	go func() {
		// Serve Prometheus endpoint on its own port since it
		// won't be publicly exposed
		promServer := &http.Server{
			Addr:              ":9090",
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 3 * time.Second,
		}

		api.logger.Infof("Prometheus server listening on %s", promServer.Addr)

		if err := promServer.ListenAndServe(); err != nil {
			api.logger.Errorf("Prometheus server failed to start: %v", err)
		}
	}()

	api.logger.Infof("HTTP server listening on %s", api.srv.Addr)

	if err := api.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		api.logger.Errorf("HTTP server failed to start: %v", err)
	}
}

// Shutdown will shutdown the API server
func (api *APIServer) Shutdown(ctx context.Context) {
	api.shutdownOnce.Do(func() {
		api.logger.Info("Starting HTTP server shutdown")

		// Shutdown HTTP server
		if err := api.srv.Shutdown(ctx); err != nil {
			api.logger.Errorf("failed to shutdown HTTP server gracefully: %v", err)
		}

		api.logger.Info("HTTP server shutdown successfully")

		// Shutdown trace provider.
		if err := api.traceShutdown(ctx); err != nil {
			api.logger.Errorf("Shutdown trace provider failed: %v", err)
		} else {
			api.logger.Info("Shutdown trace provider successfully.")
		}

		api.dbClient.Close(ctx)

		api.logger.Info("Completed graceful shutdown")
	})
}
