package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/services/endpoint"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

type fakeEndpointService struct {
	endpoint.Service
	endpoints map[string]*models.Endpoint
}

func (f *fakeEndpointService) GetEndpointByID(_ context.Context, id string) (*models.Endpoint, error) {
	found, ok := f.endpoints[id]
	if !ok {
		return nil, errors.New("endpoint with id %s not found", id, errors.WithErrorCode(errors.ENotFound))
	}
	return found, nil
}

func newTenantRouter(t *testing.T, service endpoint.Service) chi.Router {
	t.Helper()

	testLogger, _ := logger.NewForTest()
	respWriter := response.NewWriter(testLogger)

	router := chi.NewRouter()
	router.Route("/scim/endpoints/{endpointID}", func(r chi.Router) {
		r.Use(NewEndpointResolverMiddleware(service, respWriter, "scim"))
		r.Get("/Users", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	return router
}

func TestEndpointResolver(t *testing.T) {
	active := &models.Endpoint{
		Name:     "tenant-a",
		Active:   true,
		Metadata: models.ResourceMetadata{ID: "e1"},
	}
	inactive := &models.Endpoint{
		Name:     "tenant-b",
		Active:   false,
		Metadata: models.ResourceMetadata{ID: "e2"},
	}

	service := &fakeEndpointService{endpoints: map[string]*models.Endpoint{"e1": active, "e2": inactive}}

	t.Run("active endpoint resolves and builds a tenant context", func(t *testing.T) {
		testLogger, _ := logger.NewForTest()
		respWriter := response.NewWriter(testLogger)

		var captured *TenantContext
		router := chi.NewRouter()
		router.Route("/scim/endpoints/{endpointID}", func(r chi.Router) {
			r.Use(NewEndpointResolverMiddleware(service, respWriter, "scim"))
			r.Get("/Users", func(w http.ResponseWriter, req *http.Request) {
				captured = EndpointFromContext(req.Context())
				w.WriteHeader(http.StatusOK)
			})
		})

		r := httptest.NewRequest("GET", "http://target.example/scim/endpoints/e1/Users", nil)
		r.Header.Set("X-Forwarded-Proto", "https")
		r.Header.Set("X-Forwarded-Host", "scim.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "e1", captured.Endpoint.Metadata.ID)
		assert.Equal(t, "https://scim.example.com/scim/v2/endpoints/e1", captured.BaseURL)
	})

	t.Run("inactive endpoint is forbidden", func(t *testing.T) {
		router := newTenantRouter(t, service)

		r := httptest.NewRequest("GET", "/scim/endpoints/e2/Users", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Contains(t, envelope["detail"], "tenant-b")
		assert.Equal(t, "403", envelope["status"])
	})

	t.Run("unknown endpoint is not found", func(t *testing.T) {
		router := newTenantRouter(t, service)

		r := httptest.NewRequest("GET", "/scim/endpoints/nope/Users", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
