package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/identity-lab/scim-target-api/internal/api/middleware"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/scim"
)

type discoveryController struct {
	respWriter response.Writer
}

// NewDiscoveryController creates an instance of discoveryController
func NewDiscoveryController(respWriter response.Writer) Controller {
	return &discoveryController{respWriter}
}

func (c *discoveryController) RegisterRoutes(router chi.Router) {
	router.Get("/ServiceProviderConfig", c.getServiceProviderConfig)
	router.Get("/ResourceTypes", c.getResourceTypes)
	router.Get("/Schemas", c.getSchemas)
}

func (c *discoveryController) getServiceProviderConfig(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.EndpointFromContext(r.Context())
	c.respWriter.RespondWithJSON(w, scim.ServiceProviderConfigDocument(tenant.BaseURL), http.StatusOK)
}

func (c *discoveryController) getResourceTypes(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.EndpointFromContext(r.Context())
	c.respWriter.RespondWithJSON(w, scim.ResourceTypesDocument(tenant.BaseURL), http.StatusOK)
}

func (c *discoveryController) getSchemas(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.EndpointFromContext(r.Context())
	c.respWriter.RespondWithJSON(w, scim.SchemasDocument(tenant.BaseURL), http.StatusOK)
}
