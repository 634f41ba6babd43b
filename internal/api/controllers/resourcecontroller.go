package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gitlab.com/identity-lab/scim-target-api/internal/api/middleware"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	"gitlab.com/identity-lab/scim-target-api/internal/services/resource"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

type resourceController struct {
	respWriter      response.Writer
	logger          logger.Logger
	resourceService resource.Service
}

// NewResourceController creates an instance of resourceController
func NewResourceController(
	logger logger.Logger,
	respWriter response.Writer,
	resourceService resource.Service,
) Controller {
	return &resourceController{
		respWriter,
		logger,
		resourceService,
	}
}

func (c *resourceController) RegisterRoutes(router chi.Router) {
	for _, resourceType := range []models.ResourceType{models.UserResourceType, models.GroupResourceType} {
		base := fmt.Sprintf("/%ss", resourceType)

		router.Post(base, c.createResource(resourceType))
		router.Get(base, c.listResources(resourceType))
		router.Post(base+"/.search", c.searchResources(resourceType))
		router.Get(base+"/{scimID}", c.getResource(resourceType))
		router.Put(base+"/{scimID}", c.replaceResource(resourceType))
		router.Patch(base+"/{scimID}", c.patchResource(resourceType))
		router.Delete(base+"/{scimID}", c.deleteResource(resourceType))
	}
}

func (c *resourceController) createResource(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := middleware.EndpointFromContext(r.Context())

		var doc map[string]interface{}
		if err := decodeJSON(r, &doc); err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		created, err := c.resourceService.CreateResource(r.Context(), &resource.CreateResourceInput{
			EndpointID:   tenant.Endpoint.Metadata.ID,
			ResourceType: resourceType,
			Document:     doc,
		})
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		rendered, err := c.resourceService.RenderResource(r.Context(), created, tenant.BaseURL, nil, nil)
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		c.respWriter.RespondWithResource(w, rendered, http.StatusCreated)
	}
}

func (c *resourceController) getResource(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := middleware.EndpointFromContext(r.Context())

		found, err := c.resourceService.GetResource(r.Context(), &resource.GetResourceInput{
			EndpointID:   tenant.Endpoint.Metadata.ID,
			ResourceType: resourceType,
			SCIMID:       chi.URLParam(r, "scimID"),
		})
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		// Conditional GET.
		if ifNoneMatch := r.Header.Get("If-None-Match"); ifNoneMatch != "" {
			if scim.ETagMatches(ifNoneMatch, found.ETag()) {
				c.respWriter.RespondWithNotModified(w, found.ETag())
				return
			}
		}

		attributes, excluded := projectionParams(r)

		rendered, err := c.resourceService.RenderResource(r.Context(), found, tenant.BaseURL, attributes, excluded)
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		c.respWriter.RespondWithResource(w, rendered, http.StatusOK)
	}
}

func (c *resourceController) listResources(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		startIndex, count, err := paginationParams(query.Get("startIndex"), query.Get("count"))
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		attributes, excluded := projectionParams(r)

		c.respondWithList(w, r, resourceType, &resource.ListResourcesInput{
			Filter:     query.Get("filter"),
			StartIndex: startIndex,
			Count:      count,
		}, attributes, excluded)
	}
}

func (c *resourceController) searchResources(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request scim.SearchRequest
		if err := decodeJSON(r, &request); err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		c.respondWithList(w, r, resourceType, &resource.ListResourcesInput{
			Filter:     request.Filter,
			StartIndex: request.StartIndex,
			Count:      request.Count,
		}, request.Attributes, request.ExcludedAttributes)
	}
}

func (c *resourceController) respondWithList(
	w http.ResponseWriter,
	r *http.Request,
	resourceType models.ResourceType,
	input *resource.ListResourcesInput,
	attributes, excluded []string,
) {
	tenant := middleware.EndpointFromContext(r.Context())
	input.EndpointID = tenant.Endpoint.Metadata.ID
	input.ResourceType = resourceType

	result, err := c.resourceService.ListResources(r.Context(), input)
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	rendered := make([]map[string]interface{}, 0, len(result.Resources))
	for i := range result.Resources {
		doc, err := c.resourceService.RenderResource(r.Context(), &result.Resources[i], tenant.BaseURL, attributes, excluded)
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}
		rendered = append(rendered, doc)
	}

	c.respWriter.RespondWithJSON(w,
		scim.NewListResponse(rendered, result.TotalResults, result.StartIndex, result.ItemsPerPage),
		http.StatusOK,
	)
}

func (c *resourceController) replaceResource(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := middleware.EndpointFromContext(r.Context())

		var doc map[string]interface{}
		if err := decodeJSON(r, &doc); err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		updated, err := c.resourceService.ReplaceResource(r.Context(), &resource.ReplaceResourceInput{
			EndpointID:   tenant.Endpoint.Metadata.ID,
			ResourceType: resourceType,
			SCIMID:       chi.URLParam(r, "scimID"),
			Document:     doc,
			IfMatch:      r.Header.Get("If-Match"),
		})
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		rendered, err := c.resourceService.RenderResource(r.Context(), updated, tenant.BaseURL, nil, nil)
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		c.respWriter.RespondWithResource(w, rendered, http.StatusOK)
	}
}

func (c *resourceController) patchResource(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := middleware.EndpointFromContext(r.Context())

		var request scim.PatchRequest
		if err := decodeJSON(r, &request); err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		updated, err := c.resourceService.PatchResource(r.Context(), &resource.PatchResourceInput{
			EndpointID:   tenant.Endpoint.Metadata.ID,
			ResourceType: resourceType,
			SCIMID:       chi.URLParam(r, "scimID"),
			Request:      &request,
			IfMatch:      r.Header.Get("If-Match"),
			Config:       tenant.Endpoint.Config,
		})
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		rendered, err := c.resourceService.RenderResource(r.Context(), updated, tenant.BaseURL, nil, nil)
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		c.respWriter.RespondWithResource(w, rendered, http.StatusOK)
	}
}

func (c *resourceController) deleteResource(resourceType models.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := middleware.EndpointFromContext(r.Context())

		err := c.resourceService.DeleteResource(r.Context(), &resource.DeleteResourceInput{
			EndpointID:   tenant.Endpoint.Metadata.ID,
			ResourceType: resourceType,
			SCIMID:       chi.URLParam(r, "scimID"),
			IfMatch:      r.Header.Get("If-Match"),
		})
		if err != nil {
			c.respWriter.RespondWithError(w, err)
			return
		}

		c.respWriter.RespondWithNoContent(w)
	}
}

// projectionParams reads the attributes / excludedAttributes query
// parameters. sortBy and sortOrder are accepted and ignored since sort is
// advertised as unsupported.
func projectionParams(r *http.Request) ([]string, []string) {
	query := r.URL.Query()
	return scim.ParseAttributeList(query.Get("attributes")),
		scim.ParseAttributeList(query.Get("excludedAttributes"))
}

// paginationParams parses startIndex and count query parameters.
func paginationParams(rawStartIndex, rawCount string) (int, *int, error) {
	startIndex := 1
	if rawStartIndex != "" {
		parsed, err := strconv.Atoi(rawStartIndex)
		if err != nil {
			return 0, nil, errors.New(
				"startIndex must be an integer",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}
		startIndex = parsed
	}

	var count *int
	if rawCount != "" {
		parsed, err := strconv.Atoi(rawCount)
		if err != nil {
			return 0, nil, errors.New(
				"count must be an integer",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}
		count = &parsed
	}

	return startIndex, count, nil
}
