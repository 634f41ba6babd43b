package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/services/auditlog"
	"gitlab.com/identity-lab/scim-target-api/internal/services/endpoint"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

// EndpointResponse is the admin representation of a tenant.
type EndpointResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	DisplayName string                `json:"displayName,omitempty"`
	Description string                `json:"description,omitempty"`
	Config      models.EndpointConfig `json:"config"`
	Active      bool                  `json:"active"`
	CreatedAt   *time.Time            `json:"createdAt"`
	UpdatedAt   *time.Time            `json:"updatedAt"`
}

// CreateEndpointRequest is the admin create-endpoint body.
type CreateEndpointRequest struct {
	Name        string                `json:"name"`
	DisplayName string                `json:"displayName"`
	Description string                `json:"description"`
	Config      models.EndpointConfig `json:"config"`
	Active      *bool                 `json:"active"`
}

// UpdateEndpointRequest is the admin update-endpoint body; nil fields are
// left unchanged.
type UpdateEndpointRequest struct {
	DisplayName *string               `json:"displayName"`
	Description *string               `json:"description"`
	Config      models.EndpointConfig `json:"config"`
	Active      *bool                 `json:"active"`
}

// RequestLogListResponse is one page of audit rows.
type RequestLogListResponse struct {
	Logs       []RequestLogSummary `json:"logs"`
	TotalCount int                 `json:"totalCount"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
}

// RequestLogSummary is the list projection of an audit row.
type RequestLogSummary struct {
	ID         string     `json:"id"`
	EndpointID *string    `json:"endpointId,omitempty"`
	Method     string     `json:"method"`
	URL        string     `json:"url"`
	Status     *int       `json:"status,omitempty"`
	DurationMs *int64     `json:"durationMs,omitempty"`
	Identifier string     `json:"identifier,omitempty"`
	Keepalive  bool       `json:"keepalive"`
	CreatedAt  *time.Time `json:"createdAt"`
}

// RequestLogDetailResponse is the full projection of an audit row.
type RequestLogDetailResponse struct {
	RequestLogSummary
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	RequestBody     string            `json:"requestBody,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	ResponseBody    string            `json:"responseBody,omitempty"`
	ErrorMessage    string            `json:"errorMessage,omitempty"`
	ErrorStack      string            `json:"errorStack,omitempty"`
}

// VersionResponse reports the running build.
type VersionResponse struct {
	Version        string `json:"version"`
	BuildTimestamp string `json:"buildTimestamp"`
}

type adminController struct {
	respWriter      response.Writer
	logger          logger.Logger
	endpointService endpoint.Service
	auditService    auditlog.Service
	version         string
	buildTimestamp  string
}

// NewAdminController creates an instance of adminController
func NewAdminController(
	logger logger.Logger,
	respWriter response.Writer,
	endpointService endpoint.Service,
	auditService auditlog.Service,
	version string,
	buildTimestamp string,
) Controller {
	return &adminController{
		respWriter,
		logger,
		endpointService,
		auditService,
		version,
		buildTimestamp,
	}
}

func (c *adminController) RegisterRoutes(router chi.Router) {
	router.Post("/admin/endpoints", c.createEndpoint)
	router.Get("/admin/endpoints", c.getEndpoints)
	router.Get("/admin/endpoints/{endpointID}", c.getEndpoint)
	router.Patch("/admin/endpoints/{endpointID}", c.updateEndpoint)
	router.Delete("/admin/endpoints/{endpointID}", c.deleteEndpoint)
	router.Get("/admin/endpoints/{endpointID}/stats", c.getEndpointStats)
	router.Get("/admin/endpoints/{endpointID}/export", c.exportEndpoint)

	router.Get("/admin/logs", c.getLogs)
	router.Get("/admin/logs/{logID}", c.getLog)
	router.Post("/admin/logs/clear", c.clearLogs)

	router.Get("/admin/version", c.getVersion)
	router.Get("/admin/backup/stats", c.getBackupStats)
}

func (c *adminController) createEndpoint(w http.ResponseWriter, r *http.Request) {
	var req CreateEndpointRequest
	if err := decodeJSON(r, &req); err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	created, err := c.endpointService.CreateEndpoint(r.Context(), &endpoint.CreateEndpointInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Config:      req.Config,
		Active:      req.Active,
	})
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, toEndpointResponse(created), http.StatusCreated)
}

func (c *adminController) getEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := c.endpointService.GetEndpoints(r.Context())
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	result := make([]*EndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		result = append(result, toEndpointResponse(&endpoints[i]))
	}

	c.respWriter.RespondWithJSON(w, result, http.StatusOK)
}

func (c *adminController) getEndpoint(w http.ResponseWriter, r *http.Request) {
	found, err := c.endpointService.GetEndpointByID(r.Context(), chi.URLParam(r, "endpointID"))
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, toEndpointResponse(found), http.StatusOK)
}

func (c *adminController) updateEndpoint(w http.ResponseWriter, r *http.Request) {
	var req UpdateEndpointRequest
	if err := decodeJSON(r, &req); err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	updated, err := c.endpointService.UpdateEndpoint(r.Context(), &endpoint.UpdateEndpointInput{
		ID:          chi.URLParam(r, "endpointID"),
		DisplayName: req.DisplayName,
		Description: req.Description,
		Config:      req.Config,
		Active:      req.Active,
	})
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, toEndpointResponse(updated), http.StatusOK)
}

func (c *adminController) deleteEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := c.endpointService.DeleteEndpoint(r.Context(), chi.URLParam(r, "endpointID")); err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithNoContent(w)
}

func (c *adminController) getEndpointStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.endpointService.GetEndpointStats(r.Context(), chi.URLParam(r, "endpointID"))
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, stats, http.StatusOK)
}

func (c *adminController) exportEndpoint(w http.ResponseWriter, r *http.Request) {
	export, err := c.endpointService.ExportEndpoint(r.Context(), chi.URLParam(r, "endpointID"))
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, export, http.StatusOK)
}

func (c *adminController) getLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := &auditlog.GetRequestLogsInput{
		HideKeepalive: query.Get("hideKeepalive") == "true",
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.respWriter.RespondWithError(w, errors.New("page must be an integer", errors.WithErrorCode(errors.EInvalid)))
			return
		}
		input.Page = page
	}

	if raw := query.Get("pageSize"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			c.respWriter.RespondWithError(w, errors.New("pageSize must be an integer", errors.WithErrorCode(errors.EInvalid)))
			return
		}
		input.PageSize = pageSize
	}

	if raw := query.Get("method"); raw != "" {
		input.Method = &raw
	}

	if raw := query.Get("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			c.respWriter.RespondWithError(w, errors.New("status must be an integer", errors.WithErrorCode(errors.EInvalid)))
			return
		}
		input.Status = &status
	}

	if raw := query.Get("search"); raw != "" {
		input.Search = &raw
	}

	if raw := query.Get("endpointId"); raw != "" {
		input.EndpointID = &raw
	}

	if raw := query.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.respWriter.RespondWithError(w, errors.New("since must be an RFC 3339 timestamp", errors.WithErrorCode(errors.EInvalid)))
			return
		}
		input.Since = &since
	}

	if raw := query.Get("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.respWriter.RespondWithError(w, errors.New("until must be an RFC 3339 timestamp", errors.WithErrorCode(errors.EInvalid)))
			return
		}
		input.Until = &until
	}

	result, err := c.auditService.GetRequestLogs(r.Context(), input)
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	logs := make([]RequestLogSummary, 0, len(result.Logs))
	for i := range result.Logs {
		logs = append(logs, toRequestLogSummary(&result.Logs[i]))
	}

	c.respWriter.RespondWithJSON(w, &RequestLogListResponse{
		Logs:       logs,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	}, http.StatusOK)
}

func (c *adminController) getLog(w http.ResponseWriter, r *http.Request) {
	found, err := c.auditService.GetRequestLogByID(r.Context(), chi.URLParam(r, "logID"))
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, &RequestLogDetailResponse{
		RequestLogSummary: toRequestLogSummary(found),
		RequestHeaders:    found.RequestHeaders,
		RequestBody:       found.RequestBody,
		ResponseHeaders:   found.ResponseHeaders,
		ResponseBody:      found.ResponseBody,
		ErrorMessage:      found.ErrorMessage,
		ErrorStack:        found.ErrorStack,
	}, http.StatusOK)
}

func (c *adminController) clearLogs(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.auditService.ClearRequestLogs(r.Context())
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, map[string]int64{"deleted": deleted}, http.StatusOK)
}

func (c *adminController) getVersion(w http.ResponseWriter, _ *http.Request) {
	c.respWriter.RespondWithJSON(w, &VersionResponse{
		Version:        c.version,
		BuildTimestamp: c.buildTimestamp,
	}, http.StatusOK)
}

func (c *adminController) getBackupStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.auditService.GetBackupStats(r.Context())
	if err != nil {
		c.respWriter.RespondWithError(w, err)
		return
	}

	c.respWriter.RespondWithJSON(w, stats, http.StatusOK)
}

func toEndpointResponse(model *models.Endpoint) *EndpointResponse {
	return &EndpointResponse{
		ID:          model.Metadata.ID,
		Name:        model.Name,
		DisplayName: model.DisplayName,
		Description: model.Description,
		Config:      model.Config,
		Active:      model.Active,
		CreatedAt:   model.Metadata.CreationTimestamp,
		UpdatedAt:   model.Metadata.LastUpdatedTimestamp,
	}
}

func toRequestLogSummary(model *models.RequestLog) RequestLogSummary {
	return RequestLogSummary{
		ID:         model.ID,
		EndpointID: model.EndpointID,
		Method:     model.Method,
		URL:        model.URL,
		Status:     model.Status,
		DurationMs: model.DurationMs,
		Identifier: model.Identifier,
		Keepalive:  model.IsKeepalive(),
		CreatedAt:  model.CreationTimestamp,
	}
}
