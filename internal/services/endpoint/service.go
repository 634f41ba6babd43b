// Package endpoint manages tenants (endpoints): admin CRUD, the
// process-wide tenant-config cache and per-tenant statistics.
package endpoint

import (
	"context"
	"sync"
	"time"

	"gitlab.com/identity-lab/scim-target-api/internal/db"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("svc.endpoint")

// CreateEndpointInput is the input for creating a new endpoint.
type CreateEndpointInput struct {
	Name        string
	DisplayName string
	Description string
	Config      models.EndpointConfig
	Active      *bool
}

// UpdateEndpointInput is the input for updating an endpoint. Nil fields
// are left unchanged.
type UpdateEndpointInput struct {
	ID          string
	DisplayName *string
	Description *string
	Config      models.EndpointConfig
	Active      *bool
}

// EndpointStats summarizes a tenant's provisioned state and traffic.
type EndpointStats struct {
	LastRequestAt *string `json:"lastRequestAt,omitempty"`
	UserCount     int     `json:"userCount"`
	GroupCount    int     `json:"groupCount"`
	MemberCount   int     `json:"memberCount"`
	RequestCount  int     `json:"requestCount"`
}

// EndpointExport is a JSON dump of a tenant's provisioned state for
// inspection.
type EndpointExport struct {
	EndpointID string                   `json:"endpointId"`
	Name       string                   `json:"name"`
	Users      []map[string]interface{} `json:"users"`
	Groups     []map[string]interface{} `json:"groups"`
}

// Service encapsulates the logic for managing endpoints.
type Service interface {
	GetEndpoints(ctx context.Context) ([]models.Endpoint, error)
	GetEndpointByID(ctx context.Context, id string) (*models.Endpoint, error)
	CreateEndpoint(ctx context.Context, input *CreateEndpointInput) (*models.Endpoint, error)
	UpdateEndpoint(ctx context.Context, input *UpdateEndpointInput) (*models.Endpoint, error)
	DeleteEndpoint(ctx context.Context, id string) error
	GetEndpointStats(ctx context.Context, id string) (*EndpointStats, error)
	ExportEndpoint(ctx context.Context, id string) (*EndpointExport, error)
}

type service struct {
	logger   logger.Logger
	dbClient *db.Client

	// cache holds endpoints by id. Entries are invalidated on every admin
	// mutation; readers tolerate staleness of at most one request.
	cacheLock sync.RWMutex
	cache     map[string]*models.Endpoint
}

// NewService creates an instance of Service
func NewService(logger logger.Logger, dbClient *db.Client) Service {
	return &service{
		logger:   logger,
		dbClient: dbClient,
		cache:    map[string]*models.Endpoint{},
	}
}

func (s *service) GetEndpoints(ctx context.Context) ([]models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "svc.GetEndpoints")
	defer span.End()

	return s.dbClient.Endpoints.GetEndpoints(ctx)
}

func (s *service) GetEndpointByID(ctx context.Context, id string) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "svc.GetEndpointByID")
	defer span.End()

	s.cacheLock.RLock()
	cached, ok := s.cache[id]
	s.cacheLock.RUnlock()
	if ok {
		return cached, nil
	}

	endpoint, err := s.dbClient.Endpoints.GetEndpointByID(ctx, id)
	if err != nil {
		tracing.RecordError(span, err, "failed to get endpoint")
		return nil, err
	}

	if endpoint == nil {
		return nil, errors.New("endpoint with id %s not found", id, errors.WithErrorCode(errors.ENotFound))
	}

	s.cacheLock.Lock()
	s.cache[id] = endpoint
	s.cacheLock.Unlock()

	return endpoint, nil
}

func (s *service) CreateEndpoint(ctx context.Context, input *CreateEndpointInput) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "svc.CreateEndpoint")
	defer span.End()

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	config := input.Config
	if config == nil {
		config = models.EndpointConfig{}
	}

	toCreate := &models.Endpoint{
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Description: input.Description,
		Config:      config,
		Active:      active,
	}

	if err := toCreate.Validate(); err != nil {
		tracing.RecordError(span, err, "endpoint validation failed")
		return nil, err
	}

	// Friendly pre-check; the unique index on lower(name) closes the race.
	existing, err := s.dbClient.Endpoints.GetEndpointByName(ctx, input.Name)
	if err != nil {
		tracing.RecordError(span, err, "failed to check for existing endpoint")
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("endpoint with name %s already exists", input.Name, errors.WithErrorCode(errors.EConflict))
	}

	created, err := s.dbClient.Endpoints.CreateEndpoint(ctx, toCreate)
	if err != nil {
		tracing.RecordError(span, err, "failed to create endpoint")
		return nil, err
	}

	s.logger.Infow("Created endpoint.", "name", created.Name, "endpointID", created.Metadata.ID)

	return created, nil
}

func (s *service) UpdateEndpoint(ctx context.Context, input *UpdateEndpointInput) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "svc.UpdateEndpoint")
	defer span.End()

	endpoint, err := s.GetEndpointByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	updated := *endpoint
	if input.DisplayName != nil {
		updated.DisplayName = *input.DisplayName
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.Config != nil {
		updated.Config = input.Config
	}
	if input.Active != nil {
		updated.Active = *input.Active
	}

	if err = updated.Validate(); err != nil {
		tracing.RecordError(span, err, "endpoint validation failed")
		return nil, err
	}

	result, err := s.dbClient.Endpoints.UpdateEndpoint(ctx, &updated)
	if err != nil {
		tracing.RecordError(span, err, "failed to update endpoint")
		return nil, err
	}

	s.invalidate(input.ID)

	s.logger.Infow("Updated endpoint.", "name", result.Name, "endpointID", result.Metadata.ID, "active", result.Active)

	return result, nil
}

func (s *service) DeleteEndpoint(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "svc.DeleteEndpoint")
	defer span.End()

	endpoint, err := s.GetEndpointByID(ctx, id)
	if err != nil {
		return err
	}

	// Child rows (resources, members, request logs) are removed or
	// nullified by the store's cascade rules.
	if err = s.dbClient.Endpoints.DeleteEndpoint(ctx, endpoint); err != nil {
		tracing.RecordError(span, err, "failed to delete endpoint")
		return err
	}

	s.invalidate(id)

	s.logger.Infow("Deleted endpoint.", "name", endpoint.Name, "endpointID", endpoint.Metadata.ID)

	return nil
}

func (s *service) GetEndpointStats(ctx context.Context, id string) (*EndpointStats, error) {
	ctx, span := tracer.Start(ctx, "svc.GetEndpointStats")
	defer span.End()

	endpoint, err := s.GetEndpointByID(ctx, id)
	if err != nil {
		return nil, err
	}

	userCount, err := s.dbClient.Resources.GetResourceCount(ctx, endpoint.Metadata.ID, models.UserResourceType)
	if err != nil {
		tracing.RecordError(span, err, "failed to count users")
		return nil, err
	}

	groupCount, err := s.dbClient.Resources.GetResourceCount(ctx, endpoint.Metadata.ID, models.GroupResourceType)
	if err != nil {
		tracing.RecordError(span, err, "failed to count groups")
		return nil, err
	}

	memberCount, err := s.dbClient.Members.GetMemberCountForEndpoint(ctx, endpoint.Metadata.ID)
	if err != nil {
		tracing.RecordError(span, err, "failed to count members")
		return nil, err
	}

	logStats, err := s.dbClient.RequestLogs.GetRequestLogStats(ctx, endpoint.Metadata.ID)
	if err != nil {
		tracing.RecordError(span, err, "failed to get request stats")
		return nil, err
	}

	stats := &EndpointStats{
		UserCount:    userCount,
		GroupCount:   groupCount,
		MemberCount:  memberCount,
		RequestCount: logStats.RequestCount,
	}

	if logStats.LastRequestAt != nil {
		formatted := logStats.LastRequestAt.UTC().Format(time.RFC3339Nano)
		stats.LastRequestAt = &formatted
	}

	return stats, nil
}

func (s *service) ExportEndpoint(ctx context.Context, id string) (*EndpointExport, error) {
	ctx, span := tracer.Start(ctx, "svc.ExportEndpoint")
	defer span.End()

	endpoint, err := s.GetEndpointByID(ctx, id)
	if err != nil {
		return nil, err
	}

	export := &EndpointExport{
		EndpointID: endpoint.Metadata.ID,
		Name:       endpoint.Name,
		Users:      []map[string]interface{}{},
		Groups:     []map[string]interface{}{},
	}

	for _, resourceType := range []models.ResourceType{models.UserResourceType, models.GroupResourceType} {
		dump, err := s.dumpResources(ctx, endpoint.Metadata.ID, resourceType)
		if err != nil {
			tracing.RecordError(span, err, "failed to export resources")
			return nil, err
		}
		if resourceType == models.UserResourceType {
			export.Users = dump
		} else {
			export.Groups = dump
		}
	}

	return export, nil
}

// dumpResources pages through every resource of one type.
func (s *service) dumpResources(ctx context.Context, endpointID string, resourceType models.ResourceType) ([]map[string]interface{}, error) {
	const pageSize = 200

	dump := []map[string]interface{}{}
	offset := 0

	for {
		page, err := s.dbClient.Resources.GetResources(ctx, &db.GetResourcesInput{
			EndpointID:   endpointID,
			ResourceType: resourceType,
			Limit:        pageSize,
			Offset:       offset,
		})
		if err != nil {
			return nil, err
		}

		for i := range page.Resources {
			resource := &page.Resources[i]
			entry := map[string]interface{}{
				"scimId":  resource.SCIMID,
				"payload": resource.Payload,
				"active":  resource.Active,
			}
			if resource.ExternalID != "" {
				entry["externalId"] = resource.ExternalID
			}
			if resource.Metadata.LastUpdatedTimestamp != nil {
				entry["updatedAt"] = resource.Metadata.LastUpdatedTimestamp.UTC().Format(time.RFC3339Nano)
			}
			dump = append(dump, entry)
		}

		offset += len(page.Resources)
		if offset >= page.TotalCount || len(page.Resources) == 0 {
			break
		}
	}

	return dump, nil
}

func (s *service) invalidate(id string) {
	s.cacheLock.Lock()
	delete(s.cache, id)
	s.cacheLock.Unlock()
}
