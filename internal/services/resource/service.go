// Package resource implements the SCIM resource engine: tenant-scoped
// create/read/replace/patch/delete/list with uniqueness, optimistic
// concurrency and attribute projection.
package resource

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gitlab.com/identity-lab/scim-target-api/internal/db"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	"gitlab.com/identity-lab/scim-target-api/internal/scim/filter"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("svc.resource")

// CreateResourceInput is the input for creating a SCIM resource.
type CreateResourceInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	Document     map[string]interface{}
}

// GetResourceInput is the input for fetching one SCIM resource.
type GetResourceInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	SCIMID       string
}

// ListResourcesInput is the input for list and search operations.
type ListResourcesInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	Filter       string
	StartIndex   int
	Count        *int
}

// ListResult is the paged output of a list operation.
type ListResult struct {
	Resources    []models.Resource
	TotalResults int
	StartIndex   int
	ItemsPerPage int
}

// ReplaceResourceInput is the input for a full PUT replacement.
type ReplaceResourceInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	SCIMID       string
	Document     map[string]interface{}
	IfMatch      string
}

// DeleteResourceInput is the input for deleting a SCIM resource.
type DeleteResourceInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	SCIMID       string
	IfMatch      string
}

// PatchResourceInput is the input for a PATCH operation set.
type PatchResourceInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	SCIMID       string
	Request      *scim.PatchRequest
	IfMatch      string
	Config       models.EndpointConfig
}

// Service encapsulates the SCIM resource engine.
type Service interface {
	CreateResource(ctx context.Context, input *CreateResourceInput) (*models.Resource, error)
	GetResource(ctx context.Context, input *GetResourceInput) (*models.Resource, error)
	ListResources(ctx context.Context, input *ListResourcesInput) (*ListResult, error)
	ReplaceResource(ctx context.Context, input *ReplaceResourceInput) (*models.Resource, error)
	PatchResource(ctx context.Context, input *PatchResourceInput) (*models.Resource, error)
	DeleteResource(ctx context.Context, input *DeleteResourceInput) error
	RenderResource(ctx context.Context, resource *models.Resource, baseURL string, attributes, excluded []string) (map[string]interface{}, error)
}

type service struct {
	logger   logger.Logger
	dbClient *db.Client
}

// NewService creates an instance of Service
func NewService(logger logger.Logger, dbClient *db.Client) Service {
	return &service{
		logger:   logger,
		dbClient: dbClient,
	}
}

func (s *service) CreateResource(ctx context.Context, input *CreateResourceInput) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "svc.CreateResource")
	defer span.End()

	if err := verifySchemas(input.Document, input.ResourceType); err != nil {
		tracing.RecordError(span, err, "schema verification failed")
		return nil, err
	}

	toCreate, members, err := s.buildResourceModel(input.EndpointID, input.ResourceType, input.Document)
	if err != nil {
		tracing.RecordError(span, err, "failed to build resource model")
		return nil, err
	}

	if toCreate.SCIMID == "" {
		toCreate.SCIMID = uuid.New().String()
	}

	if err = s.checkUniqueness(ctx, toCreate, ""); err != nil {
		tracing.RecordError(span, err, "uniqueness check failed")
		return nil, err
	}

	txContext, err := s.dbClient.Transactions.BeginTx(ctx)
	if err != nil {
		tracing.RecordError(span, err, "failed to begin transaction")
		return nil, err
	}
	defer func() {
		if txErr := s.dbClient.Transactions.RollbackTx(txContext); txErr != nil {
			s.logger.Errorf("failed to rollback tx: %v", txErr)
		}
	}()

	created, err := s.dbClient.Resources.CreateResource(txContext, toCreate)
	if err != nil {
		tracing.RecordError(span, err, "failed to create resource")
		return nil, err
	}

	if input.ResourceType == models.GroupResourceType && len(members) > 0 {
		edges, err := s.resolveMembers(txContext, input.EndpointID, created.Metadata.ID, members)
		if err != nil {
			tracing.RecordError(span, err, "failed to resolve members")
			return nil, err
		}
		if err = s.dbClient.Members.CreateMembers(txContext, edges); err != nil {
			tracing.RecordError(span, err, "failed to create members")
			return nil, err
		}
	}

	if err := s.dbClient.Transactions.CommitTx(txContext); err != nil {
		tracing.RecordError(span, err, "failed to commit transaction")
		return nil, err
	}

	s.logger.Infow("Created SCIM resource.",
		"endpointID", created.EndpointID,
		"resourceType", created.ResourceType,
		"scimID", created.SCIMID,
		"identifier", created.Identifier(),
	)

	return created, nil
}

func (s *service) GetResource(ctx context.Context, input *GetResourceInput) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "svc.GetResource")
	defer span.End()

	resource, err := s.dbClient.Resources.GetResourceBySCIMID(ctx, input.EndpointID, input.ResourceType, input.SCIMID)
	if err != nil {
		tracing.RecordError(span, err, "failed to get resource")
		return nil, err
	}

	if resource == nil {
		return nil, errors.New(
			"%s %s not found", input.ResourceType, input.SCIMID,
			errors.WithErrorCode(errors.ENotFound),
		)
	}

	return resource, nil
}

func (s *service) ListResources(ctx context.Context, input *ListResourcesInput) (*ListResult, error) {
	ctx, span := tracer.Start(ctx, "svc.ListResources")
	defer span.End()

	expression, err := filter.Parse(input.Filter)
	if err != nil {
		tracing.RecordError(span, err, "failed to parse filter")
		return nil, err
	}

	resourceFilter, err := buildResourceFilter(expression)
	if err != nil {
		tracing.RecordError(span, err, "failed to compile filter")
		return nil, err
	}

	startIndex, pageSize := scim.NormalizePage(input.StartIndex, input.Count)

	result, err := s.dbClient.Resources.GetResources(ctx, &db.GetResourcesInput{
		EndpointID:   input.EndpointID,
		ResourceType: input.ResourceType,
		Filter:       resourceFilter,
		Limit:        pageSize,
		Offset:       startIndex - 1,
	})
	if err != nil {
		tracing.RecordError(span, err, "failed to list resources")
		return nil, err
	}

	return &ListResult{
		Resources:    result.Resources,
		TotalResults: result.TotalCount,
		StartIndex:   startIndex,
		ItemsPerPage: len(result.Resources),
	}, nil
}

func (s *service) ReplaceResource(ctx context.Context, input *ReplaceResourceInput) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "svc.ReplaceResource")
	defer span.End()

	existing, err := s.GetResource(ctx, &GetResourceInput{
		EndpointID:   input.EndpointID,
		ResourceType: input.ResourceType,
		SCIMID:       input.SCIMID,
	})
	if err != nil {
		return nil, err
	}

	if err = checkPrecondition(existing, input.IfMatch); err != nil {
		tracing.RecordError(span, err, "precondition failed")
		return nil, err
	}

	// id is immutable.
	if suppliedID := stringAttribute(input.Document, "id"); suppliedID != "" && suppliedID != existing.SCIMID {
		return nil, errors.New(
			"id is immutable and cannot be changed",
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeMutability),
		)
	}

	replacement, members, err := s.buildResourceModel(input.EndpointID, input.ResourceType, input.Document)
	if err != nil {
		tracing.RecordError(span, err, "failed to build resource model")
		return nil, err
	}

	replacement.SCIMID = existing.SCIMID
	replacement.Metadata = existing.Metadata

	if err = s.checkUniqueness(ctx, replacement, existing.SCIMID); err != nil {
		tracing.RecordError(span, err, "uniqueness check failed")
		return nil, err
	}

	txContext, err := s.dbClient.Transactions.BeginTx(ctx)
	if err != nil {
		tracing.RecordError(span, err, "failed to begin transaction")
		return nil, err
	}
	defer func() {
		if txErr := s.dbClient.Transactions.RollbackTx(txContext); txErr != nil {
			s.logger.Errorf("failed to rollback tx: %v", txErr)
		}
	}()

	updated, err := s.dbClient.Resources.UpdateResource(txContext, replacement)
	if err != nil {
		tracing.RecordError(span, err, "failed to update resource")
		return nil, err
	}

	if input.ResourceType == models.GroupResourceType {
		if err = s.replaceMemberEdges(txContext, input.EndpointID, updated.Metadata.ID, members); err != nil {
			tracing.RecordError(span, err, "failed to replace members")
			return nil, err
		}
	}

	if err := s.dbClient.Transactions.CommitTx(txContext); err != nil {
		tracing.RecordError(span, err, "failed to commit transaction")
		return nil, err
	}

	return updated, nil
}

func (s *service) DeleteResource(ctx context.Context, input *DeleteResourceInput) error {
	ctx, span := tracer.Start(ctx, "svc.DeleteResource")
	defer span.End()

	existing, err := s.GetResource(ctx, &GetResourceInput{
		EndpointID:   input.EndpointID,
		ResourceType: input.ResourceType,
		SCIMID:       input.SCIMID,
	})
	if err != nil {
		return err
	}

	if err = checkPrecondition(existing, input.IfMatch); err != nil {
		tracing.RecordError(span, err, "precondition failed")
		return err
	}

	// Group edges cascade; memberships referencing a deleted user keep
	// their value string with member_resource_id set to null.
	if err = s.dbClient.Resources.DeleteResource(ctx, existing); err != nil {
		tracing.RecordError(span, err, "failed to delete resource")
		return err
	}

	s.logger.Infow("Deleted SCIM resource.",
		"endpointID", existing.EndpointID,
		"resourceType", existing.ResourceType,
		"scimID", existing.SCIMID,
	)

	return nil
}

// buildResourceModel extracts the typed columns from a document and builds
// the model plus, for groups, the received member list.
func (s *service) buildResourceModel(endpointID string, resourceType models.ResourceType, doc map[string]interface{}) (*models.Resource, []memberInput, error) {
	resource := &models.Resource{
		EndpointID:   endpointID,
		ResourceType: resourceType,
		SCIMID:       stringAttribute(doc, "id"),
		ExternalID:   stringAttribute(doc, "externalId"),
		Active:       true,
	}

	var members []memberInput

	switch resourceType {
	case models.UserResourceType:
		resource.UserName = stringAttribute(doc, "userName")
		if resource.UserName == "" {
			return nil, nil, errors.New(
				"userName is required",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}
		resource.Active = boolAttribute(doc, "active", true)

	case models.GroupResourceType:
		resource.DisplayName = stringAttribute(doc, "displayName")
		if resource.DisplayName == "" {
			return nil, nil, errors.New(
				"displayName is required",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}

		raw, ok := lookupAttribute(doc, "members")
		if ok {
			parsed, err := parseMemberList(raw)
			if err != nil {
				return nil, nil, err
			}
			members = parsed
		}
	}

	payload, err := buildPayload(doc, resourceType)
	if err != nil {
		return nil, nil, err
	}
	resource.Payload = payload

	return resource, members, nil
}

// checkUniqueness enforces the case-insensitive identifier rules. The
// excludeSCIMID parameter skips the record being replaced.
func (s *service) checkUniqueness(ctx context.Context, resource *models.Resource, excludeSCIMID string) error {
	conflictError := func(conflicting *models.Resource) error {
		return errors.New(
			"a %s with the same identifier already exists: %s", strings.ToLower(string(resource.ResourceType)), conflicting.SCIMID,
			errors.WithErrorCode(errors.EConflict),
			errors.WithSCIMType(errors.SCIMTypeUniqueness),
		)
	}

	if resource.ResourceType == models.UserResourceType {
		existing, err := s.dbClient.Resources.GetResourceByUserName(ctx, resource.EndpointID, resource.UserName)
		if err != nil {
			return err
		}
		if existing != nil && existing.SCIMID != excludeSCIMID {
			return conflictError(existing)
		}
	} else {
		existing, err := s.dbClient.Resources.GetResourceByDisplayName(ctx, resource.EndpointID, resource.DisplayName)
		if err != nil {
			return err
		}
		if existing != nil && existing.SCIMID != excludeSCIMID {
			return conflictError(existing)
		}
	}

	if resource.ExternalID != "" {
		existing, err := s.dbClient.Resources.GetResourceByExternalID(ctx, resource.EndpointID, resource.ResourceType, resource.ExternalID)
		if err != nil {
			return err
		}
		if existing != nil && existing.SCIMID != excludeSCIMID {
			return conflictError(existing)
		}
	}

	return nil
}

// checkPrecondition enforces an If-Match header against the current weak ETag.
func checkPrecondition(resource *models.Resource, ifMatch string) error {
	if ifMatch == "" {
		return nil
	}

	if !scim.ETagMatches(ifMatch, resource.ETag()) {
		return errors.New(
			"supplied etag does not match the current version",
			errors.WithErrorCode(errors.EOptimisticLock),
			errors.WithSCIMType(errors.SCIMTypeVersionMismatch),
		)
	}

	return nil
}

// resolveMembers converts received member inputs into edges, resolving
// each value to a resource id in the same tenant on a best-effort basis.
func (s *service) resolveMembers(ctx context.Context, endpointID, groupResourceID string, members []memberInput) ([]models.ResourceMember, error) {
	edges := make([]models.ResourceMember, 0, len(members))

	for _, member := range members {
		edge := models.ResourceMember{
			GroupResourceID: groupResourceID,
			Value:           member.Value,
			Type:            member.Type,
			Display:         member.Display,
		}

		resolved, err := s.dbClient.Resources.GetResourceBySCIMID(ctx, endpointID, models.UserResourceType, member.Value)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			id := resolved.Metadata.ID
			edge.MemberResourceID = &id
		}

		edges = append(edges, edge)
	}

	return edges, nil
}

// replaceMemberEdges swaps the full member set inside the ambient
// transaction so a group is never observed with a partial member set.
func (s *service) replaceMemberEdges(ctx context.Context, endpointID, groupResourceID string, members []memberInput) error {
	if err := s.dbClient.Members.DeleteMembersForGroup(ctx, groupResourceID); err != nil {
		return err
	}

	edges, err := s.resolveMembers(ctx, endpointID, groupResourceID, members)
	if err != nil {
		return err
	}

	return s.dbClient.Members.CreateMembers(ctx, edges)
}

// buildResourceFilter compiles a parsed filter expression to a store-level
// predicate.
func buildResourceFilter(expression *filter.Expression) (*db.ResourceFilter, error) {
	if expression == nil {
		return nil, nil
	}

	resourceFilter := &db.ResourceFilter{}

	switch expression.Attribute {
	case "userName":
		value := expression.Value
		resourceFilter.UserName = &value
	case "displayName":
		value := expression.Value
		resourceFilter.DisplayName = &value
	case "externalId":
		value := expression.Value
		resourceFilter.ExternalID = &value
	case "id":
		value := expression.Value
		resourceFilter.SCIMID = &value
	case "active":
		active, err := strconv.ParseBool(strings.ToLower(expression.Value))
		if err != nil {
			return nil, errors.New(
				"supplied filter is invalid or not supported",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidFilter),
			)
		}
		resourceFilter.Active = &active
	}

	return resourceFilter, nil
}
