package db

//go:generate mockery --name Resources --inpackage --case underscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v4"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Resources encapsulates the logic to access SCIM resources from the database
type Resources interface {
	GetResourceBySCIMID(ctx context.Context, endpointID string, resourceType models.ResourceType, scimID string) (*models.Resource, error)
	GetResourceByUserName(ctx context.Context, endpointID string, userName string) (*models.Resource, error)
	GetResourceByDisplayName(ctx context.Context, endpointID string, displayName string) (*models.Resource, error)
	GetResourceByExternalID(ctx context.Context, endpointID string, resourceType models.ResourceType, externalID string) (*models.Resource, error)
	GetResources(ctx context.Context, input *GetResourcesInput) (*ResourcesResult, error)
	GetResourceCount(ctx context.Context, endpointID string, resourceType models.ResourceType) (int, error)
	CreateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error)
	UpdateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error)
	DeleteResource(ctx context.Context, resource *models.Resource) error
}

// ResourceFilter contains the supported fields for filtering resources.
// String matches are case-insensitive.
type ResourceFilter struct {
	SCIMID      *string
	UserName    *string
	DisplayName *string
	ExternalID  *string
	Active      *bool
}

// GetResourcesInput is the input for listing resources. A Limit of zero
// returns only the total count.
type GetResourcesInput struct {
	EndpointID   string
	ResourceType models.ResourceType
	Filter       *ResourceFilter
	Limit        int
	Offset       int
}

// ResourcesResult contains the response data and the unpaged total
type ResourcesResult struct {
	TotalCount int
	Resources  []models.Resource
}

type resources struct {
	dbClient *Client
}

var resourceFieldList = append(metadataFieldList,
	"endpoint_id", "resource_type", "scim_id", "external_id", "user_name", "display_name", "active", "payload")

// NewResources returns an instance of the Resources interface
func NewResources(dbClient *Client) Resources {
	return &resources{dbClient: dbClient}
}

func (r *resources) GetResourceBySCIMID(ctx context.Context, endpointID string, resourceType models.ResourceType, scimID string) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "db.GetResourceBySCIMID")
	defer span.End()

	return r.getResource(ctx, goqu.Ex{
		"resources.endpoint_id":   endpointID,
		"resources.resource_type": string(resourceType),
		"resources.scim_id":       scimID,
	})
}

func (r *resources) GetResourceByUserName(ctx context.Context, endpointID string, userName string) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "db.GetResourceByUserName")
	defer span.End()

	return r.getResource(ctx, goqu.And(
		goqu.Ex{"resources.endpoint_id": endpointID, "resources.resource_type": string(models.UserResourceType)},
		goqu.L("lower(resources.user_name) = lower(?)", userName),
	))
}

func (r *resources) GetResourceByDisplayName(ctx context.Context, endpointID string, displayName string) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "db.GetResourceByDisplayName")
	defer span.End()

	return r.getResource(ctx, goqu.And(
		goqu.Ex{"resources.endpoint_id": endpointID, "resources.resource_type": string(models.GroupResourceType)},
		goqu.L("lower(resources.display_name) = lower(?)", displayName),
	))
}

func (r *resources) GetResourceByExternalID(ctx context.Context, endpointID string, resourceType models.ResourceType, externalID string) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "db.GetResourceByExternalID")
	defer span.End()

	return r.getResource(ctx, goqu.And(
		goqu.Ex{"resources.endpoint_id": endpointID, "resources.resource_type": string(resourceType)},
		goqu.L("lower(resources.external_id) = lower(?)", externalID),
	))
}

func (r *resources) GetResources(ctx context.Context, input *GetResourcesInput) (*ResourcesResult, error) {
	ctx, span := tracer.Start(ctx, "db.GetResources")
	defer span.End()

	where := r.buildFilterExpression(input)

	countSQL, countArgs, err := dialect.From(goqu.T("resources")).
		Prepared(true).
		Select(goqu.COUNT("*")).
		Where(where).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	var totalCount int
	if err = r.dbClient.getConnection(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		tracing.RecordError(span, err, "failed to execute count query")
		return nil, err
	}

	result := ResourcesResult{
		TotalCount: totalCount,
		Resources:  []models.Resource{},
	}

	if input.Limit == 0 {
		return &result, nil
	}

	query := dialect.From(goqu.T("resources")).
		Prepared(true).
		Select(resourceFieldList...).
		Where(where).
		Order(goqu.I("resources.created_at").Asc()).
		Limit(uint(input.Limit)).
		Offset(uint(input.Offset))

	sql, args, err := query.ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	rows, err := r.dbClient.getConnection(ctx).Query(ctx, sql, args...)
	if err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanResource(rows)
		if err != nil {
			tracing.RecordError(span, err, "failed to scan row")
			return nil, err
		}
		result.Resources = append(result.Resources, *item)
	}

	return &result, nil
}

func (r *resources) GetResourceCount(ctx context.Context, endpointID string, resourceType models.ResourceType) (int, error) {
	ctx, span := tracer.Start(ctx, "db.GetResourceCount")
	defer span.End()

	sql, args, err := dialect.From(goqu.T("resources")).
		Prepared(true).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"resources.endpoint_id": endpointID, "resources.resource_type": string(resourceType)}).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return 0, err
	}

	var count int
	if err = r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return 0, err
	}

	return count, nil
}

func (r *resources) CreateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "db.CreateResource")
	defer span.End()

	timestamp := currentTime()

	payloadJSON, err := json.Marshal(resource.Payload)
	if err != nil {
		tracing.RecordError(span, err, "failed to marshal resource payload")
		return nil, err
	}

	sql, args, err := dialect.Insert("resources").
		Prepared(true).
		Rows(goqu.Record{
			"id":            newResourceID(),
			"version":       initialResourceVersion,
			"created_at":    timestamp,
			"updated_at":    timestamp,
			"endpoint_id":   resource.EndpointID,
			"resource_type": string(resource.ResourceType),
			"scim_id":       resource.SCIMID,
			"external_id":   nullableString(resource.ExternalID),
			"user_name":     nullableString(resource.UserName),
			"display_name":  nullableString(resource.DisplayName),
			"active":        resource.Active,
			"payload":       payloadJSON,
		}).
		Returning(resourceFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	createdResource, err := scanResource(r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if pgErr := asPgError(err); pgErr != nil {
			if isUniqueViolation(pgErr) {
				tracing.RecordError(span, nil, "resource violates a uniqueness constraint")
				return nil, errors.New(
					"%s with the same identifier already exists", resource.ResourceType,
					errors.WithErrorCode(errors.EConflict),
					errors.WithSCIMType(errors.SCIMTypeUniqueness),
				)
			}
			if isForeignKeyViolation(pgErr) {
				tracing.RecordError(span, nil, "endpoint does not exist")
				return nil, errors.New("endpoint does not exist", errors.WithErrorCode(errors.ENotFound))
			}
		}
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return createdResource, nil
}

func (r *resources) UpdateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	ctx, span := tracer.Start(ctx, "db.UpdateResource")
	defer span.End()

	timestamp := currentTime()

	// The weak ETag is derived from updated_at, so it must strictly
	// advance even if two mutations land in the same microsecond.
	if resource.Metadata.LastUpdatedTimestamp != nil && !timestamp.After(*resource.Metadata.LastUpdatedTimestamp) {
		timestamp = resource.Metadata.LastUpdatedTimestamp.Add(time.Microsecond)
	}

	payloadJSON, err := json.Marshal(resource.Payload)
	if err != nil {
		tracing.RecordError(span, err, "failed to marshal resource payload")
		return nil, err
	}

	sql, args, err := dialect.Update("resources").
		Prepared(true).
		Set(
			goqu.Record{
				"version":      goqu.L("? + ?", goqu.C("version"), 1),
				"updated_at":   timestamp,
				"external_id":  nullableString(resource.ExternalID),
				"user_name":    nullableString(resource.UserName),
				"display_name": nullableString(resource.DisplayName),
				"active":       resource.Active,
				"payload":      payloadJSON,
			},
		).Where(goqu.Ex{"id": resource.Metadata.ID, "version": resource.Metadata.Version}).Returning(resourceFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	updatedResource, err := scanResource(r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			tracing.RecordError(span, err, "optimistic lock error")
			return nil, ErrOptimisticLockError
		}
		if pgErr := asPgError(err); pgErr != nil {
			if isUniqueViolation(pgErr) {
				tracing.RecordError(span, nil, "resource violates a uniqueness constraint")
				return nil, errors.New(
					"%s with the same identifier already exists", resource.ResourceType,
					errors.WithErrorCode(errors.EConflict),
					errors.WithSCIMType(errors.SCIMTypeUniqueness),
				)
			}
		}
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return updatedResource, nil
}

func (r *resources) DeleteResource(ctx context.Context, resource *models.Resource) error {
	ctx, span := tracer.Start(ctx, "db.DeleteResource")
	defer span.End()

	sql, args, err := dialect.Delete("resources").
		Prepared(true).
		Where(
			goqu.Ex{
				"id":      resource.Metadata.ID,
				"version": resource.Metadata.Version,
			},
		).Returning(resourceFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return err
	}

	_, err = scanResource(r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			tracing.RecordError(span, err, "optimistic lock error")
			return ErrOptimisticLockError
		}
		tracing.RecordError(span, err, "failed to execute query")
		return err
	}

	return nil
}

func (r *resources) buildFilterExpression(input *GetResourcesInput) goqu.Expression {
	expressions := []goqu.Expression{
		goqu.Ex{
			"resources.endpoint_id":   input.EndpointID,
			"resources.resource_type": string(input.ResourceType),
		},
	}

	if input.Filter != nil {
		if input.Filter.SCIMID != nil {
			expressions = append(expressions, goqu.L("lower(resources.scim_id) = lower(?)", *input.Filter.SCIMID))
		}
		if input.Filter.UserName != nil {
			expressions = append(expressions, goqu.L("lower(resources.user_name) = lower(?)", *input.Filter.UserName))
		}
		if input.Filter.DisplayName != nil {
			expressions = append(expressions, goqu.L("lower(resources.display_name) = lower(?)", *input.Filter.DisplayName))
		}
		if input.Filter.ExternalID != nil {
			expressions = append(expressions, goqu.L("lower(resources.external_id) = lower(?)", *input.Filter.ExternalID))
		}
		if input.Filter.Active != nil {
			expressions = append(expressions, goqu.Ex{"resources.active": *input.Filter.Active})
		}
	}

	return goqu.And(expressions...)
}

func (r *resources) getResource(ctx context.Context, exp goqu.Expression) (*models.Resource, error) {
	query := dialect.From(goqu.T("resources")).
		Prepared(true).
		Select(resourceFieldList...).
		Where(exp)

	sql, args, err := query.ToSQL()
	if err != nil {
		return nil, err
	}

	resource, err := scanResource(r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return resource, nil
}

func scanResource(row scanner) (*models.Resource, error) {
	var externalID, userName, displayName sql.NullString
	var resourceType string
	var payloadJSON []byte
	resource := &models.Resource{}

	fields := []interface{}{
		&resource.Metadata.ID,
		&resource.Metadata.CreationTimestamp,
		&resource.Metadata.LastUpdatedTimestamp,
		&resource.Metadata.Version,
		&resource.EndpointID,
		&resourceType,
		&resource.SCIMID,
		&externalID,
		&userName,
		&displayName,
		&resource.Active,
		&payloadJSON,
	}

	err := row.Scan(fields...)
	if err != nil {
		return nil, err
	}

	resource.ResourceType = models.ResourceType(resourceType)

	if externalID.Valid {
		resource.ExternalID = externalID.String
	}

	if userName.Valid {
		resource.UserName = userName.String
	}

	if displayName.Valid {
		resource.DisplayName = displayName.String
	}

	resource.Payload = map[string]interface{}{}
	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &resource.Payload); err != nil {
			return nil, err
		}
	}

	return resource, nil
}
