package db

//go:generate mockery --name Endpoints --inpackage --case underscore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v4"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Endpoints encapsulates the logic to access endpoints (tenants) from the database
type Endpoints interface {
	GetEndpointByID(ctx context.Context, id string) (*models.Endpoint, error)
	GetEndpointByName(ctx context.Context, name string) (*models.Endpoint, error)
	GetEndpoints(ctx context.Context) ([]models.Endpoint, error)
	CreateEndpoint(ctx context.Context, endpoint *models.Endpoint) (*models.Endpoint, error)
	UpdateEndpoint(ctx context.Context, endpoint *models.Endpoint) (*models.Endpoint, error)
	DeleteEndpoint(ctx context.Context, endpoint *models.Endpoint) error
}

type endpoints struct {
	dbClient *Client
}

var endpointFieldList = append(metadataFieldList, "name", "display_name", "description", "config", "active")

// NewEndpoints returns an instance of the Endpoints interface
func NewEndpoints(dbClient *Client) Endpoints {
	return &endpoints{dbClient: dbClient}
}

func (e *endpoints) GetEndpointByID(ctx context.Context, id string) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "db.GetEndpointByID")
	defer span.End()

	return e.getEndpoint(ctx, goqu.Ex{"endpoints.id": id})
}

func (e *endpoints) GetEndpointByName(ctx context.Context, name string) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "db.GetEndpointByName")
	defer span.End()

	return e.getEndpoint(ctx, goqu.L("lower(endpoints.name) = lower(?)", name))
}

func (e *endpoints) GetEndpoints(ctx context.Context) ([]models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "db.GetEndpoints")
	defer span.End()

	sql, args, err := dialect.From(goqu.T("endpoints")).
		Prepared(true).
		Select(endpointFieldList...).
		Order(goqu.I("endpoints.created_at").Asc()).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	rows, err := e.dbClient.getConnection(ctx).Query(ctx, sql, args...)
	if err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}
	defer rows.Close()

	results := []models.Endpoint{}
	for rows.Next() {
		item, err := scanEndpoint(rows)
		if err != nil {
			tracing.RecordError(span, err, "failed to scan row")
			return nil, err
		}
		results = append(results, *item)
	}

	return results, nil
}

func (e *endpoints) CreateEndpoint(ctx context.Context, endpoint *models.Endpoint) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "db.CreateEndpoint")
	defer span.End()

	timestamp := currentTime()

	configJSON, err := json.Marshal(endpoint.Config)
	if err != nil {
		tracing.RecordError(span, err, "failed to marshal endpoint config")
		return nil, err
	}

	sql, args, err := dialect.Insert("endpoints").
		Prepared(true).
		Rows(goqu.Record{
			"id":           newResourceID(),
			"version":      initialResourceVersion,
			"created_at":   timestamp,
			"updated_at":   timestamp,
			"name":         endpoint.Name,
			"display_name": nullableString(endpoint.DisplayName),
			"description":  nullableString(endpoint.Description),
			"config":       configJSON,
			"active":       endpoint.Active,
		}).
		Returning(endpointFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	createdEndpoint, err := scanEndpoint(e.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if pgErr := asPgError(err); pgErr != nil {
			if isUniqueViolation(pgErr) {
				tracing.RecordError(span, nil, "endpoint with name %s already exists", endpoint.Name)
				return nil, errors.New("endpoint with name %s already exists", endpoint.Name, errors.WithErrorCode(errors.EConflict))
			}
		}
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return createdEndpoint, nil
}

func (e *endpoints) UpdateEndpoint(ctx context.Context, endpoint *models.Endpoint) (*models.Endpoint, error) {
	ctx, span := tracer.Start(ctx, "db.UpdateEndpoint")
	defer span.End()

	timestamp := currentTime()

	configJSON, err := json.Marshal(endpoint.Config)
	if err != nil {
		tracing.RecordError(span, err, "failed to marshal endpoint config")
		return nil, err
	}

	sql, args, err := dialect.Update("endpoints").
		Prepared(true).
		Set(
			goqu.Record{
				"version":      goqu.L("? + ?", goqu.C("version"), 1),
				"updated_at":   timestamp,
				"display_name": nullableString(endpoint.DisplayName),
				"description":  nullableString(endpoint.Description),
				"config":       configJSON,
				"active":       endpoint.Active,
			},
		).Where(goqu.Ex{"id": endpoint.Metadata.ID, "version": endpoint.Metadata.Version}).Returning(endpointFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	updatedEndpoint, err := scanEndpoint(e.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			tracing.RecordError(span, err, "optimistic lock error")
			return nil, ErrOptimisticLockError
		}
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return updatedEndpoint, nil
}

func (e *endpoints) DeleteEndpoint(ctx context.Context, endpoint *models.Endpoint) error {
	ctx, span := tracer.Start(ctx, "db.DeleteEndpoint")
	defer span.End()

	sql, args, err := dialect.Delete("endpoints").
		Prepared(true).
		Where(
			goqu.Ex{
				"id":      endpoint.Metadata.ID,
				"version": endpoint.Metadata.Version,
			},
		).Returning(endpointFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return err
	}

	_, err = scanEndpoint(e.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
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

func (e *endpoints) getEndpoint(ctx context.Context, exp goqu.Expression) (*models.Endpoint, error) {
	query := dialect.From(goqu.T("endpoints")).
		Prepared(true).
		Select(endpointFieldList...).
		Where(exp)

	sql, args, err := query.ToSQL()
	if err != nil {
		return nil, err
	}

	endpoint, err := scanEndpoint(e.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return endpoint, nil
}

func scanEndpoint(row scanner) (*models.Endpoint, error) {
	var displayName, description sql.NullString
	var configJSON []byte
	endpoint := &models.Endpoint{}

	fields := []interface{}{
		&endpoint.Metadata.ID,
		&endpoint.Metadata.CreationTimestamp,
		&endpoint.Metadata.LastUpdatedTimestamp,
		&endpoint.Metadata.Version,
		&endpoint.Name,
		&displayName,
		&description,
		&configJSON,
		&endpoint.Active,
	}

	err := row.Scan(fields...)
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		endpoint.DisplayName = displayName.String
	}

	if description.Valid {
		endpoint.Description = description.String
	}

	endpoint.Config = models.EndpointConfig{}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &endpoint.Config); err != nil {
			return nil, err
		}
	}

	return endpoint, nil
}
