package db

//go:generate mockery --name Members --inpackage --case underscore

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
)

// Members encapsulates the logic to access group membership edges from the
// database. Edges are never mutated in place; the membership of a group is
// always swapped wholesale to keep it deterministic.
type Members interface {
	GetMembersForGroup(ctx context.Context, groupResourceID string) ([]models.ResourceMember, error)
	GetMemberCountForEndpoint(ctx context.Context, endpointID string) (int, error)
	CreateMembers(ctx context.Context, members []models.ResourceMember) error
	DeleteMembersForGroup(ctx context.Context, groupResourceID string) error
}

type members struct {
	dbClient *Client
}

var memberFieldList = []interface{}{"id", "created_at", "group_resource_id", "member_resource_id", "value", "member_type", "display"}

// NewMembers returns an instance of the Members interface
func NewMembers(dbClient *Client) Members {
	return &members{dbClient: dbClient}
}

func (m *members) GetMembersForGroup(ctx context.Context, groupResourceID string) ([]models.ResourceMember, error) {
	ctx, span := tracer.Start(ctx, "db.GetMembersForGroup")
	defer span.End()

	sql, args, err := dialect.From(goqu.T("resource_members")).
		Prepared(true).
		Select(memberFieldList...).
		Where(goqu.Ex{"resource_members.group_resource_id": groupResourceID}).
		Order(goqu.I("resource_members.created_at").Asc()).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	rows, err := m.dbClient.getConnection(ctx).Query(ctx, sql, args...)
	if err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}
	defer rows.Close()

	results := []models.ResourceMember{}
	for rows.Next() {
		item, err := scanMember(rows)
		if err != nil {
			tracing.RecordError(span, err, "failed to scan row")
			return nil, err
		}
		results = append(results, *item)
	}

	return results, nil
}

func (m *members) GetMemberCountForEndpoint(ctx context.Context, endpointID string) (int, error) {
	ctx, span := tracer.Start(ctx, "db.GetMemberCountForEndpoint")
	defer span.End()

	sql, args, err := dialect.From(goqu.T("resource_members")).
		Prepared(true).
		Select(goqu.COUNT("*")).
		InnerJoin(goqu.T("resources"), goqu.On(goqu.Ex{"resource_members.group_resource_id": goqu.I("resources.id")})).
		Where(goqu.Ex{"resources.endpoint_id": endpointID}).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return 0, err
	}

	var count int
	if err = m.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return 0, err
	}

	return count, nil
}

func (m *members) CreateMembers(ctx context.Context, memberModels []models.ResourceMember) error {
	ctx, span := tracer.Start(ctx, "db.CreateMembers")
	defer span.End()

	if len(memberModels) == 0 {
		return nil
	}

	timestamp := currentTime()

	records := make([]interface{}, 0, len(memberModels))
	for _, member := range memberModels {
		var memberResourceID sql.NullString
		if member.MemberResourceID != nil {
			memberResourceID = sql.NullString{String: *member.MemberResourceID, Valid: true}
		}

		records = append(records, goqu.Record{
			"id":                 newResourceID(),
			"created_at":         timestamp,
			"group_resource_id":  member.GroupResourceID,
			"member_resource_id": memberResourceID,
			"value":              member.Value,
			"member_type":        nullableString(member.Type),
			"display":            nullableString(member.Display),
		})
	}

	sql, args, err := dialect.Insert("resource_members").
		Prepared(true).
		Rows(records...).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return err
	}

	if _, err = m.dbClient.getConnection(ctx).Exec(ctx, sql, args...); err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return err
	}

	return nil
}

func (m *members) DeleteMembersForGroup(ctx context.Context, groupResourceID string) error {
	ctx, span := tracer.Start(ctx, "db.DeleteMembersForGroup")
	defer span.End()

	sql, args, err := dialect.Delete("resource_members").
		Prepared(true).
		Where(goqu.Ex{"group_resource_id": groupResourceID}).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return err
	}

	if _, err = m.dbClient.getConnection(ctx).Exec(ctx, sql, args...); err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return err
	}

	return nil
}

func scanMember(row scanner) (*models.ResourceMember, error) {
	var memberResourceID, memberType, display sql.NullString
	member := &models.ResourceMember{}

	fields := []interface{}{
		&member.ID,
		&member.CreationTimestamp,
		&member.GroupResourceID,
		&memberResourceID,
		&member.Value,
		&memberType,
		&display,
	}

	err := row.Scan(fields...)
	if err != nil {
		return nil, err
	}

	if memberResourceID.Valid {
		id := memberResourceID.String
		member.MemberResourceID = &id
	}

	if memberType.Valid {
		member.Type = memberType.String
	}

	if display.Valid {
		member.Display = display.String
	}

	return member, nil
}
