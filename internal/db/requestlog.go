package db

//go:generate mockery --name RequestLogs --inpackage --case underscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v4"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
)

// RequestLogs encapsulates the logic to access the request audit log from the database
type RequestLogs interface {
	GetRequestLogByID(ctx context.Context, id string) (*models.RequestLog, error)
	GetRequestLogs(ctx context.Context, input *GetRequestLogsInput) (*RequestLogsResult, error)
	CreateRequestLog(ctx context.Context, requestLog *models.RequestLog) (*models.RequestLog, error)
	DeleteAllRequestLogs(ctx context.Context, endpointID *string) (int64, error)
	GetRequestLogStats(ctx context.Context, endpointID string) (*RequestLogStats, error)
}

// RequestLogFilter contains the supported fields for filtering request logs
type RequestLogFilter struct {
	EndpointID    *string
	Method        *string
	Status        *int
	Search        *string
	Since         *time.Time
	Until         *time.Time
	HideKeepalive bool
}

// GetRequestLogsInput is the input for listing request logs, newest first.
type GetRequestLogsInput struct {
	Filter *RequestLogFilter
	Limit  int
	Offset int
}

// RequestLogsResult contains the response data and the unpaged total
type RequestLogsResult struct {
	TotalCount int
	Logs       []models.RequestLog
}

// RequestLogStats summarizes a tenant's audit traffic.
type RequestLogStats struct {
	LastRequestAt *time.Time
	RequestCount  int
}

type requestLogs struct {
	dbClient *Client
}

var requestLogFieldList = []interface{}{
	"id", "created_at", "endpoint_id", "method", "url", "status", "duration_ms",
	"request_headers", "request_body", "response_headers", "response_body",
	"error_message", "error_stack", "identifier",
}

// keepaliveExpression matches the keepalive probe signature: a successful
// GET carrying a filter query with no extracted identifier.
func keepaliveExpression() goqu.Expression {
	return goqu.And(
		goqu.Ex{"request_logs.method": "GET"},
		goqu.Ex{"request_logs.identifier": nil},
		goqu.Or(
			goqu.Ex{"request_logs.status": nil},
			goqu.Ex{"request_logs.status": goqu.Op{"lt": 400}},
		),
		goqu.L("request_logs.url LIKE ?", "%filter=%"),
	)
}

// NewRequestLogs returns an instance of the RequestLogs interface
func NewRequestLogs(dbClient *Client) RequestLogs {
	return &requestLogs{dbClient: dbClient}
}

func (r *requestLogs) GetRequestLogByID(ctx context.Context, id string) (*models.RequestLog, error) {
	ctx, span := tracer.Start(ctx, "db.GetRequestLogByID")
	defer span.End()

	sql, args, err := dialect.From(goqu.T("request_logs")).
		Prepared(true).
		Select(requestLogFieldList...).
		Where(goqu.Ex{"request_logs.id": id}).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	requestLog, err := scanRequestLog(r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return requestLog, nil
}

func (r *requestLogs) GetRequestLogs(ctx context.Context, input *GetRequestLogsInput) (*RequestLogsResult, error) {
	ctx, span := tracer.Start(ctx, "db.GetRequestLogs")
	defer span.End()

	where := r.buildFilterExpression(input.Filter)

	countSQL, countArgs, err := dialect.From(goqu.T("request_logs")).
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

	result := RequestLogsResult{
		TotalCount: totalCount,
		Logs:       []models.RequestLog{},
	}

	if input.Limit == 0 {
		return &result, nil
	}

	sql, args, err := dialect.From(goqu.T("request_logs")).
		Prepared(true).
		Select(requestLogFieldList...).
		Where(where).
		Order(goqu.I("request_logs.created_at").Desc()).
		Limit(uint(input.Limit)).
		Offset(uint(input.Offset)).
		ToSQL()
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
		item, err := scanRequestLog(rows)
		if err != nil {
			tracing.RecordError(span, err, "failed to scan row")
			return nil, err
		}
		result.Logs = append(result.Logs, *item)
	}

	return &result, nil
}

func (r *requestLogs) CreateRequestLog(ctx context.Context, requestLog *models.RequestLog) (*models.RequestLog, error) {
	ctx, span := tracer.Start(ctx, "db.CreateRequestLog")
	defer span.End()

	timestamp := currentTime()

	requestHeadersJSON, err := marshalHeaders(requestLog.RequestHeaders)
	if err != nil {
		tracing.RecordError(span, err, "failed to marshal request headers")
		return nil, err
	}

	responseHeadersJSON, err := marshalHeaders(requestLog.ResponseHeaders)
	if err != nil {
		tracing.RecordError(span, err, "failed to marshal response headers")
		return nil, err
	}

	var endpointID sql.NullString
	if requestLog.EndpointID != nil {
		endpointID = sql.NullString{String: *requestLog.EndpointID, Valid: true}
	}

	var status sql.NullInt32
	if requestLog.Status != nil {
		status = sql.NullInt32{Int32: int32(*requestLog.Status), Valid: true}
	}

	var durationMs sql.NullInt64
	if requestLog.DurationMs != nil {
		durationMs = sql.NullInt64{Int64: *requestLog.DurationMs, Valid: true}
	}

	sql, args, err := dialect.Insert("request_logs").
		Prepared(true).
		Rows(goqu.Record{
			"id":               newResourceID(),
			"created_at":       timestamp,
			"endpoint_id":      endpointID,
			"method":           requestLog.Method,
			"url":              requestLog.URL,
			"status":           status,
			"duration_ms":      durationMs,
			"request_headers":  requestHeadersJSON,
			"request_body":     nullableString(requestLog.RequestBody),
			"response_headers": responseHeadersJSON,
			"response_body":    nullableString(requestLog.ResponseBody),
			"error_message":    nullableString(requestLog.ErrorMessage),
			"error_stack":      nullableString(requestLog.ErrorStack),
			"identifier":       nullableString(requestLog.Identifier),
		}).
		Returning(requestLogFieldList...).ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	createdLog, err := scanRequestLog(r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return createdLog, nil
}

func (r *requestLogs) DeleteAllRequestLogs(ctx context.Context, endpointID *string) (int64, error) {
	ctx, span := tracer.Start(ctx, "db.DeleteAllRequestLogs")
	defer span.End()

	query := dialect.Delete("request_logs").Prepared(true)
	if endpointID != nil {
		query = query.Where(goqu.Ex{"endpoint_id": *endpointID})
	}

	sql, args, err := query.ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return 0, err
	}

	tag, err := r.dbClient.getConnection(ctx).Exec(ctx, sql, args...)
	if err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *requestLogs) GetRequestLogStats(ctx context.Context, endpointID string) (*RequestLogStats, error) {
	ctx, span := tracer.Start(ctx, "db.GetRequestLogStats")
	defer span.End()

	sql, args, err := dialect.From(goqu.T("request_logs")).
		Prepared(true).
		Select(goqu.COUNT("*"), goqu.MAX("created_at")).
		Where(goqu.Ex{"request_logs.endpoint_id": endpointID}).
		ToSQL()
	if err != nil {
		tracing.RecordError(span, err, "failed to generate SQL")
		return nil, err
	}

	stats := &RequestLogStats{}
	if err = r.dbClient.getConnection(ctx).QueryRow(ctx, sql, args...).Scan(&stats.RequestCount, &stats.LastRequestAt); err != nil {
		tracing.RecordError(span, err, "failed to execute query")
		return nil, err
	}

	return stats, nil
}

func (r *requestLogs) buildFilterExpression(filter *RequestLogFilter) goqu.Expression {
	expressions := []goqu.Expression{}

	if filter != nil {
		if filter.EndpointID != nil {
			expressions = append(expressions, goqu.Ex{"request_logs.endpoint_id": *filter.EndpointID})
		}
		if filter.Method != nil {
			expressions = append(expressions, goqu.Ex{"request_logs.method": *filter.Method})
		}
		if filter.Status != nil {
			expressions = append(expressions, goqu.Ex{"request_logs.status": *filter.Status})
		}
		if filter.Search != nil && *filter.Search != "" {
			pattern := "%" + *filter.Search + "%"
			expressions = append(expressions, goqu.Or(
				goqu.L("request_logs.url ILIKE ?", pattern),
				goqu.L("request_logs.identifier ILIKE ?", pattern),
			))
		}
		if filter.Since != nil {
			expressions = append(expressions, goqu.Ex{"request_logs.created_at": goqu.Op{"gte": *filter.Since}})
		}
		if filter.Until != nil {
			expressions = append(expressions, goqu.Ex{"request_logs.created_at": goqu.Op{"lte": *filter.Until}})
		}
		if filter.HideKeepalive {
			expressions = append(expressions, goqu.L("NOT (?)", keepaliveExpression()))
		}
	}

	if len(expressions) == 0 {
		return goqu.Ex{}
	}

	return goqu.And(expressions...)
}

func marshalHeaders(headers map[string]string) ([]byte, error) {
	if headers == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(headers)
}

func scanRequestLog(row scanner) (*models.RequestLog, error) {
	var endpointID, requestBody, responseBody, errorMessage, errorStack, identifier sql.NullString
	var status sql.NullInt32
	var durationMs sql.NullInt64
	var requestHeadersJSON, responseHeadersJSON []byte
	requestLog := &models.RequestLog{}

	fields := []interface{}{
		&requestLog.ID,
		&requestLog.CreationTimestamp,
		&endpointID,
		&requestLog.Method,
		&requestLog.URL,
		&status,
		&durationMs,
		&requestHeadersJSON,
		&requestBody,
		&responseHeadersJSON,
		&responseBody,
		&errorMessage,
		&errorStack,
		&identifier,
	}

	err := row.Scan(fields...)
	if err != nil {
		return nil, err
	}

	if endpointID.Valid {
		id := endpointID.String
		requestLog.EndpointID = &id
	}

	if status.Valid {
		s := int(status.Int32)
		requestLog.Status = &s
	}

	if durationMs.Valid {
		d := durationMs.Int64
		requestLog.DurationMs = &d
	}

	if requestBody.Valid {
		requestLog.RequestBody = requestBody.String
	}

	if responseBody.Valid {
		requestLog.ResponseBody = responseBody.String
	}

	if errorMessage.Valid {
		requestLog.ErrorMessage = errorMessage.String
	}

	if errorStack.Valid {
		requestLog.ErrorStack = errorStack.String
	}

	if identifier.Valid {
		requestLog.Identifier = identifier.String
	}

	if len(requestHeadersJSON) > 0 {
		if err := json.Unmarshal(requestHeadersJSON, &requestLog.RequestHeaders); err != nil {
			return nil, err
		}
	}

	if len(responseHeadersJSON) > 0 {
		if err := json.Unmarshal(responseHeadersJSON, &requestLog.ResponseHeaders); err != nil {
			return nil, err
		}
	}

	return requestLog, nil
}
