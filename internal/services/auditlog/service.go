// Package auditlog records every inbound request as a structured log row
// and serves the admin log queries.
package auditlog

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"gitlab.com/identity-lab/scim-target-api/internal/db"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/tracing"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("svc.auditlog")

// RecordRequestInput captures one completed request.
type RecordRequestInput struct {
	EndpointID      *string
	Method          string
	URL             string
	Status          int
	Duration        time.Duration
	RequestHeaders  map[string]string
	RequestBody     string
	ResponseHeaders map[string]string
	ResponseBody    string
	ErrorMessage    string
	Identifier      string
}

// GetRequestLogsInput is the paged admin query over the audit log.
type GetRequestLogsInput struct {
	EndpointID    *string
	Method        *string
	Status        *int
	Search        *string
	Since         *time.Time
	Until         *time.Time
	HideKeepalive bool
	Page          int
	PageSize      int
}

// GetRequestLogsResult is one page of audit rows.
type GetRequestLogsResult struct {
	Logs       []models.RequestLog
	TotalCount int
	Page       int
	PageSize   int
}

// BackupStats is the status projection of the externally managed backup
// subsystem. The core records only configuration and log volume; the
// snapshot schedule itself is out of scope.
type BackupStats struct {
	Account       string `json:"account,omitempty"`
	Container     string `json:"container,omitempty"`
	Configured    bool   `json:"configured"`
	LogCount      int    `json:"logCount"`
	EstimatedSize string `json:"estimatedSize"`
}

const defaultPageSize = 50

// truncationSuffix marks bodies that exceeded the truncation budget.
const truncationSuffix = "...[truncated]"

// Service encapsulates the request audit pipeline.
type Service interface {
	RecordRequest(ctx context.Context, input *RecordRequestInput)
	GetRequestLogs(ctx context.Context, input *GetRequestLogsInput) (*GetRequestLogsResult, error)
	GetRequestLogByID(ctx context.Context, id string) (*models.RequestLog, error)
	ClearRequestLogs(ctx context.Context) (int64, error)
	GetBackupStats(ctx context.Context) (*BackupStats, error)
}

type service struct {
	logger              logger.Logger
	dbClient            *db.Client
	bodyLimit           int
	blobBackupAccount   string
	blobBackupContainer string
}

// NewService creates an instance of Service
func NewService(logger logger.Logger, dbClient *db.Client, bodyLimit int, blobBackupAccount, blobBackupContainer string) Service {
	return &service{
		logger:              logger,
		dbClient:            dbClient,
		bodyLimit:           bodyLimit,
		blobBackupAccount:   blobBackupAccount,
		blobBackupContainer: blobBackupContainer,
	}
}

// RecordRequest appends an audit row. Failures are swallowed after a WARN
// log so auditing can never fail the request being audited.
func (s *service) RecordRequest(ctx context.Context, input *RecordRequestInput) {
	ctx, span := tracer.Start(ctx, "svc.RecordRequest")
	defer span.End()

	status := input.Status
	durationMs := input.Duration.Milliseconds()

	row := &models.RequestLog{
		EndpointID:      input.EndpointID,
		Method:          input.Method,
		URL:             input.URL,
		Status:          &status,
		DurationMs:      &durationMs,
		RequestHeaders:  input.RequestHeaders,
		RequestBody:     s.truncate(input.RequestBody),
		ResponseHeaders: input.ResponseHeaders,
		ResponseBody:    s.truncate(input.ResponseBody),
		ErrorMessage:    input.ErrorMessage,
		Identifier:      input.Identifier,
	}

	if _, err := s.dbClient.RequestLogs.CreateRequestLog(ctx, row); err != nil {
		tracing.RecordError(span, err, "failed to write audit row")
		s.logger.Warnf("Failed to write request audit row for %s %s: %v", input.Method, input.URL, err)
	}
}

func (s *service) GetRequestLogs(ctx context.Context, input *GetRequestLogsInput) (*GetRequestLogsResult, error) {
	ctx, span := tracer.Start(ctx, "svc.GetRequestLogs")
	defer span.End()

	page := input.Page
	if page < 1 {
		page = 1
	}

	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	result, err := s.dbClient.RequestLogs.GetRequestLogs(ctx, &db.GetRequestLogsInput{
		Filter: &db.RequestLogFilter{
			EndpointID:    input.EndpointID,
			Method:        input.Method,
			Status:        input.Status,
			Search:        input.Search,
			Since:         input.Since,
			Until:         input.Until,
			HideKeepalive: input.HideKeepalive,
		},
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		tracing.RecordError(span, err, "failed to query request logs")
		return nil, err
	}

	return &GetRequestLogsResult{
		Logs:       result.Logs,
		TotalCount: result.TotalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *service) GetRequestLogByID(ctx context.Context, id string) (*models.RequestLog, error) {
	ctx, span := tracer.Start(ctx, "svc.GetRequestLogByID")
	defer span.End()

	requestLog, err := s.dbClient.RequestLogs.GetRequestLogByID(ctx, id)
	if err != nil {
		tracing.RecordError(span, err, "failed to get request log")
		return nil, err
	}

	if requestLog == nil {
		return nil, errors.New("request log with id %s not found", id, errors.WithErrorCode(errors.ENotFound))
	}

	return requestLog, nil
}

func (s *service) ClearRequestLogs(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "svc.ClearRequestLogs")
	defer span.End()

	deleted, err := s.dbClient.RequestLogs.DeleteAllRequestLogs(ctx, nil)
	if err != nil {
		tracing.RecordError(span, err, "failed to clear request logs")
		return 0, err
	}

	s.logger.Infow("Cleared request logs.", "deleted", deleted)

	return deleted, nil
}

func (s *service) GetBackupStats(ctx context.Context) (*BackupStats, error) {
	ctx, span := tracer.Start(ctx, "svc.GetBackupStats")
	defer span.End()

	result, err := s.dbClient.RequestLogs.GetRequestLogs(ctx, &db.GetRequestLogsInput{Limit: 0})
	if err != nil {
		tracing.RecordError(span, err, "failed to count request logs")
		return nil, err
	}

	// A rough size estimate based on the configured body budget, for the
	// admin UI only.
	estimated := uint64(result.TotalCount) * uint64(s.bodyLimit)

	return &BackupStats{
		Account:       s.blobBackupAccount,
		Container:     s.blobBackupContainer,
		Configured:    s.blobBackupAccount != "" && s.blobBackupContainer != "",
		LogCount:      result.TotalCount,
		EstimatedSize: humanize.Bytes(estimated),
	}, nil
}

func (s *service) truncate(body string) string {
	if s.bodyLimit > 0 && len(body) > s.bodyLimit {
		return body[:s.bodyLimit] + truncationSuffix
	}
	return body
}
