package auditlog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/internal/db"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

func TestRecordRequestTruncatesBodies(t *testing.T) {
	ctx := context.Background()

	mockRequestLogs := db.MockRequestLogs{}
	mockRequestLogs.Test(t)

	var row *models.RequestLog
	mockRequestLogs.On("CreateRequestLog", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			row = args.Get(1).(*models.RequestLog)
		}).
		Return(nil, nil)

	testLogger, _ := logger.NewForTest()
	service := NewService(testLogger, &db.Client{RequestLogs: &mockRequestLogs}, 16, "", "")

	service.RecordRequest(ctx, &RecordRequestInput{
		Method:      "POST",
		URL:         "/scim/endpoints/e1/Users",
		Status:      201,
		Duration:    42 * time.Millisecond,
		RequestBody: strings.Repeat("x", 100),
		Identifier:  "alice",
	})

	require.NotNil(t, row)
	assert.Equal(t, strings.Repeat("x", 16)+"...[truncated]", row.RequestBody)
	assert.Equal(t, "alice", row.Identifier)
	require.NotNil(t, row.DurationMs)
	assert.Equal(t, int64(42), *row.DurationMs)
}

func TestRecordRequestSwallowsWriteFailures(t *testing.T) {
	ctx := context.Background()

	mockRequestLogs := db.MockRequestLogs{}
	mockRequestLogs.Test(t)
	mockRequestLogs.On("CreateRequestLog", mock.Anything, mock.Anything).
		Return(nil, errors.New("db unavailable"))

	testLogger, observed := logger.NewForTest()
	service := NewService(testLogger, &db.Client{RequestLogs: &mockRequestLogs}, 1024, "", "")

	// Must not panic or propagate the failure.
	service.RecordRequest(ctx, &RecordRequestInput{Method: "GET", URL: "/scim/health"})

	require.Equal(t, 1, observed.Len())
	assert.Contains(t, observed.All()[0].Message, "Failed to write request audit row")
}

func TestGetRequestLogsDefaultsPaging(t *testing.T) {
	ctx := context.Background()

	mockRequestLogs := db.MockRequestLogs{}
	mockRequestLogs.Test(t)

	var input *db.GetRequestLogsInput
	mockRequestLogs.On("GetRequestLogs", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			input = args.Get(1).(*db.GetRequestLogsInput)
		}).
		Return(&db.RequestLogsResult{TotalCount: 7, Logs: []models.RequestLog{}}, nil)

	testLogger, _ := logger.NewForTest()
	service := NewService(testLogger, &db.Client{RequestLogs: &mockRequestLogs}, 1024, "", "")

	result, err := service.GetRequestLogs(ctx, &GetRequestLogsInput{Page: 0, PageSize: 0, HideKeepalive: true})
	require.NoError(t, err)

	require.NotNil(t, input)
	assert.Equal(t, 50, input.Limit)
	assert.Equal(t, 0, input.Offset)
	assert.True(t, input.Filter.HideKeepalive)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 7, result.TotalCount)
}

func TestGetBackupStats(t *testing.T) {
	ctx := context.Background()

	mockRequestLogs := db.MockRequestLogs{}
	mockRequestLogs.Test(t)
	mockRequestLogs.On("GetRequestLogs", mock.Anything, mock.Anything).
		Return(&db.RequestLogsResult{TotalCount: 12, Logs: []models.RequestLog{}}, nil)

	testLogger, _ := logger.NewForTest()
	service := NewService(testLogger, &db.Client{RequestLogs: &mockRequestLogs}, 1024, "backupacct", "backups")

	stats, err := service.GetBackupStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Configured)
	assert.Equal(t, 12, stats.LogCount)
	assert.NotEmpty(t, stats.EstimatedSize)
}
