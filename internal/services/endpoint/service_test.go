package endpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/internal/db"
	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

const endpointID = "7cf4cb01-5391-4c1f-89fb-a3bbbf1c2b63"

func TestCreateEndpoint(t *testing.T) {
	testCases := []struct {
		name            string
		input           *CreateEndpointInput
		expectErrorCode string
	}{
		{
			name:  "positive: endpoint is created active by default",
			input: &CreateEndpointInput{Name: "entra-1"},
		},
		{
			name:            "negative: invalid name",
			input:           &CreateEndpointInput{Name: "bad name"},
			expectErrorCode: errors.EInvalid,
		},
		{
			name: "negative: invalid config value",
			input: &CreateEndpointInput{
				Name:   "entra-1",
				Config: models.EndpointConfig{models.ConfigKeyAllowRemoveAllMembers: "maybe"},
			},
			expectErrorCode: errors.EInvalid,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()

			mockEndpoints := db.MockEndpoints{}
			mockEndpoints.Test(t)

			if test.expectErrorCode == "" {
				mockEndpoints.On("GetEndpointByName", mock.Anything, test.input.Name).Return(nil, nil)
				mockEndpoints.On("CreateEndpoint", mock.Anything, mock.Anything).
					Return(func(_ context.Context, e *models.Endpoint) *models.Endpoint { return e }, nil)
			}

			testLogger, _ := logger.NewForTest()
			service := NewService(testLogger, &db.Client{Endpoints: &mockEndpoints})

			created, err := service.CreateEndpoint(ctx, test.input)

			if test.expectErrorCode != "" {
				require.Error(t, err)
				assert.Equal(t, test.expectErrorCode, errors.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.True(t, created.Active)
		})
	}
}

func TestGetEndpointByIDCaches(t *testing.T) {
	ctx := context.Background()

	endpoint := &models.Endpoint{
		Name:     "entra-1",
		Active:   true,
		Metadata: models.ResourceMetadata{ID: endpointID},
	}

	mockEndpoints := db.MockEndpoints{}
	mockEndpoints.Test(t)
	mockEndpoints.On("GetEndpointByID", mock.Anything, endpointID).Return(endpoint, nil).Once()

	testLogger, _ := logger.NewForTest()
	service := NewService(testLogger, &db.Client{Endpoints: &mockEndpoints})

	// Second call is served from the cache; the mock only allows one call.
	first, err := service.GetEndpointByID(ctx, endpointID)
	require.NoError(t, err)
	second, err := service.GetEndpointByID(ctx, endpointID)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetEndpointByIDNotFound(t *testing.T) {
	ctx := context.Background()

	mockEndpoints := db.MockEndpoints{}
	mockEndpoints.Test(t)
	mockEndpoints.On("GetEndpointByID", mock.Anything, "missing").Return(nil, nil)

	testLogger, _ := logger.NewForTest()
	service := NewService(testLogger, &db.Client{Endpoints: &mockEndpoints})

	_, err := service.GetEndpointByID(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ENotFound, errors.ErrorCode(err))
}

func TestUpdateEndpointInvalidatesCache(t *testing.T) {
	ctx := context.Background()

	original := &models.Endpoint{
		Name:     "entra-1",
		Active:   true,
		Metadata: models.ResourceMetadata{ID: endpointID, Version: 1},
	}
	deactivated := &models.Endpoint{
		Name:     "entra-1",
		Active:   false,
		Metadata: models.ResourceMetadata{ID: endpointID, Version: 2},
	}

	mockEndpoints := db.MockEndpoints{}
	mockEndpoints.Test(t)
	// Once for the update's read-through, once for the read after the
	// invalidation.
	mockEndpoints.On("GetEndpointByID", mock.Anything, endpointID).Return(original, nil).Once()
	mockEndpoints.On("UpdateEndpoint", mock.Anything, mock.Anything).Return(deactivated, nil)
	mockEndpoints.On("GetEndpointByID", mock.Anything, endpointID).Return(deactivated, nil).Once()

	testLogger, _ := logger.NewForTest()
	service := NewService(testLogger, &db.Client{Endpoints: &mockEndpoints})

	active := false
	updated, err := service.UpdateEndpoint(ctx, &UpdateEndpointInput{ID: endpointID, Active: &active})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	fetched, err := service.GetEndpointByID(ctx, endpointID)
	require.NoError(t, err)
	assert.False(t, fetched.Active)
}
