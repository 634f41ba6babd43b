package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

func TestEndpointValidate(t *testing.T) {
	testCases := []struct {
		name            string
		endpoint        Endpoint
		expectErrorCode string
	}{
		{
			name:     "valid endpoint",
			endpoint: Endpoint{Name: "entra-test_01"},
		},
		{
			name:            "name with illegal characters",
			endpoint:        Endpoint{Name: "bad name!"},
			expectErrorCode: errors.EInvalid,
		},
		{
			name:            "empty name",
			endpoint:        Endpoint{},
			expectErrorCode: errors.EInvalid,
		},
		{
			name: "valid boolean config spellings",
			endpoint: Endpoint{
				Name: "t1",
				Config: EndpointConfig{
					ConfigKeyAllowRemoveAllMembers:  "True",
					ConfigKeyMultiOpPatchAddMembers: "0",
					ConfigKeyVerbosePatchSupported:  true,
				},
			},
		},
		{
			name: "invalid boolean config value",
			endpoint: Endpoint{
				Name:   "t1",
				Config: EndpointConfig{ConfigKeyAllowRemoveAllMembers: "yes"},
			},
			expectErrorCode: errors.EInvalid,
		},
		{
			name: "valid log levels",
			endpoint: Endpoint{
				Name:   "t1",
				Config: EndpointConfig{ConfigKeyLogLevel: "DEBUG"},
			},
		},
		{
			name: "numeric log level",
			endpoint: Endpoint{
				Name:   "t1",
				Config: EndpointConfig{ConfigKeyLogLevel: "2"},
			},
		},
		{
			name: "invalid log level",
			endpoint: Endpoint{
				Name:   "t1",
				Config: EndpointConfig{ConfigKeyLogLevel: "LOUD"},
			},
			expectErrorCode: errors.EInvalid,
		},
		{
			name: "unknown config keys are allowed",
			endpoint: Endpoint{
				Name:   "t1",
				Config: EndpointConfig{"operatorNote": "testing entra"},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := test.endpoint.Validate()

			if test.expectErrorCode != "" {
				require.Error(t, err)
				assert.Equal(t, test.expectErrorCode, errors.ErrorCode(err))
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestEndpointConfigBoolValue(t *testing.T) {
	config := EndpointConfig{
		"a": "True",
		"b": "true",
		"c": "1",
		"d": true,
		"e": "False",
		"f": "0",
		"g": false,
	}

	for _, key := range []string{"a", "b", "c", "d"} {
		assert.True(t, config.BoolValue(key), key)
	}
	for _, key := range []string{"e", "f", "g", "missing"} {
		assert.False(t, config.BoolValue(key), key)
	}
}
