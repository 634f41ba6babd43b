package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

func TestParsePath(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expect          *Path
		expectErrorCode string
	}{
		{
			name:   "empty path",
			input:  "",
			expect: nil,
		},
		{
			name:   "simple attribute",
			input:  "displayName",
			expect: &Path{Segments: []string{"displayName"}},
		},
		{
			name:   "nested attribute",
			input:  "name.givenName",
			expect: &Path{Segments: []string{"name", "givenName"}},
		},
		{
			name:  "value filter with sub attribute",
			input: `emails[type eq "work"].value`,
			expect: &Path{
				Segments:     []string{"emails"},
				Filter:       &FilterExpression{Attribute: "type", Operator: "eq", Value: "work"},
				SubAttribute: "value",
			},
		},
		{
			name:  "value filter without sub attribute",
			input: `members[value eq "u1"]`,
			expect: &Path{
				Segments: []string{"members"},
				Filter:   &FilterExpression{Attribute: "value", Operator: "eq", Value: "u1"},
			},
		},
		{
			name:  "value filter with mixed case operator",
			input: `emails[type Eq "work"]`,
			expect: &Path{
				Segments: []string{"emails"},
				Filter:   &FilterExpression{Attribute: "type", Operator: "eq", Value: "work"},
			},
		},
		{
			name:  "extension urn path",
			input: "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User:manager",
			expect: &Path{
				URN:      "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User",
				Segments: []string{"manager"},
			},
		},
		{
			name:  "extension urn matched case-insensitively",
			input: "URN:IETF:PARAMS:SCIM:SCHEMAS:EXTENSION:ENTERPRISE:2.0:USER:department",
			expect: &Path{
				URN:      "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User",
				Segments: []string{"department"},
			},
		},
		{
			name:  "bare extension urn",
			input: "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User",
			expect: &Path{
				URN: "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User",
			},
		},
		{
			name:            "unterminated bracket",
			input:           `emails[type eq "work"`,
			expectErrorCode: errors.EInvalid,
		},
		{
			name:            "empty bracket",
			input:           "emails[]",
			expectErrorCode: errors.EInvalid,
		},
		{
			name:            "unknown filter operator",
			input:           `emails[type matches "work"]`,
			expectErrorCode: errors.EInvalid,
		},
		{
			name:            "stray closing bracket",
			input:           "emails]",
			expectErrorCode: errors.EInvalid,
		},
		{
			name:            "empty segment",
			input:           "name..givenName",
			expectErrorCode: errors.EInvalid,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			actual, err := ParsePath(test.input)

			if test.expectErrorCode != "" {
				require.Error(t, err)
				assert.Equal(t, test.expectErrorCode, errors.ErrorCode(err))
				assert.Equal(t, errors.SCIMTypeInvalidPath, errors.SCIMType(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expect, actual)
		})
	}
}

func TestTargetsAttribute(t *testing.T) {
	path, err := ParsePath("Members")
	require.NoError(t, err)
	assert.True(t, path.TargetsAttribute("members"))

	path, err = ParsePath("urn:ietf:params:scim:schemas:extension:enterprise:2.0:User:manager")
	require.NoError(t, err)
	assert.False(t, path.TargetsAttribute("manager"))

	assert.False(t, (*Path)(nil).TargetsAttribute("members"))
}
