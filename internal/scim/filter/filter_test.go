package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expect      *Expression
		expectError bool
	}{
		{
			name:   "empty filter",
			input:  "",
			expect: nil,
		},
		{
			name:   "userName eq",
			input:  `userName eq "alice@example.com"`,
			expect: &Expression{Attribute: "userName", Value: "alice@example.com"},
		},
		{
			name:   "attribute and operator are case-insensitive",
			input:  `UserName EQ "Alice"`,
			expect: &Expression{Attribute: "userName", Value: "Alice"},
		},
		{
			name:   "externalId eq",
			input:  `externalId eq "ext-1"`,
			expect: &Expression{Attribute: "externalId", Value: "ext-1"},
		},
		{
			name:   "displayName eq with spaces in value",
			input:  `displayName eq "Sales Team"`,
			expect: &Expression{Attribute: "displayName", Value: "Sales Team"},
		},
		{
			name:   "unquoted boolean value",
			input:  "active eq true",
			expect: &Expression{Attribute: "active", Value: "true"},
		},
		{
			name:        "unsupported operator",
			input:       `userName co "ali"`,
			expectError: true,
		},
		{
			name:        "unsupported attribute",
			input:       `title eq "boss"`,
			expectError: true,
		},
		{
			name:        "conjunction is rejected",
			input:       `userName eq "a" and active eq true`,
			expectError: true,
		},
		{
			name:        "disjunction is rejected",
			input:       `userName eq "a" or userName eq "b"`,
			expectError: true,
		},
		{
			name:        "parenthesization is rejected",
			input:       `not (userName eq "a")`,
			expectError: true,
		},
		{
			name:        "missing value",
			input:       "userName eq",
			expectError: true,
		},
		{
			name:        "bare attribute",
			input:       "userName",
			expectError: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			actual, err := Parse(test.input)

			if test.expectError {
				require.Error(t, err)
				assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
				assert.Equal(t, errors.SCIMTypeInvalidFilter, errors.SCIMType(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expect, actual)
		})
	}
}
