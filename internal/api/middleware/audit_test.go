package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointIDFromPath(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		expect string
	}{
		{name: "tenant users route", path: "/scim/endpoints/e1/Users", expect: "e1"},
		{name: "tenant route with v2 segment", path: "/scim/v2/endpoints/e1/Users/abc", expect: "e1"},
		{name: "admin route", path: "/scim/admin/endpoints/e1", expect: ""},
		{name: "health route", path: "/scim/health", expect: ""},
		{name: "root", path: "/", expect: ""},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			actual := endpointIDFromPath(test.path, "scim")

			if test.expect == "" {
				assert.Nil(t, actual)
				return
			}

			require.NotNil(t, actual)
			assert.Equal(t, test.expect, *actual)
		})
	}
}

func TestFlattenHeadersRedactsAuthorization(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer super-secret")
	headers.Set("Content-Type", "application/scim+json")
	headers.Add("Accept", "application/json")
	headers.Add("Accept", "application/scim+json")

	flattened := flattenHeaders(headers)

	assert.Equal(t, "[redacted]", flattened["Authorization"])
	assert.Equal(t, "application/scim+json", flattened["Content-Type"])
	assert.Equal(t, "application/json, application/scim+json", flattened["Accept"])
}

func TestExtractIdentifier(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		expect string
	}{
		{
			name:   "user create",
			body:   `{"schemas":["urn:ietf:params:scim:schemas:core:2.0:User"],"userName":"Alice@X"}`,
			expect: "Alice@X",
		},
		{
			name:   "group create",
			body:   `{"displayName":"Sales"}`,
			expect: "Sales",
		},
		{
			name:   "patch with userName in value",
			body:   `{"Operations":[{"op":"replace","value":{"userName":"bob"}}]}`,
			expect: "bob",
		},
		{
			name:   "patch adding a member",
			body:   `{"Operations":[{"op":"add","path":"members","value":[{"value":"u-7"}]}]}`,
			expect: "u-7",
		},
		{name: "empty body", body: "", expect: ""},
		{name: "non-json body", body: "plain text", expect: ""},
		{name: "no identifier", body: `{"title":"x"}`, expect: ""},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, extractIdentifier([]byte(test.body)))
		})
	}
}
