package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestLogIsKeepalive(t *testing.T) {
	status200 := 200
	status404 := 404

	testCases := []struct {
		name   string
		log    RequestLog
		expect bool
	}{
		{
			name: "keepalive probe",
			log: RequestLog{
				Method: "GET",
				URL:    "/scim/endpoints/e1/Users?filter=userName+eq+%22b49664e9%22",
				Status: &status200,
			},
			expect: true,
		},
		{
			name: "get without filter",
			log: RequestLog{
				Method: "GET",
				URL:    "/scim/endpoints/e1/Users",
				Status: &status200,
			},
			expect: false,
		},
		{
			name: "failed request is not keepalive",
			log: RequestLog{
				Method: "GET",
				URL:    "/scim/endpoints/e1/Users?filter=userName+eq+%22x%22",
				Status: &status404,
			},
			expect: false,
		},
		{
			name: "request with identifier is not keepalive",
			log: RequestLog{
				Method:     "GET",
				URL:        "/scim/endpoints/e1/Users?filter=userName+eq+%22alice%22",
				Status:     &status200,
				Identifier: "alice",
			},
			expect: false,
		},
		{
			name: "post is not keepalive",
			log: RequestLog{
				Method: "POST",
				URL:    "/scim/endpoints/e1/Users?filter=x",
				Status: &status200,
			},
			expect: false,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, test.log.IsKeepalive())
		})
	}
}
