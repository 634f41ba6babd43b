package scim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestETagMatches(t *testing.T) {
	current := `W/"2024-05-01T10:00:00.000001Z"`

	testCases := []struct {
		name   string
		header string
		expect bool
	}{
		{name: "exact match", header: current, expect: true},
		{name: "wildcard matches anything", header: "*", expect: true},
		{name: "strong form compares equal to weak", header: `"2024-05-01T10:00:00.000001Z"`, expect: true},
		{name: "stale tag does not match", header: `W/"2024-05-01T09:00:00Z"`, expect: false},
		{name: "empty header does not match", header: "", expect: false},
		{name: "list with match", header: `W/"other", ` + current, expect: true},
		{name: "list without match", header: `W/"other", W/"another"`, expect: false},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expect, ETagMatches(test.header, current))
		})
	}
}
