// Package filter parses the SCIM filter subset supported by the list and
// search operations.
package filter

import (
	"strings"

	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Expression is a single-attribute equality predicate, the only filter
// shape supported for list/search push-down.
type Expression struct {
	Attribute string
	Value     string
}

// supportedAttributes maps lowercased filter attributes to their canonical
// spelling. These resolve to storage-level columns.
var supportedAttributes = map[string]string{
	"username":    "userName",
	"displayname": "displayName",
	"externalid":  "externalId",
	"active":      "active",
	"id":          "id",
}

var errUnsupportedFilter = errors.New(
	"supplied filter is invalid or not supported",
	errors.WithErrorCode(errors.EInvalid),
	errors.WithSCIMType(errors.SCIMTypeInvalidFilter),
)

// Parse parses a simple request filter, such as, filter=userName eq "john".
// An empty filter returns nil. Compound expressions (and, or, not,
// parenthesization) and any operator other than eq are rejected rather than
// partially applied.
func Parse(input string) (*Expression, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}

	if strings.ContainsAny(trimmed, "()") {
		return nil, errUnsupportedFilter
	}

	parts := strings.SplitN(trimmed, " ", 3)
	if len(parts) < 3 {
		return nil, errUnsupportedFilter
	}

	// Attribute and operator are case-insensitive per RFC specifications.
	attribute := strings.ToLower(strings.TrimSpace(parts[0]))
	operator := strings.ToLower(strings.TrimSpace(parts[1]))
	rawValue := strings.TrimSpace(parts[2])

	canonical, ok := supportedAttributes[attribute]
	if !ok {
		return nil, errUnsupportedFilter
	}

	if operator != "eq" {
		return nil, errUnsupportedFilter
	}

	value, err := unquote(rawValue)
	if err != nil {
		return nil, err
	}

	return &Expression{
		Attribute: canonical,
		Value:     value,
	}, nil
}

// unquote strips surrounding double quotes from a filter value and rejects
// anything trailing the closing quote, which would indicate a compound
// expression the parser does not support.
func unquote(raw string) (string, error) {
	if !strings.HasPrefix(raw, "\"") {
		// Unquoted scalar: a bare boolean or number. Reject embedded
		// whitespace since it implies additional clauses.
		if strings.ContainsAny(raw, " \t") {
			return "", errUnsupportedFilter
		}
		return raw, nil
	}

	closing := strings.Index(raw[1:], "\"") + 1
	if closing == 0 {
		return "", errUnsupportedFilter
	}

	if strings.TrimSpace(raw[closing+1:]) != "" {
		return "", errUnsupportedFilter
	}

	return raw[1:closing], nil
}
