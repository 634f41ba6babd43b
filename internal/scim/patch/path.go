// Package patch implements the RFC 7644 section 3.5.2 PATCH path engine:
// parsing of simple, value-filter and URN-prefixed extension paths, and
// application of add/replace/remove operations to a resource document.
package patch

import (
	"strings"

	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// FilterExpression is the bracketed value filter of a path such as
// emails[type eq "work"].value.
type FilterExpression struct {
	Attribute string
	Operator  string
	Value     string
}

// Path is the parsed form of a PATCH operation path. A nil Path means the
// operation has no path. URN is set to the canonical extension URN for
// extension paths. Segments holds the dotted attribute path with original
// casing preserved. Filter and SubAttribute are set for value-filter paths.
type Path struct {
	URN          string
	Segments     []string
	Filter       *FilterExpression
	SubAttribute string
}

// filterOperators are the operators accepted inside a bracketed value
// filter. Only eq has match semantics beyond strict string equality.
var filterOperators = map[string]struct{}{
	"eq": {}, "ne": {}, "co": {}, "sw": {}, "ew": {},
	"gt": {}, "ge": {}, "lt": {}, "le": {},
}

func invalidPathError(format string, a ...any) error {
	a = append(a, errors.WithErrorCode(errors.EInvalid), errors.WithSCIMType(errors.SCIMTypeInvalidPath))
	return errors.New(format, a...)
}

// ParsePath parses a PATCH operation path. An empty path returns nil.
func ParsePath(raw string) (*Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	path := &Path{}

	// Extension URN prefixes are matched case-insensitively; the attribute
	// path that follows keeps its original casing.
	rest := trimmed
	for _, urn := range scim.KnownExtensionURNs {
		if len(trimmed) >= len(urn) && strings.EqualFold(trimmed[:len(urn)], urn) {
			path.URN = urn
			rest = trimmed[len(urn):]
			if rest == "" {
				return path, nil
			}
			if rest[0] != ':' && rest[0] != '.' {
				return nil, invalidPathError("malformed extension path %q", raw)
			}
			rest = rest[1:]
			break
		}
	}

	if rest == "" {
		return nil, invalidPathError("malformed path %q", raw)
	}

	open := strings.IndexByte(rest, '[')
	if open < 0 {
		if strings.Contains(rest, "]") {
			return nil, invalidPathError("malformed path %q", raw)
		}
		path.Segments = splitSegments(rest)
		if path.Segments == nil {
			return nil, invalidPathError("malformed path %q", raw)
		}
		return path, nil
	}

	closing := strings.IndexByte(rest, ']')
	if closing < open {
		return nil, invalidPathError("unterminated value filter in path %q", raw)
	}

	attr := rest[:open]
	path.Segments = splitSegments(attr)
	if path.Segments == nil {
		return nil, invalidPathError("malformed path %q", raw)
	}

	filter, err := parseValueFilter(rest[open+1 : closing])
	if err != nil {
		return nil, err
	}
	path.Filter = filter

	tail := rest[closing+1:]
	if tail != "" {
		if !strings.HasPrefix(tail, ".") || len(tail) == 1 {
			return nil, invalidPathError("malformed path %q", raw)
		}
		sub := tail[1:]
		if strings.ContainsAny(sub, "[]") {
			return nil, invalidPathError("nested value filters are not supported in path %q", raw)
		}
		path.SubAttribute = sub
	}

	return path, nil
}

// parseValueFilter parses the bracket content of a value-filter path:
// <attr> <op> <value>, with the value optionally double-quoted.
func parseValueFilter(content string) (*FilterExpression, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, invalidPathError("empty value filter")
	}

	parts := strings.SplitN(trimmed, " ", 3)
	if len(parts) < 3 {
		return nil, invalidPathError("malformed value filter %q", content)
	}

	attribute := strings.TrimSpace(parts[0])
	operator := strings.ToLower(strings.TrimSpace(parts[1]))
	value := strings.TrimSpace(parts[2])

	if attribute == "" {
		return nil, invalidPathError("malformed value filter %q", content)
	}

	if _, ok := filterOperators[operator]; !ok {
		return nil, invalidPathError("unsupported operator %q in value filter", operator)
	}

	if strings.HasPrefix(value, "\"") {
		if len(value) < 2 || !strings.HasSuffix(value, "\"") {
			return nil, invalidPathError("unterminated string in value filter %q", content)
		}
		value = value[1 : len(value)-1]
	}

	return &FilterExpression{
		Attribute: attribute,
		Operator:  operator,
		Value:     value,
	}, nil
}

// splitSegments splits a dotted attribute path, rejecting empty segments.
func splitSegments(attrPath string) []string {
	parts := strings.Split(attrPath, ".")
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil
		}
	}
	return parts
}

// TargetsAttribute reports whether the path's first segment is the given
// core attribute (case-insensitive) with no extension URN.
func (p *Path) TargetsAttribute(name string) bool {
	if p == nil || p.URN != "" || len(p.Segments) == 0 {
		return false
	}
	return strings.EqualFold(p.Segments[0], name)
}
