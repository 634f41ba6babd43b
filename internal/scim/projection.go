package scim

import "strings"

// alwaysReturned attributes can never be projected away (RFC 7643 section 7).
var alwaysReturned = map[string]struct{}{
	"schemas": {},
	"id":      {},
	"meta":    {},
}

// ParseAttributeList splits a comma-separated attributes query parameter
// into individual attribute paths.
func ParseAttributeList(raw string) []string {
	if raw == "" {
		return nil
	}

	var attrs []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			attrs = append(attrs, part)
		}
	}
	return attrs
}

// Project applies the attributes / excludedAttributes projection rules from
// RFC 7644 section 3.4.2.5 to a rendered resource document. Attribute names
// are matched case-insensitively; schemas, id and meta are always returned;
// attributes wins when both parameters are present. A parent selection
// includes all of its sub-attributes.
func Project(doc map[string]interface{}, attributes, excluded []string) map[string]interface{} {
	if len(attributes) > 0 {
		return projectIncluded(doc, attributes)
	}
	if len(excluded) > 0 {
		return projectExcluded(doc, excluded)
	}
	return doc
}

func projectIncluded(doc map[string]interface{}, attributes []string) map[string]interface{} {
	// parents selected in full, and sub-attribute selections by parent
	full := map[string]struct{}{}
	subs := map[string][]string{}

	for _, attr := range attributes {
		parent, sub, hasSub := strings.Cut(attr, ".")
		parent = strings.ToLower(parent)
		if hasSub {
			subs[parent] = append(subs[parent], strings.ToLower(sub))
		} else {
			full[parent] = struct{}{}
		}
	}

	result := map[string]interface{}{}
	for key, value := range doc {
		lowered := strings.ToLower(key)

		if _, ok := alwaysReturned[lowered]; ok {
			result[key] = value
			continue
		}

		if _, ok := full[lowered]; ok {
			result[key] = value
			continue
		}

		if wanted, ok := subs[lowered]; ok {
			if nested, ok := value.(map[string]interface{}); ok {
				picked := map[string]interface{}{}
				for nestedKey, nestedValue := range nested {
					for _, want := range wanted {
						if strings.ToLower(nestedKey) == want {
							picked[nestedKey] = nestedValue
							break
						}
					}
				}
				result[key] = picked
			} else {
				// A sub-attribute was requested on a non-complex value;
				// return the attribute as-is.
				result[key] = value
			}
		}
	}

	return result
}

func projectExcluded(doc map[string]interface{}, excluded []string) map[string]interface{} {
	full := map[string]struct{}{}
	subs := map[string][]string{}

	for _, attr := range excluded {
		parent, sub, hasSub := strings.Cut(attr, ".")
		parent = strings.ToLower(parent)
		if hasSub {
			subs[parent] = append(subs[parent], strings.ToLower(sub))
		} else {
			full[parent] = struct{}{}
		}
	}

	result := map[string]interface{}{}
	for key, value := range doc {
		lowered := strings.ToLower(key)

		if _, ok := alwaysReturned[lowered]; ok {
			result[key] = value
			continue
		}

		if _, ok := full[lowered]; ok {
			continue
		}

		if dropped, ok := subs[lowered]; ok {
			if nested, ok := value.(map[string]interface{}); ok {
				kept := map[string]interface{}{}
				for nestedKey, nestedValue := range nested {
					drop := false
					for _, d := range dropped {
						if strings.ToLower(nestedKey) == d {
							drop = true
							break
						}
					}
					if !drop {
						kept[nestedKey] = nestedValue
					}
				}
				result[key] = kept
				continue
			}
		}

		result[key] = value
	}

	return result
}
