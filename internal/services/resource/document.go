package resource

import (
	"encoding/json"
	"strings"

	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// coreSchemaURI returns the core schema URN for a resource type.
func coreSchemaURI(resourceType models.ResourceType) scim.SchemaURI {
	if resourceType == models.UserResourceType {
		return scim.UserSchemaURI
	}
	return scim.GroupSchemaURI
}

// verifySchemas checks that the document declares the core schema URI for
// its resource type.
func verifySchemas(doc map[string]interface{}, resourceType models.ResourceType) error {
	required := string(coreSchemaURI(resourceType))

	raw, ok := lookupAttribute(doc, "schemas")
	if ok {
		if list, isList := raw.([]interface{}); isList {
			for _, entry := range list {
				if str, isString := entry.(string); isString && strings.EqualFold(str, required) {
					return nil
				}
			}
		}
	}

	return errors.New(
		"document must declare the %s schema", required,
		errors.WithErrorCode(errors.EInvalid),
		errors.WithSCIMType(errors.SCIMTypeInvalidSyntax),
	)
}

// lookupAttribute performs a case-insensitive attribute lookup.
func lookupAttribute(doc map[string]interface{}, name string) (interface{}, bool) {
	if value, ok := doc[name]; ok {
		return value, true
	}
	for key, value := range doc {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

// stringAttribute returns a string attribute, tolerating absence.
func stringAttribute(doc map[string]interface{}, name string) string {
	raw, ok := lookupAttribute(doc, name)
	if !ok {
		return ""
	}
	str, _ := raw.(string)
	return str
}

// boolAttribute returns a bool attribute with a default for absence.
func boolAttribute(doc map[string]interface{}, name string, defaultValue bool) bool {
	raw, ok := lookupAttribute(doc, name)
	if !ok {
		return defaultValue
	}
	if b, isBool := raw.(bool); isBool {
		return b
	}
	// Some provisioning clients send active as the strings "True"/"False".
	if str, isString := raw.(string); isString {
		switch strings.ToLower(str) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return defaultValue
}

// deleteAttribute removes an attribute case-insensitively.
func deleteAttribute(doc map[string]interface{}, name string) {
	for key := range doc {
		if strings.EqualFold(key, name) {
			delete(doc, key)
		}
	}
}

// deepCopyDocument copies a JSON document so patch application can fail
// without observable effects on the original.
func deepCopyDocument(doc map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// buildPayload strips the server-managed fields from a received document.
// The remainder is the authoritative payload persisted for the resource.
// Group member lists are persisted as edges, not in the payload.
func buildPayload(doc map[string]interface{}, resourceType models.ResourceType) (map[string]interface{}, error) {
	payload, err := deepCopyDocument(doc)
	if err != nil {
		return nil, err
	}

	deleteAttribute(payload, "id")
	deleteAttribute(payload, "meta")
	deleteAttribute(payload, "schemas")

	if resourceType == models.GroupResourceType {
		deleteAttribute(payload, "members")
	}

	return payload, nil
}

// memberInput is one entry of a received group member list.
type memberInput struct {
	Value   string
	Type    string
	Display string
}

// parseMemberList decodes a members attribute value into member inputs,
// deduplicating by member value.
func parseMemberList(raw interface{}) ([]memberInput, error) {
	var entries []interface{}

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		entries = v
	case map[string]interface{}:
		entries = []interface{}{v}
	default:
		return nil, errors.New(
			"members must be an array of member objects",
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeInvalidValue),
		)
	}

	seen := map[string]struct{}{}
	members := []memberInput{}

	for _, entry := range entries {
		entryMap, ok := entry.(map[string]interface{})
		if !ok {
			return nil, errors.New(
				"members must be an array of member objects",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}

		value := stringAttribute(entryMap, "value")
		if value == "" {
			return nil, errors.New(
				"member entries must include a value",
				errors.WithErrorCode(errors.EInvalid),
				errors.WithSCIMType(errors.SCIMTypeInvalidValue),
			)
		}

		if _, duplicate := seen[value]; duplicate {
			continue
		}
		seen[value] = struct{}{}

		members = append(members, memberInput{
			Value:   value,
			Type:    stringAttribute(entryMap, "type"),
			Display: stringAttribute(entryMap, "display"),
		})
	}

	return members, nil
}
