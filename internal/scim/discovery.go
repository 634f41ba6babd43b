package scim

import "fmt"

// ServiceProviderConfigDocument renders the static ServiceProviderConfig
// for a tenant. Bulk, filtering beyond the supported subset, sort and
// change-password are advertised as unsupported.
func ServiceProviderConfigDocument(baseURL string) map[string]interface{} {
	return map[string]interface{}{
		"schemas":          []string{string(ServiceProviderConfigSchemaURI)},
		"documentationUri": "https://www.rfc-editor.org/rfc/rfc7644",
		"patch": map[string]interface{}{
			"supported": true,
		},
		"bulk": map[string]interface{}{
			"supported":      false,
			"maxOperations":  0,
			"maxPayloadSize": 0,
		},
		"filter": map[string]interface{}{
			"supported":  true,
			"maxResults": MaxPageSize,
		},
		"changePassword": map[string]interface{}{
			"supported": false,
		},
		"sort": map[string]interface{}{
			"supported": false,
		},
		"etag": map[string]interface{}{
			"supported": true,
		},
		"authenticationSchemes": []map[string]interface{}{
			{
				"type":        "oauthbearertoken",
				"name":        "OAuth Bearer Token",
				"description": "Authentication scheme using the OAuth Bearer Token Standard",
				"specUri":     "https://www.rfc-editor.org/rfc/rfc6750",
				"primary":     true,
			},
		},
		"meta": map[string]interface{}{
			"resourceType": "ServiceProviderConfig",
			"location":     fmt.Sprintf("%s/ServiceProviderConfig", baseURL),
		},
	}
}

// ResourceTypesDocument renders the static ResourceTypes list for a tenant.
func ResourceTypesDocument(baseURL string) *ListResponse {
	resources := []map[string]interface{}{
		{
			"schemas":     []string{string(ResourceTypeSchemaURI)},
			"id":          "User",
			"name":        "User",
			"endpoint":    "/Users",
			"description": "User Account",
			"schema":      string(UserSchemaURI),
			"schemaExtensions": []map[string]interface{}{
				{
					"schema":   string(UserEnterpriseSchemaURI),
					"required": false,
				},
			},
			"meta": map[string]interface{}{
				"resourceType": "ResourceType",
				"location":     fmt.Sprintf("%s/ResourceTypes/User", baseURL),
			},
		},
		{
			"schemas":     []string{string(ResourceTypeSchemaURI)},
			"id":          "Group",
			"name":        "Group",
			"endpoint":    "/Groups",
			"description": "Group",
			"schema":      string(GroupSchemaURI),
			"meta": map[string]interface{}{
				"resourceType": "ResourceType",
				"location":     fmt.Sprintf("%s/ResourceTypes/Group", baseURL),
			},
		},
	}

	return NewListResponse(resources, len(resources), 1, len(resources))
}

// SchemasDocument renders the static Schemas list for a tenant.
func SchemasDocument(baseURL string) *ListResponse {
	resources := []map[string]interface{}{
		userSchemaDocument(baseURL),
		groupSchemaDocument(baseURL),
		enterpriseUserSchemaDocument(baseURL),
	}

	return NewListResponse(resources, len(resources), 1, len(resources))
}

func userSchemaDocument(baseURL string) map[string]interface{} {
	return map[string]interface{}{
		"schemas":     []string{string(SchemaSchemaURI)},
		"id":          string(UserSchemaURI),
		"name":        "User",
		"description": "User Account",
		"attributes": []map[string]interface{}{
			stringAttribute("userName", true, "server"),
			complexAttribute("name", false, []map[string]interface{}{
				stringAttribute("formatted", false, "none"),
				stringAttribute("familyName", false, "none"),
				stringAttribute("givenName", false, "none"),
			}),
			stringAttribute("displayName", false, "none"),
			stringAttribute("title", false, "none"),
			stringAttribute("preferredLanguage", false, "none"),
			{
				"name":        "active",
				"type":        "boolean",
				"multiValued": false,
				"required":    false,
				"mutability":  "readWrite",
				"returned":    "default",
			},
			multiValuedAttribute("emails", []map[string]interface{}{
				stringAttribute("value", false, "none"),
				stringAttribute("type", false, "none"),
				{
					"name":        "primary",
					"type":        "boolean",
					"multiValued": false,
					"required":    false,
					"mutability":  "readWrite",
					"returned":    "default",
				},
			}),
			multiValuedAttribute("phoneNumbers", []map[string]interface{}{
				stringAttribute("value", false, "none"),
				stringAttribute("type", false, "none"),
			}),
			multiValuedAttribute("addresses", []map[string]interface{}{
				stringAttribute("formatted", false, "none"),
				stringAttribute("streetAddress", false, "none"),
				stringAttribute("locality", false, "none"),
				stringAttribute("region", false, "none"),
				stringAttribute("postalCode", false, "none"),
				stringAttribute("country", false, "none"),
				stringAttribute("type", false, "none"),
			}),
			stringAttribute("externalId", false, "none"),
		},
		"meta": map[string]interface{}{
			"resourceType": "Schema",
			"location":     fmt.Sprintf("%s/Schemas/%s", baseURL, UserSchemaURI),
		},
	}
}

func groupSchemaDocument(baseURL string) map[string]interface{} {
	return map[string]interface{}{
		"schemas":     []string{string(SchemaSchemaURI)},
		"id":          string(GroupSchemaURI),
		"name":        "Group",
		"description": "Group",
		"attributes": []map[string]interface{}{
			stringAttribute("displayName", true, "none"),
			stringAttribute("externalId", false, "none"),
			multiValuedAttribute("members", []map[string]interface{}{
				stringAttribute("value", false, "none"),
				stringAttribute("type", false, "none"),
				stringAttribute("display", false, "none"),
			}),
		},
		"meta": map[string]interface{}{
			"resourceType": "Schema",
			"location":     fmt.Sprintf("%s/Schemas/%s", baseURL, GroupSchemaURI),
		},
	}
}

func enterpriseUserSchemaDocument(baseURL string) map[string]interface{} {
	return map[string]interface{}{
		"schemas":     []string{string(SchemaSchemaURI)},
		"id":          string(UserEnterpriseSchemaURI),
		"name":        "EnterpriseUser",
		"description": "Enterprise User",
		"attributes": []map[string]interface{}{
			stringAttribute("employeeNumber", false, "none"),
			stringAttribute("costCenter", false, "none"),
			stringAttribute("organization", false, "none"),
			stringAttribute("division", false, "none"),
			stringAttribute("department", false, "none"),
			complexAttribute("manager", false, []map[string]interface{}{
				stringAttribute("value", false, "none"),
				stringAttribute("displayName", false, "none"),
			}),
		},
		"meta": map[string]interface{}{
			"resourceType": "Schema",
			"location":     fmt.Sprintf("%s/Schemas/%s", baseURL, UserEnterpriseSchemaURI),
		},
	}
}

func stringAttribute(name string, required bool, uniqueness string) map[string]interface{} {
	attr := map[string]interface{}{
		"name":        name,
		"type":        "string",
		"multiValued": false,
		"required":    required,
		"caseExact":   false,
		"mutability":  "readWrite",
		"returned":    "default",
	}
	if uniqueness != "" {
		attr["uniqueness"] = uniqueness
	}
	return attr
}

func complexAttribute(name string, required bool, subAttributes []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":          name,
		"type":          "complex",
		"multiValued":   false,
		"required":      required,
		"mutability":    "readWrite",
		"returned":      "default",
		"subAttributes": subAttributes,
	}
}

func multiValuedAttribute(name string, subAttributes []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":          name,
		"type":          "complex",
		"multiValued":   true,
		"required":      false,
		"mutability":    "readWrite",
		"returned":      "default",
		"subAttributes": subAttributes,
	}
}
