package resource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitlab.com/identity-lab/scim-target-api/internal/models"
	"gitlab.com/identity-lab/scim-target-api/internal/scim"
)

// RenderResource projects a persisted resource into its SCIM document:
// the stored payload plus the server-managed schemas, id and meta fields,
// group members from the membership edges, and the requested attribute
// projection.
func (s *service) RenderResource(ctx context.Context, resource *models.Resource, baseURL string, attributes, excluded []string) (map[string]interface{}, error) {
	ctx, span := tracer.Start(ctx, "svc.RenderResource")
	defer span.End()

	doc, err := deepCopyDocument(resource.Payload)
	if err != nil {
		return nil, err
	}

	doc["schemas"] = renderSchemas(resource)
	doc["id"] = resource.SCIMID

	if resource.ResourceType == models.GroupResourceType {
		edges, err := s.dbClient.Members.GetMembersForGroup(ctx, resource.Metadata.ID)
		if err != nil {
			return nil, err
		}
		doc["members"] = renderMembers(edges, baseURL)
	}

	location := fmt.Sprintf("%s/%ss/%s", baseURL, resource.ResourceType, resource.SCIMID)

	meta := map[string]interface{}{
		"resourceType": string(resource.ResourceType),
		"location":     location,
		"version":      resource.ETag(),
	}
	if resource.Metadata.CreationTimestamp != nil {
		meta["created"] = resource.Metadata.CreationTimestamp.UTC().Format(time.RFC3339Nano)
	}
	if resource.Metadata.LastUpdatedTimestamp != nil {
		meta["lastModified"] = resource.Metadata.LastUpdatedTimestamp.UTC().Format(time.RFC3339Nano)
	}
	doc["meta"] = meta

	return scim.Project(doc, attributes, excluded), nil
}

// renderSchemas lists the core URI plus any extension namespaces present
// in the payload.
func renderSchemas(resource *models.Resource) []string {
	schemas := []string{string(coreSchemaURI(resource.ResourceType))}

	for key := range resource.Payload {
		if strings.HasPrefix(strings.ToLower(key), "urn:") {
			if canonical, ok := scim.IsExtensionURN(key); ok {
				schemas = append(schemas, canonical)
			} else {
				schemas = append(schemas, key)
			}
		}
	}

	return schemas
}

// renderMembers converts membership edges to the SCIM members attribute.
func renderMembers(edges []models.ResourceMember, baseURL string) []map[string]interface{} {
	members := make([]map[string]interface{}, 0, len(edges))

	for _, edge := range edges {
		member := map[string]interface{}{
			"value": edge.Value,
		}
		if edge.Type != "" {
			member["type"] = edge.Type
		}
		if edge.Display != "" {
			member["display"] = edge.Display
		}
		if edge.MemberResourceID != nil {
			member["$ref"] = fmt.Sprintf("%s/Users/%s", baseURL, edge.Value)
		}
		members = append(members, member)
	}

	return members
}
