package models

import (
	"fmt"
	"time"
)

// ResourceType discriminates the two SCIM resource kinds stored in the
// unified resources table.
type ResourceType string

// Supported resource types.
const (
	UserResourceType  ResourceType = "User"
	GroupResourceType ResourceType = "Group"
)

// Valid returns true for a known resource type.
func (r ResourceType) Valid() bool {
	return r == UserResourceType || r == GroupResourceType
}

// Resource represents a SCIM User or Group persisted under a tenant.
// Payload carries the resource document as received from the client with
// server-managed fields (id, meta, schemas) stripped; those are projected
// from the record when rendering a response.
type Resource struct {
	EndpointID   string
	ResourceType ResourceType
	SCIMID       string
	ExternalID   string
	UserName     string
	DisplayName  string
	Active       bool
	Payload      map[string]interface{}
	Metadata     ResourceMetadata
}

// Identifier returns the human-meaningful identifier used for audit
// grouping: userName for users, displayName for groups.
func (r *Resource) Identifier() string {
	if r.ResourceType == UserResourceType {
		return r.UserName
	}
	return r.DisplayName
}

// ETag returns the weak entity tag derived from the last update timestamp.
// The tag is monotonic because updated_at strictly advances on every
// successful mutation.
func (r *Resource) ETag() string {
	if r.Metadata.LastUpdatedTimestamp == nil {
		return ""
	}
	return WeakETag(*r.Metadata.LastUpdatedTimestamp)
}

// WeakETag formats a timestamp as a weak HTTP entity tag.
func WeakETag(t time.Time) string {
	return fmt.Sprintf("W/%q", t.UTC().Format(time.RFC3339Nano))
}
