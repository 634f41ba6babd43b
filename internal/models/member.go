package models

import "time"

// ResourceMember is a group-to-member edge. MemberResourceID is nil when
// the member value could not be resolved to a resource in the same tenant;
// the raw value string is preserved either way.
type ResourceMember struct {
	ID                string
	GroupResourceID   string
	MemberResourceID  *string
	Value             string
	Type              string
	Display           string
	CreationTimestamp *time.Time
}
