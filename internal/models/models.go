// Package models contains the persisted domain models.
package models

import (
	"fmt"
	"regexp"
	"time"

	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// maxDescriptionLength is the maximum length for a resource's description field.
const maxDescriptionLength int = 512

// endpointNameRegex allows letters, numbers, dashes and underscores, max length 64.
var endpointNameRegex = regexp.MustCompile("^[A-Za-z0-9_-]{1,64}$")

// ResourceMetadata contains metadata for a particular resource
type ResourceMetadata struct {
	CreationTimestamp    *time.Time `json:"createdAt"`
	LastUpdatedTimestamp *time.Time `json:"updatedAt,omitempty"`
	ID                   string     `json:"id"`
	Version              int        `json:"version"`
}

func verifyValidEndpointName(name string) error {
	if !endpointNameRegex.MatchString(name) {
		return errors.New(
			"Invalid name, name can only include letters and numbers with - and _ supported. Max length is 64 characters.",
			errors.WithErrorCode(errors.EInvalid),
		)
	}
	return nil
}

func verifyValidDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return errors.New(
			fmt.Sprintf("Invalid description, cannot be greater than %d characters", maxDescriptionLength),
			errors.WithErrorCode(errors.EInvalid),
		)
	}
	return nil
}
