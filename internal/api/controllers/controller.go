// Package controllers contains the HTTP controllers for the SCIM and
// admin surfaces.
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	te "gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Controller encapsulates the logic for registering handler functions with routes
type Controller interface {
	// RegisterRoutes adds controller routes to the router
	RegisterRoutes(router chi.Router)
}

// decodeJSON decodes a request body, translating decoder failures into
// the SCIM error model.
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return te.Wrap(err, "request body exceeds the maximum accepted size", te.WithErrorCode(te.ETooLarge))
		}

		return te.Wrap(err, "failed to parse request body",
			te.WithErrorCode(te.EInvalid),
			te.WithSCIMType(te.SCIMTypeInvalidSyntax),
		)
	}

	return nil
}
