// Package response provides support for returning SCIM http responses
package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/identity-lab/scim-target-api/internal/scim"
	te "gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

// Writer provides utility functions for responding to http requests
type Writer interface {
	RespondWithError(w http.ResponseWriter, err error)
	RespondWithJSON(w http.ResponseWriter, model interface{}, statusCode int)
	RespondWithResource(w http.ResponseWriter, doc map[string]interface{}, statusCode int)
	RespondWithNoContent(w http.ResponseWriter)
	RespondWithNotModified(w http.ResponseWriter, etag string)
}

type responseHelper struct {
	logger logger.Logger
}

var errorToStatusCode = map[string]int{
	te.EInternal:        http.StatusInternalServerError,
	te.ENotImplemented:  http.StatusNotImplemented,
	te.EInvalid:         http.StatusBadRequest,
	te.EConflict:        http.StatusConflict,
	te.EOptimisticLock:  http.StatusPreconditionFailed,
	te.ENotFound:        http.StatusNotFound,
	te.EForbidden:       http.StatusForbidden,
	te.ETooManyRequests: http.StatusTooManyRequests,
	te.EUnauthorized:    http.StatusUnauthorized,
	te.ETooLarge:        http.StatusRequestEntityTooLarge,
}

// defaultSCIMType supplies the scimType when the error didn't carry one.
var defaultSCIMType = map[string]string{
	te.EInvalid:        te.SCIMTypeInvalidSyntax,
	te.EConflict:       te.SCIMTypeUniqueness,
	te.EOptimisticLock: te.SCIMTypeVersionMismatch,
	te.ENotFound:       te.SCIMTypeNoTarget,
	te.EUnauthorized:   te.SCIMTypeInvalidToken,
}

// NewWriter creates an instance of Writer
func NewWriter(logger logger.Logger) Writer {
	return &responseHelper{logger}
}

// RespondWithError responds to an http request with a SCIM error envelope
func (rh *responseHelper) RespondWithError(w http.ResponseWriter, err error) {
	code := te.ErrorCode(err)

	if !te.IsContextCanceledError(err) &&
		code != te.EUnauthorized &&
		code != te.EForbidden &&
		code != te.ENotFound &&
		code != te.EInvalid &&
		code != te.EConflict &&
		code != te.EOptimisticLock {
		rh.logger.Errorf("Unexpected error occurred: %s", err.Error())
	}

	statusCode := ErrorCodeToStatusCode(code)

	scimType := te.SCIMType(err)
	if scimType == "" {
		scimType = defaultSCIMType[code]
	}

	detail := te.ErrorMessage(err)
	if statusCode == http.StatusInternalServerError {
		// Internal details stay out of the response.
		detail = "An internal error has occurred."
	}

	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="SCIM"`)
	}

	rh.RespondWithJSON(w, &scim.ErrorResponse{
		SchemaURIs: []scim.SchemaURI{scim.ErrorSchemaURI},
		Status:     fmt.Sprintf("%d", statusCode), // Must be a string.
		SCIMType:   scimType,
		Detail:     detail,
	}, statusCode)
}

// RespondWithJSON responds to an http request with a json payload
func (rh *responseHelper) RespondWithJSON(w http.ResponseWriter, model interface{}, statusCode int) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", scim.MediaType)
	}
	w.WriteHeader(statusCode)

	if model != nil {
		response, err := json.Marshal(model)
		if err != nil {
			rh.logger.Errorf("Failed to marshal response body: %v", err)
			return
		}

		if _, err := w.Write(response); err != nil {
			rh.logger.Errorf("Failed to write response body: %v", err)
		}
	}
}

// RespondWithResource responds with a rendered resource document, setting
// the ETag header from meta.version and, on 201, the Location header from
// meta.location.
func (rh *responseHelper) RespondWithResource(w http.ResponseWriter, doc map[string]interface{}, statusCode int) {
	if meta, ok := doc["meta"].(map[string]interface{}); ok {
		if version, ok := meta["version"].(string); ok && version != "" {
			w.Header().Set("ETag", version)
		}
		if statusCode == http.StatusCreated {
			if location, ok := meta["location"].(string); ok && location != "" {
				w.Header().Set("Location", location)
			}
		}
	}

	rh.RespondWithJSON(w, doc, statusCode)
}

// RespondWithNoContent responds with a bodyless 204
func (rh *responseHelper) RespondWithNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondWithNotModified responds to a conditional GET whose precondition held
func (rh *responseHelper) RespondWithNotModified(w http.ResponseWriter, etag string) {
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.WriteHeader(http.StatusNotModified)
}

// ErrorCodeToStatusCode maps an error code string to an http status code integer.
func ErrorCodeToStatusCode(code string) int {
	statusCode, ok := errorToStatusCode[code]
	if ok {
		return statusCode
	}
	return http.StatusInternalServerError
}
