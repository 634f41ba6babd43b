package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"gitlab.com/identity-lab/scim-target-api/internal/services/auditlog"
)

// maxCapturedBody bounds how much of a body is buffered for auditing
// before the service-level truncation budget applies.
const maxCapturedBody = 1024 * 1024

// auditResponseWriter records status, headers and body for the audit row.
type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (a *auditResponseWriter) WriteHeader(code int) {
	a.statusCode = code
	a.ResponseWriter.WriteHeader(code)
}

func (a *auditResponseWriter) Write(b []byte) (int, error) {
	if a.body.Len() < maxCapturedBody {
		a.body.Write(b)
	}
	return a.ResponseWriter.Write(b)
}

// NewAuditMiddleware records every inbound request as a structured audit
// row. Audit failures never fail the audited request.
func NewAuditMiddleware(auditService auditlog.Service, apiPrefix string) Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), r.Body))
			}

			recorder := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			input := &auditlog.RecordRequestInput{
				EndpointID:      endpointIDFromPath(r.URL.Path, apiPrefix),
				Method:          r.Method,
				URL:             r.URL.String(),
				Status:          recorder.statusCode,
				Duration:        time.Since(start),
				RequestHeaders:  flattenHeaders(r.Header),
				RequestBody:     string(requestBody),
				ResponseHeaders: flattenHeaders(recorder.Header()),
				ResponseBody:    recorder.body.String(),
				Identifier:      extractIdentifier(requestBody),
			}

			if recorder.statusCode >= http.StatusBadRequest {
				input.ErrorMessage = recorder.body.String()
			}

			auditService.RecordRequest(r.Context(), input)
		})
	}
}

// endpointIDFromPath extracts the tenant id from a SCIM-protocol path of
// the form /<prefix>/endpoints/{id}/... (with or without the /v2 segment).
// Admin and other non-tenant routes yield nil.
func endpointIDFromPath(path, apiPrefix string) *string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	if len(segments) > 0 && segments[0] == apiPrefix {
		segments = segments[1:]
	}
	if len(segments) > 0 && segments[0] == "v2" {
		segments = segments[1:]
	}

	if len(segments) >= 2 && segments[0] == "endpoints" && segments[1] != "" {
		id := segments[1]
		return &id
	}

	return nil
}

// flattenHeaders normalizes headers for storage, redacting credentials.
func flattenHeaders(headers http.Header) map[string]string {
	flattened := map[string]string{}
	for key, values := range headers {
		if strings.EqualFold(key, "Authorization") {
			flattened[key] = "[redacted]"
			continue
		}
		flattened[key] = strings.Join(values, ", ")
	}
	return flattened
}

// extractIdentifier pulls a human-meaningful identifier out of a request
// body for audit grouping: a userName, a displayName, or the value of a
// patched member.
func extractIdentifier(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	doc := map[string]interface{}{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}

	if identifier := identifierFromDocument(doc); identifier != "" {
		return identifier
	}

	// PatchOp envelope: look inside each operation's value.
	rawOps, ok := doc["Operations"]
	if !ok {
		rawOps = doc["operations"]
	}
	if operations, ok := rawOps.([]interface{}); ok {
		for _, rawOp := range operations {
			op, ok := rawOp.(map[string]interface{})
			if !ok {
				continue
			}

			switch value := op["value"].(type) {
			case map[string]interface{}:
				if identifier := identifierFromDocument(value); identifier != "" {
					return identifier
				}
			case []interface{}:
				for _, entry := range value {
					if entryMap, ok := entry.(map[string]interface{}); ok {
						if member, ok := entryMap["value"].(string); ok && member != "" {
							return member
						}
					}
				}
			}
		}
	}

	return ""
}

func identifierFromDocument(doc map[string]interface{}) string {
	for key, value := range doc {
		lowered := strings.ToLower(key)
		if lowered == "username" || lowered == "displayname" {
			if str, ok := value.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}
