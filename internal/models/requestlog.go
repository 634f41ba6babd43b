package models

import (
	"net/url"
	"time"
)

// RequestLog is an append-only audit record of one inbound HTTP request.
type RequestLog struct {
	ID                string
	EndpointID        *string
	Method            string
	URL               string
	Status            *int
	DurationMs        *int64
	RequestHeaders    map[string]string
	RequestBody       string
	ResponseHeaders   map[string]string
	ResponseBody      string
	ErrorMessage      string
	ErrorStack        string
	Identifier        string
	CreationTimestamp *time.Time
}

// IsKeepalive reports whether the row matches the keepalive signature used
// by upstream identity providers to probe the endpoint: a successful GET
// with a filter query and no extracted identifier.
func (r *RequestLog) IsKeepalive() bool {
	if r.Method != "GET" || r.Identifier != "" {
		return false
	}
	if r.Status != nil && *r.Status >= 400 {
		return false
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return false
	}
	return u.Query().Get("filter") != ""
}
