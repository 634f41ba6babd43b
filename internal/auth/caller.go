// Package auth handles bearer authentication for the SCIM and admin
// surfaces and issues OAuth client-credentials tokens.
package auth

import (
	"context"

	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Caller represents an authenticated principal.
type Caller interface {
	// GetSubject returns the subject identifier for this caller.
	GetSubject() string
}

// LegacyCaller is a principal authenticated with the shared bearer secret.
type LegacyCaller struct{}

// GetSubject returns the subject identifier for this caller.
func (c *LegacyCaller) GetSubject() string {
	return "shared-secret"
}

// OAuthCaller is a principal authenticated with an OAuth JWT.
type OAuthCaller struct {
	ClientID string
	Scopes   []string
}

// GetSubject returns the subject identifier for this caller.
func (c *OAuthCaller) GetSubject() string {
	return c.ClientID
}

type contextKey string

const callerContextKey contextKey = "caller"

// WithCaller adds the caller to the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// AuthorizeCaller returns the caller from the context or an unauthorized
// error if the request never authenticated.
func AuthorizeCaller(ctx context.Context) (Caller, error) {
	caller, ok := ctx.Value(callerContextKey).(Caller)
	if !ok {
		return nil, errors.New(
			"authentication is required",
			errors.WithErrorCode(errors.EUnauthorized),
			errors.WithSCIMType(errors.SCIMTypeInvalidToken),
		)
	}
	return caller, nil
}
