package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

// Authenticator validates presented bearer credentials. Two credential
// kinds are accepted: the configured shared secret, and a JWT issued by
// the OAuth token endpoint and signed with the configured key.
type Authenticator struct {
	sharedSecret []byte
	jwtSecret    []byte
}

// NewAuthenticator creates an instance of Authenticator
func NewAuthenticator(sharedSecret string, jwtSecret string) *Authenticator {
	return &Authenticator{
		sharedSecret: []byte(sharedSecret),
		jwtSecret:    []byte(jwtSecret),
	}
}

// Authenticate resolves a bearer token to a caller.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Caller, error) {
	if token == "" {
		return nil, errors.New(
			"missing bearer token",
			errors.WithErrorCode(errors.EUnauthorized),
			errors.WithSCIMType(errors.SCIMTypeInvalidToken),
		)
	}

	if len(a.sharedSecret) > 0 && subtle.ConstantTimeCompare([]byte(token), a.sharedSecret) == 1 {
		return &LegacyCaller{}, nil
	}

	if len(a.jwtSecret) > 0 {
		caller, err := a.verifyJWT(ctx, token)
		if err == nil {
			return caller, nil
		}
	}

	return nil, errors.New(
		"invalid bearer token",
		errors.WithErrorCode(errors.EUnauthorized),
		errors.WithSCIMType(errors.SCIMTypeInvalidToken),
	)
}

func (a *Authenticator) verifyJWT(_ context.Context, token string) (Caller, error) {
	decodedToken, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.HS256, a.jwtSecret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode token", errors.WithErrorCode(errors.EUnauthorized))
	}

	caller := &OAuthCaller{}

	if clientID, ok := decodedToken.Get("client_id"); ok {
		if val, ok := clientID.(string); ok {
			caller.ClientID = val
		}
	}

	if scope, ok := decodedToken.Get("scope"); ok {
		if val, ok := scope.(string); ok && val != "" {
			caller.Scopes = strings.Fields(val)
		}
	}

	return caller, nil
}

// FindToken extracts the bearer token from the Authorization header.
func FindToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:6]) == "BEARER" {
		return bearer[7:]
	}

	return ""
}
