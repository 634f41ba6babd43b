package auth

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

const (
	tokenIssuer     = "scim-target-api"
	tokenExpiration = time.Hour
)

// IdentityProvider issues OAuth client-credentials tokens that the
// authenticator accepts as bearer credentials.
type IdentityProvider struct {
	clientID     []byte
	clientSecret []byte
	scopes       string
	jwtSecret    []byte
}

// IssueTokenOutput is the token endpoint response shape (RFC 6749).
type IssueTokenOutput struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope,omitempty"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewIdentityProvider creates an instance of IdentityProvider
func NewIdentityProvider(clientID, clientSecret, scopes, jwtSecret string) *IdentityProvider {
	return &IdentityProvider{
		clientID:     []byte(clientID),
		clientSecret: []byte(clientSecret),
		scopes:       scopes,
		jwtSecret:    []byte(jwtSecret),
	}
}

// Enabled returns true when a client is configured.
func (p *IdentityProvider) Enabled() bool {
	return len(p.clientID) > 0 && len(p.clientSecret) > 0 && len(p.jwtSecret) > 0
}

// IssueToken validates the client credentials and returns a signed token.
func (p *IdentityProvider) IssueToken(clientID, clientSecret string) (*IssueTokenOutput, error) {
	if !p.Enabled() {
		return nil, errors.New(
			"OAuth token issuance is not configured",
			errors.WithErrorCode(errors.EUnauthorized),
			errors.WithSCIMType(errors.SCIMTypeInvalidToken),
		)
	}

	idMatches := subtle.ConstantTimeCompare([]byte(clientID), p.clientID) == 1
	secretMatches := subtle.ConstantTimeCompare([]byte(clientSecret), p.clientSecret) == 1
	if !idMatches || !secretMatches {
		return nil, errors.New(
			"invalid client credentials",
			errors.WithErrorCode(errors.EUnauthorized),
			errors.WithSCIMType(errors.SCIMTypeInvalidToken),
		)
	}

	now := time.Now().UTC()

	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(clientID).
		JwtID(uuid.New().String()).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(tokenExpiration)).
		Claim("client_id", clientID).
		Claim("scope", p.scopes).
		Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, p.jwtSecret))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign token")
	}

	return &IssueTokenOutput{
		AccessToken: string(signed),
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenExpiration.Seconds()),
		Scope:       p.scopes,
	}, nil
}
