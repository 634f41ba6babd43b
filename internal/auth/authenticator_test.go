package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
)

func TestAuthenticateSharedSecret(t *testing.T) {
	authenticator := NewAuthenticator("the-shared-secret", "jwt-key")

	caller, err := authenticator.Authenticate(context.Background(), "the-shared-secret")
	require.NoError(t, err)
	assert.IsType(t, &LegacyCaller{}, caller)
	assert.Equal(t, "shared-secret", caller.GetSubject())
}

func TestAuthenticateOAuthToken(t *testing.T) {
	const jwtSecret = "jwt-signing-key"

	idp := NewIdentityProvider("client-1", "secret-1", "scim.read scim.write", jwtSecret)
	authenticator := NewAuthenticator("the-shared-secret", jwtSecret)

	issued, err := idp.IssueToken("client-1", "secret-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.NotEmpty(t, issued.AccessToken)

	caller, err := authenticator.Authenticate(context.Background(), issued.AccessToken)
	require.NoError(t, err)

	oauthCaller, ok := caller.(*OAuthCaller)
	require.True(t, ok)
	assert.Equal(t, "client-1", oauthCaller.ClientID)
	assert.Equal(t, []string{"scim.read", "scim.write"}, oauthCaller.Scopes)
}

func TestAuthenticateFailures(t *testing.T) {
	authenticator := NewAuthenticator("the-shared-secret", "jwt-key")

	testCases := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "wrong shared secret", token: "not-the-secret"},
		{name: "garbage jwt", token: "xx.yy.zz"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := authenticator.Authenticate(context.Background(), test.token)
			require.Error(t, err)
			assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
			assert.Equal(t, errors.SCIMTypeInvalidToken, errors.SCIMType(err))
		})
	}
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	idp := NewIdentityProvider("client-1", "secret-1", "scim.read", "jwt-key")

	_, err := idp.IssueToken("client-1", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))

	_, err = idp.IssueToken("other", "secret-1")
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
}

func TestIssueTokenUnconfigured(t *testing.T) {
	idp := NewIdentityProvider("", "", "", "jwt-key")

	_, err := idp.IssueToken("any", "any")
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))
}

func TestFindToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", FindToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", FindToken(r))

	r.Header.Set("Authorization", "bearer xyz")
	assert.Equal(t, "xyz", FindToken(r))

	r.Header.Set("Authorization", "Basic dXNlcg==")
	assert.Equal(t, "", FindToken(r))
}

func TestCallerContext(t *testing.T) {
	_, err := AuthorizeCaller(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.EUnauthorized, errors.ErrorCode(err))

	ctx := WithCaller(context.Background(), &OAuthCaller{ClientID: "c1"})
	caller, err := AuthorizeCaller(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", caller.GetSubject())
}
