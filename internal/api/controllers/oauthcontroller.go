package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
	"gitlab.com/identity-lab/scim-target-api/internal/auth"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

type oauthController struct {
	respWriter response.Writer
	logger     logger.Logger
	idp        *auth.IdentityProvider
}

// NewOAuthController creates an instance of oauthController
func NewOAuthController(
	logger logger.Logger,
	respWriter response.Writer,
	idp *auth.IdentityProvider,
) Controller {
	return &oauthController{
		respWriter,
		logger,
		idp,
	}
}

func (c *oauthController) RegisterRoutes(router chi.Router) {
	router.Post("/oauth/token", c.issueToken)
}

// issueToken implements the client_credentials grant (RFC 6749 section
// 4.4). Credentials are accepted via HTTP basic auth or form fields.
func (c *oauthController) issueToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.respWriter.RespondWithError(w, errors.Wrap(err, "failed to parse form body", errors.WithErrorCode(errors.EInvalid)))
		return
	}

	if grantType := r.PostFormValue("grant_type"); grantType != "client_credentials" {
		c.respWriter.RespondWithError(w, errors.New(
			"unsupported grant type %q", grantType,
			errors.WithErrorCode(errors.EInvalid),
			errors.WithSCIMType(errors.SCIMTypeInvalidValue),
		))
		return
	}

	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.PostFormValue("client_id")
		clientSecret = r.PostFormValue("client_secret")
	}

	token, err := c.idp.IssueToken(clientID, clientSecret)
	if err != nil {
		c.logger.WithContextFields(r.Context()).Infof("Token issuance rejected: %v", err)
		c.respWriter.RespondWithError(w, err)
		return
	}

	// Token responses are plain JSON, not SCIM documents.
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	c.respWriter.RespondWithJSON(w, token, http.StatusOK)
}
