package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/identity-lab/scim-target-api/pkg/errors"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
)

func TestRespondWithError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectStatus   int
		expectSCIMType string
	}{
		{
			name:           "conflict maps to uniqueness",
			err:            errors.New("duplicate", errors.WithErrorCode(errors.EConflict)),
			expectStatus:   http.StatusConflict,
			expectSCIMType: "uniqueness",
		},
		{
			name:           "optimistic lock maps to versionMismatch",
			err:            errors.New("stale", errors.WithErrorCode(errors.EOptimisticLock)),
			expectStatus:   http.StatusPreconditionFailed,
			expectSCIMType: "versionMismatch",
		},
		{
			name:           "not found maps to noTarget",
			err:            errors.New("nope", errors.WithErrorCode(errors.ENotFound)),
			expectStatus:   http.StatusNotFound,
			expectSCIMType: "noTarget",
		},
		{
			name:           "explicit scimType wins over the default",
			err:            errors.New("bad path", errors.WithErrorCode(errors.EInvalid), errors.WithSCIMType(errors.SCIMTypeInvalidPath)),
			expectStatus:   http.StatusBadRequest,
			expectSCIMType: "invalidPath",
		},
		{
			name:           "unauthorized maps to invalidToken",
			err:            errors.New("no token", errors.WithErrorCode(errors.EUnauthorized)),
			expectStatus:   http.StatusUnauthorized,
			expectSCIMType: "invalidToken",
		},
		{
			name:         "unknown errors become an opaque 500",
			err:          errors.New("pgx: connection refused to host db-internal"),
			expectStatus: http.StatusInternalServerError,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			testLogger, _ := logger.NewForTest()
			writer := NewWriter(testLogger)

			w := httptest.NewRecorder()
			writer.RespondWithError(w, test.err)

			assert.Equal(t, test.expectStatus, w.Code)
			assert.Equal(t, "application/scim+json; charset=utf-8", w.Header().Get("Content-Type"))

			var envelope map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

			assert.Equal(t, []interface{}{"urn:ietf:params:scim:api:messages:2.0:Error"}, envelope["schemas"])

			if test.expectSCIMType != "" {
				assert.Equal(t, test.expectSCIMType, envelope["scimType"])
			}

			if test.expectStatus == http.StatusInternalServerError {
				assert.Equal(t, "An internal error has occurred.", envelope["detail"])
			}

			if test.expectStatus == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="SCIM"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRespondWithResource(t *testing.T) {
	testLogger, _ := logger.NewForTest()
	writer := NewWriter(testLogger)

	doc := map[string]interface{}{
		"id": "u-1",
		"meta": map[string]interface{}{
			"version":  `W/"2024-05-01T10:00:00Z"`,
			"location": "https://host/scim/v2/endpoints/e1/Users/u-1",
		},
	}

	t.Run("created sets ETag and Location", func(t *testing.T) {
		w := httptest.NewRecorder()
		writer.RespondWithResource(w, doc, http.StatusCreated)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, `W/"2024-05-01T10:00:00Z"`, w.Header().Get("ETag"))
		assert.Equal(t, "https://host/scim/v2/endpoints/e1/Users/u-1", w.Header().Get("Location"))
	})

	t.Run("ok sets ETag only", func(t *testing.T) {
		w := httptest.NewRecorder()
		writer.RespondWithResource(w, doc, http.StatusOK)

		assert.Equal(t, `W/"2024-05-01T10:00:00Z"`, w.Header().Get("ETag"))
		assert.Empty(t, w.Header().Get("Location"))
	})
}

func TestRespondWithNotModified(t *testing.T) {
	testLogger, _ := logger.NewForTest()
	writer := NewWriter(testLogger)

	w := httptest.NewRecorder()
	writer.RespondWithNotModified(w, `W/"tag"`)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, `W/"tag"`, w.Header().Get("ETag"))
	assert.Empty(t, w.Body.Bytes())
}
