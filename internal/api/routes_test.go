package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLRewriteMiddleware(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		expect string
	}{
		{name: "v2 segment rewrites to internal prefix", path: "/scim/v2/endpoints/e1/Users", expect: "/scim/endpoints/e1/Users"},
		{name: "bare v2 rewrites to prefix root", path: "/scim/v2", expect: "/scim"},
		{name: "leading double slash collapses", path: "//scim/endpoints/e1/Users", expect: "/scim/endpoints/e1/Users"},
		{name: "double slash plus v2", path: "//scim/v2/endpoints/e1/Users", expect: "/scim/endpoints/e1/Users"},
		{name: "internal path is untouched", path: "/scim/endpoints/e1/Users", expect: "/scim/endpoints/e1/Users"},
		{name: "v2 inside the path is untouched", path: "/scim/endpoints/v2x/Users", expect: "/scim/endpoints/v2x/Users"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			var observed string
			handler := newURLRewriteMiddleware("scim")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				observed = r.URL.Path
			}))

			r := httptest.NewRequest("GET", test.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, test.expect, observed)
		})
	}
}
