package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gitlab.com/identity-lab/scim-target-api/internal/api/response"
)

type healthController struct {
	respWriter response.Writer
}

// NewHealthController creates an instance of healthController
func NewHealthController(respWriter response.Writer) Controller {
	return &healthController{respWriter}
}

func (c *healthController) RegisterRoutes(router chi.Router) {
	router.Get("/health", c.getHealth)
}

func (c *healthController) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	c.respWriter.RespondWithJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
