// Package health implements the liveness endpoint.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":    "باش",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
