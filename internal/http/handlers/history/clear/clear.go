// Package clear wipes the authenticated user's translation history.
package clear

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
)

// Service deletes all history entries of one user.
type Service interface {
	DeleteEntriesByUser(ctx context.Context, userID string) (int, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.clear"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("پێتڤی ب چوونەژوورێ یە", response.CodeUnauthorized))
		return
	}

	deleted, err := h.service.DeleteEntriesByUser(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to clear history", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د پاقژکرنا دیرۆکێ دا", response.CodeInternal))
		return
	}

	log.Info("history cleared",
		slog.String("user_id", user.ID),
		slog.Int("deleted", deleted))

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "دیرۆک هاتە پاقژکرن",
	}))
}
