// Package list returns the authenticated user's translation history,
// newest first.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
)

// Service lists history entries for one user.
type Service interface {
	ListEntriesByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.list"

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

	entries, err := h.service.ListEntriesByUser(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to list history", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د وەرگرتنا دیرۆکێ دا", response.CodeInternal))
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"translations": entries,
	}))
}
