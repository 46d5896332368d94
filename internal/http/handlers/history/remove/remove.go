// Package remove deletes one history entry. Only the owner may delete it.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// Service reads and deletes history entries.
type Service interface {
	EntryByID(ctx context.Context, id string) (*models.HistoryEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.remove"

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

	id := chi.URLParam(r, "id")

	entry, err := h.service.EntryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("وەرگێڕان نەهاتە دیتن", response.CodeNotFound))
			return
		}
		log.Error("failed to load history entry", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د ژێبرنا وەرگێڕانێ دا", response.CodeInternal))
		return
	}

	if entry.UserID != user.ID {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("تە دەستهەلات نینە", response.CodeForbidden))
		return
	}

	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		log.Error("failed to delete history entry", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د ژێبرنا وەرگێڕانێ دا", response.CodeInternal))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "وەرگێڕان هاتە ژێبرن",
	}))
}
