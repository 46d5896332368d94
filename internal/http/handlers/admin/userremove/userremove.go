// Package userremove implements account deletion from the admin panel.
// Admins cannot delete their own account.
package userremove

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
	"github.com/wergeran/wergeran/internal/services/admin"
	"github.com/wergeran/wergeran/internal/storage"
)

// Service deletes accounts.
type Service interface {
	DeleteUser(ctx context.Context, actorID, id string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("پێتڤی ب چوونەژوورێ یە", response.CodeUnauthorized))
		return
	}

	err := h.service.DeleteUser(r.Context(), actor.ID, chi.URLParam(r, "userId"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("بکارهێنەر نەهاتە دیتن", response.CodeNotFound))
		case errors.Is(err, admin.ErrSelfAction):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("تۆ نەشێی هەژمارا خۆ ژێببەی", response.CodeConflict))
		default:
			log.Error("user deletion failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا د ژێبرنا هەژماری دا", response.CodeInternal))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "هەژمار هاتە ژێبرن",
	}))
}
