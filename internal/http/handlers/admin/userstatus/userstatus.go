// Package userstatus implements blocking and unblocking accounts. Admins
// cannot change their own status.
package userstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/admin"
	"github.com/wergeran/wergeran/internal/storage"
)

// Request carries the target status.
type Request struct {
	Status string `json:"status" validate:"required,oneof=active blocked"`
}

// Service changes account statuses.
type Service interface {
	SetStatus(ctx context.Context, actorID, id, status string) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userstatus"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("بارێ نەدروست", response.CodeValidation))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("بارێ نەدروست", response.CodeValidation))
		return
	}

	user, err := h.service.SetStatus(r.Context(), actor.ID, chi.URLParam(r, "userId"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("بکارهێنەر نەهاتە دیتن", response.CodeNotFound))
		case errors.Is(err, admin.ErrSelfAction):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("تۆ نەشێی هەژمارا خۆ بلۆک بکەی", response.CodeConflict))
		default:
			log.Error("status change failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا", response.CodeInternal))
		}
		return
	}

	message := "هەژمار هاتە چالاککرن"
	if req.Status == models.StatusBlocked {
		message = "هەژمار هاتە بلۆککرن"
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": message,
		"user":    user.Public(),
	}))
}
