// Package userupdate implements account edits from the admin panel.
package userupdate

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

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/admin"
	"github.com/wergeran/wergeran/internal/services/auth"
	"github.com/wergeran/wergeran/internal/storage"
)

// Request carries the editable fields; empty fields keep their values.
type Request struct {
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone"`
	Status string `json:"status" validate:"omitempty,oneof=active blocked"`
	Role   string `json:"role" validate:"omitempty,oneof=user admin"`
}

// Service applies account edits.
type Service interface {
	UpdateUser(ctx context.Context, id string, upd admin.UserUpdate) (*models.User, error)
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
	const op = "handlers.admin.userupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("هەمی زانیاری پێتڤینە", response.CodeValidation))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "userId"), admin.UserUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
		Role:   req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("بکارهێنەر نەهاتە دیتن", response.CodeNotFound))
		case errors.Is(err, storage.ErrEmailTaken):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("ئەڤ ئیمەیلە بەری نوکە هاتیە بکارئینان", response.CodeConflict))
		case errors.Is(err, auth.ErrInvalidPhone):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("ژمارا تەلەفۆنێ نەدروستە", response.CodeValidation))
		case errors.Is(err, admin.ErrInvalidStatus):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("بارێ نەدروست", response.CodeValidation))
		default:
			log.Error("user update failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا د نویکرنا زانیاریان دا", response.CodeInternal))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "زانیاریێن بکارهێنەری هاتنە نویکرن",
		"user":    user.Public(),
	}))
}
