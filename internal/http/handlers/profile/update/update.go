// Package update implements the profile update endpoint. A fresh token is
// returned so the client can rotate immediately after an email change.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/auth"
	"github.com/wergeran/wergeran/internal/storage"
)

// Request carries the editable profile fields; empty fields are not changed.
type Request struct {
	Name  string `json:"name" validate:"omitempty,min=3,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// Service is the profile update side of the auth service.
type Service interface {
	UpdateProfile(ctx context.Context, user *models.User, name, email, phone string) (*models.User, string, error)
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
	const op = "handlers.profile.update"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("هەمی زانیاری پێتڤینە", response.CodeValidation))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, token, err := h.service.UpdateProfile(r.Context(), user, req.Name, req.Email, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPhone):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("ژمارا تەلەفۆنێ نەدروستە", response.CodeValidation))
		case errors.Is(err, storage.ErrEmailTaken):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("ئەڤ ئیمەیلە بەری نوکە هاتیە بکارئینان", response.CodeConflict))
		default:
			log.Error("profile update failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا", response.CodeInternal))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "پرۆفایل هاتە نویکرن",
		"user":    updated.Public(),
		"token":   token,
	}))
}
