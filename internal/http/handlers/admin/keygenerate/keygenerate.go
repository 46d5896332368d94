// Package keygenerate mints activation keys for a plan, up to 100 per
// request.
package keygenerate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/subscription"
	"github.com/wergeran/wergeran/internal/storage"
)

// Request names the plan and how many keys to mint.
type Request struct {
	PlanID string `json:"plan_id" validate:"required"`
	Count  int    `json:"count"`
}

// Service mints activation keys.
type Service interface {
	GenerateKeys(ctx context.Context, planID string, count int) ([]models.ActivationKey, error)
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
	const op = "handlers.admin.keygenerate"

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
	if req.Count == 0 {
		req.Count = 1
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	keys, err := h.service.GenerateKeys(r.Context(), req.PlanID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, subscription.ErrPlanNotRedeemable):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("پاکێجا نەدروستە", response.CodeValidation))
		case errors.Is(err, subscription.ErrInvalidCount):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("ژمارا کلیلان دڤێت د ناڤبەرا 1 و 100 دا بیت", response.CodeValidation))
		default:
			log.Error("key generation failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا د دروستکرنا کلیلان دا", response.CodeInternal))
		}
		return
	}

	log.Info("activation keys generated",
		slog.String("plan_id", req.PlanID),
		slog.Int("count", len(keys)))

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "کلیل هاتنە دروستکرن",
		"keys":    keys,
	}))
}
