// Package planupdate edits a plan's daily limit and price. The monthly
// limit is derived from the daily one.
package planupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/subscription"
	"github.com/wergeran/wergeran/internal/storage"
)

// Request carries the new limit and price.
type Request struct {
	DailyLimit int `json:"daily_limit"`
	Price      int `json:"price"`
}

// Service applies plan edits.
type Service interface {
	UpdatePlan(ctx context.Context, planID string, dailyLimit, price int) (*models.Plan, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.planupdate"

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

	plan, err := h.service.UpdatePlan(r.Context(), chi.URLParam(r, "planId"), req.DailyLimit, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("پاکێج نەهاتە دیتن", response.CodeNotFound))
		case errors.Is(err, subscription.ErrInvalidLimit):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("سنوورێ رۆژانە دڤێت ژ 1 مەزنتر بیت", response.CodeValidation))
		case errors.Is(err, subscription.ErrInvalidPrice):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("بها ناشێت ژ 0 کێمتر بیت", response.CodeValidation))
		default:
			log.Error("plan update failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا د نویکرنا پاکێجێ دا", response.CodeInternal))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "پاکێج هاتە نویکرن",
		"plan":    plan,
	}))
}
