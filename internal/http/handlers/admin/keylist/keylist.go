// Package keylist returns all activation keys with their plan names.
package keylist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
)

// Service lists activation keys and plans.
type Service interface {
	ListKeys(ctx context.Context) ([]models.ActivationKey, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// KeyView is a key joined with its plan's display name.
type KeyView struct {
	models.ActivationKey
	PlanName string `json:"plan_name,omitempty"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.keylist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	keys, err := h.service.ListKeys(r.Context())
	if err != nil {
		log.Error("failed to list keys", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د وەرگرتنا کلیلان دا", response.CodeInternal))
		return
	}

	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د وەرگرتنا کلیلان دا", response.CodeInternal))
		return
	}
	planNames := make(map[string]string, len(plans))
	for _, plan := range plans {
		planNames[plan.ID] = plan.Name
	}

	views := make([]KeyView, 0, len(keys))
	for _, key := range keys {
		views = append(views, KeyView{ActivationKey: key, PlanName: planNames[key.PlanID]})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"keys": views,
	}))
}
