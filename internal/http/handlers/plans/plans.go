// Package plans implements the public plan listing endpoint, enriched with
// display feature strings.
package plans

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
)

// Service lists the available plans.
type Service interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// PlanView is a plan with the feature strings the UI renders.
type PlanView struct {
	models.Plan
	Features []string `json:"features"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func features(plan models.Plan) []string {
	fs := []string{
		fmt.Sprintf("رۆژانە %d جار وەرگێڕان", plan.DailyLimit),
		fmt.Sprintf("هەیڤانە %d جار وەرگێڕان", plan.MonthlyLimit),
	}
	if plan.ID != models.PlanFree {
		fs = append(fs, "پشتەڤانیا پێشکەفتی")
	}
	return fs
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د وەرگرتنا پاکێجان دا", response.CodeInternal))
		return
	}

	views := make([]PlanView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, PlanView{Plan: plan, Features: features(plan)})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": views,
	}))
}
