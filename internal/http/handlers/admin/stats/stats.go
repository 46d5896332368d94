// Package stats returns the aggregate user statistics for the admin panel.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/services/admin"
)

// Service aggregates user statistics.
type Service interface {
	Stats(ctx context.Context) (*admin.Stats, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to aggregate stats", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د وەرگرتنا ئامارێن سیستەمی دا", response.CodeInternal))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"stats": stats,
	}))
}
