// Package userlist returns all accounts for the admin panel.
package userlist

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

// Service lists all accounts.
type Service interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د وەرگرتنا زانیاریان دا", response.CodeInternal))
		return
	}

	views := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.Public())
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"users": views,
	}))
}
