// Package activate implements activation key redemption. A user with a
// still-active paid plan cannot stack another one on top.
package activate

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
	"github.com/wergeran/wergeran/internal/services/subscription"
)

// Request carries the activation key.
type Request struct {
	ActivationKey string `json:"activation_key" validate:"required,uuid"`
}

// Service is the key redemption side of the subscription service.
type Service interface {
	Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error)
	Redeem(ctx context.Context, user *models.User, key string) (*models.SubscriptionStatus, error)
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
	const op = "handlers.subscription.activate"

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
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("کلیلا چالاککرنێ نەدروستە یان هاتیە بکارئینان", response.CodeKeyInvalid))
		return
	}

	current, err := h.service.Status(r.Context(), user)
	if err != nil {
		log.Error("failed to build subscription status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("هەڵەیەک رویدا د چالاککرنا پاکێجێ دا", response.CodeInternal))
		return
	}
	if current.Status == models.StatusActive && current.PlanID != models.PlanFree {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("تە پاکێجەکا چالاک هەیە", response.CodeConflict))
		return
	}

	snapshot, err := h.service.Redeem(r.Context(), user, req.ActivationKey)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrKeyInvalid):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("کلیلا چالاککرنێ نەدروستە یان هاتیە بکارئینان", response.CodeKeyInvalid))
		case errors.Is(err, subscription.ErrPlanNotRedeemable):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("پاکێجا نەدروستە", response.CodeValidation))
		default:
			log.Error("activation failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("هەڵەیەک رویدا د چالاککرنا پاکێجێ دا", response.CodeInternal))
		}
		return
	}

	log.Info("subscription activated",
		slog.String("user_id", user.ID),
		slog.String("plan_id", snapshot.PlanID))

	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":             "پاکێج هاتە چالاککرن",
		"user":                user.Public(),
		"subscription_status": snapshot,
	}))
}
