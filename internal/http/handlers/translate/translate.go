// Package translate implements the metered translation endpoint. Quota is
// charged once per request when at least one dialect succeeds; the failure
// responses carry the subscription snapshot so the client can render the
// remaining quota.
package translate

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
	"github.com/wergeran/wergeran/internal/services/quota"
	translatesvc "github.com/wergeran/wergeran/internal/services/translate"
)

// Request carries the text to translate and the requested dialect.
type Request struct {
	Text    string `json:"text" validate:"required"`
	Dialect string `json:"dialect" validate:"omitempty,oneof=behdini sorani both"`
}

// Service runs one metered translation.
type Service interface {
	Translate(ctx context.Context, user *models.User, text, dialect string) (*translatesvc.Result, error)
}

// StatusService builds the snapshot attached to failure responses.
type StatusService interface {
	Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	status   StatusService
	validate *validator.Validate
}

func New(log *slog.Logger, service Service, status StatusService) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		status:   status,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.translate"

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
		render.JSON(w, r, response.Error("هیچ دەق نەهاتیە دان بۆ وەرگێڕانێ", response.CodeValidation))
		return
	}
	if req.Dialect == "" {
		req.Dialect = models.DialectBoth
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Translate(r.Context(), user, req.Text, req.Dialect)
	if err != nil {
		snapshot, statusErr := h.status.Status(r.Context(), user)
		if statusErr != nil {
			log.Error("failed to build subscription status", sl.Err(statusErr))
		}

		if errors.Is(err, quota.ErrQuotaExceeded) {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.ErrorWithData(
				"تۆ گەهشتیە سنوورێ وەرگێڕانێ یێ رۆژانە",
				response.CodeQuotaExceeded,
				map[string]any{"subscription_status": snapshot}))
			return
		}

		log.Error("translation failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ErrorWithData(
			"وەرگێڕان سەرنەکەفت",
			response.CodeUpstream,
			map[string]any{"subscription_status": snapshot}))
		return
	}

	log.Info("translation completed",
		slog.String("user_id", user.ID),
		slog.String("dialect", req.Dialect),
		slog.String("translation_id", result.TranslationID))

	render.JSON(w, r, response.OKWithData(map[string]any{
		"translations":        result.Translations,
		"subscription_status": result.Status,
		"translation_id":      result.TranslationID,
	}))
}
