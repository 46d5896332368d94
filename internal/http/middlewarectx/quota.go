package middlewarectx

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

// StatusService builds the subscription snapshot attached to quota
// rejections. Satisfied by *subscription.Service.
type StatusService interface {
	Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error)
}

// RemainingService reports the user's remaining daily quota. Satisfied by
// *quota.Ledger.
type RemainingService interface {
	Remaining(ctx context.Context, user *models.User) (int, error)
}

// QuotaMiddleware rejects translate requests from users with no quota left,
// attaching the subscription snapshot so the client can render limits. The
// actual charge happens inside the translate service; this check only turns
// an inevitable rejection into a clean 403 before the request body is
// processed.
func QuotaMiddleware(log *slog.Logger, remaining RemainingService, status StatusService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.QuotaMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, ok := UserFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("پێتڤی ب چوونەژوورێ یە", response.CodeUnauthorized))
				return
			}

			left, err := remaining.Remaining(r.Context(), user)
			if err != nil {
				log.Error("failed to check quota", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("هەڵەیەک رویدا د پشکنینا پاکێجێ دا", response.CodeInternal))
				return
			}

			if left <= 0 {
				snapshot, err := status.Status(r.Context(), user)
				if err != nil {
					log.Error("failed to build subscription status", sl.Err(err))
				}
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.ErrorWithData(
					"تۆ گەهشتیە سنوورێ وەرگێڕانێ یێ رۆژانە",
					response.CodeQuotaExceeded,
					map[string]any{"subscription_status": snapshot}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
