// Package middlewarectx holds the HTTP middleware of the API: JWT
// authentication with account lookup, the admin gate, the quota check in
// front of the translate endpoint and a global rate limit. Authenticated
// middleware loads the account on every request, so deleted users lose
// access as soon as their row is gone and blocked users are rejected even
// with a still-valid token.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wergeran/wergeran/internal/http/response"
	"github.com/wergeran/wergeran/internal/lib/jwt"
	"github.com/wergeran/wergeran/internal/lib/sl"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/storage"
)

// Key is the type of the request context keys set by this package.
type Key string

// CurrentUser holds the *models.User loaded by JWTMiddleware.
const CurrentUser Key = "current_user"

// UserFromContext returns the authenticated user set by JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok
}

// JWTMiddleware parses the bearer token, re-reads the account and puts it
// into the request context.
func JWTMiddleware(log *slog.Logger, maker jwt.Maker, users storage.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("پێتڤی ب چوونەژوورێ یە", response.CodeUnauthorized))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("نیشانا چوونەژوورێ نەدروستە", response.CodeUnauthorized))
				return
			}

			user, err := users.UserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					render.Status(r, http.StatusNotFound)
					render.JSON(w, r, response.Error("بکارهێنەر نەهاتە دیتن", response.CodeNotFound))
					return
				}
				log.Error("failed to load user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("هەڵەیەک رویدا د پشکنینا token دا", response.CodeInternal))
				return
			}

			if user.Status == models.StatusBlocked {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("هەژمارا تە یا بلۆککریە", response.CodeBlocked))
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware rejects non-admin users. Must run after JWTMiddleware.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != models.RoleAdmin {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("تە دەستهەلات نینە", response.CodeForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
