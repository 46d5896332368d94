package app

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	adminstats "github.com/wergeran/wergeran/internal/http/handlers/admin/stats"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/keygenerate"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/keylist"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/planupdate"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/userget"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/userlist"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/userremove"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/userstatus"
	"github.com/wergeran/wergeran/internal/http/handlers/admin/userupdate"
	"github.com/wergeran/wergeran/internal/http/handlers/auth/login"
	"github.com/wergeran/wergeran/internal/http/handlers/auth/register"
	"github.com/wergeran/wergeran/internal/http/handlers/health"
	historyclear "github.com/wergeran/wergeran/internal/http/handlers/history/clear"
	historylist "github.com/wergeran/wergeran/internal/http/handlers/history/list"
	historyremove "github.com/wergeran/wergeran/internal/http/handlers/history/remove"
	"github.com/wergeran/wergeran/internal/http/handlers/plans"
	profilechangepassword "github.com/wergeran/wergeran/internal/http/handlers/profile/changepassword"
	profileget "github.com/wergeran/wergeran/internal/http/handlers/profile/get"
	profileremove "github.com/wergeran/wergeran/internal/http/handlers/profile/remove"
	profileupdate "github.com/wergeran/wergeran/internal/http/handlers/profile/update"
	subactivate "github.com/wergeran/wergeran/internal/http/handlers/subscription/activate"
	substatus "github.com/wergeran/wergeran/internal/http/handlers/subscription/status"
	translatehandler "github.com/wergeran/wergeran/internal/http/handlers/translate"
	"github.com/wergeran/wergeran/internal/http/handlers/translateword"
	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/lib/jwt"
	adminservice "github.com/wergeran/wergeran/internal/services/admin"
	authservice "github.com/wergeran/wergeran/internal/services/auth"
	"github.com/wergeran/wergeran/internal/services/quota"
	subservice "github.com/wergeran/wergeran/internal/services/subscription"
	translateservice "github.com/wergeran/wergeran/internal/services/translate"
	"github.com/wergeran/wergeran/internal/storage"
)

// Services bundles everything the routes need.
type Services struct {
	Auth      *authservice.Service
	Admin     *adminservice.Service
	Subs      *subservice.Service
	Ledger    *quota.Ledger
	Translate *translateservice.Service
	Store     storage.Store
	Maker     jwt.Maker
	Dict      translateword.Dictionary
}

// RegisterRoutes mounts the full API surface on the router.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(50, 100)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints.
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/plans", plans.New(logger, s.Subs).ServeHTTP)
		r.Post("/translate-word", translateword.New(logger, s.Translate, s.Dict).ServeHTTP)

		// Authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(logger, s.Maker, s.Store))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Get("/profile", profileget.New(logger).ServeHTTP)
			r.Put("/profile/update", profileupdate.New(logger, s.Auth).ServeHTTP)
			r.Put("/profile/change-password", profilechangepassword.New(logger, s.Auth).ServeHTTP)
			r.Delete("/profile", profileremove.New(logger, s.Auth).ServeHTTP)

			r.Get("/subscription/status", substatus.New(logger, s.Subs).ServeHTTP)
			r.Post("/subscription/activate", subactivate.New(logger, s.Subs).ServeHTTP)

			r.Get("/translations/history", historylist.New(logger, s.Store).ServeHTTP)
			r.Delete("/translations/{id}", historyremove.New(logger, s.Store).ServeHTTP)
			r.Delete("/translations", historyclear.New(logger, s.Store).ServeHTTP)

			// The quota check runs before the body is read; the charge
			// itself happens inside the translate service.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.QuotaMiddleware(logger, s.Ledger, s.Subs))
				r.Post("/translate", translatehandler.New(logger, s.Translate, s.Subs).ServeHTTP)
			})

			// Admin panel.
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))

				r.Get("/users", userlist.New(logger, s.Admin).ServeHTTP)
				r.Get("/users/{userId}", userget.New(logger, s.Admin).ServeHTTP)
				r.Put("/users/{userId}", userupdate.New(logger, s.Admin).ServeHTTP)
				r.Delete("/users/{userId}", userremove.New(logger, s.Admin).ServeHTTP)
				r.Put("/users/{userId}/status", userstatus.New(logger, s.Admin).ServeHTTP)

				r.Get("/keys", keylist.New(logger, s.Subs).ServeHTTP)
				r.Post("/keys/generate", keygenerate.New(logger, s.Subs).ServeHTTP)
				r.Put("/plans/{planId}", planupdate.New(logger, s.Subs).ServeHTTP)
				r.Get("/stats", adminstats.New(logger, s.Admin).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New().ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
