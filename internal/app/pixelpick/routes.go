// Package pixelpick предоставляет маршруты для основного приложения.
package pixelpick

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/auth/login"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/auth/logout"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/auth/register"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/auth/resend"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/auth/verify"
	catalogget "github.com/pixelpick/pixelpick-backend/internal/http/handlers/catalog/get"
	cataloglist "github.com/pixelpick/pixelpick-backend/internal/http/handlers/catalog/list"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/health"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/payment/paymentcreate"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/payment/paymentstatus"
	"github.com/pixelpick/pixelpick-backend/internal/http/handlers/payment/paymentwebhook"
	preferencesread "github.com/pixelpick/pixelpick-backend/internal/http/handlers/preferences/read"
	preferencesupdate "github.com/pixelpick/pixelpick-backend/internal/http/handlers/preferences/update"
	profileread "github.com/pixelpick/pixelpick-backend/internal/http/handlers/profile/read"
	profileremove "github.com/pixelpick/pixelpick-backend/internal/http/handlers/profile/remove"
	profileupdate "github.com/pixelpick/pixelpick-backend/internal/http/handlers/profile/update"
	progresscomplete "github.com/pixelpick/pixelpick-backend/internal/http/handlers/progress/complete"
	progressupsert "github.com/pixelpick/pixelpick-backend/internal/http/handlers/progress/upsert"
	recommendlist "github.com/pixelpick/pixelpick-backend/internal/http/handlers/recommend/list"
	subscriptioncancel "github.com/pixelpick/pixelpick-backend/internal/http/handlers/subscription/cancel"
	subscriptionfree "github.com/pixelpick/pixelpick-backend/internal/http/handlers/subscription/freeplan"
	subscriptionstatus "github.com/pixelpick/pixelpick-backend/internal/http/handlers/subscription/status"
	"github.com/pixelpick/pixelpick-backend/internal/http/middlewarectx"
	"github.com/pixelpick/pixelpick-backend/internal/lib/jwt"
	authservice "github.com/pixelpick/pixelpick-backend/internal/services/auth"
	catalogservice "github.com/pixelpick/pixelpick-backend/internal/services/catalog"
	paymentservice "github.com/pixelpick/pixelpick-backend/internal/services/payment"
	profileservice "github.com/pixelpick/pixelpick-backend/internal/services/profile"
	progressservice "github.com/pixelpick/pixelpick-backend/internal/services/progress"
	recommendservice "github.com/pixelpick/pixelpick-backend/internal/services/recommend"
)

// Services объединяет бизнес-сервисы, используемые маршрутами.
type Services struct {
	Auth      *authservice.AuthService
	Profile   *profileservice.ProfileService
	Catalog   *catalogservice.CatalogService
	Progress  *progressservice.ProgressService
	Recommend *recommendservice.RecommendService
	Payment   *paymentservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services, jwtMaker jwt.Maker, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/verify-email", verify.New(logger, s.Auth).ServeHTTP)
		r.Post("/verify-email", verify.New(logger, s.Auth).ServeHTTP)
		r.Post("/resend-verification", resend.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger).ServeHTTP)
			r.Get("/profile", profileread.New(logger, s.Profile).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, s.Profile).ServeHTTP)
			r.Delete("/profile", profileremove.New(logger, s.Profile).ServeHTTP)
			r.Get("/games", cataloglist.New(logger, s.Catalog).ServeHTTP)
			r.Get("/games/{gameID}", catalogget.New(logger, s.Catalog).ServeHTTP)
			r.Get("/recommendations", recommendlist.New(logger, s.Recommend).ServeHTTP)
			r.Post("/progress", progressupsert.New(logger, s.Progress).ServeHTTP)
			r.Post("/progress/{gameID}/complete", progresscomplete.New(logger, s.Progress).ServeHTTP)
			r.Get("/preferences", preferencesread.New(logger, s.Progress).ServeHTTP)
			r.Put("/preferences", preferencesupdate.New(logger, s.Progress).ServeHTTP)
			r.Post("/payments/intent", paymentcreate.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments/{intentID}/status", paymentstatus.New(logger, s.Payment).ServeHTTP)
			r.Get("/subscription", subscriptionstatus.New(logger, s.Payment).ServeHTTP)
			r.Post("/subscription/free", subscriptionfree.New(logger, s.Payment).ServeHTTP)
			r.Post("/subscription/cancel", subscriptioncancel.New(logger, s.Payment).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.Payment, webhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", health.New(logger).ServeHTTP)
}
