package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/learnza/learnza-api/internal/application/auth"
	"github.com/learnza/learnza-api/internal/application/language"
	"github.com/learnza/learnza-api/internal/application/user"
	"github.com/learnza/learnza-api/internal/config"
	"github.com/learnza/learnza-api/internal/infrastructure/dynamo"
	"github.com/learnza/learnza-api/internal/infrastructure/google"
	jwtinfra "github.com/learnza/learnza-api/internal/infrastructure/jwt"
	"github.com/learnza/learnza-api/internal/infrastructure/notify"
	"github.com/learnza/learnza-api/internal/pkg/credential"
	"github.com/learnza/learnza-api/internal/transport/http/handler"
	appmiddleware "github.com/learnza/learnza-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	LanguageRepo *dynamo.LanguageRepo
	Notifier     *notify.Notifier
	JWTProvider  *jwtinfra.Provider
	Google       *google.Verifier
	Hasher       *credential.Hasher
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, cfg.TrustProxyHeaders)

	var googleVerifier auth.GoogleVerifier
	if deps.Google != nil {
		googleVerifier = deps.Google
	}
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:          deps.UserRepo,
		Hasher:         deps.Hasher,
		Tokens:         deps.JWTProvider,
		Deliverer:      deps.Notifier,
		Google:         googleVerifier,
		PasswordCost:   cfg.PasswordHashCost,
		CodeCost:       cfg.CodeHashCost,
		ResendCooldown: cfg.ResendCooldown,
		ResetCooldown:  cfg.ResetCooldown,
		AppURL:         cfg.AppURL,
	})
	userSvc := user.NewService(deps.UserRepo, deps.LanguageRepo)
	langSvc := language.NewService(deps.LanguageRepo)

	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, authSvc)
	langH := handler.NewLanguageHandler(langSvc)

	authMw := appmiddleware.Auth(deps.JWTProvider, deps.UserRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", handler.Health)
		r.With(sensitiveRL.Limit, appmiddleware.ValidateBody(handler.RegisterRules)).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit, appmiddleware.ValidateBody(handler.LoginRules)).Post("/auth/login", authH.Login)
		r.With(appmiddleware.ValidateBody(handler.GoogleAuthRules)).Post("/auth/google", authH.GoogleAuth)
		r.With(sensitiveRL.Limit, appmiddleware.ValidateBody(handler.ForgotPasswordRules)).Post("/auth/forgot-password", authH.ForgotPassword)
		r.With(appmiddleware.ValidateBody(handler.ResetPasswordRules)).Post("/auth/reset-password", authH.ResetPassword)
		r.Get("/languages", langH.List)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			// Reachable before the account is verified.
			r.With(appmiddleware.ValidateBody(handler.VerifyEmailRules)).Post("/auth/verify-email", authH.VerifyEmail)
			r.Post("/auth/resend-verification", authH.ResendVerificationCode)

			// Verified accounts only
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireVerified)

				r.Get("/users/me", userH.GetProfile)
				r.With(appmiddleware.ValidateBody(handler.UpdateProfileRules)).Put("/users/me", userH.UpdateProfile)
				r.With(appmiddleware.ValidateBody(handler.UpdatePreferencesRules)).Put("/users/me/preferences", userH.UpdatePreferences)
				r.With(appmiddleware.ValidateBody(handler.UpdateLanguageRules)).Put("/users/me/language", userH.UpdateLanguage)
				r.With(appmiddleware.ValidateBody(handler.UpdateAccessibilityRules)).Put("/users/me/accessibility", userH.UpdateAccessibility)
				r.With(appmiddleware.ValidateBody(handler.UpdateAddressRules)).Put("/users/me/wallet-address", userH.UpdateWalletAddress)
				r.With(appmiddleware.ValidateBody(handler.ChangePasswordRules)).Post("/users/me/change-password", userH.ChangePassword)

				r.With(appmiddleware.ValidateBody(handler.AddLanguageRules)).Post("/languages", langH.Add)
			})
		})
	})

	return r
}
