// Package http arma el router, las métricas y el servidor.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/machwork/identity/internal/http/handlers"
	"github.com/machwork/identity/internal/http/middlewares"
	"github.com/machwork/identity/internal/jwt"
	"github.com/machwork/identity/internal/rate"
	"github.com/machwork/identity/internal/service/auth"
)

// RouterConfig agrupa las dependencias del router.
type RouterConfig struct {
	Service  *auth.Service
	Verifier *jwt.Verifier
	DB       handlers.Pinger

	Limiter     rate.Limiter
	RateMax     int64
	RateAuthMax int64

	Metrics prometheus.Registerer
}

// NewRouter arma el árbol de rutas completo.
func NewRouter(cfg RouterConfig) http.Handler {
	authH := handlers.NewAuthHandler(cfg.Service)
	membersH := handlers.NewMembersHandler(cfg.Service)
	healthH := handlers.NewHealthHandler(cfg.DB)

	r := chi.NewRouter()

	// dentro de chi, así el patrón de ruta está disponible tras servir
	r.Use(withMetrics(func(req *http.Request) string {
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				return p
			}
		}
		return "unmatched"
	}))

	metricsHandler, err := RegisterMetrics(cfg.Metrics)
	if err == nil && metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/healthz", healthH.Healthz)
	r.Get("/readyz", healthH.Readyz)

	requireAuth := toChi(middlewares.WithAuth(cfg.Verifier))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/verify-email", authH.VerifyEmail)
			r.Post("/login", authH.Login)
			r.Post("/refresh", authH.Refresh)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Post("/reset-password", authH.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authH.Me)
				r.Post("/logout", authH.Logout)
				r.Post("/mfa/enable", authH.MFAEnable)
				r.Post("/mfa/verify", authH.MFAVerify)
				r.Post("/mfa/disable", authH.MFADisable)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/companies/{companyID}/members", membersH.List)
		})
	})

	// la cadena externa: request id, logging, rate limit
	chain := middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithRateLimit(middlewares.RateLimitConfig{
			Limiter:    cfg.Limiter,
			Max:        cfg.RateMax,
			AuthPrefix: "/api/v1/auth",
			AuthMax:    cfg.RateAuthMax,
			Whitelist:  []string{"/healthz", "/readyz", "/metrics"},
		}),
	)
	return chain
}

func toChi(mw middlewares.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return mw(next) }
}
