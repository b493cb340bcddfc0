package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/planforge/internal/auth"
	"github.com/dmitrymomot/planforge/internal/billing"
	"github.com/dmitrymomot/planforge/internal/plan"
	"github.com/dmitrymomot/planforge/internal/session"
)

// Deps are the collaborators the router wires handlers to.
type Deps struct {
	Auth    *auth.Service
	Billing *billing.Service
	Plans   *plan.Service
	Gate    *Gate
	Cookies *session.CookieTransport
	Logger  *slog.Logger
}

type router struct {
	auth    *auth.Service
	billing *billing.Service
	plans   *plan.Service
	cookies *session.CookieTransport
}

// NewRouter assembles the full HTTP surface: health, auth, billing, and the
// subscription-gated plan routes.
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	rt := &router{
		auth:    deps.Auth,
		billing: deps.Billing,
		plans:   deps.Plans,
		cookies: deps.Cookies,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(corsAllowAll)

	r.Get("/health", rt.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", rt.handleLogin)
			r.Get("/verify", rt.handleVerify)
			r.Post("/logout", rt.handleLogout)
			r.Get("/me", rt.handleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Gate.Middleware(deps.Cookies))
			r.Post("/generate", rt.handleGenerate)
			r.Get("/plans", rt.handleListPlans)
			r.Get("/plans/{id}", rt.handleGetPlan)
			r.Put("/plans/{id}", rt.handleUpdatePlan)
		})

		r.Route("/stripe", func(r chi.Router) {
			r.Post("/checkout", rt.handleCheckout)
			r.Post("/portal", rt.handlePortal)
			r.Post("/webhook", rt.handleWebhook)
		})
	})

	return r
}
