// Package router mounts every HTTP handler under /api/v1.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gigfinder/backend/internal/auth"
	"github.com/gigfinder/backend/internal/dashboard"
	"github.com/gigfinder/backend/internal/handlers"
	"github.com/gigfinder/backend/internal/jobs"
	"github.com/gigfinder/backend/internal/ledger"
	"github.com/gigfinder/backend/internal/middleware"
	"github.com/gigfinder/backend/internal/models"
	"github.com/gigfinder/backend/internal/telemetry"
)

// Deps are the handlers and guards the router wires together.
type Deps struct {
	Auth        *auth.Handler
	Tokens      middleware.TokenValidator
	Jobs        *jobs.Handler
	Engagements *handlers.EngagementHandler
	Wallet      *ledger.Handler
	Dashboard   *dashboard.Handler
	// SubmitLimiter throttles application and negotiation submissions per finder.
	SubmitLimiter middleware.Limiter
	OnRateLimited func()
	Logger        *slog.Logger
}

// New returns the API handler. Finder routes require role finder, poster routes role
// poster; wallet and profile routes accept either.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(d.Tokens))

			r.Get("/me", d.Dashboard.GetMe)
			r.Get("/wallet", d.Wallet.GetWallet)
			r.Post("/wallet/withdrawals", d.Wallet.Withdraw)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleFinder))
				r.Get("/jobs", d.Engagements.Browse)
				r.Get("/engagements", d.Engagements.List)
				r.Get("/dashboard", d.Dashboard.GetFinderDashboard)

				limited := r.With(middleware.SubmitLimit(d.SubmitLimiter, d.OnRateLimited, d.Logger))
				limited.Post("/jobs/{id}/applications", d.Engagements.Apply)
				limited.Post("/jobs/{id}/negotiations", d.Engagements.Negotiate)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RolePoster))
				r.Post("/jobs", d.Jobs.CreatePosting)
				r.Get("/jobs/mine", d.Jobs.ListMine)
				r.Get("/jobs/{id}/engagements", d.Jobs.ListEngagements)
				r.Post("/jobs/{id}/complete", d.Jobs.CompletePosting)
				r.Post("/jobs/{id}/cancel", d.Jobs.CancelPosting)
				r.Post("/applications/{id}/decision", d.Jobs.DecideApplication)
				r.Post("/negotiations/{id}/decision", d.Jobs.DecideNegotiation)
			})
		})
	})
	return r
}
