package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/planviva/planviva/internal/auth"
	"github.com/planviva/planviva/internal/observability"
	"github.com/planviva/planviva/internal/plan"
	"github.com/planviva/planviva/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	AuthHandler *auth.Handler
	PlanHandler *plan.Handler
	JobsHandler *jobs.Handler
	Metrics     *observability.Metrics
}

// NewRouter constructs the chi.Router with PlanViva defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(params.AuthHandler.RequireToken)
		r.Route("/plans", params.PlanHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Post("/jobs/warmup", params.JobsHandler.TriggerWarmup)
		}
	})

	return r
}
