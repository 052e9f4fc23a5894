package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vitrine-erp/vitrine/internal/catalog"
	"github.com/vitrine-erp/vitrine/internal/observability"
	"github.com/vitrine-erp/vitrine/internal/procurement"
	"github.com/vitrine-erp/vitrine/internal/shared"
	"github.com/vitrine-erp/vitrine/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	CatalogHandler     *catalog.Handler
	ProcurementHandler *procurement.Handler
	JobHandler         *jobs.Handler
	APIKeys            *shared.APIKeyVerifier
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Vitrine defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		APIKeys: params.APIKeys,
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

	if params.CatalogHandler != nil {
		r.Route("/catalog", func(r chi.Router) {
			params.CatalogHandler.MountRoutes(r)
		})
	}
	if params.ProcurementHandler != nil {
		r.Route("/procurement", func(r chi.Router) {
			params.ProcurementHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			params.JobHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
