package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/cloud-next/onboarding/internal/api/handlers"
	mw "github.com/cloud-next/onboarding/internal/api/middleware"
	"github.com/cloud-next/onboarding/internal/metrics"
)

type Dependencies struct {
	ApplicationsHandler *handlers.ApplicationsHandler
	HealthHandler       *handlers.HealthHandler

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.CORSOrigins))
	r.Use(metrics.Instrument)

	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/cloud-next", func(api chi.Router) {
		if dep.RateLimitRPS > 0 {
			api.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
		}
		api.Use(chimid.Compress(5))

		ah := dep.ApplicationsHandler
		api.Route("/apps", func(ar chi.Router) {
			ar.Get("/", ah.List)
			ar.Put("/", ah.Add)
			ar.Get("/stats", ah.Stats)
			ar.Get("/search", ah.Search)
			ar.Get("/options", ah.Options)
			ar.Post("/lookup", ah.Lookup)

			ar.Route("/initialize", func(ir chi.Router) {
				ir.Post("/", ah.Initialize)
				ir.Get("/sample", ah.Sample)
				ir.Post("/draft", ah.Draft)
				ir.Post("/validate", ah.ValidateInitialization)
			})

			ar.Route("/prepare/{stage}", func(pr chi.Router) {
				pr.Get("/candidates", ah.PrepareCandidates)
				pr.Post("/", ah.Prepare)
			})

			ar.Route("/{appId}", func(one chi.Router) {
				one.Get("/", ah.Get)
				one.Patch("/metadata", ah.PatchMetadata)
				one.Get("/events", ah.Events)
			})
		})

		api.Post("/selection/summary", ah.SelectionSummary)
	})

	return r
}
