package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tokenlens/internal/api/http/mw"
	"tokenlens/internal/metrics"
)

func BuildRouter(
	api *API,
	logMW *mw.LoggingMiddleware,
	gzipMW *mw.GzipMiddleware,
	rateLimitMW *mw.RateLimitMiddleware,
	corsMW *mw.CORSMiddleware,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	if logMW != nil {
		r.Use(logMW.Handler)
	}
	if gzipMW != nil {
		r.Use(gzipMW.Handler)
	}
	if corsMW != nil {
		r.Use(corsMW.Handler())
	}

	// tech endpoints without rate limit
	r.Get("/healthz", api.Healthz)
	r.Get("/readiness", api.Readiness)
	r.Mount("/metrics", metrics.Handler())

	r.Route("/api", func(apiR chi.Router) {
		if rateLimitMW != nil {
			apiR.Use(rateLimitMW.Handler)
		}

		apiR.Get("/holders", api.Holders)
		apiR.Get("/transactions", api.Transactions)
		apiR.Get("/campaign", api.Campaign)
		apiR.Get("/behavior", api.Behavior)
		apiR.Get("/holder-metrics", api.HolderMetrics)
		apiR.Get("/market", api.Market)
		apiR.Get("/whales", api.Whales)
	})

	return r
}
