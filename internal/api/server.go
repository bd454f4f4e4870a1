// SPDX-License-Identifier: MIT

// Package api serves the sales analytics HTTP API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/supermart/salesd/internal/api/middleware"
	"github.com/supermart/salesd/internal/cache"
	"github.com/supermart/salesd/internal/config"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/health"
	"github.com/supermart/salesd/internal/ingest"
	"github.com/supermart/salesd/internal/store"
)

// Server holds the dependencies of the HTTP API.
type Server struct {
	cfg     config.AppConfig
	holder  *dataset.Holder
	runner  *ingest.Runner
	cache   cache.Cache
	health  *health.Manager
	store   *store.Store
	version string
}

// New wires the API server. All dependencies are required except health,
// which may be nil when probes are not exposed.
func New(cfg config.AppConfig, holder *dataset.Holder, runner *ingest.Runner, c cache.Cache, hm *health.Manager, st *store.Store, version string) *Server {
	return &Server{
		cfg:     cfg,
		holder:  holder,
		runner:  runner,
		cache:   c,
		health:  hm,
		store:   st,
		version: version,
	}
}

// Router builds the chi router with the canonical middleware stack and all
// API routes.
func (s *Server) Router() *chi.Mux {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         s.cfg.MetricsEnabled,
		EnableLogging:         true,
		RateLimitRPM:          s.cfg.RateLimitRPM,
	})

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/trends/monthly", s.handleMonthlyTrend)
		r.Get("/regions", s.handleRegions)
		r.Get("/categories", s.handleCategories)
		r.Get("/categories/top", s.handleTopSubCategories)
		r.Get("/categories/tree", s.handleCategoryTree)
		r.Get("/discounts", s.handleDiscounts)
		r.Get("/records", s.handleRecords)
		r.Get("/status", s.handleStatus)
		r.Get("/ingests", s.handleIngests)

		r.Group(func(r chi.Router) {
			if s.cfg.RefreshRPM > 0 {
				r.Use(middleware.RefreshRateLimit(s.cfg.RefreshRPM))
			}
			r.Post("/refresh", s.handleRefresh)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "unknown endpoint")
	})

	return r
}
