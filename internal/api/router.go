// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/metrics"
	"github.com/jihop-dev/gilro/internal/middleware"
)

// Router builds the HTTP handler tree.
type Router struct {
	handler *Handler
	cfg     config.APIConfig
}

// NewRouter creates a router around the given handler.
func NewRouter(handler *Handler, cfg config.APIConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all routes and the global middleware stack.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Permissive limit for health probes; monitoring polls frequently.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		reqs, window := router.rateLimit()
		r.Use(httprate.Limit(reqs, window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimitExceeded),
		))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/recommend", router.handler.Recommend)
		r.Post("/routes/multi", router.handler.MultiRoutes)
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// rateLimitExceeded counts throttled requests before answering 429.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
}

// rateLimit returns the configured request limit and window, with
// sane fallbacks for zero values.
func (router *Router) rateLimit() (int, time.Duration) {
	reqs := router.cfg.RateLimitReqs
	if reqs <= 0 {
		reqs = 100
	}
	window := router.cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return reqs, window
}
