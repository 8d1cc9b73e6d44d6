// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bestfriendai/date-ai-discover/internal/middleware"
)

// slowRequest is the access-log threshold for warn-level entries.
const slowRequest = 2 * time.Second

// NewRouter wires every route onto a chi router.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.mw.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(slowRequest))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(h.mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.mw.RateLimit())
		r.Use(APISecurityHeaders())

		// The upgrade needs the raw connection, so it stays outside Compress.
		r.Get("/ws", h.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Get("/events/search", h.SearchEvents)
			r.Post("/events/search", h.SearchEventsPost)

			r.Get("/map/clusters", h.MapClusters)
			r.Get("/map/clusters/{id}/leaves", h.MapClusterLeaves)
			r.Get("/map/clusters/{id}/children", h.MapClusterChildren)
			r.Post("/map/click", h.MapClick)

			r.Get("/cache/stats", h.CacheStats)
			r.Delete("/cache", h.ClearCache)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}
