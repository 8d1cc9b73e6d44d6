// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"net/http"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Version is reported by the health endpoint. Overridden at link time.
var Version = "dev"

// HealthStatus is the data of GET /health.
type HealthStatus struct {
	Status      string          `json:"status"`
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Uptime      float64         `json:"uptime"`
	Providers   []models.Source `json:"providers"`
	WSClients   int             `json:"wsClients"`
}

func (h *Handler) providers() []models.Source {
	if h.search == nil {
		return []models.Source{}
	}
	p := h.search.Providers()
	if p == nil {
		return []models.Source{}
	}
	return p
}

// Health handles GET /api/v1/health. It is always 200 while the process is
// serving; status is degraded when no provider is enabled.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	providers := h.providers()
	status := "healthy"
	if len(providers) == 0 {
		status = "degraded"
	}
	clients := 0
	if h.hub != nil {
		clients = h.hub.GetClientCount()
	}
	respondJSON(w, r, http.StatusOK, HealthStatus{
		Status:      status,
		Version:     Version,
		Environment: h.cfg.Server.Environment,
		Uptime:      time.Since(h.startedAt).Seconds(),
		Providers:   providers,
		WSClients:   clients,
	})
}

// HealthReady handles GET /api/v1/health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	providers := h.providers()
	ready := len(providers) > 0

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}
	writeEnvelope(w, r, statusCode, &Response{
		Success: ready,
		Data: map[string]interface{}{
			"status":         status,
			"providers":      providers,
			"ready_to_serve": ready,
			"uptime":         time.Since(h.startedAt).Seconds(),
		},
		Meta: newMeta(r),
	})
}
