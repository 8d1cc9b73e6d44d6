// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"net/http"

	"github.com/bestfriendai/date-ai-discover/internal/logging"
)

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Cache is not configured", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, h.cache.Stats())
}

// ClearCache handles DELETE /api/v1/cache.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Cache is not configured", nil)
		return
	}
	before := h.cache.Stats().Entries
	h.cache.Clear()
	logging.Ctx(r.Context()).Info().Int("entries", before).Msg("search cache cleared")
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"cleared": before})
}
