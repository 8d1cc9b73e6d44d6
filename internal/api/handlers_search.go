// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/bestfriendai/date-ai-discover/internal/models"
	"github.com/bestfriendai/date-ai-discover/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// SearchEvents handles GET /api/v1/events/search.
func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	req, verr := parseSearchQuery(r.URL.Query())
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	h.runSearch(w, r, req)
}

// SearchEventsPost handles POST /api/v1/events/search.
func (h *Handler) SearchEventsPost(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if verr := decodeBody(w, r, &req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	h.runSearch(w, r, req)
}

func (h *Handler) runSearch(w http.ResponseWriter, r *http.Request, req models.SearchRequest) {
	if h.search == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Search is not available", nil)
		return
	}
	if limit := h.cfg.API.MaxPageSize; limit > 0 && req.Limit > limit {
		respondValidation(w, r, validation.NewRequestValidationError("limit", "max", fmt.Sprintf("limit must be less than or equal to %d", limit)))
		return
	}
	resp, err := h.search.Search(r.Context(), req)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) respondSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondValidation(w, r, verr)
		return
	}
	respondError(w, r, http.StatusInternalServerError, CodeInternal, "Search failed", err)
}

// decodeBody reads one JSON value from the request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) *validation.RequestValidationError {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.NewRequestValidationError("body", "required", "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return validation.NewRequestValidationError("body", "max", "request body is too large")
		}
		return validation.NewRequestValidationError("body", "json", "request body is not valid JSON: "+err.Error())
	}
	return nil
}
