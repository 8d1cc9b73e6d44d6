// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	geojson "github.com/paulmach/go.geojson"

	"github.com/bestfriendai/date-ai-discover/internal/cluster"
	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/models"
	"github.com/bestfriendai/date-ai-discover/internal/validation"
)

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const (
	defaultLeavesLimit = 10
	maxLeavesLimit     = 500
)

// ClustersResponse is the data of GET /map/clusters.
type ClustersResponse struct {
	Generation        uint64                               `json:"generation"`
	Zoom              float64                              `json:"zoom"`
	BBox              cluster.BBox                         `json:"bbox"`
	TotalEvents       int                                  `json:"totalEvents"`
	IndexedEvents     int                                  `json:"indexedEvents"`
	FromCache         bool                                 `json:"fromCache"`
	SourceStats       map[models.Source]models.SourceStats `json:"sourceStats"`
	FeatureCollection *geojson.FeatureCollection           `json:"featureCollection"`
}

// LeavesResponse is the data of GET /map/clusters/{id}/leaves and /children.
type LeavesResponse struct {
	Generation uint64               `json:"generation"`
	ClusterID  int                  `json:"clusterId"`
	Nodes      []models.ClusterNode `json:"nodes"`
}

// ClickRequest is the body of POST /map/click.
type ClickRequest struct {
	Session string `json:"session"`
	cluster.Click
}

func sessionParam(raw string) (string, *validation.RequestValidationError) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", validation.NewRequestValidationError("session", "required", "session is required")
	}
	if !sessionPattern.MatchString(s) {
		return "", validation.NewRequestValidationError("session", "session", "session must be 1-64 letters, digits, '-' or '_'")
	}
	return s, nil
}

// MapClusters handles GET /api/v1/map/clusters. It aggregates events with
// the search parameters, rebuilds the session's index and renders the
// clusters visible in bbox at zoom as GeoJSON.
func (h *Handler) MapClusters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session, verr := sessionParam(q.Get("session"))
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}

	bbox := cluster.WorldBBox
	if raw := strings.TrimSpace(q.Get("bbox")); raw != "" {
		b, err := cluster.ParseBBox(raw)
		if err != nil {
			respondValidation(w, r, validation.NewRequestValidationError("bbox", "bbox", err.Error()))
			return
		}
		bbox = b
	}

	zoomPtr, verr := floatParam(q, "zoom", "zoom")
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	if zoomPtr == nil {
		respondValidation(w, r, validation.NewRequestValidationError("zoom", "required", "zoom is required"))
		return
	}
	zoom := *zoomPtr

	req, verr := parseSearchQuery(q)
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	if h.search == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Search is not available", nil)
		return
	}

	result, fromCache, err := h.search.Collect(r.Context(), req)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}

	sess, _ := h.sessions.GetOrCreate(session, h.newMapSession)
	idx := sess.indexer.Rebuild(placedEvents(result.Events, h.cfg.API.MaxMapEvents))

	logging.Ctx(r.Context()).Debug().
		Str("session", session).
		Uint64("generation", idx.Generation()).
		Int("events", len(result.Events)).
		Int("indexed", idx.Len()).
		Float64("zoom", zoom).
		Msg("cluster index rebuilt")

	respondJSON(w, r, http.StatusOK, ClustersResponse{
		Generation:        idx.Generation(),
		Zoom:              zoom,
		BBox:              bbox,
		TotalEvents:       len(result.Events),
		IndexedEvents:     idx.Len(),
		FromCache:         fromCache,
		SourceStats:       result.SourceStats,
		FeatureCollection: idx.FeatureCollection(bbox, zoom),
	})
}

// MapClusterLeaves handles GET /api/v1/map/clusters/{id}/leaves.
func (h *Handler) MapClusterLeaves(w http.ResponseWriter, r *http.Request) {
	idx, clusterID, ok := h.clusterLookup(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, verr := intParam(q, "limit")
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	offset, verr := intParam(q, "offset")
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	if limit <= 0 {
		limit = defaultLeavesLimit
	}
	if limit > maxLeavesLimit {
		limit = maxLeavesLimit
	}
	if offset < 0 {
		offset = 0
	}

	leaves, err := idx.GetLeaves(clusterID, limit, offset)
	if err != nil {
		h.respondClusterError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, LeavesResponse{Generation: idx.Generation(), ClusterID: clusterID, Nodes: leaves})
}

// MapClusterChildren handles GET /api/v1/map/clusters/{id}/children.
func (h *Handler) MapClusterChildren(w http.ResponseWriter, r *http.Request) {
	idx, clusterID, ok := h.clusterLookup(w, r)
	if !ok {
		return
	}
	children, err := idx.GetChildren(clusterID)
	if err != nil {
		h.respondClusterError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, LeavesResponse{Generation: idx.Generation(), ClusterID: clusterID, Nodes: children})
}

// clusterLookup resolves the session, optional generation and {id} shared by
// the cluster drill-down routes. It writes the error response itself.
func (h *Handler) clusterLookup(w http.ResponseWriter, r *http.Request) (*cluster.Index, int, bool) {
	q := r.URL.Query()
	session, verr := sessionParam(q.Get("session"))
	if verr != nil {
		respondValidation(w, r, verr)
		return nil, 0, false
	}
	clusterID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || clusterID < 0 {
		respondValidation(w, r, validation.NewRequestValidationError("id", "integer", "cluster id must be a non-negative integer"))
		return nil, 0, false
	}

	idx := h.currentIndex(session)
	if idx == nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Unknown map session", nil)
		return nil, 0, false
	}
	if raw := strings.TrimSpace(q.Get("generation")); raw != "" {
		gen, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondValidation(w, r, validation.NewRequestValidationError("generation", "integer", "generation must be a non-negative integer"))
			return nil, 0, false
		}
		if gen != idx.Generation() {
			respondError(w, r, http.StatusConflict, CodeStaleIndex, "Cluster index has been rebuilt; refresh the map", nil)
			return nil, 0, false
		}
	}
	return idx, clusterID, true
}

func (h *Handler) currentIndex(session string) *cluster.Index {
	sess, ok := h.sessions.Get(session)
	if !ok {
		return nil
	}
	return sess.indexer.Current()
}

// MapClick handles POST /api/v1/map/click.
func (h *Handler) MapClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if verr := decodeBody(w, r, &req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	session, verr := sessionParam(req.Session)
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}
	sess, ok := h.sessions.Get(session)
	if !ok {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Unknown map session", nil)
		return
	}

	action, err := sess.resolver.Resolve(req.Click)
	if err != nil {
		h.respondClusterError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, action)
}

func (h *Handler) respondClusterError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cluster.ErrStaleIndex):
		respondError(w, r, http.StatusConflict, CodeStaleIndex, "Cluster index has been rebuilt; refresh the map", err)
	case errors.Is(err, cluster.ErrUnknownFeature):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Unknown map feature", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Cluster lookup failed", err)
	}
}

// placedEvents keeps events that have coordinates, at most limit of them
// when limit is positive.
func placedEvents(events []models.Event, limit int) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if limit > 0 && len(out) == limit {
			break
		}
		if e.HasCoordinates() {
			out = append(out, e)
		}
	}
	return out
}
