// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"context"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/aggregator"
	"github.com/bestfriendai/date-ai-discover/internal/cache"
	"github.com/bestfriendai/date-ai-discover/internal/cluster"
	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/models"
	"github.com/bestfriendai/date-ai-discover/internal/websocket"
)

// SearchService is the aggregation pipeline as seen by handlers.
type SearchService interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	Collect(ctx context.Context, req models.SearchRequest) (aggregator.Result, bool, error)
	Providers() []models.Source
}

// CacheAdmin exposes cache statistics and flushing.
type CacheAdmin interface {
	Stats() cache.Stats
	Clear()
}

// Deps are the collaborators a Handler needs. Hub and Cache may be nil.
type Deps struct {
	Search SearchService
	Cache  CacheAdmin
	Hub    *websocket.Hub
	Config *config.Config
}

// Handler holds the HTTP handlers.
type Handler struct {
	search    SearchService
	cache     CacheAdmin
	hub       *websocket.Hub
	cfg       *config.Config
	mw        *ChiMiddleware
	sessions  *cache.LRU[*mapSession]
	startedAt time.Time
}

// mapSession is the cluster state of one client map view.
type mapSession struct {
	indexer  *cluster.Indexer
	resolver *cluster.Resolver
}

// NewHandler creates a Handler. A nil Config uses the defaults.
func NewHandler(d Deps) *Handler {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		search:    d.Search,
		cache:     d.Cache,
		hub:       d.Hub,
		cfg:       cfg,
		mw:        NewChiMiddleware(cfg.Security),
		sessions:  cache.NewLRU[*mapSession](cfg.Cluster.SessionCapacity, cfg.Cluster.SessionTTL),
		startedAt: time.Now(),
	}
}

func (h *Handler) newMapSession() *mapSession {
	c := h.cfg.Cluster
	ix := cluster.NewIndexer(cluster.Options{
		MinZoom:   c.MinZoom,
		MaxZoom:   c.MaxZoom,
		Radius:    c.Radius,
		Extent:    c.Extent,
		MinPoints: c.MinPoints,
		NodeSize:  cluster.DefaultOptions().NodeSize,
	})
	return &mapSession{indexer: ix, resolver: cluster.NewResolver(ix, c.MinSelectZoom)}
}

// SessionCleanup drops expired map sessions until ctx is canceled. It
// implements suture.Service.
type SessionCleanup struct {
	h        *Handler
	interval time.Duration
}

// SessionCleanup returns the background service that expires map sessions.
func (h *Handler) SessionCleanup(interval time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionCleanup{h: h, interval: interval}
}

func (s *SessionCleanup) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.h.sessions.CleanupExpired()
		}
	}
}

func (s *SessionCleanup) String() string { return "map-session-cleanup" }
