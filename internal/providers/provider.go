// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package providers adapts external event sources to one interface.
//
// Every adapter owns an HTTP client with its own timeout, an outbound token
// bucket limiter and a circuit breaker. Failures are always returned as
// *models.ProviderError so the aggregator can record them per source without
// knowing which adapter produced them.
package providers

import (
	"context"
	"strings"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Provider is one external event source.
type Provider interface {
	Name() models.Source
	// Search returns normalized events. The error, when non-nil, is a
	// *models.ProviderError.
	Search(ctx context.Context, q Query) ([]models.Event, error)
}

// Query is the provider-facing view of a validated search request.
type Query struct {
	// Location is a free-text place name. It may be set together with
	// Coordinates, which then take precedence for geo lookups.
	Location    string
	Coordinates *models.Coordinates
	RadiusMiles float64
	Categories  []string
	Keyword     string
	// From and To bound event start times. Zero means unbounded.
	From     time.Time
	To       time.Time
	PageSize int
}

// NewQuery derives a Query from a validated request.
func NewQuery(req *models.SearchRequest, defaultRadius float64, pageSize int) Query {
	q := Query{
		Location:    strings.TrimSpace(req.Location),
		Coordinates: req.Coordinates(),
		RadiusMiles: defaultRadius,
		Keyword:     strings.TrimSpace(req.Keyword),
		PageSize:    pageSize,
	}
	if req.Radius != nil && *req.Radius > 0 {
		q.RadiusMiles = *req.Radius
	}
	for _, c := range req.Categories {
		if c = strings.TrimSpace(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}
	if req.DateRange != nil {
		// Validation already rejected unparseable ranges.
		q.From, q.To, _ = req.DateRange.Bounds(time.UTC)
	}
	return q
}

// HasGeo reports whether the query can be answered with a lat/lng search.
func (q Query) HasGeo() bool {
	return q.Coordinates != nil
}

// locationLabel returns a human place description for text-search sources.
func (q Query) locationLabel() string {
	if q.Location != "" {
		return q.Location
	}
	if q.Coordinates != nil {
		return q.Coordinates.String()
	}
	return ""
}

// window returns the effective date window, defaulting to now + lookahead.
func (q Query) window(now time.Time, lookahead time.Duration) (time.Time, time.Time) {
	from, to := q.From, q.To
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = from.Add(lookahead)
	}
	return from, to
}
