// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"sort"
	"strings"

	"github.com/bestfriendai/date-ai-discover/internal/cache"
	"github.com/bestfriendai/date-ai-discover/internal/geo"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Fingerprint returns the cache key for the request's filter set. Strings
// are trimmed and lowercased, categories sorted and deduplicated, and
// coordinates rounded to precision decimals. Page, limit and sort key are
// not part of the key.
func Fingerprint(req *models.SearchRequest, defaultRadius float64, precision int) string {
	params := map[string]interface{}{
		"location": normalizeText(req.Location),
		"keyword":  normalizeText(req.Keyword),
		"radius":   defaultRadius,
	}
	if req.Radius != nil && *req.Radius > 0 {
		params["radius"] = *req.Radius
	}
	if c := req.Coordinates(); c != nil {
		params["lat"] = geo.Round(c.Lat, precision)
		params["lng"] = geo.Round(c.Lng, precision)
	}
	if cats := normalizeCategories(req.Categories); len(cats) > 0 {
		params["categories"] = cats
	}
	if req.PriceRange != nil {
		params["price"] = []float64{req.PriceRange.Min(), req.PriceRange.Max()}
	}
	if req.DateRange != nil {
		params["from"] = strings.TrimSpace(req.DateRange.From)
		params["to"] = strings.TrimSpace(req.DateRange.To)
	}
	return cache.Fingerprint("search", params)
}

func normalizeCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = normalizeText(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
