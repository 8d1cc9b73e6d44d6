// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package api

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/bestfriendai/date-ai-discover/internal/models"
	"github.com/bestfriendai/date-ai-discover/internal/validation"
)

// firstParam returns the first non-empty value among names.
func firstParam(q url.Values, names ...string) (name, value string) {
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return n, v
		}
	}
	return names[0], ""
}

func floatParam(q url.Values, field string, names ...string) (*float64, *validation.RequestValidationError) {
	_, raw := firstParam(q, names...)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, validation.NewRequestValidationError(field, "number", field+" must be a number")
	}
	return &v, nil
}

func intParam(q url.Values, field string) (int, *validation.RequestValidationError) {
	raw := strings.TrimSpace(q.Get(field))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.NewRequestValidationError(field, "integer", field+" must be an integer")
	}
	return v, nil
}

// listParam accepts both repeated parameters and comma-separated values.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseSearchQuery maps query parameters onto a SearchRequest. It only
// rejects values that cannot be parsed; range and cross-field rules are
// left to the validator.
//
// Accepted parameters: location, lat|latitude, lng|lon|longitude, radius,
// categories (repeated or comma separated), keyword|q, minPrice, maxPrice,
// from|startDate, to|endDate, sortBy, limit, page.
func parseSearchQuery(q url.Values) (models.SearchRequest, *validation.RequestValidationError) {
	var (
		req  models.SearchRequest
		verr *validation.RequestValidationError
	)
	_, req.Location = firstParam(q, "location")
	_, req.Keyword = firstParam(q, "keyword", "q")
	req.Categories = listParam(q, "categories")
	if len(req.Categories) == 0 {
		req.Categories = listParam(q, "category")
	}
	req.SortBy = models.SortKey(strings.ToLower(strings.TrimSpace(q.Get("sortBy"))))

	if req.Latitude, verr = floatParam(q, "latitude", "latitude", "lat"); verr != nil {
		return req, verr
	}
	if req.Longitude, verr = floatParam(q, "longitude", "longitude", "lng", "lon"); verr != nil {
		return req, verr
	}
	if req.Radius, verr = floatParam(q, "radius", "radius"); verr != nil {
		return req, verr
	}

	minPrice, verr := floatParam(q, "priceRange", "minPrice")
	if verr != nil {
		return req, verr
	}
	maxPrice, verr := floatParam(q, "priceRange", "maxPrice")
	if verr != nil {
		return req, verr
	}
	if minPrice != nil || maxPrice != nil {
		pr := models.PriceRange{0, math.MaxFloat64}
		if minPrice != nil {
			pr[0] = *minPrice
		}
		if maxPrice != nil {
			pr[1] = *maxPrice
		}
		req.PriceRange = &pr
	}

	_, from := firstParam(q, "from", "startDate")
	_, to := firstParam(q, "to", "endDate")
	if from != "" || to != "" {
		req.DateRange = &models.DateRange{From: from, To: to}
	}

	if req.Limit, verr = intParam(q, "limit"); verr != nil {
		return req, verr
	}
	if req.Page, verr = intParam(q, "page"); verr != nil {
		return req, verr
	}
	return req, nil
}
