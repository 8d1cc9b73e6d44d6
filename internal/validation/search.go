// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package validation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

func registerSearchRules(v *validator.Validate) {
	v.RegisterStructValidation(validateSearchRequest, models.SearchRequest{})
}

// validateSearchRequest enforces the cross-field rules. When both a location
// string and coordinates are present both are accepted; coordinates drive
// geo queries downstream.
func validateSearchRequest(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.SearchRequest)

	hasLat, hasLng := req.Latitude != nil, req.Longitude != nil
	switch {
	case hasLat && !hasLng:
		sl.ReportError(req.Longitude, "longitude", "Longitude", "required_with_latitude", "")
	case hasLng && !hasLat:
		sl.ReportError(req.Latitude, "latitude", "Latitude", "required_with_longitude", "")
	case !hasLat && !hasLng && strings.TrimSpace(req.Location) == "":
		sl.ReportError(req.Location, "location", "Location", "location_or_coordinates", "")
	}

	if p := req.PriceRange; p != nil {
		if p.Min() < 0 || p.Max() < 0 {
			sl.ReportError(*p, "priceRange", "PriceRange", "price_non_negative", "")
		} else if p.Min() > p.Max() {
			sl.ReportError(*p, "priceRange", "PriceRange", "price_order", "")
		}
	}

	if d := req.DateRange; d != nil {
		if _, _, err := d.Bounds(time.UTC); err != nil {
			sl.ReportError(*d, "dateRange", "DateRange", "date_range", err.Error())
		}
	}
}

// ValidateSearch validates a search request, field rules and cross-field
// rules together.
func ValidateSearch(req *models.SearchRequest) *RequestValidationError {
	return ValidateStruct(req)
}
