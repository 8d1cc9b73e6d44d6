// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package models

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Coordinates is a WGS84 position. Values are only ever constructed through
// NewCoordinates, so a non-nil *Coordinates is always in range.
type Coordinates struct {
	Lng float64
	Lat float64
}

// NewCoordinates returns nil when either component is NaN, infinite or
// outside [-180,180] / [-90,90].
func NewCoordinates(lng, lat float64) *Coordinates {
	if !ValidLongitude(lng) || !ValidLatitude(lat) {
		return nil
	}
	return &Coordinates{Lng: lng, Lat: lat}
}

// ValidLongitude reports whether lng is a finite value in [-180, 180].
func ValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && !math.IsInf(lng, 0) && lng >= -180 && lng <= 180
}

// ValidLatitude reports whether lat is a finite value in [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && lat >= -90 && lat <= 90
}

// MarshalJSON encodes as [lng, lat], the GeoJSON position order.
func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lng, c.Lat})
}

// UnmarshalJSON accepts [lng, lat]. Out-of-range pairs are rejected so a
// decoded value keeps the same guarantee as NewCoordinates.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	valid := NewCoordinates(pair[0], pair[1])
	if valid == nil {
		return fmt.Errorf("coordinates out of range: [%v, %v]", pair[0], pair[1])
	}
	*c = *valid
	return nil
}

// String renders "lat,lng", the order most provider query strings use.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
