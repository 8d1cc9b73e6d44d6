// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package geo holds the small amount of spherical geometry the service needs:
// great-circle distance for sorting and Web Mercator projection for the
// clustering index.
package geo

import (
	"math"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

const (
	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0

	// KmPerMile converts provider radii (miles) to kilometres.
	KmPerMile = 1.609344
)

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is HaversineKm over two coordinate pairs.
func Distance(a, b models.Coordinates) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// LngX projects a longitude onto [0, 1].
func LngX(lng float64) float64 {
	return lng/360 + 0.5
}

// LatY projects a latitude onto [0, 1] using spherical Mercator, clamped at
// the poles.
func LatY(lat float64) float64 {
	s := math.Sin(toRad(lat))
	y := 0.5 - 0.25*math.Log((1+s)/(1-s))/math.Pi
	switch {
	case y < 0:
		return 0
	case y > 1:
		return 1
	}
	return y
}

// XLng is the inverse of LngX.
func XLng(x float64) float64 {
	return (x - 0.5) * 360
}

// YLat is the inverse of LatY.
func YLat(y float64) float64 {
	y2 := toRad(180 - y*360)
	return 360*math.Atan(math.Exp(y2))/math.Pi - 90
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
