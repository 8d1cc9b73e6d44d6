// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package models

import (
	"fmt"
	"strings"
	"time"
)

// SortKey selects the comparator applied after filtering.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByDistance SortKey = "distance"
	SortByPrice    SortKey = "price"
)

// PriceRange is an inclusive [min, max] bound on PriceAmount.
type PriceRange [2]float64

func (p PriceRange) Min() float64 { return p[0] }
func (p PriceRange) Max() float64 { return p[1] }

// DateRange bounds event start times. Either side may be empty. Accepted
// forms are YYYY-MM-DD and RFC 3339.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Bounds parses the range. A date-only To is extended to the end of that day.
// Zero times mean unbounded.
func (d DateRange) Bounds(loc *time.Location) (from, to time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	if s := strings.TrimSpace(d.From); s != "" {
		if from, err = parseBound(s, loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("dateRange.from: %w", err)
		}
	}
	if s := strings.TrimSpace(d.To); s != "" {
		if to, err = parseBound(s, loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("dateRange.to: %w", err)
		}
		if len(s) == len(time.DateOnly) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("dateRange.to is before dateRange.from")
	}
	return from, to, nil
}

func parseBound(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

// SearchRequest is the transport-independent search contract. Either
// Location or both Latitude and Longitude must be present.
type SearchRequest struct {
	Location   string      `json:"location,omitempty" validate:"omitempty,max=200"`
	Latitude   *float64    `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64    `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Radius     *float64    `json:"radius,omitempty" validate:"omitempty,gt=0,lte=500"`
	Categories []string    `json:"categories,omitempty" validate:"omitempty,max=20,dive,min=1,max=64"`
	Keyword    string      `json:"keyword,omitempty" validate:"omitempty,max=200"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	DateRange  *DateRange  `json:"dateRange,omitempty"`
	SortBy     SortKey     `json:"sortBy,omitempty" validate:"omitempty,oneof=date distance price"`
	Limit      int         `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
	Page       int         `json:"page,omitempty" validate:"omitempty,min=1"`
}

// Coordinates returns the validated query point, or nil when the request is
// location-only.
func (r *SearchRequest) Coordinates() *Coordinates {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return NewCoordinates(*r.Longitude, *r.Latitude)
}

// SourceStats is the outcome of one provider within one aggregation call.
type SourceStats struct {
	Count      int               `json:"count"`
	Error      *string           `json:"error"`
	ErrorKind  ProviderErrorKind `json:"errorKind,omitempty"`
	DurationMs int64             `json:"durationMs"`
}

// SearchMeta describes the page and how it was produced.
type SearchMeta struct {
	ExecutionTime         int64     `json:"executionTime"`
	TotalEvents           int       `json:"totalEvents"`
	EventsWithCoordinates int       `json:"eventsWithCoordinates"`
	CurrentPage           int       `json:"currentPage"`
	PageSize              int       `json:"pageSize"`
	TotalPages            int       `json:"totalPages"`
	Timestamp             time.Time `json:"timestamp"`
	FromCache             bool      `json:"fromCache,omitempty"`
}

// SearchResponse is returned for every accepted request, including when all
// providers failed.
type SearchResponse struct {
	Events      []Event                `json:"events"`
	SourceStats map[Source]SourceStats `json:"sourceStats"`
	Meta        SearchMeta             `json:"meta"`
}
