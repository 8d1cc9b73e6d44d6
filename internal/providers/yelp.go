// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Yelp's events endpoint caps radius at 40 km and limit at 50.
const (
	yelpMaxRadiusMeters = 40000
	yelpMaxLimit        = 50
)

// Yelp queries the Fusion /v3/events endpoint.
type Yelp struct {
	baseURL string
	apiKey  string
	client  *client
}

func NewYelp(cfg config.ProviderConfig) *Yelp {
	return &Yelp{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: newClient(models.SourceYelp, clientOptions{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		}),
	}
}

func (y *Yelp) Name() models.Source { return models.SourceYelp }

func (y *Yelp) Search(ctx context.Context, q Query) ([]models.Event, error) {
	params := url.Values{}
	if q.HasGeo() {
		params.Set("latitude", strconv.FormatFloat(q.Coordinates.Lat, 'f', 6, 64))
		params.Set("longitude", strconv.FormatFloat(q.Coordinates.Lng, 'f', 6, 64))
	} else {
		params.Set("location", q.Location)
	}
	if q.RadiusMiles > 0 {
		meters := int(q.RadiusMiles * 1609.344)
		params.Set("radius", strconv.Itoa(min(meters, yelpMaxRadiusMeters)))
	}
	if q.PageSize > 0 {
		params.Set("limit", strconv.Itoa(min(q.PageSize, yelpMaxLimit)))
	}
	if len(q.Categories) > 0 {
		params.Set("categories", strings.ToLower(strings.Join(q.Categories, ",")))
	}
	if !q.From.IsZero() {
		params.Set("start_date", strconv.FormatInt(q.From.Unix(), 10))
	}
	if !q.To.IsZero() {
		params.Set("end_date", strconv.FormatInt(q.To.Unix(), 10))
	}
	params.Set("sort_on", "time_start")
	params.Set("sort_by", "asc")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+y.apiKey)

	var resp yelpResponse
	if err := y.client.getJSON(ctx, y.baseURL+"/v3/events?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(resp.Events))
	for i := range resp.Events {
		events = append(events, resp.Events[i].toEvent())
	}
	return events, nil
}

type yelpResponse struct {
	Total  int         `json:"total"`
	Events []yelpEvent `json:"events"`
}

type yelpEvent struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	TimeStart    string   `json:"time_start"`
	Cost         *float64 `json:"cost"`
	CostMax      *float64 `json:"cost_max"`
	IsFree       bool     `json:"is_free"`
	Category     string   `json:"category"`
	EventSiteURL string   `json:"event_site_url"`
	ImageURL     string   `json:"image_url"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Location     struct {
		Address1       string   `json:"address1"`
		City           string   `json:"city"`
		State          string   `json:"state"`
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}

func (e *yelpEvent) toEvent() models.Event {
	out := models.Event{
		ID:          "yelp-" + e.ID,
		Source:      models.SourceYelp,
		Title:       strings.TrimSpace(e.Name),
		Description: strings.TrimSpace(e.Description),
		RawDate:     e.TimeStart,
		URL:         e.EventSiteURL,
		ImageURL:    e.ImageURL,
		Category:    firstNonEmpty(strings.ToLower(e.Category), "event"),
		Venue:       e.Location.Address1,
		Location:    strings.Join(e.Location.DisplayAddress, ", "),
	}
	if out.Location == "" {
		out.Location = joinNonEmpty(", ", e.Location.Address1, e.Location.City, e.Location.State)
	}
	// time_start carries the venue's offset, e.g. 2026-10-14T19:00:00-04:00.
	if t, err := time.Parse(time.RFC3339, e.TimeStart); err == nil {
		out.Date, out.Time = splitDateTime(t)
	}
	switch {
	case e.IsFree:
		out.Price = "Free"
	case e.Cost != nil:
		maxCost := *e.Cost
		if e.CostMax != nil {
			maxCost = *e.CostMax
		}
		out.Price = models.FormatPrice(*e.Cost, maxCost, "USD")
	}
	if e.Latitude != nil && e.Longitude != nil {
		out.Coordinates = models.NewCoordinates(*e.Longitude, *e.Latitude)
	}
	return out
}
