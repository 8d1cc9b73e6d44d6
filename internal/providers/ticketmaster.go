// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Ticketmaster queries the Discovery API v2.
type Ticketmaster struct {
	baseURL string
	apiKey  string
	client  *client
}

// NewTicketmaster builds the adapter. cfg.APIKey must be set.
func NewTicketmaster(cfg config.ProviderConfig) *Ticketmaster {
	return &Ticketmaster{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: newClient(models.SourceTicketmaster, clientOptions{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		}),
	}
}

func (t *Ticketmaster) Name() models.Source { return models.SourceTicketmaster }

// Search calls GET /discovery/v2/events.json.
func (t *Ticketmaster) Search(ctx context.Context, q Query) ([]models.Event, error) {
	params := url.Values{}
	params.Set("apikey", t.apiKey)
	params.Set("sort", "date,asc")
	if q.PageSize > 0 {
		params.Set("size", strconv.Itoa(min(q.PageSize, 200)))
	}
	if q.HasGeo() {
		params.Set("latlong", strconv.FormatFloat(q.Coordinates.Lat, 'f', 6, 64)+","+strconv.FormatFloat(q.Coordinates.Lng, 'f', 6, 64))
		params.Set("radius", strconv.Itoa(max(1, int(q.RadiusMiles+0.5))))
		params.Set("unit", "miles")
	} else if city := cityFromLocation(q.Location); city != "" {
		params.Set("city", city)
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if len(q.Categories) > 0 {
		params.Set("classificationName", strings.Join(q.Categories, ","))
	}
	if !q.From.IsZero() {
		params.Set("startDateTime", q.From.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if !q.To.IsZero() {
		params.Set("endDateTime", q.To.UTC().Format("2006-01-02T15:04:05Z"))
	}

	var resp tmResponse
	if err := t.client.getJSON(ctx, t.baseURL+"/discovery/v2/events.json?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(resp.Embedded.Events))
	for i := range resp.Embedded.Events {
		events = append(events, resp.Embedded.Events[i].toEvent())
	}
	return events, nil
}

type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Info       string `json:"info"`
	PleaseNote string `json:"pleaseNote"`
	URL        string `json:"url"`
	Images     []struct {
		URL   string `json:"url"`
		Width int    `json:"width"`
	} `json:"images"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
			DateTime  string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	PriceRanges []struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Embedded struct {
		Venues []tmVenue `json:"venues"`
	} `json:"_embedded"`
}

type tmVenue struct {
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
	Location struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
}

func (e *tmEvent) toEvent() models.Event {
	out := models.Event{
		ID:          "ticketmaster-" + e.ID,
		Source:      models.SourceTicketmaster,
		Title:       strings.TrimSpace(e.Name),
		Description: firstNonEmpty(e.Info, e.PleaseNote),
		Date:        e.Dates.Start.LocalDate,
		Time:        clockHHMM(e.Dates.Start.LocalTime),
		RawDate:     e.Dates.Start.DateTime,
		URL:         e.URL,
		Category:    "event",
	}
	if len(e.Classifications) > 0 {
		if seg := strings.TrimSpace(e.Classifications[0].Segment.Name); seg != "" && seg != "Undefined" {
			out.Category = strings.ToLower(seg)
		}
	}
	if len(e.PriceRanges) > 0 {
		p := e.PriceRanges[0]
		out.Price = models.FormatPrice(p.Min, p.Max, p.Currency)
	}
	best := 0
	for _, img := range e.Images {
		if img.Width > best {
			best, out.ImageURL = img.Width, img.URL
		}
	}
	if len(e.Embedded.Venues) > 0 {
		v := e.Embedded.Venues[0]
		out.Venue = v.Name
		out.Location = joinNonEmpty(", ", v.Address.Line1, v.City.Name, v.State.StateCode)
		lat, latErr := strconv.ParseFloat(v.Location.Latitude, 64)
		lng, lngErr := strconv.ParseFloat(v.Location.Longitude, 64)
		if latErr == nil && lngErr == nil {
			out.Coordinates = models.NewCoordinates(lng, lat)
		}
	}
	return out
}
