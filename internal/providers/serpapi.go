// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/models"
	"github.com/bestfriendai/date-ai-discover/internal/party"
)

// SerpAPI searches Google Events through serpapi.com. Results carry no
// coordinates and are therefore list-only.
type SerpAPI struct {
	baseURL string
	apiKey  string
	client  *client
	now     func() time.Time
}

func NewSerpAPI(cfg config.ProviderConfig) *SerpAPI {
	return &SerpAPI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: newClient(models.SourceSerpAPI, clientOptions{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		}),
		now: time.Now,
	}
}

func (s *SerpAPI) Name() models.Source { return models.SourceSerpAPI }

func (s *SerpAPI) Search(ctx context.Context, q Query) ([]models.Event, error) {
	params := url.Values{}
	params.Set("engine", "google_events")
	params.Set("api_key", s.apiKey)
	params.Set("q", s.queryText(q))
	if place := q.locationLabel(); place != "" {
		params.Set("location", place)
	}

	var resp serpResponse
	if err := s.client.getJSON(ctx, s.baseURL+"/search.json?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		// An empty result set is reported as an error string.
		if strings.Contains(resp.Error, "hasn't returned any results") {
			return []models.Event{}, nil
		}
		return nil, models.NewProviderError(models.SourceSerpAPI, models.ProviderErrMalformed, "%s", resp.Error)
	}

	category := "event"
	if len(q.Categories) > 0 {
		category = strings.ToLower(q.Categories[0])
	}
	now := s.now()
	events := make([]models.Event, 0, len(resp.Results))
	for i := range resp.Results {
		events = append(events, resp.Results[i].toEvent(category, now))
	}
	return events, nil
}

func (s *SerpAPI) queryText(q Query) string {
	subject := "events"
	switch {
	case q.Keyword != "":
		subject = q.Keyword + " events"
	case len(q.Categories) > 0:
		subject = strings.Join(q.Categories, " ") + " events"
	}
	if q.Location != "" {
		return subject + " in " + q.Location
	}
	return subject
}

type serpResponse struct {
	Error   string      `json:"error"`
	Results []serpEvent `json:"events_results"`
}

type serpEvent struct {
	Title string `json:"title"`
	Date  struct {
		StartDate string `json:"start_date"`
		When      string `json:"when"`
	} `json:"date"`
	Address     []string `json:"address"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	TicketInfo  []struct {
		Source string `json:"source"`
		Link   string `json:"link"`
	} `json:"ticket_info"`
	Venue struct {
		Name string `json:"name"`
	} `json:"venue"`
	Thumbnail string `json:"thumbnail"`
	Image     string `json:"image"`
}

func (e *serpEvent) toEvent(category string, now time.Time) models.Event {
	out := models.Event{
		ID:          serpID(e),
		Source:      models.SourceSerpAPI,
		Title:       strings.TrimSpace(e.Title),
		Description: strings.TrimSpace(e.Description),
		RawDate:     e.Date.When,
		Venue:       e.Venue.Name,
		Location:    strings.Join(e.Address, ", "),
		URL:         e.Link,
		ImageURL:    firstNonEmpty(e.Image, e.Thumbnail),
		Category:    category,
	}
	if out.Venue == "" && len(e.Address) > 0 {
		out.Venue, _, _ = strings.Cut(e.Address[0], ",")
	}
	if d, ok := parseMonthDay(e.Date.StartDate, now); ok {
		out.Date = d.Format(time.DateOnly)
	}
	if h, ok := party.ParseHour(e.Date.When); ok {
		out.Time = fmt.Sprintf("%02d:00", h)
	}
	return out
}

// parseMonthDay reads "Oct 14" relative to now. Dates more than a month in
// the past roll over to next year.
func parseMonthDay(s string, now time.Time) (time.Time, bool) {
	t, err := time.Parse("Jan 2", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	d := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(now.AddDate(0, -1, 0)) {
		d = d.AddDate(1, 0, 0)
	}
	return d, true
}

// serpID derives a stable id; Google Events results have none.
func serpID(e *serpEvent) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(e.Title + "|" + e.Date.StartDate + "|" + e.Venue.Name)))
	return fmt.Sprintf("serpapi-%016x", h.Sum64())
}
