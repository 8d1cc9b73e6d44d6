// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

const serpFixture = `{
  "events_results": [
    {
      "title": "Wynwood Art Walk",
      "date": {"start_date": "Oct 17", "when": "Sat, Oct 17, 7 - 10 PM"},
      "address": ["Wynwood Walls, 2520 NW 2nd Ave", "Miami, FL"],
      "link": "https://events.example/art-walk",
      "description": "Monthly gallery night.",
      "venue": {"name": "Wynwood Walls"},
      "thumbnail": "https://img.example/t.jpg"
    },
    {
      "title": "New Year Brunch",
      "date": {"start_date": "Jan 1", "when": "Fri, Jan 1"},
      "address": ["The Deck, Miami"]
    }
  ]
}`

func newTestSerp(url string) *SerpAPI {
	s := NewSerpAPI(config.ProviderConfig{BaseURL: url, APIKey: "serp-key"})
	s.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSerpAPISearch(t *testing.T) {
	var gotQ, gotEngine string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotEngine = r.URL.Query().Get("engine")
		fmt.Fprint(w, serpFixture)
	}))
	defer srv.Close()

	events, err := newTestSerp(srv.URL).Search(context.Background(), Query{Location: "Miami", Categories: []string{"Art"}})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if gotEngine != "google_events" || gotQ != "Art events in Miami" {
		t.Errorf("engine=%q q=%q", gotEngine, gotQ)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	e := events[0]
	if e.Date != "2026-10-17" || e.Time != "19:00" {
		t.Errorf("date/time = %s %s", e.Date, e.Time)
	}
	if e.HasCoordinates() {
		t.Error("serpapi events must be list-only")
	}
	if e.Category != "art" || e.Venue != "Wynwood Walls" {
		t.Errorf("category/venue = %q / %q", e.Category, e.Venue)
	}
	if e.ID == "" || e.ID == events[1].ID {
		t.Errorf("ids should be distinct and non-empty: %q %q", e.ID, events[1].ID)
	}
	if !strings.HasPrefix(e.ID, "serpapi-") {
		t.Errorf("id = %q, want serpapi- prefix", e.ID)
	}

	// Jan 1 is more than a month behind mid-October, so it is next year.
	if events[1].Date != "2027-01-01" {
		t.Errorf("rolled date = %q, want 2027-01-01", events[1].Date)
	}
	if events[1].Venue != "The Deck" {
		t.Errorf("venue from address = %q", events[1].Venue)
	}
}

func TestSerpAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantKind models.ProviderErrorKind
	}{
		{"no results", `{"error": "Google hasn't returned any results for this query."}`, false, ""},
		{"quota", `{"error": "Your account has run out of searches."}`, true, models.ProviderErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			events, err := newTestSerp(srv.URL).Search(context.Background(), Query{Location: "Miami"})
			if tt.wantErr {
				if got := kindOf(t, err); got != tt.wantKind {
					t.Errorf("kind = %s, want %s", got, tt.wantKind)
				}
				return
			}
			if err != nil || events == nil || len(events) != 0 {
				t.Errorf("Search() = %v, %v; want empty list", events, err)
			}
		})
	}
}
