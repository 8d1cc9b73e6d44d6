// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func ids(events []models.Event) string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return strings.Join(out, ",")
}

func TestFilterPrice(t *testing.T) {
	events := []models.Event{
		{ID: "free", Price: "Free"},
		{ID: "cheap", Price: "$10.00"},
		{ID: "edge", Price: "$50.00 - $80.00"},
		{ID: "pricey", Price: "$120"},
		{ID: "unknown"},
	}
	req := &models.SearchRequest{PriceRange: &models.PriceRange{10, 50}}
	if got := ids(newFilterSet(req, testNow).apply(events)); got != "cheap,edge" {
		t.Errorf("price filter = %s, want inclusive cheap,edge", got)
	}
}

func TestFilterDate(t *testing.T) {
	events := []models.Event{
		{ID: "before", Date: "2026-10-01"},
		{ID: "in", Date: "2026-10-15", Time: "20:00"},
		{ID: "last-day", Date: "2026-10-20", Time: "23:30"},
		{ID: "after", Date: "2026-10-21"},
		{ID: "unparseable", Date: "soon"},
	}
	req := &models.SearchRequest{DateRange: &models.DateRange{From: "2026-10-14", To: "2026-10-20"}}
	// Unparseable dates count as now (Oct 14, noon), inside the window.
	if got := ids(newFilterSet(req, testNow).apply(events)); got != "in,last-day,unparseable" {
		t.Errorf("date filter = %s", got)
	}

	req.DateRange = &models.DateRange{From: "2026-10-15"}
	if got := ids(newFilterSet(req, testNow).apply(events)); got != "in,last-day,after" {
		t.Errorf("open-ended date filter = %s", got)
	}
}

func TestFilterCategory(t *testing.T) {
	events := []models.Event{
		{ID: "music", Category: "Music"},
		{ID: "sports", Category: "sports"},
		{ID: "party-flag", Category: "community", IsPartyEvent: true},
		{ID: "partial", Category: "musical"},
	}
	tests := []struct {
		cats []string
		want string
	}{
		{[]string{"MUSIC"}, "music"},
		{[]string{"music", "sports"}, "music,sports"},
		{[]string{"party"}, "party-flag"},
		{[]string{"Party", "sports"}, "sports,party-flag"},
		{nil, "music,sports,party-flag,partial"},
	}
	for _, tt := range tests {
		req := &models.SearchRequest{Categories: tt.cats}
		if got := ids(newFilterSet(req, testNow).apply(events)); got != tt.want {
			t.Errorf("categories %v = %s, want %s", tt.cats, got, tt.want)
		}
	}
}

func TestFilterKeyword(t *testing.T) {
	events := []models.Event{
		{ID: "title", Title: "Sunset Jazz Cruise"},
		{ID: "desc", Title: "Evening", Description: "live JAZZ trio"},
		{ID: "venue", Title: "Show", Venue: "Rooftop Lounge"},
		{ID: "loc", Title: "Show", Location: "Wynwood, Miami"},
		{ID: "none", Title: "Chess Club"},
	}
	req := &models.SearchRequest{Keyword: "  jazz   wynwood  roof"}
	if got := ids(newFilterSet(req, testNow).apply(events)); got != "title,desc,venue,loc" {
		t.Errorf("keyword filter = %s", got)
	}
}

func TestFilterOrderCombined(t *testing.T) {
	events := []models.Event{
		{ID: "match", Title: "Jazz", Category: "music", Price: "$20", Date: "2026-10-15"},
		{ID: "wrong-price", Title: "Jazz", Category: "music", Price: "$200", Date: "2026-10-15"},
		{ID: "wrong-date", Title: "Jazz", Category: "music", Price: "$20", Date: "2027-01-01"},
		{ID: "wrong-cat", Title: "Jazz", Category: "food", Price: "$20", Date: "2026-10-15"},
		{ID: "wrong-word", Title: "Blues", Category: "music", Price: "$20", Date: "2026-10-15"},
	}
	req := &models.SearchRequest{
		PriceRange: &models.PriceRange{0, 50},
		DateRange:  &models.DateRange{From: "2026-10-14", To: "2026-10-31"},
		Categories: []string{"music"},
		Keyword:    "jazz",
	}
	if got := ids(newFilterSet(req, testNow).apply(events)); got != "match" {
		t.Errorf("combined filter = %s", got)
	}
}

func TestDedupeFirstWins(t *testing.T) {
	events := []models.Event{
		{ID: "1", Title: "Jazz Night", Date: "2026-10-20", Venue: "Blue Room"},
		{ID: "2", Title: "jazz  NIGHT", Date: "2026-10-20", Venue: " blue room "},
		{ID: "3", Title: "Jazz Night", Date: "2026-10-21", Venue: "Blue Room"},
		{ID: "4", Title: "Jazz Night", Date: "2026-10-20", Venue: "Other"},
	}
	if got := ids(dedupe(events)); got != "1,3,4" {
		t.Errorf("dedupe = %s, want 1,3,4", got)
	}
}

func TestDedupeIndependentOfOrder(t *testing.T) {
	a := []models.Event{
		{ID: "a1", Title: "Jazz", Date: "2026-10-20", Venue: "X"},
		{ID: "a2", Title: "Rave", Date: "2026-10-21", Venue: "Y"},
	}
	b := []models.Event{
		{ID: "b1", Title: "JAZZ", Date: "2026-10-20", Venue: "x"},
		{ID: "b2", Title: "Brunch", Date: "2026-10-22", Venue: "Z"},
	}
	keys := func(events []models.Event) string {
		var out []string
		for i := range events {
			out = append(out, dedupeKey(&events[i]))
		}
		sort.Strings(out)
		return strings.Join(out, "|")
	}
	ab := dedupe(append(append([]models.Event{}, a...), b...))
	ba := dedupe(append(append([]models.Event{}, b...), a...))
	if keys(ab) != keys(ba) {
		t.Errorf("dedupe key sets differ:\n%s\n%s", keys(ab), keys(ba))
	}
	if len(ab) != 3 {
		t.Errorf("len = %d, want 3", len(ab))
	}
}
