// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"strings"
	"testing"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

func TestFingerprintNormalizes(t *testing.T) {
	base := models.SearchRequest{
		Location:   "Miami, FL",
		Latitude:   ptr(25.76171),
		Longitude:  ptr(-80.19182),
		Categories: []string{"music", "party"},
		Keyword:    "jazz",
	}
	same := models.SearchRequest{
		Location:   "  miami,   fl ",
		Latitude:   ptr(25.76174),
		Longitude:  ptr(-80.19179),
		Categories: []string{"Party", "MUSIC", "music"},
		Keyword:    " JAZZ ",
		SortBy:     models.SortByPrice,
		Limit:      10,
		Page:       3,
	}
	k1 := Fingerprint(&base, 25, 3)
	k2 := Fingerprint(&same, 25, 3)
	if k1 != k2 {
		t.Errorf("equivalent requests produced different keys: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "search:") {
		t.Errorf("key = %q, want search: prefix", k1)
	}
}

func TestFingerprintDistinguishes(t *testing.T) {
	base := models.SearchRequest{Location: "Miami"}
	k := Fingerprint(&base, 25, 3)

	variants := map[string]models.SearchRequest{
		"keyword":  {Location: "Miami", Keyword: "jazz"},
		"category": {Location: "Miami", Categories: []string{"music"}},
		"radius":   {Location: "Miami", Radius: ptr(5)},
		"price":    {Location: "Miami", PriceRange: &models.PriceRange{0, 20}},
		"date":     {Location: "Miami", DateRange: &models.DateRange{From: "2026-10-20"}},
		"coords":   {Location: "Miami", Latitude: ptr(25.77), Longitude: ptr(-80.19)},
	}
	for name, req := range variants {
		if Fingerprint(&req, 25, 3) == k {
			t.Errorf("%s did not change the key", name)
		}
	}

	explicitDefault := models.SearchRequest{Location: "Miami", Radius: ptr(25)}
	if Fingerprint(&explicitDefault, 25, 3) != k {
		t.Error("an explicit default radius should match the implicit one")
	}
}
