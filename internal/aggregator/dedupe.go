// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"strings"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// dedupeKey is the normalized (title, date, venue) triple. Distinct
// occurrences of a recurring series that share all three collapse into one.
func dedupeKey(e *models.Event) string {
	return normalizeText(e.Title) + "\x00" + normalizeText(e.Date) + "\x00" + normalizeText(e.Venue)
}

// normalizeText lowercases and collapses runs of whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// dedupe keeps the first event for each key, preserving order.
func dedupe(events []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]models.Event, 0, len(events))
	for i := range events {
		k := dedupeKey(&events[i])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, events[i])
	}
	return out
}
