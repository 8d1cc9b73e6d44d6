// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package party implements the keyword and time-of-day heuristics that flag
// events as parties and assign a party subcategory.
//
// The keyword tables are package-level and read-only after init, so Classify
// is safe to call from any number of goroutines.
package party

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Result is the classification of one event.
type Result struct {
	IsPartyEvent bool
	Subcategory  models.PartySubcategory
}

// Classify inspects title, description and a free-form time string.
//
// An event is a party when the text contains a strong keyword, or at least
// two distinct broad keywords. The subcategory is the first matching group in
// priority order, falling back to general. A start hour between 9 and 17
// inclusive makes the subcategory day-party regardless of keywords.
//
// Input that cannot be interpreted never fails; it classifies as general and
// not a party.
func Classify(title, description, timeText string) Result {
	text := strings.ToLower(strings.TrimSpace(title + " " + description))

	isParty := false
	if text != "" {
		isParty = anyMatch(text, strongMatchers) || countMatches(text, broadMatchers) >= 2
	}

	if hour, ok := ParseHour(timeText); ok && hour >= 9 && hour <= 17 {
		return Result{IsPartyEvent: isParty, Subcategory: models.PartyDayParty}
	}

	sub := models.PartyGeneral
	for i, ms := range groupMatchers {
		if anyMatch(text, ms) {
			sub = subcategoryGroups[i].subcategory
			break
		}
	}
	return Result{IsPartyEvent: isParty, Subcategory: sub}
}

// Apply classifies e in place.
func Apply(e *models.Event) {
	r := Classify(e.Title, e.Description, e.Time)
	e.IsPartyEvent = r.IsPartyEvent
	e.PartySubcategory = r.Subcategory
}

var clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?(?::\d{2})?\s*(a\.?m\.?|p\.?m\.?)?`)

// ParseHour extracts an hour of day (0-23) from strings like "19:00",
// "7pm", "7:30 PM", "2026-05-01T21:00:00-04:00" or "Sat, May 2, 8 - 11 PM".
func ParseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}

	matches := clockPattern.FindAllStringSubmatch(s, -1)
	for i, m := range matches {
		h, err := strconv.Atoi(m[1])
		if err != nil || h > 23 {
			continue
		}
		// A bare number only counts as an hour when a meridiem or minutes
		// accompany it, possibly on the next match ("8 - 11 PM").
		meridiem := strings.ToLower(strings.ReplaceAll(m[3], ".", ""))
		if meridiem == "" && m[2] == "" {
			if i+1 < len(matches) && matches[i+1][3] != "" {
				meridiem = strings.ToLower(strings.ReplaceAll(matches[i+1][3], ".", ""))
			} else {
				continue
			}
		}
		switch meridiem {
		case "pm":
			if h > 12 {
				continue
			}
			if h != 12 {
				h += 12
			}
		case "am":
			if h > 12 {
				continue
			}
			if h == 12 {
				h = 0
			}
		}
		return h, true
	}
	return 0, false
}
