// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"strings"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// partyCategory additionally matches every event classified as a party.
const partyCategory = "party"

// filterSet holds the request's filters in application order.
type filterSet struct {
	price    *models.PriceRange
	from, to time.Time
	hasDates bool
	cats     map[string]struct{}
	party    bool
	tokens   []string
	now      time.Time
}

func newFilterSet(req *models.SearchRequest, now time.Time) filterSet {
	f := filterSet{price: req.PriceRange, now: now}
	if req.DateRange != nil {
		if from, to, err := req.DateRange.Bounds(time.UTC); err == nil {
			f.from, f.to = from, to
			f.hasDates = !from.IsZero() || !to.IsZero()
		}
	}
	for _, c := range req.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if f.cats == nil {
			f.cats = make(map[string]struct{})
		}
		f.cats[c] = struct{}{}
		if c == partyCategory {
			f.party = true
		}
	}
	f.tokens = strings.Fields(strings.ToLower(req.Keyword))
	return f
}

// apply runs price, date, category and keyword filters in that order.
func (f filterSet) apply(events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for i := range events {
		e := &events[i]
		if f.matchPrice(e) && f.matchDate(e) && f.matchCategory(e) && f.matchKeyword(e) {
			out = append(out, *e)
		}
	}
	return out
}

func (f filterSet) matchPrice(e *models.Event) bool {
	if f.price == nil {
		return true
	}
	amount := e.PriceAmount()
	return amount >= f.price.Min() && amount <= f.price.Max()
}

// matchDate treats an unparseable event date as now.
func (f filterSet) matchDate(e *models.Event) bool {
	if !f.hasDates {
		return true
	}
	t := eventTime(e, f.now)
	if !f.from.IsZero() && t.Before(f.from) {
		return false
	}
	if !f.to.IsZero() && t.After(f.to) {
		return false
	}
	return true
}

func (f filterSet) matchCategory(e *models.Event) bool {
	if len(f.cats) == 0 {
		return true
	}
	if f.party && e.IsPartyEvent {
		return true
	}
	_, ok := f.cats[strings.ToLower(strings.TrimSpace(e.Category))]
	return ok
}

// matchKeyword accepts the event when any token is a substring of any of
// title, description, venue or location.
func (f filterSet) matchKeyword(e *models.Event) bool {
	if len(f.tokens) == 0 {
		return true
	}
	fields := [...]string{
		strings.ToLower(e.Title),
		strings.ToLower(e.Description),
		strings.ToLower(e.Venue),
		strings.ToLower(e.Location),
	}
	for _, tok := range f.tokens {
		for _, field := range fields {
			if strings.Contains(field, tok) {
				return true
			}
		}
	}
	return false
}

func eventTime(e *models.Event, now time.Time) time.Time {
	if t, ok := e.StartTime(time.UTC); ok {
		return t
	}
	return now
}
