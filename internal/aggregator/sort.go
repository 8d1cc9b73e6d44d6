// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"math"
	"sort"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/geo"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// sortEvents orders events in place. Every comparator is stable. Distance
// without an origin falls back to date; placeless events sort last.
func sortEvents(events []models.Event, key models.SortKey, origin *models.Coordinates, now time.Time) {
	if key == models.SortByDistance && origin == nil {
		key = models.SortByDate
	}

	keys := make([]float64, len(events))
	for i := range events {
		e := &events[i]
		switch key {
		case models.SortByDistance:
			if e.Coordinates == nil {
				keys[i] = math.Inf(1)
			} else {
				keys[i] = geo.Distance(*origin, *e.Coordinates)
			}
		case models.SortByPrice:
			keys[i] = e.PriceAmount()
		default:
			keys[i] = float64(eventTime(e, now).UnixNano())
		}
	}

	sort.Stable(byKey{events: events, keys: keys})
}

type byKey struct {
	events []models.Event
	keys   []float64
}

func (b byKey) Len() int           { return len(b.events) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.events[i], b.events[j] = b.events[j], b.events[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
