// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import "github.com/bestfriendai/date-ai-discover/internal/models"

type pageResult struct {
	events     []models.Event
	page       int
	size       int
	totalPages int
}

// paginate slices a 1-based page. Pages past the end are empty, never nil.
func paginate(events []models.Event, page, limit, defaultSize, maxSize int) pageResult {
	if limit <= 0 {
		limit = defaultSize
	}
	if maxSize > 0 && limit > maxSize {
		limit = maxSize
	}
	if page < 1 {
		page = 1
	}

	total := len(events)
	res := pageResult{page: page, size: limit, totalPages: (total + limit - 1) / limit}
	start := (page - 1) * limit
	if start >= total {
		res.events = []models.Event{}
		return res
	}
	end := min(start+limit, total)
	res.events = events[start:end]
	return res
}
