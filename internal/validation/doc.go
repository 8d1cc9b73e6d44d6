// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package validation wraps go-playground/validator v10 behind a process-wide
// singleton and translates field errors into the VALIDATION_ERROR shape the
// HTTP API returns.
//
// Field-level rules live in struct tags on the request types. Rules that
// span fields (a search needs a location or a full coordinate pair, a price
// range must be ordered) are registered as struct-level validators in
// search.go so every transport enforces them identically.
//
// Field names in messages are the JSON names, not the Go names:
//
//	req := models.SearchRequest{Latitude: &lat}
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError() // "longitude is required when latitude is set"
//	}
package validation
