// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// Fingerprint builds a cache key of the form "prefix:<32 hex chars>" from
// params. Maps are encoded with sorted keys, so callers that normalise their
// values into a map get a key that is independent of insertion order.
//
// Example:
//
//	key := cache.Fingerprint("search", map[string]interface{}{
//	    "location": "miami",
//	    "categories": []string{"music", "party"},
//	})
func Fingerprint(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Unencodable params still need a deterministic key.
		data = []byte(fmt.Sprintf("%v", params))
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, sum[:16])
}
