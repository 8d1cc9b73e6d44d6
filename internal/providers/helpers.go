// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"strings"
	"time"
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// cityFromLocation takes "Miami, FL" to "Miami".
func cityFromLocation(loc string) string {
	city, _, _ := strings.Cut(loc, ",")
	return strings.TrimSpace(city)
}

// clockHHMM normalizes "19:00:00" to "19:00". Anything else is returned empty.
func clockHHMM(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

// splitDateTime renders t as the Event Date/Time pair.
func splitDateTime(t time.Time) (date, clock string) {
	return t.Format(time.DateOnly), t.Format("15:04")
}
