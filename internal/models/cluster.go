// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package models

// ClusterNode is one rendered marker. Aggregates carry a synthetic centroid
// and a point count; leaves carry the event. IDs are only meaningful together
// with the Generation of the index build that produced them.
type ClusterNode struct {
	ID          int         `json:"id"`
	Generation  uint64      `json:"generation"`
	IsCluster   bool        `json:"cluster"`
	PointCount  int         `json:"pointCount"`
	Coordinates Coordinates `json:"coordinates"`
	EventID     string      `json:"eventId,omitempty"`
	Event       *Event      `json:"event,omitempty"`
}
