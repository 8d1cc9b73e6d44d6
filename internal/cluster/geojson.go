// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cluster

import (
	"fmt"
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// FeatureCollection renders GetClusters as GeoJSON points. Aggregates carry
// cluster, cluster_id, point_count and point_count_abbreviated; leaves carry
// the event fields a map popup needs.
func (idx *Index) FeatureCollection(bbox BBox, zoom float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, n := range idx.GetClusters(bbox, zoom) {
		fc.AddFeature(toFeature(n))
	}
	return fc
}

func toFeature(n models.ClusterNode) *geojson.Feature {
	f := geojson.NewPointFeature([]float64{n.Coordinates.Lng, n.Coordinates.Lat})
	f.ID = n.ID
	f.SetProperty("cluster", n.IsCluster)
	f.SetProperty("generation", n.Generation)

	if n.IsCluster {
		f.SetProperty("cluster_id", n.ID)
		f.SetProperty("point_count", n.PointCount)
		f.SetProperty("point_count_abbreviated", abbreviateCount(n.PointCount))
		return f
	}

	f.SetProperty("eventId", n.EventID)
	if e := n.Event; e != nil {
		f.SetProperty("title", e.Title)
		f.SetProperty("source", string(e.Source))
		f.SetProperty("category", e.Category)
		f.SetProperty("date", e.Date)
		f.SetProperty("isPartyEvent", e.IsPartyEvent)
		if e.IsPartyEvent {
			f.SetProperty("partySubcategory", string(e.PartySubcategory))
		}
		if e.Venue != "" {
			f.SetProperty("venue", e.Venue)
		}
	}
	return f
}

func abbreviateCount(n int) string {
	switch {
	case n >= 10000:
		return fmt.Sprintf("%dk", int(math.Round(float64(n)/1000)))
	case n >= 1000:
		return fmt.Sprintf("%gk", math.Round(float64(n)/100)/10)
	}
	return fmt.Sprintf("%d", n)
}
