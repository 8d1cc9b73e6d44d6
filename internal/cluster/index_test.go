// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cluster

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

var worldBox = BBox{-180, -90, 180, 90}

func event(id string, lng, lat float64) models.Event {
	return models.Event{ID: id, Title: id, Source: models.SourceICS, Coordinates: models.NewCoordinates(lng, lat)}
}

// fixtureEvents has three close points in Miami, two in New York, one in
// Paris and one without coordinates.
func fixtureEvents() []models.Event {
	return []models.Event{
		event("mia-1", -80.1900, 25.7600),
		event("mia-2", -80.1905, 25.7603),
		event("nyc-1", -73.9850, 40.7480),
		event("mia-3", -80.1910, 25.7598),
		event("par-1", 2.3500, 48.8500),
		{ID: "nowhere", Title: "No coordinates"},
		event("nyc-2", -73.9855, 40.7484),
	}
}

func totalPoints(nodes []models.ClusterNode) int {
	n := 0
	for _, c := range nodes {
		n += c.PointCount
	}
	return n
}

func findCluster(t *testing.T, nodes []models.ClusterNode, points int) models.ClusterNode {
	t.Helper()
	for _, c := range nodes {
		if c.IsCluster && c.PointCount == points {
			return c
		}
	}
	t.Fatalf("no cluster with %d points in %+v", points, nodes)
	return models.ClusterNode{}
}

func TestBuildSkipsEventsWithoutCoordinates(t *testing.T) {
	idx := Build(fixtureEvents(), DefaultOptions(), 1)
	if idx.Len() != 6 {
		t.Errorf("Len() = %d, want 6", idx.Len())
	}
	if idx.Generation() != 1 {
		t.Errorf("Generation() = %d", idx.Generation())
	}
	if _, err := idx.EventNode("nowhere"); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("EventNode(nowhere) err = %v", err)
	}
}

func TestPointCountConservedAtEveryZoom(t *testing.T) {
	idx := Build(fixtureEvents(), DefaultOptions(), 1)
	for z := 0; z <= 17; z++ {
		if got := totalPoints(idx.GetClusters(worldBox, float64(z))); got != 6 {
			t.Errorf("zoom %d: total points = %d, want 6", z, got)
		}
	}
}

func TestGetClustersByZoom(t *testing.T) {
	idx := Build(fixtureEvents(), DefaultOptions(), 1)

	mid := idx.GetClusters(worldBox, 10)
	if len(mid) != 3 {
		t.Fatalf("zoom 10: %d nodes, want 3: %+v", len(mid), mid)
	}
	findCluster(t, mid, 3)
	findCluster(t, mid, 2)

	leaves := idx.GetClusters(worldBox, 17)
	if len(leaves) != 6 {
		t.Fatalf("zoom 17: %d nodes, want 6", len(leaves))
	}
	for _, l := range leaves {
		if l.IsCluster || l.EventID == "" || l.Event == nil {
			t.Errorf("zoom 17 node is not a leaf: %+v", l)
		}
	}

	// Zooms beyond the leaf level and fractional zooms are clamped and floored.
	if got := len(idx.GetClusters(worldBox, 22)); got != 6 {
		t.Errorf("zoom 22: %d nodes, want 6", got)
	}
	if got := idx.GetClusters(worldBox, 10.9); !reflect.DeepEqual(got, mid) {
		t.Errorf("zoom 10.9 differs from zoom 10")
	}
}

func TestGetClustersBBox(t *testing.T) {
	events := []models.Event{
		event("east", 179.9, 0),
		event("west", -179.9, 0),
		event("zero", 0, 0),
	}
	idx := Build(events, DefaultOptions(), 1)

	ids := func(b BBox) []string {
		var out []string
		for _, n := range idx.GetClusters(b, 17) {
			out = append(out, n.EventID)
		}
		sort.Strings(out)
		return out
	}

	tests := []struct {
		name string
		bbox BBox
		want []string
	}{
		{"crosses antimeridian", BBox{170, -10, -170, 10}, []string{"east", "west"}},
		{"east past 180", BBox{170, -10, 190, 10}, []string{"east", "west"}},
		{"around null island", BBox{-10, -10, 10, 10}, []string{"zero"}},
		{"whole world", BBox{-180, -90, 180, 90}, []string{"east", "west", "zero"}},
		{"wider than world", BBox{-500, -90, 500, 90}, []string{"east", "west", "zero"}},
		{"north of everything", BBox{-180, 10, 180, 80}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(tt.bbox); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetExpansionZoom(t *testing.T) {
	idx := Build(fixtureEvents(), DefaultOptions(), 1)

	for _, c := range idx.GetClusters(worldBox, 10) {
		if !c.IsCluster {
			continue
		}
		zoom, err := idx.GetExpansionZoom(c.ID)
		if err != nil {
			t.Fatalf("GetExpansionZoom(%d): %v", c.ID, err)
		}
		if zoom <= 10 {
			t.Errorf("cluster %d expands at %d, want > 10", c.ID, zoom)
		}
		for _, n := range idx.GetClusters(worldBox, float64(zoom)) {
			if n.ID == c.ID {
				t.Errorf("cluster %d still present at its expansion zoom %d", c.ID, zoom)
			}
		}
		found := false
		for _, n := range idx.GetClusters(worldBox, float64(zoom-1)) {
			found = found || n.ID == c.ID
		}
		if !found {
			t.Errorf("cluster %d missing one level above its expansion zoom", c.ID)
		}
	}

	if _, err := idx.GetExpansionZoom(0); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("leaf id: err = %v, want ErrUnknownFeature", err)
	}
	if _, err := idx.GetExpansionZoom(10_000); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("out of range id: err = %v, want ErrUnknownFeature", err)
	}
}

func TestCoincidentPointsExpandPastMaxZoom(t *testing.T) {
	idx := Build([]models.Event{event("a", 10, 10), event("b", 10, 10)}, DefaultOptions(), 1)

	top := idx.GetClusters(worldBox, 16)
	c := findCluster(t, top, 2)
	zoom, err := idx.GetExpansionZoom(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if zoom != 17 {
		t.Errorf("expansion zoom = %d, want 17", zoom)
	}
}

func TestGetChildrenAndLeaves(t *testing.T) {
	idx := Build(fixtureEvents(), DefaultOptions(), 1)
	miami := findCluster(t, idx.GetClusters(worldBox, 10), 3)

	children, err := idx.GetChildren(miami.ID)
	if err != nil {
		t.Fatal(err)
	}
	if totalPoints(children) != 3 {
		t.Errorf("children hold %d points, want 3", totalPoints(children))
	}

	all, err := idx.GetLeaves(miami.ID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, l := range all {
		got = append(got, l.EventID)
	}
	sort.Strings(got)
	if want := []string{"mia-1", "mia-2", "mia-3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("leaves = %v, want %v", got, want)
	}

	first, _ := idx.GetLeaves(miami.ID, 2, 0)
	rest, _ := idx.GetLeaves(miami.ID, 2, 2)
	if len(first) != 2 || len(rest) != 1 {
		t.Fatalf("paged leaves = %d + %d, want 2 + 1", len(first), len(rest))
	}
	paged := []string{first[0].EventID, first[1].EventID, rest[0].EventID}
	for i := range paged {
		if paged[i] != all[i].EventID {
			t.Errorf("paged leaf %d = %s, want %s", i, paged[i], all[i].EventID)
		}
	}

	beyond, err := idx.GetLeaves(miami.ID, 10, 5)
	if err != nil || len(beyond) != 0 || beyond == nil {
		t.Errorf("offset past end = %v, %v; want empty slice", beyond, err)
	}

	if _, err := idx.GetChildren(0); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("GetChildren(leaf) err = %v", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(fixtureEvents(), DefaultOptions(), 7)
	b := Build(fixtureEvents(), DefaultOptions(), 7)
	for _, z := range []float64{0, 4, 10, 17} {
		if !reflect.DeepEqual(a.GetClusters(worldBox, z), b.GetClusters(worldBox, z)) {
			t.Errorf("zoom %v: builds differ", z)
		}
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	if got := (Options{}).withDefaults(); got != DefaultOptions() {
		t.Errorf("zero options = %+v", got)
	}
	got := Options{MinZoom: 3, MaxZoom: 1, Radius: -1}.withDefaults()
	if got.MaxZoom != 3 || got.Radius != 60 || got.MinPoints != 2 || got.NodeSize != 64 {
		t.Errorf("normalized options = %+v", got)
	}
}

func TestParseBBox(t *testing.T) {
	b, err := ParseBBox("-80.5, 25.5,-80,26")
	if err != nil {
		t.Fatal(err)
	}
	if b != (BBox{-80.5, 25.5, -80, 26}) {
		t.Errorf("bbox = %v", b)
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "0,10,1,5", "0,NaN,1,2"} {
		if _, err := ParseBBox(bad); err == nil {
			t.Errorf("ParseBBox(%q) succeeded", bad)
		}
	}
}

func TestFeatureCollection(t *testing.T) {
	idx := Build(fixtureEvents(), DefaultOptions(), 4)
	fc := idx.FeatureCollection(worldBox, 10)
	if len(fc.Features) != 3 {
		t.Fatalf("features = %d, want 3", len(fc.Features))
	}

	clusters := 0
	for _, f := range fc.Features {
		if !f.Geometry.IsPoint() {
			t.Errorf("feature %v is not a point", f.ID)
		}
		if f.Properties["generation"] != uint64(4) {
			t.Errorf("generation property = %v", f.Properties["generation"])
		}
		if f.Properties["cluster"] == true {
			clusters++
			if f.Properties["cluster_id"] != f.ID {
				t.Errorf("cluster_id %v != id %v", f.Properties["cluster_id"], f.ID)
			}
			continue
		}
		if f.Properties["eventId"] != "par-1" {
			t.Errorf("leaf eventId = %v", f.Properties["eventId"])
		}
	}
	if clusters != 2 {
		t.Errorf("clusters = %d, want 2", clusters)
	}
}

func TestAbbreviateCount(t *testing.T) {
	for n, want := range map[int]string{7: "7", 999: "999", 1000: "1k", 1250: "1.3k", 15400: "15k"} {
		if got := abbreviateCount(n); got != want {
			t.Errorf("abbreviateCount(%d) = %q, want %q", n, got, want)
		}
	}
}
