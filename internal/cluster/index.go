// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package cluster builds hierarchical point clusters over events for map
// rendering and resolves map clicks against them.
//
// An Index is immutable once built. Nodes live in a single arena and are
// addressed by their position in it: leaves take ids 0..n-1 in input order,
// aggregates follow. Each zoom level has its own static k-d tree over the
// nodes visible at that level. A node keeps its id across every level it
// survives to, so ids handed to a client stay meaningful for the lifetime of
// the build that produced them.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/geo"
	"github.com/bestfriendai/date-ai-discover/internal/metrics"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

var (
	// ErrUnknownFeature is returned for ids that do not exist in the index.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrStaleIndex is returned when a feature came from a different build.
	ErrStaleIndex = errors.New("stale cluster index")
)

// Options tunes clustering.
type Options struct {
	MinZoom   int     // lowest zoom that gets clusters
	MaxZoom   int     // highest zoom that gets clusters; leaves live at MaxZoom+1
	Radius    float64 // grouping radius in pixels
	Extent    float64 // tile extent the radius is relative to
	MinPoints int     // minimum members for a cluster
	NodeSize  int     // k-d tree bucket size
}

// DefaultOptions matches common web map settings.
func DefaultOptions() Options {
	return Options{
		MinZoom:   0,
		MaxZoom:   16,
		Radius:    60,
		Extent:    512,
		MinPoints: 2,
		NodeSize:  64,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o == (Options{}) {
		return def
	}
	if o.MinZoom < 0 {
		o.MinZoom = 0
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = o.MinZoom
	}
	if o.Radius <= 0 {
		o.Radius = def.Radius
	}
	if o.Extent <= 0 {
		o.Extent = def.Extent
	}
	if o.MinPoints < 2 {
		o.MinPoints = def.MinPoints
	}
	if o.NodeSize <= 0 {
		o.NodeSize = def.NodeSize
	}
	return o
}

type node struct {
	x, y      float64 // projected position; weighted centroid for aggregates
	zoom      float64 // lowest zoom processed so far
	numPoints int
	origin    int // zoom at which an aggregate formed; -1 for leaves
	parent    int
	children  []int
	event     int // index into Index.events; -1 for aggregates
}

// Index is one immutable cluster build.
type Index struct {
	opts       Options
	generation uint64
	events     []models.Event
	byEventID  map[string]int
	nodes      []node
	trees      []*kdTree // by zoom, MinZoom..MaxZoom+1
}

// Build indexes the events that have coordinates. Events without them are
// skipped. The result is deterministic for a given input order and options.
func Build(events []models.Event, opts Options, generation uint64) *Index {
	start := time.Now()
	opts = opts.withDefaults()

	idx := &Index{
		opts:       opts,
		generation: generation,
		byEventID:  make(map[string]int),
		trees:      make([]*kdTree, opts.MaxZoom+2),
	}
	for i := range events {
		if events[i].Coordinates == nil {
			continue
		}
		idx.events = append(idx.events, events[i])
	}

	level := make([]int, len(idx.events))
	idx.nodes = make([]node, 0, 2*len(idx.events))
	for i := range idx.events {
		c := idx.events[i].Coordinates
		idx.nodes = append(idx.nodes, node{
			x:         geo.LngX(c.Lng),
			y:         geo.LatY(c.Lat),
			zoom:      math.Inf(1),
			numPoints: 1,
			origin:    -1,
			parent:    -1,
			event:     i,
		})
		if _, dup := idx.byEventID[idx.events[i].ID]; !dup {
			idx.byEventID[idx.events[i].ID] = i
		}
		level[i] = i
	}

	idx.trees[opts.MaxZoom+1] = idx.treeFor(level)
	for z := opts.MaxZoom; z >= opts.MinZoom; z-- {
		level = idx.clusterLevel(level, z)
		idx.trees[z] = idx.treeFor(level)
	}

	metrics.RecordClusterBuild(len(idx.events), time.Since(start))
	return idx
}

func (idx *Index) treeFor(ids []int) *kdTree {
	xs := make([]float64, len(ids))
	ys := make([]float64, len(ids))
	for i, id := range ids {
		xs[i] = idx.nodes[id].x
		ys[i] = idx.nodes[id].y
	}
	return newKDTree(ids, xs, ys, idx.opts.NodeSize)
}

// clusterLevel groups the nodes visible at zoom z+1 into the node set for z.
func (idx *Index) clusterLevel(prev []int, z int) []int {
	tree := idx.trees[z+1]
	r := idx.opts.Radius / (idx.opts.Extent * math.Pow(2, float64(z)))
	zf := float64(z)
	next := make([]int, 0, len(prev))

	for _, id := range prev {
		p := &idx.nodes[id]
		if p.zoom <= zf {
			continue
		}
		p.zoom = zf

		neighbors := tree.within(p.x, p.y, r)
		origin := p.numPoints
		total := origin
		for _, pos := range neighbors {
			if n := &idx.nodes[tree.ids[pos]]; n.zoom > zf {
				total += n.numPoints
			}
		}

		if total > origin && total >= idx.opts.MinPoints {
			wx := p.x * float64(origin)
			wy := p.y * float64(origin)
			cid := len(idx.nodes)
			children := []int{id}
			for _, pos := range neighbors {
				nid := tree.ids[pos]
				n := &idx.nodes[nid]
				if n.zoom <= zf {
					continue
				}
				n.zoom = zf
				n.parent = cid
				wx += n.x * float64(n.numPoints)
				wy += n.y * float64(n.numPoints)
				children = append(children, nid)
			}
			idx.nodes[id].parent = cid
			idx.nodes = append(idx.nodes, node{
				x:         wx / float64(total),
				y:         wy / float64(total),
				zoom:      math.Inf(1),
				numPoints: total,
				origin:    z,
				parent:    -1,
				children:  children,
				event:     -1,
			})
			next = append(next, cid)
			continue
		}

		next = append(next, id)
		if total > 1 {
			for _, pos := range neighbors {
				nid := tree.ids[pos]
				if n := &idx.nodes[nid]; n.zoom > zf {
					n.zoom = zf
					next = append(next, nid)
				}
			}
		}
	}
	return next
}

// Generation identifies the build.
func (idx *Index) Generation() uint64 { return idx.generation }

// Len is the number of indexed events.
func (idx *Index) Len() int { return len(idx.events) }

// Options returns the effective options.
func (idx *Index) Options() Options { return idx.opts }

func (idx *Index) limitZoom(z float64) int {
	if math.IsNaN(z) {
		return idx.opts.MinZoom
	}
	lz := int(math.Floor(math.Min(math.Max(z, float64(idx.opts.MinZoom)), float64(idx.opts.MaxZoom+1))))
	return lz
}

// GetClusters returns the nodes visible inside bbox at zoom. Boxes that cross
// the antimeridian are split in two; boxes spanning 360 degrees or more cover
// the whole world.
func (idx *Index) GetClusters(bbox BBox, zoom float64) []models.ClusterNode {
	tree := idx.trees[idx.limitZoom(zoom)]
	if tree == nil {
		return []models.ClusterNode{}
	}

	west, south, east, north := bbox.normalized()
	var ids []int
	switch {
	case bbox.East()-bbox.West() >= 360:
		ids = tree.rangeQuery(0, geo.LatY(north), 1, geo.LatY(south))
	case west > east:
		ids = tree.rangeQuery(geo.LngX(west), geo.LatY(north), 1, geo.LatY(south))
		ids = append(ids, tree.rangeQuery(0, geo.LatY(north), geo.LngX(east), geo.LatY(south))...)
	default:
		ids = tree.rangeQuery(geo.LngX(west), geo.LatY(north), geo.LngX(east), geo.LatY(south))
	}

	out := make([]models.ClusterNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.toClusterNode(id))
	}
	return out
}

// Node returns the node with the given id.
func (idx *Index) Node(id int) (models.ClusterNode, error) {
	if id < 0 || id >= len(idx.nodes) {
		return models.ClusterNode{}, fmt.Errorf("node %d: %w", id, ErrUnknownFeature)
	}
	return idx.toClusterNode(id), nil
}

// EventNode returns the leaf for an event id.
func (idx *Index) EventNode(eventID string) (models.ClusterNode, error) {
	i, ok := idx.byEventID[eventID]
	if !ok {
		return models.ClusterNode{}, fmt.Errorf("event %q: %w", eventID, ErrUnknownFeature)
	}
	return idx.toClusterNode(i), nil
}

func (idx *Index) cluster(id int) (*node, error) {
	if id < 0 || id >= len(idx.nodes) || idx.nodes[id].event >= 0 {
		return nil, fmt.Errorf("cluster %d: %w", id, ErrUnknownFeature)
	}
	return &idx.nodes[id], nil
}

// GetChildren returns the nodes a cluster splits into one zoom level deeper.
func (idx *Index) GetChildren(clusterID int) ([]models.ClusterNode, error) {
	c, err := idx.cluster(clusterID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ClusterNode, len(c.children))
	for i, id := range c.children {
		out[i] = idx.toClusterNode(id)
	}
	return out, nil
}

// GetLeaves returns up to limit member events of a cluster after skipping
// offset of them. A limit of zero or less returns all remaining leaves.
func (idx *Index) GetLeaves(clusterID, limit, offset int) ([]models.ClusterNode, error) {
	if _, err := idx.cluster(clusterID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	var out []models.ClusterNode
	skipped := 0
	stack := []int{clusterID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &idx.nodes[id]
		if n.event >= 0 {
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, idx.toClusterNode(id))
			if limit > 0 && len(out) >= limit {
				break
			}
			continue
		}
		if skipped+n.numPoints <= offset && id != clusterID {
			skipped += n.numPoints
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	if out == nil {
		out = []models.ClusterNode{}
	}
	return out, nil
}

// GetExpansionZoom returns the lowest zoom at which the cluster breaks apart
// into more than one marker.
func (idx *Index) GetExpansionZoom(clusterID int) (int, error) {
	c, err := idx.cluster(clusterID)
	if err != nil {
		return 0, err
	}
	zoom := c.origin
	for zoom <= idx.opts.MaxZoom {
		zoom++
		if len(c.children) != 1 {
			break
		}
		child := &idx.nodes[c.children[0]]
		if child.event >= 0 {
			break
		}
		c = child
	}
	return zoom, nil
}

func (idx *Index) toClusterNode(id int) models.ClusterNode {
	n := &idx.nodes[id]
	if n.event >= 0 {
		ev := idx.events[n.event]
		return models.ClusterNode{
			ID:          id,
			Generation:  idx.generation,
			PointCount:  1,
			Coordinates: *ev.Coordinates,
			EventID:     ev.ID,
			Event:       &ev,
		}
	}
	return models.ClusterNode{
		ID:          id,
		Generation:  idx.generation,
		IsCluster:   true,
		PointCount:  n.numPoints,
		Coordinates: models.Coordinates{Lng: geo.XLng(n.x), Lat: geo.YLat(n.y)},
	}
}

// BBox is [west, south, east, north] in degrees.
type BBox [4]float64

// WorldBBox covers the whole map.
var WorldBBox = BBox{-180, -85, 180, 85}

func (b BBox) West() float64  { return b[0] }
func (b BBox) South() float64 { return b[1] }
func (b BBox) East() float64  { return b[2] }
func (b BBox) North() float64 { return b[3] }

// normalized wraps longitudes into [-180, 180] and clamps latitudes.
func (b BBox) normalized() (west, south, east, north float64) {
	west = wrapLng(b.West())
	east = 180.0
	if b.East() != 180 {
		east = wrapLng(b.East())
	}
	south = math.Max(-90, math.Min(90, b.South()))
	north = math.Max(-90, math.Min(90, b.North()))
	return west, south, east, north
}

func wrapLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

// ParseBBox parses "west,south,east,north".
func ParseBBox(s string) (BBox, error) {
	var b BBox
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return b, fmt.Errorf("bbox %q: want west,south,east,north", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return b, fmt.Errorf("bbox %q: bad number %q", s, p)
		}
		b[i] = v
	}
	if b.South() > b.North() {
		return b, fmt.Errorf("bbox %q: south is above north", s)
	}
	return b, nil
}
