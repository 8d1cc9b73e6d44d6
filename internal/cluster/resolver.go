// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cluster

import (
	"errors"
	"fmt"

	"github.com/bestfriendai/date-ai-discover/internal/metrics"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// DefaultMinSelectZoom is the zoom a selected point is brought to when the
// map is further out.
const DefaultMinSelectZoom = 14

// ActionKind is what the map should do after a click.
type ActionKind string

const (
	ActionZoom   ActionKind = "zoom"
	ActionSelect ActionKind = "select"
	ActionNone   ActionKind = "none"
)

// Feature is one rendered marker under the click, as the client saw it.
type Feature struct {
	Cluster    bool   `json:"cluster"`
	ClusterID  int    `json:"clusterId"`
	EventID    string `json:"eventId,omitempty"`
	Generation uint64 `json:"generation"`
}

// Click is a map click. Features are ordered topmost first.
type Click struct {
	Zoom     float64   `json:"zoom"`
	Features []Feature `json:"features"`
}

// Action is the resolved command for the map.
type Action struct {
	Action  ActionKind          `json:"action"`
	Center  *models.Coordinates `json:"center,omitempty"`
	Zoom    *float64            `json:"zoom,omitempty"`
	EventID string              `json:"eventId,omitempty"`
}

var noAction = Action{Action: ActionNone}

// Resolver turns clicks into actions against an Indexer's current build.
type Resolver struct {
	indexer       *Indexer
	minSelectZoom float64
}

// NewResolver creates a Resolver. A minSelectZoom of zero or less uses
// DefaultMinSelectZoom.
func NewResolver(ix *Indexer, minSelectZoom float64) *Resolver {
	if minSelectZoom <= 0 {
		minSelectZoom = DefaultMinSelectZoom
	}
	return &Resolver{indexer: ix, minSelectZoom: minSelectZoom}
}

// Resolve looks only at the topmost feature. It never selects an event for
// a cluster click and never zooms to a cluster for a point click. Errors
// always come with a none action.
func (r *Resolver) Resolve(click Click) (Action, error) {
	action, err := r.resolve(click)
	label := string(action.Action)
	if err != nil {
		label = "unknown"
		if errors.Is(err, ErrStaleIndex) {
			label = "stale"
		}
	}
	metrics.ClusterClicksTotal.WithLabelValues(label).Inc()
	return action, err
}

func (r *Resolver) resolve(click Click) (Action, error) {
	if len(click.Features) == 0 {
		return noAction, nil
	}
	top := click.Features[0]

	idx := r.indexer.Current()
	if idx == nil || idx.Generation() != top.Generation {
		var current uint64
		if idx != nil {
			current = idx.Generation()
		}
		return noAction, fmt.Errorf("feature generation %d, current %d: %w", top.Generation, current, ErrStaleIndex)
	}

	if top.Cluster {
		n, err := idx.Node(top.ClusterID)
		if err != nil || !n.IsCluster {
			return noAction, fmt.Errorf("cluster %d: %w", top.ClusterID, ErrUnknownFeature)
		}
		zoom, err := idx.GetExpansionZoom(top.ClusterID)
		if err != nil {
			return noAction, err
		}
		center := n.Coordinates
		z := float64(zoom)
		return Action{Action: ActionZoom, Center: &center, Zoom: &z}, nil
	}

	n, err := idx.EventNode(top.EventID)
	if err != nil {
		return noAction, err
	}
	action := Action{Action: ActionSelect, EventID: n.EventID}
	if click.Zoom < r.minSelectZoom {
		center := n.Coordinates
		z := r.minSelectZoom
		action.Center = &center
		action.Zoom = &z
	}
	return action, nil
}
