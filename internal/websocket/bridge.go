// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package websocket

import (
	"context"

	"github.com/bestfriendai/date-ai-discover/internal/loading"
)

// Bridge forwards loading-tracker snapshots to a hub.
type Bridge struct {
	tracker *loading.Tracker
	hub     *Hub
}

// NewBridge connects tracker to hub. It also sets the hub's Welcome message
// to the tracker's current snapshot, so it must be created before the hub is
// served.
func NewBridge(tracker *loading.Tracker, hub *Hub) *Bridge {
	hub.Welcome = func() Message {
		return Message{Type: MessageTypeLoadingState, Data: tracker.Snapshot()}
	}
	return &Bridge{tracker: tracker, hub: hub}
}

// Serve subscribes to the tracker until ctx is canceled. It implements
// suture.Service.
func (b *Bridge) Serve(ctx context.Context) error {
	unsubscribe := b.tracker.Subscribe(func(s loading.State) {
		b.hub.BroadcastJSON(MessageTypeLoadingState, s)
	})
	defer unsubscribe()

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bridge) String() string {
	return "loading-bridge"
}
