// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package websocket streams loading-state updates to browser clients.

# Architecture

A single Hub goroutine owns the client set. Clients are added and removed
through the Register and Unregister channels and broadcasts are queued on a
buffered channel:

	Tracker ──Subscribe──▶ Bridge ──BroadcastJSON──▶ Hub ──send chan──▶ Client.writePump ──▶ conn

Each Client runs two goroutines: readPump answers application-level pings
and detects disconnects, writePump serialises queued messages and sends
protocol pings every pingPeriod.

# Backpressure

Nothing in this package blocks a producer. When the hub's broadcast queue is
full the message is dropped. When a client's send buffer is full the client
is disconnected. Both increment websocket_messages_dropped_total.

# Message Format

	{"type": "loading_state", "data": {"version": 12, "loading": true, "operations": [...]}}

A new client receives the current snapshot first, then every change. Clients
should ignore a state whose version is not higher than the last one applied.

# Supervision

Hub and Bridge implement suture.Service. Cancelling the context closes every
client connection and returns ctx.Err().
*/
package websocket
