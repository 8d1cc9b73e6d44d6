// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bestfriendai/date-ai-discover/internal/loading"
	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/metrics"
)

//nolint:gochecknoinits // quiet logs for every test in the package
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// startHub serves a new hub until the test ends. welcome may be nil.
func startHub(t *testing.T, welcome func() Message) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	hub.Welcome = welcome
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- hub.Serve(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel, errc
}

func testClient(hub *Hub, buffer int) *Client {
	return &Client{seq: clientSeq.Add(1), id: "test", hub: hub, send: make(chan Message, buffer)}
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message within 1s")
	}
	return Message{}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting: %s", msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastInConnectionOrder(t *testing.T) {
	hub, _, _ := startHub(t, nil)
	a, b := testClient(hub, 4), testClient(hub, 4)
	hub.Register <- a
	hub.Register <- b

	hub.BroadcastJSON("test", "hello")
	for _, c := range []*Client{a, b} {
		if msg := receive(t, c.send); msg.Type != "test" || msg.Data != "hello" {
			t.Errorf("client %d got %+v", c.seq, msg)
		}
	}
	if hub.GetClientCount() != 2 {
		t.Errorf("clients = %d, want 2", hub.GetClientCount())
	}
}

func TestHubWelcome(t *testing.T) {
	hub, _, _ := startHub(t, func() Message { return Message{Type: "hello", Data: 1} })

	c := testClient(hub, 4)
	hub.Register <- c
	if msg := receive(t, c.send); msg.Type != "hello" {
		t.Errorf("first message = %+v, want hello", msg)
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub, _, _ := startHub(t, nil)
	before := testutil.ToFloat64(metrics.WSMessagesDropped)

	slow := testClient(hub, 1)
	slow.send <- Message{Type: "filler"}
	fast := testClient(hub, 4)
	hub.Register <- slow
	hub.Register <- fast

	hub.BroadcastJSON("test", nil)
	receive(t, fast.send)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 }, "slow client removal")

	<-slow.send // filler
	if _, ok := <-slow.send; ok {
		t.Error("slow client's channel should be closed")
	}
	if got := testutil.ToFloat64(metrics.WSMessagesDropped) - before; got < 1 {
		t.Errorf("dropped counter grew by %v", got)
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub() // not served
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.BroadcastJSON("test", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastJSON blocked on a full queue")
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("queue holds %d, want %d", len(hub.broadcast), cap(hub.broadcast))
	}
}

func TestHubUnregister(t *testing.T) {
	hub, _, _ := startHub(t, nil)
	c := testClient(hub, 4)
	hub.Register <- c
	hub.Unregister <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 0 }, "unregister")
	if _, ok := <-c.send; ok {
		t.Error("unregistered client's channel should be closed")
	}
	// Unregistering twice is harmless.
	hub.Unregister <- c
}

func TestHubShutdown(t *testing.T) {
	hub, cancel, errc := startHub(t, nil)
	c := testClient(hub, 4)
	hub.Register <- c

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel should be closed on shutdown")
	}

	done := make(chan struct{})
	go func() {
		hub.unregister(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}
	if hub.Join(testClient(hub, 1)) {
		t.Error("Join succeeded after shutdown")
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled = %s", got)
	}
	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline = %s", got)
	}
}

func TestBridgeForwardsTrackerStates(t *testing.T) {
	tracker := loading.NewTracker()
	defer tracker.Close()
	hub := NewHub()
	bridge := NewBridge(tracker, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Serve(ctx) }()
	bridgeDone := make(chan error, 1)
	go func() { bridgeDone <- bridge.Serve(ctx) }()

	c := testClient(hub, 64)
	hub.Register <- c
	welcome := receive(t, c.send)
	if st, ok := welcome.Data.(loading.State); !ok || welcome.Type != MessageTypeLoadingState || st.Loading {
		t.Fatalf("welcome = %+v", welcome)
	}

	// Subscription happens on the bridge goroutine; keep changing state
	// until a broadcast arrives.
	var op *loading.Operation
	deadline := time.After(time.Second)
	for {
		op = tracker.Begin("search", []string{"yelp"})
		select {
		case msg := <-c.send:
			st, ok := msg.Data.(loading.State)
			if !ok || msg.Type != MessageTypeLoadingState {
				t.Fatalf("message = %+v", msg)
			}
			if st.Version == 0 {
				t.Errorf("broadcast state has version 0")
			}
			op.End()
			cancel()
			if err := <-bridgeDone; !errors.Is(err, context.Canceled) {
				t.Errorf("bridge returned %v", err)
			}
			return
		case <-time.After(10 * time.Millisecond):
			op.End()
		case <-deadline:
			t.Fatal("no loading_state broadcast")
		}
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("json = %s", data)
	}
}
