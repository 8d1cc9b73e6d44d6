// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package loading

import (
	"errors"
	"sync"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	if tr.Snapshot().Loading {
		t.Fatal("new tracker should not be loading")
	}

	op := tr.Begin("search", []string{"ticketmaster", "yelp"})
	s := tr.Snapshot()
	if !s.Loading || len(s.Operations) != 1 {
		t.Fatalf("after Begin: %+v", s)
	}
	if got := s.Operations[0].Sources[1]; got.Source != "yelp" || got.Status != StatusPending {
		t.Errorf("source = %+v", got)
	}

	op.Settle("yelp", 7, nil)
	op.Settle("ticketmaster", 0, errors.New("timeout"))
	op.Settle("ticketmaster", 3, nil) // repeated settle ignored
	op.Settle("unknown", 1, nil)

	s = tr.Snapshot()
	srcs := s.Operations[0].Sources
	if srcs[0].Status != StatusFailed || srcs[0].Error != "timeout" || srcs[0].Count != 0 {
		t.Errorf("ticketmaster = %+v", srcs[0])
	}
	if srcs[1].Status != StatusDone || srcs[1].Count != 7 {
		t.Errorf("yelp = %+v", srcs[1])
	}
	if s.Operations[0].Settled != 2 {
		t.Errorf("Settled = %d, want 2", s.Operations[0].Settled)
	}

	op.End()
	op.End()
	if tr.Snapshot().Loading {
		t.Error("tracker still loading after End")
	}
}

func TestTrackerSubscribe(t *testing.T) {
	tr := NewTracker()
	var got []State
	unsubscribe := tr.Subscribe(func(s State) { got = append(got, s) })

	op := tr.Begin("search", []string{"ics"})
	op.Settle("ics", 2, nil)
	op.End()

	if len(got) != 3 {
		t.Fatalf("notifications = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Version <= got[i-1].Version {
			t.Errorf("versions not increasing: %d then %d", got[i-1].Version, got[i].Version)
		}
	}
	if !got[0].Loading || got[2].Loading {
		t.Errorf("loading flags = %v, %v", got[0].Loading, got[2].Loading)
	}

	unsubscribe()
	unsubscribe()
	tr.Begin("search", nil).End()
	if len(got) != 3 {
		t.Errorf("unsubscribed callback still invoked: %d", len(got))
	}
}

func TestTrackerSnapshotIsCopy(t *testing.T) {
	tr := NewTracker()
	op := tr.Begin("search", []string{"yelp"})
	s := tr.Snapshot()
	s.Operations[0].Sources[0].Status = StatusDone

	if tr.Snapshot().Operations[0].Sources[0].Status != StatusPending {
		t.Error("mutating a snapshot changed tracker state")
	}
	op.End()
}

func TestTrackerClose(t *testing.T) {
	tr := NewTracker()
	calls := 0
	tr.Subscribe(func(State) { calls++ })
	op := tr.Begin("search", []string{"yelp"})

	tr.Close()
	tr.Close()
	op.Settle("yelp", 1, nil)
	op.End()
	tr.Begin("search", []string{"yelp"})

	if calls != 1 {
		t.Errorf("calls = %d, want only the pre-close Begin", calls)
	}
	if tr.Snapshot().Loading {
		t.Error("closed tracker reports loading")
	}
	if unsub := tr.Subscribe(func(State) { calls++ }); unsub == nil {
		t.Error("Subscribe after Close should return a no-op func")
	}
}

func TestTrackerOperationOrder(t *testing.T) {
	tr := NewTracker()
	a := tr.Begin("search", nil)
	b := tr.Begin("cluster", nil)
	s := tr.Snapshot()
	if s.Operations[0].ID != a.ID() || s.Operations[1].ID != b.ID() {
		t.Errorf("operations out of order: %s, %s", s.Operations[0].ID, s.Operations[1].ID)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker()
	var mu sync.Mutex
	var maxVersion uint64
	tr.Subscribe(func(s State) {
		mu.Lock()
		if s.Version > maxVersion {
			maxVersion = s.Version
		}
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			op := tr.Begin("search", []string{"a", "b"})
			op.Settle("a", 1, nil)
			op.Settle("b", 2, nil)
			op.End()
		}()
	}
	wg.Wait()

	if tr.Snapshot().Loading {
		t.Error("operations leaked")
	}
	if maxVersion != 200 {
		t.Errorf("max version = %d, want 200", maxVersion)
	}
}
