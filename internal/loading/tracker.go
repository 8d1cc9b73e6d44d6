// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package loading tracks in-flight aggregations so clients can render
// per-source progress.
//
// A Tracker is created by the caller and handed to whoever reports or
// observes progress:
//
//	tr := loading.NewTracker()
//	op := tr.Begin("search", []string{"ticketmaster", "yelp"})
//	op.Settle("yelp", 12, nil)
//	op.End()
//
// Subscribers receive a full State after every change. Each State carries a
// monotonically increasing Version; consumers that may observe deliveries
// out of order keep the highest one.
package loading

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/metrics"
)

// SourceStatus is the progress of one source within one operation.
type SourceStatus string

const (
	StatusPending SourceStatus = "pending"
	StatusDone    SourceStatus = "done"
	StatusFailed  SourceStatus = "failed"
)

// SourceState describes one source of an operation.
type SourceState struct {
	Source string       `json:"source"`
	Status SourceStatus `json:"status"`
	Count  int          `json:"count"`
	Error  string       `json:"error,omitempty"`
}

// OperationState describes one in-flight operation.
type OperationState struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"startedAt"`
	Sources   []SourceState `json:"sources"`
	Settled   int           `json:"settled"`
}

// State is a point-in-time view of every in-flight operation.
type State struct {
	Version    uint64           `json:"version"`
	Loading    bool             `json:"loading"`
	Operations []OperationState `json:"operations"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

type operation struct {
	id        string
	name      string
	startedAt time.Time
	seq       uint64
	sources   []SourceState
	index     map[string]int
	settled   int
}

// Tracker records operations and fans state out to subscribers. The zero
// value is not usable; call NewTracker.
type Tracker struct {
	mu      sync.Mutex
	ops     map[string]*operation
	subs    map[uint64]func(State)
	version uint64
	closed  bool

	nextOp  atomic.Uint64
	nextSub uint64
	now     func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ops:  make(map[string]*operation),
		subs: make(map[uint64]func(State)),
		now:  time.Now,
	}
}

// Operation is the handle returned by Begin.
type Operation struct {
	tracker *Tracker
	id      string
	ended   atomic.Bool
}

// ID returns the operation id, unique within the tracker.
func (o *Operation) ID() string { return o.id }

// Begin registers an operation waiting on sources.
func (t *Tracker) Begin(name string, sources []string) *Operation {
	seq := t.nextOp.Add(1)
	id := name + "-" + strconv.FormatUint(seq, 10)
	op := &Operation{tracker: t, id: id}

	t.update(func() bool {
		if t.closed {
			return false
		}
		o := &operation{
			id:        id,
			name:      name,
			startedAt: t.now(),
			seq:       seq,
			sources:   make([]SourceState, len(sources)),
			index:     make(map[string]int, len(sources)),
		}
		for i, s := range sources {
			o.sources[i] = SourceState{Source: s, Status: StatusPending}
			o.index[s] = i
		}
		t.ops[id] = o
		metrics.LoadingOperationsActive.Inc()
		return true
	})
	return op
}

// Settle marks source finished with count results or err. Unknown sources
// and repeated settles are ignored.
func (o *Operation) Settle(source string, count int, err error) {
	t := o.tracker
	t.update(func() bool {
		op, ok := t.ops[o.id]
		if !ok {
			return false
		}
		i, ok := op.index[source]
		if !ok || op.sources[i].Status != StatusPending {
			return false
		}
		st := &op.sources[i]
		st.Count = count
		if err != nil {
			st.Status = StatusFailed
			st.Error = err.Error()
		} else {
			st.Status = StatusDone
		}
		op.settled++
		return true
	})
}

// End removes the operation. It is safe to call more than once.
func (o *Operation) End() {
	if !o.ended.CompareAndSwap(false, true) {
		return
	}
	t := o.tracker
	t.update(func() bool {
		if _, ok := t.ops[o.id]; !ok {
			return false
		}
		delete(t.ops, o.id)
		metrics.LoadingOperationsActive.Dec()
		return true
	})
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Subscribe registers fn for every future change and returns a function
// that removes it. fn runs on the goroutine that made the change and must
// not block.
func (t *Tracker) Subscribe(fn func(State)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return func() {}
	}
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Close drops every subscriber and in-flight operation. Later calls are
// no-ops.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	metrics.LoadingOperationsActive.Sub(float64(len(t.ops)))
	t.ops = make(map[string]*operation)
	t.subs = make(map[uint64]func(State))
}

// update applies mutate under the lock and, when it reports a change,
// notifies subscribers outside the lock.
func (t *Tracker) update(mutate func() bool) {
	t.mu.Lock()
	if !mutate() {
		t.mu.Unlock()
		return
	}
	t.version++
	state := t.snapshotLocked()
	subs := make([]func(State), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (t *Tracker) snapshotLocked() State {
	ops := make([]*operation, 0, len(t.ops))
	for _, o := range t.ops {
		ops = append(ops, o)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].seq < ops[j].seq })

	s := State{
		Version:    t.version,
		Loading:    len(ops) > 0,
		Operations: make([]OperationState, len(ops)),
		UpdatedAt:  t.now(),
	}
	for i, o := range ops {
		s.Operations[i] = OperationState{
			ID:        o.id,
			Name:      o.name,
			StartedAt: o.startedAt,
			Sources:   append([]SourceState(nil), o.sources...),
			Settled:   o.settled,
		}
	}
	return s
}
