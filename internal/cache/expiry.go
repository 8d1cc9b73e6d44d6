// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cache

// expiryQueue is an indexed binary min-heap of store entries ordered by
// expiresAt, then insertion sequence. It is not synchronized; the owning
// Store holds its lock around every call.
type expiryQueue[V any] struct {
	items []*entry[V]
}

func (q *expiryQueue[V]) Len() int {
	return len(q.items)
}

// push adds e and records its heap position in e.index.
func (q *expiryQueue[V]) push(e *entry[V]) {
	e.index = len(q.items)
	q.items = append(q.items, e)
	q.up(e.index)
}

// peek returns the soonest-to-expire entry without removing it.
func (q *expiryQueue[V]) peek() *entry[V] {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// remove deletes e from wherever it sits in the heap.
func (q *expiryQueue[V]) remove(e *entry[V]) {
	i := e.index
	if i < 0 || i >= len(q.items) || q.items[i] != e {
		return
	}
	last := len(q.items) - 1
	if i != last {
		q.swap(i, last)
	}
	q.items[last] = nil
	q.items = q.items[:last]
	e.index = -1
	if i != last {
		if !q.up(i) {
			q.down(i)
		}
	}
}

func (q *expiryQueue[V]) reset() {
	for _, e := range q.items {
		e.index = -1
	}
	q.items = nil
}

func (q *expiryQueue[V]) less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.expiresAt.Equal(b.expiresAt) {
		return a.seq < b.seq
	}
	return a.expiresAt.Before(b.expiresAt)
}

func (q *expiryQueue[V]) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

// up moves the element at i toward the root. Reports whether it moved.
func (q *expiryQueue[V]) up(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

func (q *expiryQueue[V]) down(i int) {
	n := len(q.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && q.less(left, smallest) {
			smallest = left
		}
		if right < n && q.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}
