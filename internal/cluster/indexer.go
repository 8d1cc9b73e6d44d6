// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cluster

import (
	"sync"
	"sync/atomic"

	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// Indexer owns the current Index for one map view. Rebuild replaces it
// wholesale; earlier builds are dropped.
type Indexer struct {
	opts Options

	mu      sync.RWMutex
	current *Index

	generation atomic.Uint64
}

// NewIndexer creates an Indexer with no index yet.
func NewIndexer(opts Options) *Indexer {
	return &Indexer{opts: opts.withDefaults()}
}

// Rebuild indexes events under a fresh generation and makes it current.
func (ix *Indexer) Rebuild(events []models.Event) *Index {
	gen := ix.generation.Add(1)
	idx := Build(events, ix.opts, gen)

	ix.mu.Lock()
	// A slower concurrent rebuild with an older generation must not win.
	if ix.current == nil || ix.current.generation < gen {
		ix.current = idx
	}
	cur := ix.current
	ix.mu.Unlock()

	logging.Debug().
		Uint64("generation", gen).
		Int("points", idx.Len()).
		Msg("cluster index rebuilt")
	return cur
}

// Current returns the latest index, or nil before the first Rebuild.
func (ix *Indexer) Current() *Index {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.current
}
