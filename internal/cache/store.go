// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/metrics"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

const (
	// DefaultTTL is applied when Set is called with ttl <= 0.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxBytes is the default size budget (50 MB).
	DefaultMaxBytes int64 = 50 << 20

	// DefaultSweepInterval is how often Serve removes expired entries.
	DefaultSweepInterval = time.Minute
)

// Config configures a Store.
type Config struct {
	// Name labels log lines and metrics.
	Name string

	TTL           time.Duration
	MaxBytes      int64
	SweepInterval time.Duration
}

// DefaultConfig returns the standard search-result cache configuration.
func DefaultConfig() Config {
	return Config{
		Name:          "search",
		TTL:           DefaultTTL,
		MaxBytes:      DefaultMaxBytes,
		SweepInterval: DefaultSweepInterval,
	}
}

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
	expiresAt  time.Time
	sizeBytes  int64
	seq        uint64
	index      int
}

// Stats is a point-in-time snapshot. Taking it does not change any counter.
type Stats struct {
	Name        string    `json:"name"`
	Entries     int       `json:"entries"`
	BytesUsed   int64     `json:"bytesUsed"`
	MaxBytes    int64     `json:"maxBytes"`
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	Expirations int64     `json:"expirations"`
	HitRate     float64   `json:"hitRate"`
	LastSweep   time.Time `json:"lastSweep,omitempty"`
}

// Store is a TTL and size bounded cache.
type Store[V any] struct {
	mu        sync.RWMutex
	entries   map[string]*entry[V]
	queue     expiryQueue[V]
	usedBytes int64
	seq       uint64

	cfg    Config
	now    func() time.Time
	sizeOf func(V) (int64, error)

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	lastSweep   atomic.Int64
}

// New creates a Store. Zero config fields fall back to the defaults. The
// store does not sweep on its own; run Serve under a supervisor for that.
func New[V any](cfg Config) *Store[V] {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	return &Store[V]{
		entries: make(map[string]*entry[V]),
		cfg:     cfg,
		now:     time.Now,
		sizeOf:  jsonSize[V],
	}
}

func jsonSize[V any](v V) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// Get returns the value for key if present and unexpired.
func (s *Store[V]) Get(key string) (V, bool) {
	var zero V

	s.mu.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.RUnlock()
		s.recordMiss()
		return zero, false
	}
	now := s.now()
	if now.Before(e.expiresAt) {
		v := e.value
		s.mu.RUnlock()
		s.recordHit()
		return v, true
	}
	s.mu.RUnlock()

	// Expired but not yet swept. Re-check under the write lock since a
	// concurrent Set may have replaced the entry.
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur == e {
		s.removeLocked(e)
		s.expirations.Add(1)
		metrics.CacheExpirations.WithLabelValues(s.cfg.Name).Inc()
		s.publishSizeLocked()
	}
	s.mu.Unlock()

	s.recordMiss()
	return zero, false
}

// Set stores value under key with the given ttl (DefaultTTL when ttl <= 0).
// It returns a *models.CacheError when the value cannot be sized or is
// larger than the whole budget; the cache is left unchanged in that case.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.cfg.TTL
	}

	size, err := s.sizeOf(value)
	if err != nil {
		return &models.CacheError{Op: "set", Key: key, Err: fmt.Errorf("size estimate: %w", err)}
	}
	if size > s.cfg.MaxBytes {
		return &models.CacheError{Op: "set", Key: key, Err: fmt.Errorf("%w: %d > %d bytes", models.ErrEntryTooLarge, size, s.cfg.MaxBytes)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.removeLocked(old)
	}

	evicted := 0
	for s.usedBytes+size > s.cfg.MaxBytes {
		victim := s.queue.peek()
		if victim == nil {
			break
		}
		s.removeLocked(victim)
		evicted++
	}
	if evicted > 0 {
		s.evictions.Add(int64(evicted))
		metrics.CacheEvictions.WithLabelValues(s.cfg.Name).Add(float64(evicted))
		logging.Debug().
			Str("cache", s.cfg.Name).
			Int("evicted", evicted).
			Int64("incoming_bytes", size).
			Msg("evicted cache entries to make room")
	}

	now := s.now()
	s.seq++
	e := &entry[V]{
		key:        key,
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
		sizeBytes:  size,
		seq:        s.seq,
	}
	s.entries[key] = e
	s.queue.push(e)
	s.usedBytes += size
	s.publishSizeLocked()
	return nil
}

// Delete removes key. Reports whether it was present.
func (s *Store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.removeLocked(e)
	s.publishSizeLocked()
	return true
}

// Clear drops every entry. Counters are kept.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry[V])
	s.queue.reset()
	s.usedBytes = 0
	s.publishSizeLocked()
}

// Sweep removes all expired entries and returns how many were removed.
func (s *Store[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for {
		e := s.queue.peek()
		if e == nil || now.Before(e.expiresAt) {
			break
		}
		s.removeLocked(e)
		removed++
	}
	s.lastSweep.Store(now.UnixNano())
	if removed > 0 {
		s.expirations.Add(int64(removed))
		metrics.CacheExpirations.WithLabelValues(s.cfg.Name).Add(float64(removed))
	}
	s.publishSizeLocked()
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns a snapshot of size and hit/miss counters.
func (s *Store[V]) Stats() Stats {
	s.mu.RLock()
	entries := len(s.entries)
	used := s.usedBytes
	s.mu.RUnlock()

	hits, misses := s.hits.Load(), s.misses.Load()
	st := Stats{
		Name:        s.cfg.Name,
		Entries:     entries,
		BytesUsed:   used,
		MaxBytes:    s.cfg.MaxBytes,
		Hits:        hits,
		Misses:      misses,
		Evictions:   s.evictions.Load(),
		Expirations: s.expirations.Load(),
	}
	if total := hits + misses; total > 0 {
		st.HitRate = float64(hits) / float64(total) * 100
	}
	if ns := s.lastSweep.Load(); ns != 0 {
		st.LastSweep = time.Unix(0, ns)
	}
	return st
}

// Serve runs the periodic expiry sweep until ctx is canceled. It implements
// suture.Service.
func (s *Store[V]) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logging.Debug().Str("cache", s.cfg.Name).Int("expired", n).Msg("cache sweep")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Store[V]) String() string {
	return "cache-sweeper-" + s.cfg.Name
}

// removeLocked unlinks e from the map, the heap and the size counter.
func (s *Store[V]) removeLocked(e *entry[V]) {
	delete(s.entries, e.key)
	s.queue.remove(e)
	s.usedBytes -= e.sizeBytes
}

func (s *Store[V]) publishSizeLocked() {
	metrics.CacheBytes.WithLabelValues(s.cfg.Name).Set(float64(s.usedBytes))
	metrics.CacheEntries.WithLabelValues(s.cfg.Name).Set(float64(len(s.entries)))
}

func (s *Store[V]) recordHit() {
	s.hits.Add(1)
	metrics.CacheHits.WithLabelValues(s.cfg.Name).Inc()
}

func (s *Store[V]) recordMiss() {
	s.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(s.cfg.Name).Inc()
}
