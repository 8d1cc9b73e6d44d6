// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(maxBytes int64) (*Store[string], *fakeClock) {
	clock := newFakeClock()
	s := New[string](Config{Name: "test", MaxBytes: maxBytes})
	s.now = clock.Now
	return s, clock
}

// value returns a string whose JSON encoding is exactly n bytes.
func value(n int) string {
	return strings.Repeat("x", n-2)
}

func TestStoreBasicOperations(t *testing.T) {
	s, _ := newTestStore(1 << 20)

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for missing key")
	}

	if err := s.Set("a", "alpha", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := s.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}

	if err := s.Set("a", "alpha-2", 0); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("a"); got != "alpha-2" {
		t.Errorf("overwrite failed, got %q", got)
	}
	if st := s.Stats(); st.Entries != 1 || st.BytesUsed != int64(len(`"alpha-2"`)) {
		t.Errorf("stats after overwrite = %+v", st)
	}

	if !s.Delete("a") {
		t.Error("Delete should report presence")
	}
	if s.Delete("a") {
		t.Error("second Delete should report absence")
	}

	_ = s.Set("b", "beta", 0)
	_ = s.Set("c", "gamma", 0)
	s.Clear()
	if s.Len() != 0 || s.Stats().BytesUsed != 0 {
		t.Errorf("Clear left %d entries, %d bytes", s.Len(), s.Stats().BytesUsed)
	}
}

func TestStoreExpiryIsCheckedOnRead(t *testing.T) {
	s, clock := newTestStore(1 << 20)

	_ = s.Set("k", "v", time.Minute)
	clock.Advance(59 * time.Second)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry should still be live")
	}

	clock.Advance(time.Second)
	if _, ok := s.Get("k"); ok {
		t.Fatal("entry at its expiry instant must be a miss")
	}
	if s.Len() != 0 {
		t.Error("expired entry should be removed on read")
	}
	if st := s.Stats(); st.Expirations != 1 {
		t.Errorf("expirations = %d", st.Expirations)
	}
}

func TestStoreDefaultTTL(t *testing.T) {
	s, clock := newTestStore(1 << 20)
	_ = s.Set("k", "v", 0)

	clock.Advance(DefaultTTL - time.Second)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry should live for the default TTL")
	}
	clock.Advance(time.Second)
	if _, ok := s.Get("k"); ok {
		t.Fatal("entry should expire after the default TTL")
	}
}

func TestStoreSweep(t *testing.T) {
	s, clock := newTestStore(1 << 20)
	_ = s.Set("short", "1", time.Minute)
	_ = s.Set("long", "2", time.Hour)

	clock.Advance(2 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
	if _, ok := s.Get("long"); !ok {
		t.Error("unexpired entry must survive the sweep")
	}
	if s.Stats().LastSweep.IsZero() {
		t.Error("LastSweep should be recorded")
	}
}

func TestStoreEvictsSoonestExpiringFirst(t *testing.T) {
	s, _ := newTestStore(30)

	_ = s.Set("a", value(10), 1*time.Minute)
	_ = s.Set("b", value(10), 3*time.Minute)
	_ = s.Set("c", value(10), 2*time.Minute)
	if st := s.Stats(); st.BytesUsed != 30 {
		t.Fatalf("BytesUsed = %d, want 30", st.BytesUsed)
	}

	// One slot needed: only "a" (soonest) goes.
	if err := s.Set("d", value(10), 5*time.Minute); err != nil {
		t.Fatal(err)
	}
	assertKeys(t, s, []string{"b", "c", "d"}, []string{"a"})

	// Two slots needed: "c" (2m) then "b" (3m), and nothing else.
	if err := s.Set("e", value(20), 10*time.Minute); err != nil {
		t.Fatal(err)
	}
	assertKeys(t, s, []string{"d", "e"}, []string{"b", "c"})

	st := s.Stats()
	if st.Evictions != 3 {
		t.Errorf("Evictions = %d, want 3", st.Evictions)
	}
	if st.BytesUsed != 30 {
		t.Errorf("BytesUsed = %d, want 30", st.BytesUsed)
	}
}

func TestStoreEvictionNeverExceedsNeed(t *testing.T) {
	s, _ := newTestStore(100)
	for i := 0; i < 10; i++ {
		_ = s.Set(fmt.Sprintf("k%d", i), value(10), time.Duration(i+1)*time.Minute)
	}

	// 5 spare bytes are needed; a single 10-byte eviction suffices.
	if err := s.Set("new", value(5), time.Hour); err != nil {
		t.Fatal(err)
	}
	if st := s.Stats(); st.Evictions != 1 || st.Entries != 10 {
		t.Errorf("stats = %+v, want exactly one eviction", st)
	}
	if _, ok := s.Get("k0"); ok {
		t.Error("k0 expires first and should have been evicted")
	}
}

func TestStoreRejectsOversizedEntry(t *testing.T) {
	s, _ := newTestStore(10)
	_ = s.Set("small", value(5), 0)

	err := s.Set("huge", value(11), 0)
	var ce *models.CacheError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CacheError, got %v", err)
	}
	if !errors.Is(err, models.ErrEntryTooLarge) {
		t.Errorf("expected ErrEntryTooLarge, got %v", err)
	}
	if _, ok := s.Get("small"); !ok {
		t.Error("rejected insert must not evict anything")
	}
}

func TestStoreSizeErrorIsCacheError(t *testing.T) {
	s := New[chan int](Config{Name: "bad"})
	err := s.Set("k", make(chan int), 0)
	var ce *models.CacheError
	if !errors.As(err, &ce) || ce.Op != "set" {
		t.Fatalf("expected CacheError for unencodable value, got %v", err)
	}
}

func TestStoreStatsDoNotMutateCounters(t *testing.T) {
	s, _ := newTestStore(1 << 20)
	_ = s.Set("k", "v", 0)
	s.Get("k")
	s.Get("k")
	s.Get("nope")

	first := s.Stats()
	second := s.Stats()
	if first.Hits != 2 || first.Misses != 1 {
		t.Errorf("hits/misses = %d/%d", first.Hits, first.Misses)
	}
	if first.Hits != second.Hits || first.Misses != second.Misses {
		t.Error("Stats must not change counters")
	}
	if first.HitRate < 66.6 || first.HitRate > 66.7 {
		t.Errorf("HitRate = %v", first.HitRate)
	}
}

func TestStoreServeStopsOnCancel(t *testing.T) {
	s := New[string](Config{Name: "serve", SweepInterval: 5 * time.Millisecond})
	_ = s.Set("k", "v", time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for s.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Len() != 0 {
		t.Error("background sweep did not remove the expired entry")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if s.String() != "cache-sweeper-serve" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestStoreConcurrency(t *testing.T) {
	s := New[string](Config{Name: "concurrent", MaxBytes: 4096})
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (w*31+i)%64)
				switch i % 4 {
				case 0:
					_ = s.Set(key, value(40), time.Duration(i%7+1)*time.Millisecond)
				case 1:
					s.Delete(key)
				case 2:
					s.Sweep()
				default:
					s.Get(key)
				}
			}
		}(w)
	}
	wg.Wait()

	st := s.Stats()
	if st.BytesUsed < 0 || st.BytesUsed > 4096 {
		t.Errorf("BytesUsed out of bounds: %d", st.BytesUsed)
	}
	if int64(st.Entries)*40 != st.BytesUsed {
		t.Errorf("size counter drifted: %d entries, %d bytes", st.Entries, st.BytesUsed)
	}
}

func assertKeys(t *testing.T, s *Store[string], present, absent []string) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range present {
		if _, ok := s.entries[k]; !ok {
			t.Errorf("expected %q to be present", k)
		}
	}
	for _, k := range absent {
		if _, ok := s.entries[k]; ok {
			t.Errorf("expected %q to be evicted", k)
		}
	}
}

func BenchmarkStoreGet(b *testing.B) {
	s := New[string](DefaultConfig())
	_ = s.Set("k", "v", time.Hour)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Get("k")
		}
	})
}
