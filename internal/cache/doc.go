// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package cache provides the in-memory caches used by the discovery service.

Store is a TTL and size bounded key/value store used for aggregated search
results:

  - every entry expires independently (default TTL 5 minutes)
  - entry size is the length of its JSON encoding; the total is capped
    (default 50 MB)
  - when an insert would exceed the cap, entries are evicted soonest-to-expire
    first until the new entry fits, and no further
  - a background sweep (Serve) removes expired entries on an interval, and Get
    treats an expired entry as a miss even before the sweep runs

LRU is a small capacity-bounded cache with per-entry TTL, used for map
sessions.

Fingerprint derives a stable cache key from normalized request parameters.

Thread Safety:
Both caches are safe for concurrent use. Store readers share a read lock;
mutations, eviction and sweeps take the write lock.
*/
package cache
