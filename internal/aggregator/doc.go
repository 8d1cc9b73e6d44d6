// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package aggregator runs one search across every provider and produces a
single normalized, classified, deduplicated, filtered and sorted result.

Pipeline for Search:
 1. Validate the request.
 2. Fingerprint the filter set (pagination and sort key excluded).
 3. On a cache hit, sort and paginate the cached list.
 4. Otherwise call every provider concurrently, each under its own timeout
    derived from the request context, and wait for all of them.
 5. Merge in provider registration order and classify each event.
 6. Deduplicate on normalized (title, date, venue); first occurrence wins.
 7. Filter: price, then date, then category, then keyword.
 8. Cache the filtered list unless every provider failed.
 9. Sort (date, distance or price; all stable) and paginate.

Provider failures never fail the request. They are reported per source in
SourceStats and the remaining sources still contribute.
*/
package aggregator
