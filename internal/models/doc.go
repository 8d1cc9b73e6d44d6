// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package models defines the provider-agnostic data structures shared by the
aggregation pipeline, the cache, the clustering index and the HTTP API.

Core types:
  - Event: the canonical event record every provider adapter produces
  - Coordinates: a validated (longitude, latitude) pair
  - SourceStats: per-provider outcome of one aggregation call
  - SearchRequest / SearchResponse / SearchMeta: the search contract
  - ClusterNode: a leaf or aggregate marker produced by the spatial index

Error taxonomy:
  - ProviderError: tagged per-adapter failure, recorded in SourceStats
  - CacheError: internal cache failure, logged and absorbed

Request validation errors live in the validation package.
*/
package models
