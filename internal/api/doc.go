// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package api exposes the discovery service over HTTP using the chi router.

Every JSON endpoint answers with the same envelope:

	{"success": true,  "data": {...}, "meta": {"requestId": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}, "meta": {...}}

Routes:

	GET    /api/v1/health                 liveness and build info
	GET    /api/v1/health/ready           503 until at least one provider is enabled
	GET    /api/v1/events/search          search from query parameters
	POST   /api/v1/events/search          search from a JSON body
	GET    /api/v1/map/clusters           rebuild a map session and return GeoJSON
	GET    /api/v1/map/clusters/{id}/leaves
	GET    /api/v1/map/clusters/{id}/children
	POST   /api/v1/map/click              resolve a click to zoom, select or none
	GET    /api/v1/cache/stats
	DELETE /api/v1/cache
	GET    /api/v1/ws                     loading-state stream
	GET    /metrics                       Prometheus

Status codes: 400 for validation failures, 404 for unknown sessions or
features, 409 when a click refers to an index that has been rebuilt, 429 when
rate limited. Provider failures never change the status; they show up in
data.sourceStats.
*/
package api
