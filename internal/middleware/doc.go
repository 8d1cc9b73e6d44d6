// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package middleware provides the HTTP middleware the API router installs
around every route.

  - RequestID: accepts or generates an X-Request-ID and stores it on the
    request context for logging.Ctx.
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern so path parameters do not explode cardinality.
  - AccessLog: one structured line per request, at warn level when slower
    than a threshold.

All three wrap the ResponseWriter with chi's WrapResponseWriter, which keeps
http.Hijacker and http.Flusher available for WebSocket upgrades.

Order matters: RequestID must run first so later layers log with the id.

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(time.Second))
*/
package middleware
