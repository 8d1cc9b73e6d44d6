// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/bestfriendai/date-ai-discover/internal/loading"
	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/metrics"
	"github.com/bestfriendai/date-ai-discover/internal/models"
	"github.com/bestfriendai/date-ai-discover/internal/party"
	"github.com/bestfriendai/date-ai-discover/internal/providers"
	"github.com/bestfriendai/date-ai-discover/internal/validation"
)

// Result is the filtered, unsorted, unpaginated outcome of one search. It
// is what the cache stores.
type Result struct {
	Events      []models.Event                       `json:"events"`
	SourceStats map[models.Source]models.SourceStats `json:"sourceStats"`
}

// ResultCache is satisfied by *cache.Store[Result].
type ResultCache interface {
	Get(key string) (Result, bool)
	Set(key string, value Result, ttl time.Duration) error
}

// Config tunes the pipeline. Zero fields take the defaults in New.
type Config struct {
	ProviderTimeout     time.Duration
	DefaultRadius       float64
	CoordinatePrecision int
	ProviderPageSize    int
	DefaultPageSize     int
	MaxPageSize         int
	// CacheTTL of zero defers to the cache's own default.
	CacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 8 * time.Second
	}
	if c.DefaultRadius <= 0 {
		c.DefaultRadius = 25
	}
	if c.CoordinatePrecision <= 0 {
		c.CoordinatePrecision = 3
	}
	if c.ProviderPageSize <= 0 {
		c.ProviderPageSize = 50
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 50
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = max(c.DefaultPageSize, 200)
	}
	return c
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	providers []providers.Provider
	cache     ResultCache
	tracker   *loading.Tracker
	cfg       Config
	now       func() time.Time
}

// New builds a pipeline. cache and tracker may be nil.
func New(provs []providers.Provider, cache ResultCache, tracker *loading.Tracker, cfg Config) *Pipeline {
	return &Pipeline{
		providers: provs,
		cache:     cache,
		tracker:   tracker,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Providers returns the registered source names in merge order.
func (p *Pipeline) Providers() []models.Source {
	out := make([]models.Source, len(p.providers))
	for i, prov := range p.providers {
		out[i] = prov.Name()
	}
	return out
}

// Search runs the full pipeline. The only error it returns is a
// *validation.RequestValidationError.
func (p *Pipeline) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	start := p.now()
	res, fromCache, err := p.Collect(ctx, req)
	if err != nil {
		metrics.RecordSearch("invalid", 0, p.now().Sub(start))
		return nil, err
	}

	events := append([]models.Event(nil), res.Events...)
	sortEvents(events, req.SortBy, req.Coordinates(), p.now())
	page := paginate(events, req.Page, req.Limit, p.cfg.DefaultPageSize, p.cfg.MaxPageSize)

	elapsed := p.now().Sub(start)
	resp := &models.SearchResponse{
		Events:      page.events,
		SourceStats: res.SourceStats,
		Meta: models.SearchMeta{
			ExecutionTime:         elapsed.Milliseconds(),
			TotalEvents:           len(events),
			EventsWithCoordinates: countWithCoordinates(events),
			CurrentPage:           page.page,
			PageSize:              page.size,
			TotalPages:            page.totalPages,
			Timestamp:             p.now().UTC(),
			FromCache:             fromCache,
		},
	}

	outcome := "live"
	switch {
	case fromCache:
		outcome = "cache"
	case allFailed(res.SourceStats):
		outcome = "failed"
	}
	metrics.RecordSearch(outcome, len(events), elapsed)
	logging.Ctx(ctx).Debug().
		Str("outcome", outcome).
		Int("total", len(events)).
		Int("page", page.page).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("Search completed")
	return resp, nil
}

// Collect validates req and returns the filtered event list, from the cache
// when possible. The caller must not modify the returned events slice.
func (p *Pipeline) Collect(ctx context.Context, req models.SearchRequest) (Result, bool, error) {
	if verr := validation.ValidateSearch(&req); verr != nil {
		return Result{}, false, verr
	}

	key := Fingerprint(&req, p.cfg.DefaultRadius, p.cfg.CoordinatePrecision)
	if p.cache != nil {
		if res, ok := p.cache.Get(key); ok {
			return res, true, nil
		}
	}

	merged, stats := p.fanOut(ctx, providers.NewQuery(&req, p.cfg.DefaultRadius, p.cfg.ProviderPageSize))
	for i := range merged {
		party.Apply(&merged[i])
	}
	filtered := newFilterSet(&req, p.now()).apply(dedupe(merged))

	res := Result{Events: filtered, SourceStats: stats}
	if p.cache != nil && !allFailed(stats) {
		if err := p.cache.Set(key, res, p.cfg.CacheTTL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Search result not cached")
		}
	}
	return res, false, nil
}

type providerResult struct {
	events   []models.Event
	err      *models.ProviderError
	duration time.Duration
}

// fanOut calls every provider concurrently and merges in registration order.
func (p *Pipeline) fanOut(ctx context.Context, q providers.Query) ([]models.Event, map[models.Source]models.SourceStats) {
	names := make([]string, len(p.providers))
	for i, prov := range p.providers {
		names[i] = string(prov.Name())
	}
	var op *loading.Operation
	if p.tracker != nil {
		op = p.tracker.Begin("search", names)
		defer op.End()
	}

	results := make([]providerResult, len(p.providers))
	var wg sync.WaitGroup
	for i, prov := range p.providers {
		wg.Add(1)
		go func(i int, prov providers.Provider) {
			defer wg.Done()
			r := p.call(ctx, prov, q)
			results[i] = r
			outcome := "success"
			var settleErr error
			if r.err != nil {
				outcome = string(r.err.Kind)
				settleErr = r.err
			}
			metrics.RecordProviderCall(string(prov.Name()), outcome, len(r.events), r.duration)
			if op != nil {
				op.Settle(string(prov.Name()), len(r.events), settleErr)
			}
		}(i, prov)
	}
	wg.Wait()

	var merged []models.Event
	stats := make(map[models.Source]models.SourceStats, len(p.providers))
	for i, prov := range p.providers {
		r := results[i]
		st := models.SourceStats{Count: len(r.events), DurationMs: r.duration.Milliseconds()}
		if r.err != nil {
			msg := r.err.Error()
			st.Error = &msg
			st.ErrorKind = r.err.Kind
			logging.Ctx(ctx).Warn().Err(r.err).Str("source", string(prov.Name())).Msg("Provider failed")
		}
		stats[prov.Name()] = st
		merged = append(merged, r.events...)
	}
	return merged, stats
}

// call runs one provider under its own timeout. The provider goroutine is
// abandoned, not waited on, if it ignores cancellation.
func (p *Pipeline) call(parent context.Context, prov providers.Provider, q providers.Query) providerResult {
	ctx, cancel := context.WithTimeout(parent, p.cfg.ProviderTimeout)
	defer cancel()
	start := p.now()

	done := make(chan providerResult, 1)
	go func() {
		var r providerResult
		defer func() {
			if rec := recover(); rec != nil {
				r = providerResult{err: models.NewProviderError(prov.Name(), models.ProviderErrTransport, "panic: %v", rec)}
			}
			done <- r
		}()
		events, err := prov.Search(ctx, q)
		if err != nil {
			r.err = models.AsProviderError(prov.Name(), err)
			return
		}
		r.events = events
	}()

	var r providerResult
	select {
	case r = <-done:
	case <-ctx.Done():
		kind := models.ProviderErrTimeout
		if parent.Err() == context.Canceled {
			kind = models.ProviderErrCanceled
		}
		r.err = models.NewProviderError(prov.Name(), kind, "provider did not return: %v", ctx.Err()).Wrap(ctx.Err())
	}
	r.duration = p.now().Sub(start)
	if r.err != nil {
		r.events = nil
	}
	return r
}

func allFailed(stats map[models.Source]models.SourceStats) bool {
	for _, st := range stats {
		if st.Error == nil {
			return false
		}
	}
	return true
}

func countWithCoordinates(events []models.Event) int {
	n := 0
	for i := range events {
		if events[i].HasCoordinates() {
			n++
		}
	}
	return n
}
