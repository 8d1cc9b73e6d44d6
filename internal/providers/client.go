// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

const (
	maxBodySize      = 8 << 20
	maxErrorBodySize = 512
	userAgent        = "date-ai-discover/1.0"
)

// client is the HTTP plumbing shared by all adapters.
type client struct {
	source  models.Source
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// clientOptions configures newClient. Zero values fall back to defaults.
type clientOptions struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Transport http.RoundTripper
	Breaker   *breakerSettings
}

func newClient(source models.Source, opts clientOptions) *client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}
	settings := defaultBreakerSettings
	if opts.Breaker != nil {
		settings = *opts.Breaker
	}
	return &client{
		source:  source,
		http:    &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		limiter: rate.NewLimiter(limit, opts.RateBurst),
		breaker: newBreaker(string(source)+"-api", settings),
	}
}

// get fetches reqURL and returns the body of a 2xx response.
func (c *client) get(ctx context.Context, reqURL string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			return nil, models.NewProviderError(c.source, models.ProviderErrUnavailable, "rate limited: %v", err).Wrap(err)
		}
		return nil, c.classify(ctx, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, reqURL, header)
	})
	recordBreakerResult(c.breaker.Name(), err)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	return body, nil
}

// getJSON fetches reqURL and decodes the JSON body into out.
func (c *client) getJSON(ctx context.Context, reqURL string, header http.Header, out interface{}) error {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Accept", "application/json")
	body, err := c.get(ctx, reqURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return models.NewProviderError(c.source, models.ProviderErrMalformed, "decode response: %v", err).Wrap(err)
	}
	return nil
}

func (c *client) do(ctx context.Context, reqURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, models.NewProviderError(c.source, models.ProviderErrConfig, "create request: %v", err).Wrap(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := models.NewProviderError(c.source, models.ProviderErrHTTPStatus, "%s", readBodyForError(resp.Body))
		pe.StatusCode = resp.StatusCode
		return nil, pe
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// classify maps any failure onto the ProviderError taxonomy.
func (c *client) classify(ctx context.Context, err error) *models.ProviderError {
	var pe *models.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.NewProviderError(c.source, models.ProviderErrUnavailable, "circuit breaker open").Wrap(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return models.NewProviderError(c.source, models.ProviderErrCanceled, "request canceled").Wrap(err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewProviderError(c.source, models.ProviderErrTimeout, "deadline exceeded").Wrap(err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return models.NewProviderError(c.source, models.ProviderErrTimeout, "%v", err).Wrap(err)
	}
	return models.NewProviderError(c.source, models.ProviderErrTransport, "%v", err).Wrap(err)
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	msg := strings.TrimSpace(string(body))
	if len(body) == maxErrorBodySize {
		msg += "... (truncated)"
	}
	if msg == "" {
		msg = "empty response body"
	}
	return msg
}
