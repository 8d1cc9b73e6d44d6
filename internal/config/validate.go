// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateAggregation(); err != nil {
		return err
	}
	if err := c.validateCluster(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)", c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.MaxMapEvents < 1 {
		return fmt.Errorf("API_MAX_MAP_EVENTS must be at least 1")
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("rate limiting requires RATE_LIMIT_REQUESTS >= 1 and a positive RATE_LIMIT_WINDOW")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.MaxBytes <= 0 {
		return fmt.Errorf("CACHE_MAX_BYTES must be positive")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateAggregation() error {
	a := c.Aggregation
	if a.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if a.DefaultRadius <= 0 || a.DefaultRadius > 500 {
		return fmt.Errorf("DEFAULT_RADIUS must be in (0, 500], got %v", a.DefaultRadius)
	}
	if a.CoordinatePrecision < 0 || a.CoordinatePrecision > 6 {
		return fmt.Errorf("COORDINATE_PRECISION must be between 0 and 6")
	}
	if a.ProviderPageSize < 1 {
		return fmt.Errorf("PROVIDER_PAGE_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateCluster() error {
	cl := c.Cluster
	if cl.MinZoom < 0 || cl.MaxZoom > 30 || cl.MinZoom > cl.MaxZoom {
		return fmt.Errorf("cluster zoom range invalid: min %d, max %d", cl.MinZoom, cl.MaxZoom)
	}
	if cl.Radius <= 0 || cl.Extent <= 0 {
		return fmt.Errorf("CLUSTER_RADIUS and CLUSTER_EXTENT must be positive")
	}
	if cl.MinPoints < 2 {
		return fmt.Errorf("CLUSTER_MIN_POINTS must be at least 2")
	}
	if cl.SessionCapacity < 1 || cl.SessionTTL <= 0 {
		return fmt.Errorf("cluster session capacity and TTL must be positive")
	}
	return nil
}

func (c *Config) validateProviders() error {
	p := c.Providers
	checks := []struct {
		name string
		cfg  ProviderConfig
	}{
		{"TICKETMASTER", p.Ticketmaster},
		{"YELP", p.Yelp},
		{"SERPAPI", p.SerpAPI},
	}
	for _, chk := range checks {
		if !chk.cfg.Enabled {
			continue
		}
		if strings.TrimSpace(chk.cfg.APIKey) == "" {
			return fmt.Errorf("%s_API_KEY is required when %s_ENABLED=true", chk.name, chk.name)
		}
		if err := validateURL(chk.name+"_BASE_URL", chk.cfg.BaseURL); err != nil {
			return err
		}
	}
	if p.ICS.Enabled {
		if len(p.ICS.URLs) == 0 {
			return fmt.Errorf("ICS_FEED_URLS is required when ICS_ENABLED=true")
		}
		for _, u := range p.ICS.URLs {
			if err := validateURL("ICS_FEED_URLS", u); err != nil {
				return err
			}
		}
		if p.ICS.LookaheadDays < 1 {
			return fmt.Errorf("ICS_LOOKAHEAD_DAYS must be at least 1")
		}
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not recognised", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// EnabledProviders names the providers that will be constructed.
func (c *Config) EnabledProviders() []string {
	var names []string
	if c.Providers.Ticketmaster.Enabled {
		names = append(names, "ticketmaster")
	}
	if c.Providers.Yelp.Enabled {
		names = append(names, "yelp")
	}
	if c.Providers.SerpAPI.Enabled {
		names = append(names, "serpapi")
	}
	if c.Providers.ICS.Enabled {
		names = append(names, "ics")
	}
	return names
}
