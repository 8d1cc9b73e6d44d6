// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

/*
Package config loads service configuration from layered sources.

Precedence, lowest to highest:
 1. Built-in defaults (defaultConfig)
 2. YAML file (CONFIG_PATH, or the first of DefaultConfigPaths that exists)
 3. Environment variables (see envTransformFunc for the mapping)

Example config.yaml:

	server:
	  port: 8080
	cache:
	  ttl: 5m
	  max_bytes: 52428800
	providers:
	  ticketmaster:
	    enabled: true
	    api_key: "..."
*/
package config

import (
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	API         APIConfig         `koanf:"api"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	Cache       CacheConfig       `koanf:"cache"`
	Aggregation AggregationConfig `koanf:"aggregation"`
	Cluster     ClusterConfig     `koanf:"cluster"`
	Providers   ProvidersConfig   `koanf:"providers"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// APIConfig holds pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	// MaxMapEvents caps how many events feed one cluster index build.
	MaxMapEvents int `koanf:"max_map_events"`
}

// SecurityConfig holds inbound rate limiting and CORS.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig maps onto logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig sizes the search result cache.
type CacheConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	MaxBytes      int64         `koanf:"max_bytes"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AggregationConfig tunes the search pipeline.
type AggregationConfig struct {
	// ProviderTimeout bounds each provider call independently.
	ProviderTimeout time.Duration `koanf:"provider_timeout"`
	// DefaultRadius is used when a request has no radius (miles).
	DefaultRadius float64 `koanf:"default_radius"`
	// CoordinatePrecision is the number of decimals kept in cache keys.
	CoordinatePrecision int `koanf:"coordinate_precision"`
	// ProviderPageSize is the per-provider result page requested upstream.
	ProviderPageSize int `koanf:"provider_page_size"`
}

// ClusterConfig configures the spatial index and click resolution.
type ClusterConfig struct {
	MinZoom         int           `koanf:"min_zoom"`
	MaxZoom         int           `koanf:"max_zoom"`
	Radius          float64       `koanf:"radius"`
	Extent          float64       `koanf:"extent"`
	MinPoints       int           `koanf:"min_points"`
	MinSelectZoom   float64       `koanf:"min_select_zoom"`
	SessionCapacity int           `koanf:"session_capacity"`
	SessionTTL      time.Duration `koanf:"session_ttl"`
}

// ProvidersConfig lists every upstream source.
type ProvidersConfig struct {
	Ticketmaster ProviderConfig `koanf:"ticketmaster"`
	Yelp         ProviderConfig `koanf:"yelp"`
	SerpAPI      ProviderConfig `koanf:"serpapi"`
	ICS          ICSConfig      `koanf:"ics"`
}

// ProviderConfig is shared by the JSON API providers.
type ProviderConfig struct {
	Enabled bool          `koanf:"enabled"`
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	// RateLimit is requests per second, RateBurst the bucket size.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// ICSConfig lists public iCalendar feeds.
type ICSConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URLs          []string      `koanf:"urls"`
	Category      string        `koanf:"category"`
	Timeout       time.Duration `koanf:"timeout"`
	LookaheadDays int           `koanf:"lookahead_days"`
	RateLimit     float64       `koanf:"rate_limit"`
	RateBurst     int           `koanf:"rate_burst"`
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
