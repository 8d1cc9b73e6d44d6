// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are probed in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/date-ai-discover/config.yaml",
	"/etc/date-ai-discover/config.yml",
}

// ConfigPathEnvVar names the variable holding an explicit config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     200,
			MaxMapEvents:    1000,
		},
		Security: SecurityConfig{
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			MaxBytes:      50 << 20,
			SweepInterval: time.Minute,
		},
		Aggregation: AggregationConfig{
			ProviderTimeout:     8 * time.Second,
			DefaultRadius:       25,
			CoordinatePrecision: 3,
			ProviderPageSize:    50,
		},
		Cluster: ClusterConfig{
			MinZoom:         0,
			MaxZoom:         16,
			Radius:          60,
			Extent:          512,
			MinPoints:       2,
			MinSelectZoom:   14,
			SessionCapacity: 1000,
			SessionTTL:      30 * time.Minute,
		},
		Providers: ProvidersConfig{
			Ticketmaster: ProviderConfig{
				BaseURL:   "https://app.ticketmaster.com",
				Timeout:   10 * time.Second,
				RateLimit: 5,
				RateBurst: 5,
			},
			Yelp: ProviderConfig{
				BaseURL:   "https://api.yelp.com",
				Timeout:   10 * time.Second,
				RateLimit: 5,
				RateBurst: 5,
			},
			SerpAPI: ProviderConfig{
				BaseURL:   "https://serpapi.com",
				Timeout:   15 * time.Second,
				RateLimit: 1,
				RateBurst: 2,
			},
			ICS: ICSConfig{
				Category:      "community",
				Timeout:       10 * time.Second,
				LookaheadDays: 30,
				RateLimit:     2,
				RateBurst:     4,
			},
		},
	}
}

// LoadWithKoanf performs the layered load described in the package comment.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are keys whose env values are comma-separated lists.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"providers.ics.urls",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := splitList(raw)
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envTransformFunc maps environment variable names to config keys.
// Unmapped variables return "" and are ignored.
func envTransformFunc(key string) string {
	mappings := map[string]string{
		"http_port":        "server.port",
		"http_host":        "server.host",
		"http_timeout":     "server.timeout",
		"shutdown_timeout": "server.shutdown_timeout",
		"environment":      "server.environment",

		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",
		"api_max_map_events":    "api.max_map_events",

		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		"cache_ttl":            "cache.ttl",
		"cache_max_bytes":      "cache.max_bytes",
		"cache_sweep_interval": "cache.sweep_interval",

		"provider_timeout":     "aggregation.provider_timeout",
		"default_radius":       "aggregation.default_radius",
		"coordinate_precision": "aggregation.coordinate_precision",
		"provider_page_size":   "aggregation.provider_page_size",

		"cluster_min_zoom":         "cluster.min_zoom",
		"cluster_max_zoom":         "cluster.max_zoom",
		"cluster_radius":           "cluster.radius",
		"cluster_extent":           "cluster.extent",
		"cluster_min_points":       "cluster.min_points",
		"cluster_min_select_zoom":  "cluster.min_select_zoom",
		"cluster_session_capacity": "cluster.session_capacity",
		"cluster_session_ttl":      "cluster.session_ttl",

		"ticketmaster_enabled":  "providers.ticketmaster.enabled",
		"ticketmaster_api_key":  "providers.ticketmaster.api_key",
		"ticketmaster_base_url": "providers.ticketmaster.base_url",
		"ticketmaster_timeout":  "providers.ticketmaster.timeout",

		"yelp_enabled":  "providers.yelp.enabled",
		"yelp_api_key":  "providers.yelp.api_key",
		"yelp_base_url": "providers.yelp.base_url",
		"yelp_timeout":  "providers.yelp.timeout",

		"serpapi_enabled":  "providers.serpapi.enabled",
		"serpapi_api_key":  "providers.serpapi.api_key",
		"serpapi_base_url": "providers.serpapi.base_url",
		"serpapi_timeout":  "providers.serpapi.timeout",

		"ics_enabled":        "providers.ics.enabled",
		"ics_feed_urls":      "providers.ics.urls",
		"ics_category":       "providers.ics.category",
		"ics_timeout":        "providers.ics.timeout",
		"ics_lookahead_days": "providers.ics.lookahead_days",
	}
	return mappings[strings.ToLower(key)]
}
