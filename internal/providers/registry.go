// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/logging"
)

// NewFromConfig builds the enabled providers in registration order:
// ticketmaster, yelp, serpapi, ics. The aggregator merges results in the
// same order.
func NewFromConfig(cfg config.ProvidersConfig) []Provider {
	var out []Provider
	if cfg.Ticketmaster.Enabled {
		out = append(out, NewTicketmaster(cfg.Ticketmaster))
	}
	if cfg.Yelp.Enabled {
		out = append(out, NewYelp(cfg.Yelp))
	}
	if cfg.SerpAPI.Enabled {
		out = append(out, NewSerpAPI(cfg.SerpAPI))
	}
	if cfg.ICS.Enabled {
		out = append(out, NewICS(cfg.ICS))
	}

	names := make([]string, len(out))
	for i, p := range out {
		names[i] = string(p.Name())
	}
	logging.Info().Strs("providers", names).Msg("Event providers registered")
	return out
}
