// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package party

import (
	"regexp"
	"strings"

	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// strongKeywords mark a party on their own.
var strongKeywords = []string{
	"party", "parties", "rave", "nightclub", "club night", "afterparty", "after party",
	"after-party", "dj set", "dance party", "day party", "day-party", "pool party",
	"boat party", "block party", "warehouse party", "silent disco", "foam party",
	"bottle service", "pub crawl", "bar crawl", "clubbing",
}

// broadKeywords need at least two distinct matches.
var broadKeywords = []string{
	"celebration", "celebrate", "festival", "dj", "dance", "dancing", "nightlife",
	"club", "lounge", "social", "mixer", "brunch", "rooftop", "live music",
	"cocktail", "cocktails", "drinks", "happy hour", "bash", "gala", "fiesta",
	"soiree", "pop-up", "popup", "immersive", "networking", "edm", "techno",
	"house music", "hip hop", "reggaeton", "latin night", "karaoke", "open bar",
}

// subcategoryGroup is one entry of the priority-ordered subcategory table.
type subcategoryGroup struct {
	subcategory models.PartySubcategory
	keywords    []string
}

// subcategoryGroups is evaluated top to bottom; the first group with a
// matching keyword wins. Day-party also matches on time of day, see
// Classify.
var subcategoryGroups = []subcategoryGroup{
	{models.PartyDayParty, []string{"day party", "day-party", "daytime", "day time", "pool party", "day drinking", "afternoon party", "daylife"}},
	{models.PartyBrunch, []string{"brunch", "bottomless mimosas", "mimosa", "mimosas", "boozy brunch"}},
	{models.PartyNightclub, []string{"nightclub", "club night", "clubbing", "dj set", "edm", "techno", "house music", "rave", "bottle service", "afterparty", "after party", "after-party", "lounge"}},
	{models.PartyNetworking, []string{"networking", "mixer", "professionals", "meetup", "meet-up", "industry night", "business social", "entrepreneurs"}},
	{models.PartyCelebration, []string{"celebration", "celebrate", "birthday", "anniversary", "gala", "new year", "new years", "nye", "bachelor", "bachelorette", "graduation"}},
	{models.PartySocial, []string{"social", "singles", "mingle", "speed dating", "game night", "trivia", "karaoke", "bar crawl", "pub crawl"}},
	{models.PartyFestival, []string{"festival", "fest", "carnival", "fair", "parade", "block party"}},
	{models.PartyRooftop, []string{"rooftop", "roof top", "skyline", "terrace", "sky bar"}},
	{models.PartyImmersive, []string{"immersive", "interactive", "silent disco", "art installation", "experiential"}},
	{models.PartyPopup, []string{"pop-up", "popup", "pop up", "secret location", "underground", "warehouse"}},
}

// matcher is a compiled whole-word keyword.
type matcher struct {
	word string
	re   *regexp.Regexp
}

var (
	strongMatchers []matcher
	broadMatchers  []matcher
	groupMatchers  [][]matcher
)

func init() {
	strongMatchers = compile(strongKeywords)
	broadMatchers = compile(broadKeywords)
	groupMatchers = make([][]matcher, len(subcategoryGroups))
	for i, g := range subcategoryGroups {
		groupMatchers[i] = compile(g.keywords)
	}
}

func compile(words []string) []matcher {
	out := make([]matcher, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		out = append(out, matcher{word: w, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)})
	}
	return out
}

func anyMatch(text string, ms []matcher) bool {
	for _, m := range ms {
		if m.re.MatchString(text) {
			return true
		}
	}
	return false
}

func countMatches(text string, ms []matcher) int {
	n := 0
	for _, m := range ms {
		if m.re.MatchString(text) {
			n++
		}
	}
	return n
}
