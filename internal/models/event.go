// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Source identifies the provider an event came from.
type Source string

const (
	SourceTicketmaster Source = "ticketmaster"
	SourceYelp         Source = "yelp"
	SourceSerpAPI      Source = "serpapi"
	SourceICS          Source = "ics"
)

// PartySubcategory is the closed set of party classifications.
type PartySubcategory string

const (
	PartyNightclub   PartySubcategory = "nightclub"
	PartyFestival    PartySubcategory = "festival"
	PartyBrunch      PartySubcategory = "brunch"
	PartyDayParty    PartySubcategory = "day-party"
	PartyNetworking  PartySubcategory = "networking"
	PartyCelebration PartySubcategory = "celebration"
	PartySocial      PartySubcategory = "social"
	PartyRooftop     PartySubcategory = "rooftop"
	PartyImmersive   PartySubcategory = "immersive"
	PartyPopup       PartySubcategory = "popup"
	PartyGeneral     PartySubcategory = "general"
)

// Event is the canonical event record. Adapters fill everything except the
// party fields, which the classifier derives.
type Event struct {
	ID               string           `json:"id"`
	Source           Source           `json:"source"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Date             string           `json:"date"`
	Time             string           `json:"time"`
	RawDate          string           `json:"rawDate,omitempty"`
	Location         string           `json:"location,omitempty"`
	Venue            string           `json:"venue,omitempty"`
	Coordinates      *Coordinates     `json:"coordinates,omitempty"`
	Category         string           `json:"category"`
	IsPartyEvent     bool             `json:"isPartyEvent"`
	PartySubcategory PartySubcategory `json:"partySubcategory,omitempty"`
	Price            string           `json:"price,omitempty"`
	URL              string           `json:"url,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
}

// HasCoordinates reports whether the event can be placed on the map.
func (e *Event) HasCoordinates() bool {
	return e.Coordinates != nil
}

// StartTime combines Date (YYYY-MM-DD or RFC 3339) and the optional Time
// (HH:MM, 24h) in loc. ok is false when Date cannot be parsed.
func (e *Event) StartTime(loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	d := strings.TrimSpace(e.Date)
	if d == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, d); err == nil {
		return t, true
	}
	day, err := time.ParseInLocation(time.DateOnly, d, loc)
	if err != nil {
		return time.Time{}, false
	}
	if clock, err := time.Parse("15:04", strings.TrimSpace(e.Time)); err == nil {
		day = day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	}
	return day, true
}

// PriceAmount normalises the free-text price, see ParsePrice.
func (e *Event) PriceAmount() float64 {
	return ParsePrice(e.Price)
}

var (
	priceNumber = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
	priceFree   = regexp.MustCompile(`\bfree\b`)
)

// ParsePrice maps the word "free" to 0, otherwise extracts the first numeric token.
// Unparseable text is 0.
func ParsePrice(text string) float64 {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || priceFree.MatchString(s) {
		return 0
	}
	tok := priceNumber.FindString(s)
	if tok == "" {
		return 0
	}
	// "1,250" and "1,250.50" use thousands separators, "12,50" a decimal comma.
	if strings.Contains(tok, ".") || strings.Count(tok, ",") > 1 || strings.LastIndex(tok, ",") == len(tok)-4 {
		tok = strings.ReplaceAll(tok, ",", "")
	} else {
		tok = strings.Replace(tok, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatPrice renders a structured price range for display.
func FormatPrice(minPrice, maxPrice float64, currency string) string {
	if minPrice <= 0 && maxPrice <= 0 {
		return ""
	}
	sym := "$"
	if currency != "" && !strings.EqualFold(currency, "USD") {
		sym = strings.ToUpper(currency) + " "
	}
	if maxPrice > minPrice {
		return sym + strconv.FormatFloat(minPrice, 'f', 2, 64) + " - " + sym + strconv.FormatFloat(maxPrice, 'f', 2, 64)
	}
	return sym + strconv.FormatFloat(minPrice, 'f', 2, 64)
}
