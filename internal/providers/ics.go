// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/geo"
	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/models"
)

// maxOccurrences caps recurrence expansion per VEVENT.
const maxOccurrences = 500

// ICS reads public iCalendar feeds and expands recurring events inside the
// query window.
type ICS struct {
	feeds     []string
	category  string
	lookahead time.Duration
	client    *client
	now       func() time.Time
}

func NewICS(cfg config.ICSConfig) *ICS {
	return &ICS{
		feeds:     cfg.URLs,
		category:  firstNonEmpty(strings.ToLower(cfg.Category), "community"),
		lookahead: time.Duration(max(cfg.LookaheadDays, 1)) * 24 * time.Hour,
		client: newClient(models.SourceICS, clientOptions{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		}),
		now: time.Now,
	}
}

func (p *ICS) Name() models.Source { return models.SourceICS }

// Search fetches every feed. It fails only when no feed could be read.
func (p *ICS) Search(ctx context.Context, q Query) ([]models.Event, error) {
	from, to := q.window(p.now(), p.lookahead)
	header := http.Header{}
	header.Set("Accept", "text/calendar")

	events := []models.Event{}
	var firstErr error
	failed := 0
	for _, feed := range p.feeds {
		body, err := p.client.get(ctx, feed, header)
		if err == nil {
			var parsed []models.Event
			if parsed, err = parseCalendar(body, feedKey(feed), p.category, from, to); err == nil {
				events = append(events, parsed...)
				continue
			}
			err = models.NewProviderError(models.SourceICS, models.ProviderErrMalformed, "parse %s: %v", feed, err).Wrap(err)
		}
		failed++
		if firstErr == nil {
			firstErr = err
		}
		logging.Warn().Err(err).Str("feed", redactURL(feed)).Msg("ICS feed skipped")
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 && failed == len(p.feeds) {
		return nil, models.AsProviderError(models.SourceICS, firstErr)
	}
	if ctx.Err() != nil {
		return nil, p.client.classify(ctx, ctx.Err())
	}
	return withinRadius(events, q), nil
}

// withinRadius drops placed events outside the query radius. Events without
// coordinates are kept since feeds are already local to their publisher.
func withinRadius(events []models.Event, q Query) []models.Event {
	if !q.HasGeo() || q.RadiusMiles <= 0 {
		return events
	}
	limitKm := q.RadiusMiles * geo.KmPerMile
	kept := events[:0]
	for _, e := range events {
		if e.Coordinates == nil || geo.Distance(*q.Coordinates, *e.Coordinates) <= limitKm {
			kept = append(kept, e)
		}
	}
	return kept
}

type vevent struct {
	uid         string
	summary     string
	description string
	location    string
	url         string
	start       time.Time
	duration    time.Duration
	allDay      bool
	rrule       string
	exdates     []time.Time
	coords      *models.Coordinates
}

func parseCalendar(body []byte, feed, category string, from, to time.Time) ([]models.Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty calendar")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var base []vevent
	overridden := map[string][]time.Time{}
	var singles []vevent
	for _, comp := range cal.Events() {
		ev, ok := readVEvent(comp)
		if !ok {
			continue
		}
		if rid := comp.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); rid != nil {
			if t, err := parseICSTime(rid); err == nil {
				overridden[ev.uid] = append(overridden[ev.uid], t)
			}
			singles = append(singles, ev)
			continue
		}
		base = append(base, ev)
	}

	out := []models.Event{}
	for _, ev := range base {
		ev.exdates = append(ev.exdates, overridden[ev.uid]...)
		for _, start := range occurrences(ev, from, to) {
			out = append(out, ev.toEvent(feed, start, category))
		}
	}
	for _, ev := range singles {
		if inWindow(ev.start, from, to) {
			out = append(out, ev.toEvent(feed, ev.start, category))
		}
	}
	return out, nil
}

func readVEvent(ve *ical.VEvent) (vevent, bool) {
	var ev vevent
	prop := func(name ical.ComponentProperty) string {
		if p := ve.GetProperty(name); p != nil {
			return strings.TrimSpace(p.Value)
		}
		return ""
	}
	ev.uid = prop(ical.ComponentPropertyUniqueId)
	ev.summary = prop(ical.ComponentPropertySummary)
	if ev.uid == "" || ev.summary == "" {
		return ev, false
	}
	ev.description = prop(ical.ComponentPropertyDescription)
	ev.location = prop(ical.ComponentPropertyLocation)
	ev.url = prop(ical.ComponentProperty("URL"))
	ev.rrule = prop(ical.ComponentPropertyRrule)

	dtstart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtstart == nil {
		return ev, false
	}
	start, err := ve.GetStartAt()
	if err != nil {
		if start, err = parseICSTime(dtstart); err != nil {
			return ev, false
		}
	}
	ev.start = start
	ev.allDay = !strings.Contains(dtstart.Value, "T")
	if vs := dtstart.ICalParameters["VALUE"]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		ev.allDay = true
	}
	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		ev.duration = end.Sub(start)
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSValue(strings.TrimSpace(part), p.ICalParameters, start.Location()); err == nil {
				ev.exdates = append(ev.exdates, t)
			}
		}
	}

	ev.coords = parseGeo(prop(ical.ComponentProperty("GEO")))
	return ev, true
}

// occurrences lists start times of ev inside [from, to].
func occurrences(ev vevent, from, to time.Time) []time.Time {
	if ev.rrule == "" {
		if inWindow(ev.start, from, to) {
			return []time.Time{ev.start}
		}
		return nil
	}
	r, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		logging.Debug().Err(err).Str("uid", ev.uid).Msg("ICS RRULE ignored")
		if inWindow(ev.start, from, to) {
			return []time.Time{ev.start}
		}
		return nil
	}
	r.DTStart(ev.start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.exdates {
		set.ExDate(ex.In(ev.start.Location()))
	}
	times := set.Between(from.In(ev.start.Location()), to.In(ev.start.Location()), true)
	if len(times) > maxOccurrences {
		times = times[:maxOccurrences]
	}
	return times
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// feedKey names a feed inside event ids. UIDs are only unique per calendar.
func feedKey(feed string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(redactURL(feed)))
	return fmt.Sprintf("%08x", h.Sum32())
}

func (ev vevent) toEvent(feed string, start time.Time, category string) models.Event {
	out := models.Event{
		ID:          "ics-" + feed + "-" + ev.uid + "-" + start.UTC().Format("20060102T150405"),
		Source:      models.SourceICS,
		Title:       ev.summary,
		Description: ev.description,
		RawDate:     start.Format(time.RFC3339),
		Location:    ev.location,
		URL:         ev.url,
		Category:    category,
		Coordinates: ev.coords,
	}
	out.Venue, _, _ = strings.Cut(ev.location, ",")
	out.Date, out.Time = splitDateTime(start)
	if ev.allDay {
		out.Time = ""
	}
	return out
}

// parseGeo reads the GEO property, "lat;lon".
func parseGeo(v string) *models.Coordinates {
	latS, lngS, ok := strings.Cut(v, ";")
	if !ok {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return models.NewCoordinates(lng, lat)
}

func parseICSTime(p *ical.IANAProperty) (time.Time, error) {
	return parseICSValue(strings.TrimSpace(p.Value), p.ICalParameters, time.UTC)
}

// parseICSValue handles DATE, floating DATE-TIME, UTC and TZID forms.
func parseICSValue(v string, params map[string][]string, fallback *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	loc := fallback
	if tz := params["TZID"]; len(tz) > 0 {
		if l, err := time.LoadLocation(tz[0]); err == nil {
			loc = l
		}
	}
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// redactURL strips query strings, which often carry feed tokens.
func redactURL(raw string) string {
	base, _, _ := strings.Cut(raw, "?")
	return base
}
