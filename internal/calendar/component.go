package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/cpuguy83/calpager/internal/daterange"
)

// DefaultMaxOccurrences caps the occurrences expanded per recurring event.
const DefaultMaxOccurrences = 1000

// sourceProp tags exported events with the source they came from.
const sourceProp = "X-CALPAGER-SOURCE"

// decodeOptions controls how VEVENT components become events.
type decodeOptions struct {
	source         string
	loc            *time.Location
	maxOccurrences int
}

// decodeEvent converts a VEVENT into events. Recurring events expand into the
// occurrences intersecting rng; a zero rng keeps only the base occurrence.
func decodeEvent(comp *ics.Component, rng daterange.Range, opts decodeOptions) ([]Event, bool, error) {
	loc := opts.loc
	if loc == nil {
		loc = time.Local
	}
	base := Event{Source: opts.source}

	base.UID = textProp(comp, ics.PropUID)
	base.Summary = textProp(comp, ics.PropSummary)
	base.Description = textProp(comp, ics.PropDescription)
	base.Location = textProp(comp, ics.PropLocation)
	base.URL = textProp(comp, ics.PropURL)
	base.Organizer = strings.TrimPrefix(textProp(comp, ics.PropOrganizer), "mailto:")
	if s := textProp(comp, sourceProp); s != "" && base.Source == "" {
		base.Source = s
	}

	prop := comp.Props.Get(ics.PropDateTimeStart)
	if prop == nil {
		return nil, false, fmt.Errorf("event %q: missing DTSTART", base.UID)
	}
	start, dateOnly, err := parseTime(prop, loc)
	if err != nil {
		return nil, false, fmt.Errorf("event %q: parse start time: %w", base.UID, err)
	}

	var duration time.Duration
	switch {
	case comp.Props.Get(ics.PropDateTimeEnd) != nil:
		end, _, err := parseTime(comp.Props.Get(ics.PropDateTimeEnd), loc)
		if err != nil {
			return nil, false, fmt.Errorf("event %q: parse end time: %w", base.UID, err)
		}
		duration = end.Sub(start)
	case comp.Props.Get(ics.PropDuration) != nil:
		duration, err = comp.Props.Get(ics.PropDuration).Duration()
		if err != nil {
			return nil, false, fmt.Errorf("event %q: parse duration: %w", base.UID, err)
		}
	case dateOnly:
		duration = 24 * time.Hour
	default:
		// A DTSTART with neither DTEND nor DURATION is a point in time.
		duration = 0
	}
	if duration < 0 {
		duration = 0
	}

	set, err := comp.RecurrenceSet(loc)
	if err != nil {
		return nil, false, fmt.Errorf("event %q: parse recurrence: %w", base.UID, err)
	}
	if set == nil || rng.IsZero() {
		ev := base
		ev.Start = start
		ev.End = start.Add(duration)
		ev.AllDay = dateOnly || isEffectivelyAllDay(ev.Start, ev.End)
		return []Event{ev}, false, nil
	}

	occurrences, capped := expandRecurrence(set, rng, duration, opts.maxOccurrences)
	events := make([]Event, 0, len(occurrences))
	for _, occ := range occurrences {
		ev := base
		ev.Start = occ
		ev.End = occ.Add(duration)
		ev.AllDay = dateOnly || isEffectivelyAllDay(ev.Start, ev.End)
		ev.UID = fmt.Sprintf("%s_%d", base.UID, occ.Unix())
		events = append(events, ev)
	}
	return events, capped, nil
}

// expandRecurrence returns the occurrence starts whose span intersects rng.
// It looks back by duration to catch occurrences already in progress at
// rng.Start, and stops after limit occurrences.
func expandRecurrence(set *rrule.Set, rng daterange.Range, duration time.Duration, limit int) ([]time.Time, bool) {
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}
	from := rng.Start.Add(-duration)
	var out []time.Time
	next := set.Iterator()
	for {
		occ, ok := next()
		if !ok {
			return out, false
		}
		if !occ.Before(rng.End) {
			return out, false
		}
		if occ.Before(from) {
			continue
		}
		span := daterange.Range{Start: occ, End: occ.Add(duration)}
		if !span.Overlaps(rng) {
			continue
		}
		if len(out) == limit {
			return out, true
		}
		out = append(out, occ)
	}
}

func textProp(comp *ics.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}

// parseTime parses a DATE or DATE-TIME property. Floating times and dates
// are interpreted in loc.
func parseTime(prop *ics.Prop, loc *time.Location) (time.Time, bool, error) {
	if prop.ValueType() == ics.ValueDate {
		t, err := time.ParseInLocation("20060102", prop.Value, loc)
		return t, true, err
	}
	t, err := prop.DateTime(loc)
	if err == nil {
		return t, false, nil
	}
	// Floating time without a TZID.
	if t, ferr := time.ParseInLocation("20060102T150405", prop.Value, loc); ferr == nil {
		return t, false, nil
	}
	if t, derr := time.ParseInLocation("20060102", prop.Value, loc); derr == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}
