package calendar

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/cpuguy83/calpager/internal/daterange"
)

const productID = "-//calpager//calpager//EN"

// Merge combines events from several sources, keeping the first event seen
// for each UID, sorted by start then UID.
func Merge(sets ...[]Event) []Event {
	var all []Event
	seen := make(map[string]bool)
	for _, set := range sets {
		for _, ev := range set {
			if ev.UID != "" {
				if seen[ev.UID] {
					continue
				}
				seen[ev.UID] = true
			}
			all = append(all, ev)
		}
	}

	slices.SortStableFunc(all, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.UID, b.UID)
	})
	return all
}

// WriteICS replaces the file at path with an ICS snapshot of events. The
// snapshot is written to a temporary file in the same directory first, so
// readers never see a partial file.
func WriteICS(path string, events []Event) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := EncodeICS(tmp, events, time.Now()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// EncodeICS encodes events as one VCALENDAR. stamp is used for DTSTAMP.
func EncodeICS(w io.Writer, events []Event, stamp time.Time) error {
	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, productID)

	for _, ev := range events {
		cal.Children = append(cal.Children, eventComponent(ev, stamp))
	}

	if err := ics.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode ICS: %w", err)
	}
	return nil
}

func eventComponent(ev Event, stamp time.Time) *ics.Component {
	comp := ics.NewComponent(ics.CompEvent)
	comp.Props.SetText(ics.PropUID, ev.UID)
	comp.Props.SetText(ics.PropSummary, ev.Summary)
	comp.Props.SetDateTime(ics.PropDateTimeStamp, stamp) // required by RFC 5545

	if ev.AllDay {
		comp.Props.SetDate(ics.PropDateTimeStart, ev.Start)
		comp.Props.SetDate(ics.PropDateTimeEnd, ev.End)
	} else {
		comp.Props.SetDateTime(ics.PropDateTimeStart, ev.Start)
		comp.Props.SetDateTime(ics.PropDateTimeEnd, ev.End)
	}

	optional := []struct{ name, value string }{
		{ics.PropDescription, ev.Description},
		{ics.PropLocation, ev.Location},
		{ics.PropURL, ev.URL},
		{sourceProp, ev.Source},
	}
	for _, p := range optional {
		if p.value != "" {
			comp.Props.SetText(p.name, p.value)
		}
	}
	if ev.Organizer != "" {
		comp.Props.SetText(ics.PropOrganizer, "mailto:"+ev.Organizer)
	}
	return comp
}

// ReadICS reads a snapshot written by WriteICS.
func ReadICS(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return ParseICS(f)
}

// ParseICS decodes every VEVENT in r without expanding recurrences.
// Events that cannot be parsed are skipped.
func ParseICS(r io.Reader) ([]Event, error) {
	var events []Event
	err := eachEvent(r, func(comp *ics.Component) {
		parsed, _, err := decodeEvent(comp, daterange.Range{}, decodeOptions{})
		if err != nil {
			return
		}
		events = append(events, parsed...)
	})
	if err != nil {
		return nil, err
	}
	return Merge(events), nil
}
