// Package calendar provides calendar event types, the event store, and the
// sources that fill it.
package calendar

import (
	"context"
	"time"

	"github.com/cpuguy83/calpager/internal/daterange"
)

// Event is the concrete payload of the calendar items shown by calpager.
type Event struct {
	// UID is the unique identifier for this event. Occurrences of a
	// recurring event get a per-occurrence suffix.
	UID string

	// Summary is the event title.
	Summary string

	// Description is the full event description/body.
	Description string

	// Location is the event location.
	Location string

	// Start is when the event begins.
	Start time.Time

	// End is when the event ends. Equal to Start for point-in-time events.
	End time.Time

	// AllDay indicates this is an all-day event.
	AllDay bool

	// Organizer is the email of the event organizer.
	Organizer string

	// Source is the name of the calendar source this event came from.
	Source string

	// URL is a URL associated with the event (if any).
	URL string
}

// Duration returns the duration of the event.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Span returns the half-open interval the event occupies.
func (e *Event) Span() daterange.Range {
	return daterange.Range{Start: e.Start, End: e.End}
}

// Item wraps the event for the store and the layout engine.
func (e Event) Item() Item[Event] {
	return Item[Event]{ID: e.UID, Span: e.Span(), Payload: e}
}

// Items wraps a slice of events.
func Items(events []Event) []Item[Event] {
	out := make([]Item[Event], 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Item())
	}
	return out
}

// Source is the interface that calendar sources must implement.
type Source interface {
	// Name returns the display name of this calendar source.
	Name() string

	// Fetch retrieves the events intersecting rng. Recurring events are
	// expanded into occurrences inside rng.
	Fetch(ctx context.Context, rng daterange.Range) ([]Event, error)
}

// isEffectivelyAllDay reports whether start and end are both local midnight
// and at least a day apart. Some servers encode all-day events as full
// datetimes instead of VALUE=DATE.
func isEffectivelyAllDay(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	midnight := func(t time.Time) bool {
		return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
	}
	return midnight(start) && midnight(end) && end.Sub(start) >= 23*time.Hour
}
