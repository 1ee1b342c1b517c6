package calendar

import (
	"time"

	"github.com/cpuguy83/calpager/internal/daterange"
)

// Item is a calendar event as seen by the store and the layout engine: a
// stable ID, the half-open span it occupies, and an opaque payload.
type Item[T any] struct {
	ID      string
	Span    daterange.Range
	Payload T
}

// DateTimeRange returns the span of the item.
func (it Item[T]) DateTimeRange() daterange.Range { return it.Span }

// PartitionAllDay splits items into those rendered as bars and those placed
// on the time axis. isAllDay decides per payload; items lasting a day or
// more always go to bars. Overnight items stay timed and are clipped per day.
func PartitionAllDay[T any](items []Item[T], isAllDay func(T) bool) (bars, timed []Item[T]) {
	for _, it := range items {
		if (isAllDay != nil && isAllDay(it.Payload)) || it.Span.Duration() >= 24*time.Hour {
			bars = append(bars, it)
			continue
		}
		timed = append(timed, it)
	}
	return bars, timed
}

// IsAllDay reports whether ev is an all-day event.
func IsAllDay(ev Event) bool { return ev.AllDay }
