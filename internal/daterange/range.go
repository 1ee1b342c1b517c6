// Package daterange maps virtualized page indexes to concrete date ranges.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvertedRange is returned when a range would start after it ends.
	ErrInvertedRange = errors.New("range start is after range end")
	// ErrIndexOutOfRange is returned for page indexes outside [0, NumPages-1].
	ErrIndexOutOfRange = errors.New("page index out of range")
	// ErrDateOutOfRange is returned for dates outside the overall range.
	ErrDateOutOfRange = errors.New("date out of range")
)

// Range is a half-open interval [Start, End) of instants.
type Range struct {
	Start time.Time
	End   time.Time
}

// New creates a validated range.
func New(start, end time.Time) (Range, error) {
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{Start: start, End: end}, nil
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsZero reports whether both bounds are the zero time.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// IsEmpty reports whether the range covers no time (Start == End).
func (r Range) IsEmpty() bool {
	return !r.End.After(r.Start)
}

// Valid reports whether Start <= End.
func (r Range) Valid() bool {
	return !r.Start.After(r.End)
}

// Contains reports whether t falls in [Start, End).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Equal reports whether both bounds denote the same instants.
func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Overlaps reports whether r and o share any instant.
// A zero-length range at t overlaps o iff o contains t.
func (r Range) Overlaps(o Range) bool {
	switch {
	case r.IsEmpty() && o.IsEmpty():
		return r.Start.Equal(o.Start)
	case r.IsEmpty():
		return o.Contains(r.Start)
	case o.IsEmpty():
		return r.Contains(o.Start)
	}
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Intersect clips r to o. The boolean is false when they do not overlap.
func (r Range) Intersect(o Range) (Range, bool) {
	if !r.Valid() || !o.Valid() || !r.Overlaps(o) {
		return Range{}, false
	}
	start := r.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := r.End
	if o.End.Before(end) {
		end = o.End
	}
	if end.Before(start) {
		end = start
	}
	return Range{Start: start, End: end}, true
}

// Days returns the calendar days touched by the range, each as a one-day range
// in the location of Start.
func (r Range) Days() []Range {
	if r.IsEmpty() {
		return nil
	}
	var days []Range
	for d := StartOfDay(r.Start); d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, Range{Start: d, End: d.AddDate(0, 0, 1)})
	}
	return days
}

// String formats the range for logs.
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format("2006-01-02 15:04"), r.End.Format("2006-01-02 15:04"))
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return StartOfMonth(t).AddDate(0, 1, -1).Day()
}

// DaysBetween counts whole calendar days from a to b, ignoring DST shifts.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
