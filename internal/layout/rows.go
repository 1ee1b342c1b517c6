package layout

import (
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
)

// Bar is an event drawn as a horizontal bar across the days of a week row.
type Bar struct {
	EventID  string
	FirstDay int // day offset from the row start
	DaySpan  int // number of days covered, at least 1
	Lane     int
	Lanes    int // lanes used by the bar's overlap cluster

	ContinuesBefore bool
	ContinuesAfter  bool
}

// Row is one week row of a month page.
type Row struct {
	Week daterange.Range
	Bars []Bar
}

// Rows lays out the week rows of the month containing month. Items are
// widened to whole days so two items on the same day never share a lane.
func Rows[T any](month time.Time, weekStart time.Weekday, items []calendar.Item[T]) []Row {
	weeks := daterange.WeekRows(month, weekStart)
	rows := make([]Row, 0, len(weeks))
	for _, week := range weeks {
		rows = append(rows, Row{Week: week, Bars: Bars(week, items)})
	}
	return rows
}

// Bars lays out items across the days of week.
func Bars[T any](week daterange.Range, items []calendar.Item[T]) []Bar {
	byID := make(map[string]daterange.Range, len(items))
	widened := make([]calendar.Item[T], 0, len(items))
	for _, it := range items {
		if !it.Span.Valid() || !it.Span.Overlaps(week) {
			continue
		}
		byID[it.ID] = it.Span
		w := it
		w.Span = wholeDays(it.Span)
		widened = append(widened, w)
	}

	placements := Layout(week, widened)
	bars := make([]Bar, 0, len(placements))
	for _, p := range placements {
		span := byID[p.EventID]
		days := daterange.DaysBetween(p.Slice.Start, p.Slice.End)
		if days < 1 {
			days = 1
		}
		bars = append(bars, Bar{
			EventID:         p.EventID,
			FirstDay:        daterange.DaysBetween(week.Start, p.Slice.Start),
			DaySpan:         days,
			Lane:            p.Column,
			Lanes:           p.Columns,
			ContinuesBefore: span.Start.Before(week.Start),
			ContinuesAfter:  span.End.After(week.End),
		})
	}
	return bars
}

// wholeDays widens r outward to midnight boundaries. A zero-length range
// becomes its whole day.
func wholeDays(r daterange.Range) daterange.Range {
	start := daterange.StartOfDay(r.Start)
	end := daterange.StartOfDay(r.End)
	if end.Before(r.End) || !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return daterange.Range{Start: start, End: end}
}
