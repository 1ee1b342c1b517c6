package daterange

import (
	"fmt"
	"time"
)

// DefaultSpanPages is how many pages the fallback range covers on each side of now.
const DefaultSpanPages = 250

// RangeForIndex maps page index i to its range, counting pages from origin.
// The origin is aligned with g.PageStart first. Bounds are not checked.
func RangeForIndex(g Granularity, origin time.Time, i int) Range {
	base := g.PageStart(origin)
	return Range{Start: g.addPages(base, i), End: g.addPages(base, i+1)}
}

// IndexForDate returns the index of the page containing t, counting pages
// from origin. Bounds are not checked; dates before origin give negative indexes.
func IndexForDate(g Granularity, origin time.Time, t time.Time) int {
	base := g.PageStart(origin)
	t = t.In(base.Location())
	if g.kind == KindMonth {
		return (t.Year()-base.Year())*12 + int(t.Month()) - int(base.Month())
	}
	days := DaysBetween(base, t)
	if days < 0 {
		// Floor division so the day before origin lands on page -1.
		return -((-days + g.days - 1) / g.days)
	}
	return days / g.days
}

// Indexer is a bounded page <-> range mapping over an overall range.
type Indexer struct {
	gran    Granularity
	overall Range
	origin  time.Time
	pages   int
}

// NewIndexer creates an indexer for g over overall. The overall start is
// aligned down to a page boundary; the last page is the one containing overall.End.
func NewIndexer(g Granularity, overall Range) (*Indexer, error) {
	if !overall.Valid() {
		return nil, fmt.Errorf("new indexer: %w", ErrInvertedRange)
	}
	if g.kind != KindMonth && (g.days < 1 || g.days > 7) {
		return nil, fmt.Errorf("new indexer: %w", ErrInvalidWindow)
	}
	origin := g.PageStart(overall.Start)
	return &Indexer{
		gran:    g,
		overall: overall,
		origin:  origin,
		pages:   IndexForDate(g, origin, overall.End) + 1,
	}, nil
}

// FallbackRange returns the overall range used when none is configured:
// spanPages pages on each side of the page containing now.
func FallbackRange(g Granularity, now time.Time, spanPages int) Range {
	if spanPages <= 0 {
		spanPages = DefaultSpanPages
	}
	base := g.PageStart(now)
	return Range{Start: g.addPages(base, -spanPages), End: g.addPages(base, spanPages)}
}

// FallbackRangeDays returns a range spanning spanDays on each side of now,
// widened outward to page boundaries.
func FallbackRangeDays(g Granularity, now time.Time, spanDays int) Range {
	day := StartOfDay(now)
	start := g.PageStart(day.AddDate(0, 0, -spanDays))
	last := day.AddDate(0, 0, spanDays)
	end := g.PageStart(last)
	if end.Before(last) {
		end = g.addPages(end, 1)
	}
	return Range{Start: start, End: end}
}

// Granularity returns the paging policy.
func (ix *Indexer) Granularity() Granularity { return ix.gran }

// Overall returns the configured overall range.
func (ix *Indexer) Overall() Range { return ix.overall }

// Origin returns the start of page 0.
func (ix *Indexer) Origin() time.Time { return ix.origin }

// NumPages returns the number of addressable pages.
func (ix *Indexer) NumPages() int { return ix.pages }

// RangeForIndex returns the range of page i, or ErrIndexOutOfRange.
func (ix *Indexer) RangeForIndex(i int) (Range, error) {
	if i < 0 || i >= ix.pages {
		return Range{}, fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, i, ix.pages-1)
	}
	return RangeForIndex(ix.gran, ix.origin, i), nil
}

// IndexForDate returns the page containing t, or ErrDateOutOfRange when t
// falls before the first page or after the overall end.
func (ix *Indexer) IndexForDate(t time.Time) (int, error) {
	if t.Before(ix.origin) || t.After(ix.overall.End) {
		return 0, fmt.Errorf("%w: %s not in [%s, %s]", ErrDateOutOfRange,
			t.Format(time.RFC3339), ix.origin.Format(time.RFC3339), ix.overall.End.Format(time.RFC3339))
	}
	i := IndexForDate(ix.gran, ix.origin, t)
	if i < 0 || i >= ix.pages {
		return 0, fmt.Errorf("%w: %s maps to page %d", ErrDateOutOfRange, t.Format(time.RFC3339), i)
	}
	return i, nil
}

// Clamp limits i to the valid page range.
func (ix *Indexer) Clamp(i int) int {
	return max(0, min(i, ix.pages-1))
}
