// Package layout computes where calendar events are drawn: which slice of
// the visible range each event occupies and which column it gets among the
// events it overlaps.
package layout

import (
	"log/slog"
	"sort"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
)

// Placement is the computed position of one event inside a visible range.
type Placement struct {
	EventID string
	// Slice is the part of the event inside the visible range.
	Slice daterange.Range
	// Column is the event's column, 0-based, within its overlap cluster.
	Column int
	// Columns is the number of columns its cluster uses.
	Columns int
	// ContinuesBefore is set when the event starts before the visible range.
	ContinuesBefore bool
	// ContinuesAfter is set when the event ends after the visible range.
	ContinuesAfter bool
}

// Layout places items inside visible. Items are clipped to visible and
// those not intersecting it are dropped. Overlapping items get distinct
// columns, lowest free column first in (start, id) order, and every item
// of a transitive overlap cluster reports the cluster's column count.
//
// A zero-length item at t is kept iff visible.Start <= t < visible.End.
// Items ending exactly where another starts do not overlap.
//
// The result is ordered by (slice start, id). Layout is pure.
func Layout[T any](visible daterange.Range, items []calendar.Item[T]) []Placement {
	if !visible.Valid() {
		slog.Debug("layout skipped for inverted range", "range", visible)
		return nil
	}

	placements := make([]Placement, 0, len(items))
	dropped := 0
	for _, it := range items {
		if !it.Span.Valid() {
			dropped++
			continue
		}
		slice, ok := it.Span.Intersect(visible)
		if !ok {
			continue
		}
		placements = append(placements, Placement{
			EventID:         it.ID,
			Slice:           slice,
			ContinuesBefore: it.Span.Start.Before(visible.Start),
			ContinuesAfter:  it.Span.End.After(visible.End),
		})
	}
	if dropped > 0 {
		slog.Debug("layout dropped malformed events", "count", dropped, "range", visible)
	}

	sort.SliceStable(placements, func(i, j int) bool {
		a, b := placements[i].Slice.Start, placements[j].Slice.Start
		if !a.Equal(b) {
			return a.Before(b)
		}
		return placements[i].EventID < placements[j].EventID
	})

	assignColumns(placements)
	return placements
}

// column tracks the last occupant of a column.
type column struct {
	end        time.Time
	degenerate bool
}

// free reports whether a slice starting at start fits after the occupant.
func (c column) free(start time.Time) bool {
	if c.end.Before(start) {
		return true
	}
	return c.end.Equal(start) && !c.degenerate
}

// assignColumns runs the greedy column assignment over placements sorted by
// start and fills Column and Columns.
func assignColumns(ps []Placement) {
	var (
		cols         []column
		clusterFrom  int
		clusterEnd   time.Time
		degenerateAt bool // a zero-length slice sits at clusterEnd
	)
	closeCluster := func(to int) {
		for i := clusterFrom; i < to; i++ {
			ps[i].Columns = len(cols)
		}
	}

	for i := range ps {
		s := ps[i].Slice
		if i > 0 && (s.Start.After(clusterEnd) || (s.Start.Equal(clusterEnd) && !degenerateAt)) {
			closeCluster(i)
			clusterFrom = i
			cols = cols[:0]
		}

		c := 0
		for c < len(cols) && !cols[c].free(s.Start) {
			c++
		}
		occupant := column{end: s.End, degenerate: s.IsEmpty()}
		if c == len(cols) {
			cols = append(cols, occupant)
		} else {
			cols[c] = occupant
		}
		ps[i].Column = c

		switch {
		case i == clusterFrom || s.End.After(clusterEnd):
			clusterEnd = s.End
			degenerateAt = s.IsEmpty()
		case s.End.Equal(clusterEnd):
			degenerateAt = degenerateAt || s.IsEmpty()
		}
	}
	closeCluster(len(ps))
}
