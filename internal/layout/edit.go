package layout

import (
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
)

// Edge selects which end of an item a resize moves.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

// Move returns a copy of it shifted by delta, for drag previews.
func Move[T any](it calendar.Item[T], delta time.Duration) calendar.Item[T] {
	it.Span = daterange.Range{Start: it.Span.Start.Add(delta), End: it.Span.End.Add(delta)}
	return it
}

// Resize returns a copy of it with edge moved to to. The result keeps at
// least minDur by clamping the moved edge.
func Resize[T any](it calendar.Item[T], edge Edge, to time.Time, minDur time.Duration) calendar.Item[T] {
	if minDur < 0 {
		minDur = 0
	}
	span := it.Span
	switch edge {
	case EdgeStart:
		if latest := span.End.Add(-minDur); to.After(latest) {
			to = latest
		}
		span.Start = to
	case EdgeEnd:
		if earliest := span.Start.Add(minDur); to.Before(earliest) {
			to = earliest
		}
		span.End = to
	}
	it.Span = span
	return it
}
