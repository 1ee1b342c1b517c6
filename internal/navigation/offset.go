package navigation

import (
	"fmt"
	"math"
	"time"

	"github.com/cpuguy83/calpager/internal/daterange"
)

const minutesPerDay = 24 * 60

// OffsetForTime returns the time-axis offset of t within its day at the
// current zoom. t is read on the page grid's wall clock, the zone pages are
// indexed in, so DST days keep a 24h axis.
func (s *State) OffsetForTime(t time.Time) (float64, error) {
	if !s.HasTimeAxis() {
		return 0, ErrNoTimeAxis
	}
	return OffsetForTime(t.In(s.indexer.Origin().Location()), s.Snapshot().Zoom), nil
}

// TimeForOffset converts a time-axis offset on day back to a time, rounded
// to the nearest multiple of snap. snap <= 0 disables rounding.
func (s *State) TimeForOffset(day time.Time, offset float64, snap time.Duration) (time.Time, error) {
	if !s.HasTimeAxis() {
		return time.Time{}, ErrNoTimeAxis
	}
	return TimeForOffset(day, offset, s.Snapshot().Zoom, snap)
}

// OffsetForTime converts the wall-clock time of t, in t's own zone, to an
// offset at zoom. Convert t to the page's zone first.
func OffsetForTime(t time.Time, zoom float64) float64 {
	minutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
	return minutes * zoom
}

// TimeForOffset is the inverse of OffsetForTime, clamped to the day.
func TimeForOffset(day time.Time, offset, zoom float64, snap time.Duration) (time.Time, error) {
	if !validZoom(zoom) {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}
	minutes := math.Max(0, math.Min(minutesPerDay, offset/zoom))
	if snap > 0 {
		step := snap.Minutes()
		minutes = math.Round(minutes/step) * step
		if minutes > minutesPerDay {
			minutes = minutesPerDay
		}
	}
	midnight := daterange.StartOfDay(day)
	total := int(math.Round(minutes))
	return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), total/60, total%60, 0, 0, midnight.Location()), nil
}
