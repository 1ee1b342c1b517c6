package layout

import (
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
)

// Day is the layout of one rendered day of a time-axis page.
type Day struct {
	Range      daterange.Range
	Placements []Placement
}

// DaysOptions controls per-day layout.
type DaysOptions struct {
	// SkipWeekends omits Saturday and Sunday, for work-week pages.
	SkipWeekends bool
}

// Days lays out each calendar day of visible separately, the way a
// time-axis page renders one column group per day. Items crossing midnight
// appear on both days with the matching continuation flags.
func Days[T any](visible daterange.Range, items []calendar.Item[T], opts DaysOptions) []Day {
	var out []Day
	for _, day := range visible.Days() {
		if opts.SkipWeekends && isWeekend(day.Start) {
			continue
		}
		clipped, _ := day.Intersect(visible)
		out = append(out, Day{Range: clipped, Placements: Layout(clipped, items)})
	}
	return out
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
