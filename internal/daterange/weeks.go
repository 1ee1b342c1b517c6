package daterange

import (
	"strings"
	"time"
)

// WeekRows returns the week rows a month grid needs to show every day of
// month's calendar month. The first row starts on the weekStart on or before
// the 1st; the row count is derived from the month's own day count and
// weekday offset, so it ranges from 4 (a 28-day February starting on
// weekStart) to 6.
func WeekRows(month time.Time, weekStart time.Weekday) []Range {
	first := StartOfMonth(month)
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	rows := (offset + DaysIn(first) + 6) / 7

	start := first.AddDate(0, 0, -offset)
	out := make([]Range, 0, rows)
	for r := 0; r < rows; r++ {
		out = append(out, Range{
			Start: start.AddDate(0, 0, 7*r),
			End:   start.AddDate(0, 0, 7*(r+1)),
		})
	}
	return out
}

// ParseWeekday resolves "monday"/"sunday" style names, defaulting to Monday.
func ParseWeekday(name string) time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d
		}
	}
	return time.Monday
}
