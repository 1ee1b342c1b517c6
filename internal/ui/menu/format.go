package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
)

const separator = "━━━━"

// formatEventList renders items as launcher lines with a separator per day.
// Items must be sorted by start. The map resolves a trimmed line to its item.
func formatEventList(items []calendar.Item[calendar.Event], now time.Time) ([]string, map[string]calendar.Item[calendar.Event]) {
	var lines []string
	byLine := make(map[string]calendar.Item[calendar.Event], len(items))
	var lastDay string

	for _, it := range items {
		day := dayLabel(it.Span.Start, now)
		if day != lastDay {
			lines = append(lines, fmt.Sprintf("%s %s %s", separator, day, separator))
			lastDay = day
		}

		line := formatEventLine(it, now)
		if _, dup := byLine[strings.TrimSpace(line)]; dup {
			line += " [" + it.ID + "]"
		}
		lines = append(lines, line)
		byLine[strings.TrimSpace(line)] = it
	}

	if len(lines) == 0 {
		lines = append(lines, "No events")
	}
	return lines, byLine
}

func formatEventLine(it calendar.Item[calendar.Event], now time.Time) string {
	e := it.Payload
	var when string
	switch {
	case calendar.IsAllDay(e):
		when = "All day"
		if r := formatAllDayRange(it.Span, now); r != "" {
			when = r
		}
	case it.Span.IsEmpty():
		when = it.Span.Start.Local().Format("15:04")
	default:
		when = fmt.Sprintf("%s (%s)", it.Span.Start.Local().Format("15:04"), formatDuration(it.Span.Duration()))
	}

	line := fmt.Sprintf("  %s  %s", when, truncate(e.Summary, 60))
	if e.Source != "" {
		line += fmt.Sprintf(" (%s)", e.Source)
	}
	return line
}

// formatAllDayRange returns "first – last" for all-day spans over more than
// one day, empty otherwise. The end date is exclusive.
func formatAllDayRange(span daterange.Range, now time.Time) string {
	if daterange.DaysBetween(span.Start, span.End) <= 1 {
		return ""
	}
	last := span.End.AddDate(0, 0, -1)
	return dayLabel(span.Start, now) + " – " + dayLabel(last, now)
}

// dayLabel returns a human-readable day label.
func dayLabel(t, now time.Time) string {
	local, localNow := t.Local(), now.Local()
	today := daterange.StartOfDay(localNow)
	day := daterange.StartOfDay(local)

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return local.Format("Mon, Jan 2")
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := d.Hours()
	if hours == float64(int(hours)) {
		return fmt.Sprintf("%dh", int(hours))
	}
	return fmt.Sprintf("%.1fh", hours)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, separator) || line == "" || line == "No events"
}
