package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidWindow is returned for day windows outside 1..7.
	ErrInvalidWindow = errors.New("day window must be between 1 and 7 days")
	// ErrUnknownGranularity is returned when a granularity name is not recognized.
	ErrUnknownGranularity = errors.New("unknown granularity")
)

// Kind identifies how a page maps to a range.
type Kind int

const (
	KindSingleDay Kind = iota // one day per page
	KindFixedDays             // N days per page
	KindMonth                 // one calendar month per page
)

// Granularity is the page-to-range policy of a view.
type Granularity struct {
	kind         Kind
	days         int
	skipWeekends bool
	weekStart    time.Weekday
	aligned      bool
}

// SingleDay pages one day at a time.
func SingleDay() Granularity {
	return Granularity{kind: KindSingleDay, days: 1}
}

// FixedDays pages n days at a time, n in 1..7.
func FixedDays(n int) (Granularity, error) {
	if n < 1 || n > 7 {
		return Granularity{}, fmt.Errorf("%w: got %d", ErrInvalidWindow, n)
	}
	return Granularity{kind: KindFixedDays, days: n}, nil
}

// Week pages seven days at a time.
func Week() Granularity {
	return Granularity{kind: KindFixedDays, days: 7}
}

// WorkWeek pages whole weeks but hides weekends when rendering.
func WorkWeek() Granularity {
	return Granularity{kind: KindFixedDays, days: 7, skipWeekends: true}
}

// Month pages one calendar month at a time.
func Month() Granularity {
	return Granularity{kind: KindMonth}
}

// Parse resolves a configured granularity name. days is only used by "days".
func Parse(name string, days int) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "day", "single_day", "":
		return SingleDay(), nil
	case "three_day", "3day":
		return FixedDays(3)
	case "days":
		return FixedDays(days)
	case "week":
		return Week(), nil
	case "work_week", "workweek":
		return WorkWeek(), nil
	case "month":
		return Month(), nil
	default:
		return Granularity{}, fmt.Errorf("%w: %q", ErrUnknownGranularity, name)
	}
}

// WithWeekStart aligns seven-day pages to the given weekday. For Month it
// sets the first column of the week rows. Other granularities ignore it.
func (g Granularity) WithWeekStart(wd time.Weekday) Granularity {
	if g.kind == KindMonth || (g.kind == KindFixedDays && g.days == 7) {
		g.weekStart = wd
		g.aligned = true
	}
	return g
}

// WeekStart returns the weekday weeks start on, if one was set.
func (g Granularity) WeekStart() (time.Weekday, bool) { return g.weekStart, g.aligned }

// Kind returns the granularity kind.
func (g Granularity) Kind() Kind { return g.kind }

// Days returns the page width in days; zero for Month, whose width varies.
func (g Granularity) Days() int { return g.days }

// SkipsWeekends reports whether weekend days are hidden when rendering.
func (g Granularity) SkipsWeekends() bool { return g.skipWeekends }

// HasTimeAxis reports whether pages have a vertical time axis (and a zoom).
func (g Granularity) HasTimeAxis() bool { return g.kind != KindMonth }

// String returns the configuration name of the granularity.
func (g Granularity) String() string {
	switch {
	case g.kind == KindMonth:
		return "month"
	case g.kind == KindSingleDay:
		return "day"
	case g.skipWeekends:
		return "work_week"
	case g.days == 7:
		return "week"
	case g.days == 3:
		return "three_day"
	default:
		return fmt.Sprintf("days(%d)", g.days)
	}
}

// PageStart returns the start of the page grid anchored at t: local midnight
// for day-based pages, the first of the month for Month.
func (g Granularity) PageStart(t time.Time) time.Time {
	if g.kind == KindMonth {
		return StartOfMonth(t)
	}
	day := StartOfDay(t)
	if g.aligned {
		back := (int(day.Weekday()) - int(g.weekStart) + 7) % 7
		day = day.AddDate(0, 0, -back)
	}
	return day
}

// addPages moves the aligned origin by n pages.
func (g Granularity) addPages(origin time.Time, n int) time.Time {
	if g.kind == KindMonth {
		return origin.AddDate(0, n, 0)
	}
	return origin.AddDate(0, 0, n*g.days)
}
