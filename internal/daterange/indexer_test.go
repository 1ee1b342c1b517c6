package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustFixed(t *testing.T, n int) Granularity {
	t.Helper()
	g, err := FixedDays(n)
	if err != nil {
		t.Fatalf("FixedDays(%d): %v", n, err)
	}
	return g
}

func TestIndexerRoundTripAndContiguity(t *testing.T) {
	overall := Range{Start: date(2024, 1, 10).Add(9 * time.Hour), End: date(2025, 3, 1)}

	tests := []struct {
		name string
		gran Granularity
	}{
		{"single day", SingleDay()},
		{"three day", mustFixed(t, 3)},
		{"five day", mustFixed(t, 5)},
		{"week", Week()},
		{"week aligned monday", Week().WithWeekStart(time.Monday)},
		{"work week", WorkWeek().WithWeekStart(time.Monday)},
		{"month", Month()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := NewIndexer(tt.gran, overall)
			if err != nil {
				t.Fatalf("NewIndexer: %v", err)
			}
			if ix.NumPages() < 2 {
				t.Fatalf("NumPages() = %d, want at least 2", ix.NumPages())
			}

			for i := 0; i < ix.NumPages(); i++ {
				r, err := ix.RangeForIndex(i)
				if err != nil {
					t.Fatalf("RangeForIndex(%d): %v", i, err)
				}
				got, err := ix.IndexForDate(r.Start)
				if err != nil {
					t.Fatalf("IndexForDate(%v): %v", r.Start, err)
				}
				if got != i {
					t.Errorf("IndexForDate(RangeForIndex(%d).Start) = %d", i, got)
				}

				if i+1 < ix.NumPages() {
					next, err := ix.RangeForIndex(i + 1)
					if err != nil {
						t.Fatalf("RangeForIndex(%d): %v", i+1, err)
					}
					if !r.End.Equal(next.Start) {
						t.Errorf("page %d ends %v but page %d starts %v", i, r.End, i+1, next.Start)
					}
				}
			}
		})
	}
}

func TestMonthPageLength(t *testing.T) {
	tests := []struct {
		name   string
		origin time.Time
		index  int
		days   int
	}{
		{"leap february", date(2024, 1, 1), 1, 29},
		{"non-leap february", date(2023, 1, 1), 1, 28},
		{"april", date(2023, 1, 1), 3, 30},
		{"december", date(2023, 1, 1), 11, 31},
		{"next year january", date(2023, 1, 1), 12, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RangeForIndex(Month(), tt.origin, tt.index)
			if got := r.Duration(); got != time.Duration(tt.days)*24*time.Hour {
				t.Errorf("RangeForIndex(Month, %v, %d) spans %v, want %d days", tt.origin, tt.index, got, tt.days)
			}
			if r.Start.Day() != 1 || r.End.Day() != 1 {
				t.Errorf("month page %v does not run from a 1st to a 1st", r)
			}
			if got := DaysIn(r.Start); got != tt.days {
				t.Errorf("DaysIn(%v) = %d, want %d", r.Start, got, tt.days)
			}
		})
	}
}

func TestIndexerOutOfRange(t *testing.T) {
	overall := Range{Start: date(2024, 1, 1), End: date(2024, 1, 31)}
	ix, err := NewIndexer(SingleDay(), overall)
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}
	if ix.NumPages() != 31 {
		t.Fatalf("NumPages() = %d, want 31", ix.NumPages())
	}

	for _, i := range []int{-1, 31, 1000} {
		if _, err := ix.RangeForIndex(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("RangeForIndex(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}

	for _, d := range []time.Time{date(2023, 12, 31), date(2024, 2, 1), overall.End.AddDate(0, 0, 1)} {
		if _, err := ix.IndexForDate(d); !errors.Is(err, ErrDateOutOfRange) {
			t.Errorf("IndexForDate(%v) error = %v, want ErrDateOutOfRange", d, err)
		}
	}

	if got, err := ix.IndexForDate(overall.End); err != nil || got != 30 {
		t.Errorf("IndexForDate(end) = %d, %v; want 30, nil", got, err)
	}
}

func TestNewIndexerRejectsInvertedRange(t *testing.T) {
	_, err := NewIndexer(SingleDay(), Range{Start: date(2024, 2, 1), End: date(2024, 1, 1)})
	if !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("NewIndexer error = %v, want ErrInvertedRange", err)
	}
}

func TestIndexForDateBeforeOrigin(t *testing.T) {
	g := mustFixed(t, 3)
	origin := date(2024, 1, 10)

	tests := []struct {
		at   time.Time
		want int
	}{
		{date(2024, 1, 10), 0},
		{date(2024, 1, 12).Add(23 * time.Hour), 0},
		{date(2024, 1, 13), 1},
		{date(2024, 1, 9), -1},
		{date(2024, 1, 7), -1},
		{date(2024, 1, 6), -2},
	}
	for _, tt := range tests {
		if got := IndexForDate(g, origin, tt.at); got != tt.want {
			t.Errorf("IndexForDate(3 days, %v) = %d, want %d", tt.at, got, tt.want)
		}
	}
}

func TestFallbackRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

	for _, g := range []Granularity{SingleDay(), Week().WithWeekStart(time.Monday), Month()} {
		t.Run(g.String(), func(t *testing.T) {
			ix, err := NewIndexer(g, FallbackRange(g, now, 0))
			if err != nil {
				t.Fatalf("NewIndexer: %v", err)
			}
			if ix.NumPages() != 2*DefaultSpanPages+1 {
				t.Errorf("NumPages() = %d, want %d", ix.NumPages(), 2*DefaultSpanPages+1)
			}
			i, err := ix.IndexForDate(now)
			if err != nil {
				t.Fatalf("IndexForDate(now): %v", err)
			}
			if i != DefaultSpanPages {
				t.Errorf("IndexForDate(now) = %d, want %d", i, DefaultSpanPages)
			}
		})
	}
}

func TestFallbackRangeDays(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) // Wednesday
	g := Week().WithWeekStart(time.Monday)

	r := FallbackRangeDays(g, now, 10)
	if want := date(2023, 12, 25); !r.Start.Equal(want) {
		t.Errorf("start = %v, want %v", r.Start, want)
	}
	if want := date(2024, 1, 22); !r.End.Equal(want) {
		t.Errorf("end = %v, want %v", r.End, want)
	}
}

func TestWeekStartAlignment(t *testing.T) {
	wed := date(2024, 1, 10)

	tests := []struct {
		start time.Weekday
		want  time.Time
	}{
		{time.Monday, date(2024, 1, 8)},
		{time.Sunday, date(2024, 1, 7)},
		{time.Wednesday, date(2024, 1, 10)},
	}
	for _, tt := range tests {
		got := Week().WithWeekStart(tt.start).PageStart(wed.Add(15 * time.Hour))
		if !got.Equal(tt.want) {
			t.Errorf("PageStart with week start %v = %v, want %v", tt.start, got, tt.want)
		}
	}

	// Only seven-day windows align.
	if _, ok := SingleDay().WithWeekStart(time.Monday).WeekStart(); ok {
		t.Errorf("single day granularity should ignore week start")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		want    string
		wantErr bool
	}{
		{"day", 0, "day", false},
		{"", 0, "day", false},
		{"three_day", 0, "three_day", false},
		{"days", 5, "days(5)", false},
		{"days", 9, "", true},
		{"week", 0, "week", false},
		{"Work_Week", 0, "work_week", false},
		{"month", 0, "month", false},
		{"fortnight", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.name, tt.days)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q, %d) error = %v, wantErr %v", tt.name, tt.days, err, tt.wantErr)
			}
			if err == nil && g.String() != tt.want {
				t.Errorf("Parse(%q, %d) = %s, want %s", tt.name, tt.days, g, tt.want)
			}
		})
	}
}
