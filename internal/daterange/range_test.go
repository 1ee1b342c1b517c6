package daterange

import (
	"errors"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 12, h, m, 0, 0, time.UTC)
}

func TestNewRejectsInverted(t *testing.T) {
	if _, err := New(at(10, 0), at(9, 0)); !errors.Is(err, ErrInvertedRange) {
		t.Errorf("New(10:00, 09:00) error = %v, want ErrInvertedRange", err)
	}
	if _, err := New(at(9, 0), at(9, 0)); err != nil {
		t.Errorf("New(09:00, 09:00) error = %v, want nil", err)
	}
}

func TestIntersect(t *testing.T) {
	visible := Range{Start: at(8, 0), End: at(18, 0)}

	tests := []struct {
		name   string
		in     Range
		want   Range
		wantOK bool
	}{
		{"inside", Range{at(9, 0), at(10, 0)}, Range{at(9, 0), at(10, 0)}, true},
		{"clipped start", Range{at(6, 0), at(9, 0)}, Range{at(8, 0), at(9, 0)}, true},
		{"clipped end", Range{at(17, 0), at(20, 0)}, Range{at(17, 0), at(18, 0)}, true},
		{"covers", Range{at(0, 0), at(23, 0)}, visible, true},
		{"ends at start", Range{at(7, 0), at(8, 0)}, Range{}, false},
		{"starts at end", Range{at(18, 0), at(19, 0)}, Range{}, false},
		{"point at start", Range{at(8, 0), at(8, 0)}, Range{at(8, 0), at(8, 0)}, true},
		{"point at end", Range{at(18, 0), at(18, 0)}, Range{}, false},
		{"point inside", Range{at(12, 0), at(12, 0)}, Range{at(12, 0), at(12, 0)}, true},
		{"inverted", Range{at(12, 0), at(11, 0)}, Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Intersect(visible)
			if ok != tt.wantOK {
				t.Fatalf("Intersect(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Intersect(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDays(t *testing.T) {
	r := Range{Start: at(22, 0), End: at(22, 0).Add(26 * time.Hour)}
	days := r.Days()
	if len(days) != 3 {
		t.Fatalf("Days() returned %d days, want 3", len(days))
	}
	if !days[0].Start.Equal(at(0, 0)) {
		t.Errorf("first day starts %v, want %v", days[0].Start, at(0, 0))
	}
	if (Range{Start: at(1, 0), End: at(1, 0)}).Days() != nil {
		t.Errorf("empty range should have no days")
	}
}

func TestWeekRows(t *testing.T) {
	tests := []struct {
		name      string
		month     time.Time
		weekStart time.Weekday
		rows      int
		first     time.Time
	}{
		{"february 2021 starting monday", date(2021, 2, 10), time.Monday, 4, date(2021, 2, 1)},
		{"may 2021 starting monday", date(2021, 5, 1), time.Monday, 6, date(2021, 4, 26)},
		{"january 2024 starting monday", date(2024, 1, 31), time.Monday, 5, date(2024, 1, 1)},
		{"january 2024 starting sunday", date(2024, 1, 1), time.Sunday, 5, date(2023, 12, 31)},
		{"june 2024 starting sunday", date(2024, 6, 1), time.Sunday, 6, date(2024, 5, 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := WeekRows(tt.month, tt.weekStart)
			if len(rows) != tt.rows {
				t.Fatalf("WeekRows() = %d rows, want %d", len(rows), tt.rows)
			}
			if !rows[0].Start.Equal(tt.first) {
				t.Errorf("first row starts %v, want %v", rows[0].Start, tt.first)
			}
			last := rows[len(rows)-1]
			monthEnd := StartOfMonth(tt.month).AddDate(0, 1, 0)
			if last.End.Before(monthEnd) {
				t.Errorf("last row ends %v before month end %v", last.End, monthEnd)
			}
			if !last.Start.Before(monthEnd) {
				t.Errorf("last row %v starts after the month", last)
			}
		})
	}
}
