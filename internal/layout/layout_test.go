package layout

import (
	"testing"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
)

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func hm(h, m int) time.Time { return today.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func ev(id string, start, end time.Time) calendar.Item[string] {
	return calendar.Item[string]{ID: id, Span: daterange.Range{Start: start, End: end}, Payload: id}
}

func wholeDay() daterange.Range {
	return daterange.Range{Start: today, End: today.AddDate(0, 0, 1)}
}

type want struct {
	id              string
	column, columns int
}

func checkPlacements(t *testing.T, got []Placement, wants []want) {
	t.Helper()
	if len(got) != len(wants) {
		t.Fatalf("got %d placements %+v, want %d", len(got), got, len(wants))
	}
	for i, w := range wants {
		p := got[i]
		if p.EventID != w.id || p.Column != w.column || p.Columns != w.columns {
			t.Errorf("placement %d = {%s col %d/%d}, want {%s col %d/%d}",
				i, p.EventID, p.Column, p.Columns, w.id, w.column, w.columns)
		}
	}
}

func TestLayoutColumns(t *testing.T) {
	tests := []struct {
		name  string
		items []calendar.Item[string]
		want  []want
	}{
		{
			name: "overlap chain reuses freed column",
			items: []calendar.Item[string]{
				ev("C", hm(10, 0), hm(11, 0)),
				ev("A", hm(9, 0), hm(10, 0)),
				ev("B", hm(9, 30), hm(10, 30)),
			},
			want: []want{{"A", 0, 2}, {"B", 1, 2}, {"C", 0, 2}},
		},
		{
			name: "touching events do not overlap",
			items: []calendar.Item[string]{
				ev("first", hm(9, 0), hm(10, 0)),
				ev("second", hm(10, 0), hm(11, 0)),
			},
			want: []want{{"first", 0, 1}, {"second", 0, 1}},
		},
		{
			name: "separate clusters count their own columns",
			items: []calendar.Item[string]{
				ev("a", hm(8, 0), hm(9, 0)),
				ev("b", hm(8, 0), hm(9, 0)),
				ev("c", hm(8, 30), hm(9, 0)),
				ev("d", hm(13, 0), hm(14, 0)),
			},
			want: []want{{"a", 0, 3}, {"b", 1, 3}, {"c", 2, 3}, {"d", 0, 1}},
		},
		{
			name: "equal starts ordered by id",
			items: []calendar.Item[string]{
				ev("z", hm(9, 0), hm(10, 0)),
				ev("m", hm(9, 0), hm(10, 0)),
			},
			want: []want{{"m", 0, 2}, {"z", 1, 2}},
		},
		{
			name: "point event inside another overlaps it",
			items: []calendar.Item[string]{
				ev("meeting", hm(9, 0), hm(10, 0)),
				ev("reminder", hm(9, 30), hm(9, 30)),
			},
			want: []want{{"meeting", 0, 2}, {"reminder", 1, 2}},
		},
		{
			name: "point event at another's end does not overlap",
			items: []calendar.Item[string]{
				ev("meeting", hm(9, 0), hm(10, 0)),
				ev("reminder", hm(10, 0), hm(10, 0)),
			},
			want: []want{{"meeting", 0, 1}, {"reminder", 0, 1}},
		},
		{
			name: "event starting at a point event overlaps it",
			items: []calendar.Item[string]{
				ev("reminder", hm(10, 0), hm(10, 0)),
				ev("meeting", hm(10, 0), hm(11, 0)),
			},
			want: []want{{"meeting", 0, 2}, {"reminder", 1, 2}},
		},
		{
			name: "point event at a boundary shares the next cluster",
			items: []calendar.Item[string]{
				ev("early", hm(9, 0), hm(10, 0)),
				ev("ping", hm(9, 30), hm(10, 0)),
				ev("mark", hm(10, 0), hm(10, 0)),
				ev("late", hm(10, 0), hm(11, 0)),
			},
			want: []want{{"early", 0, 2}, {"ping", 1, 2}, {"late", 0, 2}, {"mark", 1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkPlacements(t, Layout(wholeDay(), tt.items), tt.want)
		})
	}
}

func TestLayoutClipsAndFlagsContinuation(t *testing.T) {
	yesterday := today.AddDate(0, 0, -1)
	items := []calendar.Item[string]{
		ev("overnight", yesterday.Add(22*time.Hour), hm(2, 0)),
		ev("late", hm(23, 0), today.AddDate(0, 0, 1).Add(time.Hour)),
		ev("ended", yesterday.Add(9*time.Hour), today),
		ev("tomorrow", today.AddDate(0, 0, 1), today.AddDate(0, 0, 1).Add(time.Hour)),
		ev("inverted", hm(12, 0), hm(11, 0)),
	}

	got := Layout(wholeDay(), items)
	if len(got) != 2 {
		t.Fatalf("got %+v, want overnight and late only", got)
	}

	overnight := got[0]
	if overnight.EventID != "overnight" || !overnight.ContinuesBefore || overnight.ContinuesAfter {
		t.Errorf("overnight = %+v", overnight)
	}
	if !overnight.Slice.Equal(daterange.Range{Start: today, End: hm(2, 0)}) {
		t.Errorf("overnight slice = %v, want [00:00, 02:00)", overnight.Slice)
	}

	late := got[1]
	if late.EventID != "late" || late.ContinuesBefore || !late.ContinuesAfter {
		t.Errorf("late = %+v", late)
	}
	if !late.Slice.End.Equal(today.AddDate(0, 0, 1)) {
		t.Errorf("late slice = %v, want clipped at midnight", late.Slice)
	}
}

func TestLayoutPointEventsAtRangeBounds(t *testing.T) {
	day := wholeDay()
	items := []calendar.Item[string]{
		ev("at-start", day.Start, day.Start),
		ev("at-end", day.End, day.End),
	}
	got := Layout(day, items)
	if len(got) != 1 || got[0].EventID != "at-start" {
		t.Errorf("got %+v, want only at-start", got)
	}
}

func TestLayoutIsPure(t *testing.T) {
	items := []calendar.Item[string]{
		ev("b", hm(9, 30), hm(10, 30)),
		ev("a", hm(9, 0), hm(10, 0)),
	}
	first := Layout(wholeDay(), items)
	second := Layout(wholeDay(), items)
	if items[0].ID != "b" {
		t.Error("Layout reordered its input")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestLayoutNoOverlapInColumn(t *testing.T) {
	// Staircase of overlapping events with gaps; every pair sharing a
	// column must be disjoint.
	var items []calendar.Item[string]
	for i := 0; i < 24; i++ {
		start := hm(i/2, (i%2)*30)
		items = append(items, ev(string(rune('a'+i)), start, start.Add(time.Duration(30+15*(i%5))*time.Minute)))
	}
	got := Layout(wholeDay(), items)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if got[i].Column == got[j].Column && got[i].Slice.Overlaps(got[j].Slice) {
				t.Errorf("%s and %s overlap in column %d", got[i].EventID, got[j].EventID, got[i].Column)
			}
			if got[i].Slice.Overlaps(got[j].Slice) && got[i].Columns != got[j].Columns {
				t.Errorf("%s and %s overlap but report %d and %d columns", got[i].EventID, got[j].EventID, got[i].Columns, got[j].Columns)
			}
		}
		if got[i].Column >= got[i].Columns {
			t.Errorf("%s column %d outside %d", got[i].EventID, got[i].Column, got[i].Columns)
		}
	}
}
