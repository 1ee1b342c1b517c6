package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/cpuguy83/calpager/internal/daterange"
)

func feb2026() daterange.Range {
	return daterange.Range{
		Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
	}
}

func parseFeed(t *testing.T, body string, rng daterange.Range, maxOcc int) []Event {
	t.Helper()
	s := &ICSSource{name: "test", MaxOccurrences: maxOcc}
	events, err := s.parseICS(strings.NewReader(body), rng)
	if err != nil {
		t.Fatalf("parseICS: %v", err)
	}
	return events
}

func TestParseICS_AllDayDetection(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		allDay bool
	}{
		{
			// iCloud-style multi-day event encoded with full datetimes at midnight
			name: "midnight to midnight datetimes",
			body: `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:test-multiday-allday
SUMMARY:Mid-winter break (no school)
DTSTART:20260216T000000
DTEND:20260221T000000
END:VEVENT
END:VCALENDAR`,
			allDay: true,
		},
		{
			name: "date only",
			body: `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:test-dateonly-allday
SUMMARY:Holiday
DTSTART;VALUE=DATE:20260217
DTEND;VALUE=DATE:20260218
END:VEVENT
END:VCALENDAR`,
			allDay: true,
		},
		{
			name: "timed",
			body: `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:test-timed
SUMMARY:Meeting
DTSTART:20260217T100000
DTEND:20260217T110000
END:VEVENT
END:VCALENDAR`,
			allDay: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := parseFeed(t, tt.body, feb2026(), 0)
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if events[0].AllDay != tt.allDay {
				t.Errorf("AllDay = %v, want %v", events[0].AllDay, tt.allDay)
			}
			if events[0].Source != "test" {
				t.Errorf("Source = %q, want test", events[0].Source)
			}
		})
	}
}

func TestParseICS_DurationAndPointEvents(t *testing.T) {
	body := `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:with-duration
SUMMARY:Standup
DTSTART:20260217T090000
DURATION:PT15M
END:VEVENT
BEGIN:VEVENT
UID:reminder
SUMMARY:Take out bins
DTSTART:20260217T180000
END:VEVENT
END:VCALENDAR`

	events := parseFeed(t, body, feb2026(), 0)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	byID := map[string]Event{}
	for _, ev := range events {
		byID[ev.UID] = ev
	}
	withDuration := byID["with-duration"]
	if d := withDuration.Duration(); d != 15*time.Minute {
		t.Errorf("DURATION event lasts %v, want 15m", d)
	}
	reminder := byID["reminder"]
	if d := reminder.Duration(); d != 0 {
		t.Errorf("DTSTART-only event lasts %v, want 0", d)
	}
}

func TestParseICS_RecurrenceExpandedInRange(t *testing.T) {
	body := `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:weekly
SUMMARY:Weekly sync
DTSTART:20250106T100000
DTEND:20250106T110000
RRULE:FREQ=WEEKLY;BYDAY=MO
EXDATE:20260216T100000
END:VEVENT
END:VCALENDAR`

	events := parseFeed(t, body, feb2026(), 0)
	// Mondays in Feb 2026: 2, 9, 16 (excluded), 23.
	want := []int{2, 9, 23}
	if len(events) != len(want) {
		t.Fatalf("got %d occurrences, want %d: %v", len(events), len(want), events)
	}
	seen := map[string]bool{}
	for i, ev := range events {
		if ev.Start.Day() != want[i] || ev.Start.Hour() != 10 {
			t.Errorf("occurrence %d starts %v, want Feb %d 10:00", i, ev.Start, want[i])
		}
		if ev.Duration() != time.Hour {
			t.Errorf("occurrence %d lasts %v", i, ev.Duration())
		}
		if seen[ev.UID] {
			t.Errorf("duplicate occurrence UID %q", ev.UID)
		}
		seen[ev.UID] = true
	}
}

func TestParseICS_RecurrenceCap(t *testing.T) {
	body := `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:daily
SUMMARY:Daily
DTSTART:20260101T080000
DTEND:20260101T081500
RRULE:FREQ=DAILY
END:VEVENT
END:VCALENDAR`

	events := parseFeed(t, body, feb2026(), 5)
	if len(events) != 5 {
		t.Fatalf("got %d occurrences, want capped 5", len(events))
	}
	if events[0].Start.Day() != 1 || events[0].Start.Month() != time.February {
		t.Errorf("first occurrence %v, want Feb 1", events[0].Start)
	}
}

func TestParseICS_EventsOutsideRangeDropped(t *testing.T) {
	body := `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:january
SUMMARY:Old
DTSTART:20260110T100000
DTEND:20260110T110000
END:VEVENT
BEGIN:VEVENT
UID:touching
SUMMARY:Ends at range start
DTSTART:20260131T230000
DTEND:20260201T000000
END:VEVENT
BEGIN:VEVENT
UID:overnight
SUMMARY:Crosses range start
DTSTART:20260131T230000
DTEND:20260201T010000
END:VEVENT
END:VCALENDAR`

	events := parseFeed(t, body, feb2026(), 0)
	if len(events) != 1 || events[0].UID != "overnight" {
		t.Errorf("got %v, want only the overnight event", events)
	}
}
