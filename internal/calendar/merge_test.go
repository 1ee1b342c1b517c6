package calendar

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestMergeSortsAndDedupes(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 2, 17, h, 0, 0, 0, time.UTC) }
	a := []Event{{UID: "late", Start: at(15)}, {UID: "b", Start: at(9)}}
	b := []Event{{UID: "a", Start: at(9)}, {UID: "late", Start: at(16), Summary: "dup"}}

	got := Merge(a, b)
	want := []string{"a", "b", "late"}
	if len(got) != len(want) {
		t.Fatalf("Merge = %v", got)
	}
	for i := range want {
		if got[i].UID != want[i] {
			t.Errorf("Merge[%d] = %q, want %q", i, got[i].UID, want[i])
		}
	}
	if got[2].Summary == "dup" {
		t.Error("later duplicate replaced the first occurrence")
	}
}

func TestWriteICSSnapshot(t *testing.T) {
	loc := time.Local
	events := []Event{
		{
			UID:       "meeting",
			Summary:   "Planning",
			Location:  "Room 4",
			Organizer: "lead@example.com",
			Start:     time.Date(2026, 2, 17, 10, 0, 0, 0, loc),
			End:       time.Date(2026, 2, 17, 11, 0, 0, 0, loc),
			Source:    "work",
		},
		{
			UID:     "holiday",
			Summary: "Holiday",
			Start:   time.Date(2026, 2, 18, 0, 0, 0, 0, loc),
			End:     time.Date(2026, 2, 19, 0, 0, 0, 0, loc),
			AllDay:  true,
			Source:  "home",
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "snapshot.ics")
	if err := WriteICS(path, events); err != nil {
		t.Fatalf("WriteICS: %v", err)
	}
	got, err := ReadICS(path)
	if err != nil {
		t.Fatalf("ReadICS: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d events, want 2", len(got))
	}

	meeting, holiday := got[0], got[1]
	if meeting.Organizer != "lead@example.com" || meeting.Source != "work" || !meeting.Start.Equal(events[0].Start) {
		t.Errorf("meeting = %+v", meeting)
	}
	if !holiday.AllDay || !holiday.End.Equal(events[1].End) || holiday.Source != "home" {
		t.Errorf("holiday = %+v", holiday)
	}
}

func TestEncodeICSStamp(t *testing.T) {
	var buf bytes.Buffer
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := EncodeICS(&buf, []Event{{UID: "x", Start: stamp, End: stamp}}, stamp); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("DTSTAMP:20260102T030405Z")) {
		t.Errorf("encoded calendar lacks DTSTAMP:\n%s", buf.String())
	}
}
