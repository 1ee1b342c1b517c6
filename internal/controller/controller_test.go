package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/navigation"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var overall = daterange.Range{Start: date(2024, 1, 1), End: date(2024, 12, 31)}

func newAttached(t *testing.T, g daterange.Granularity, opts Options) (*Controller, *navigation.State, *navigation.Headless) {
	t.Helper()
	h := navigation.NewHeadless(nil)
	s, err := navigation.New(navigation.Options{
		Granularity: g,
		Range:       overall,
		Initial:     date(2024, 3, 15),
		Pages:       h,
		Times:       h,
		Logger:      quiet,
		Config:      navigation.Config{DefaultAnimationDuration: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("navigation.New: %v", err)
	}
	t.Cleanup(s.Close)
	if opts.Logger == nil {
		opts.Logger = quiet
	}
	c := New(opts)
	c.Attach(s)
	return c, s, h
}

func TestDetachedOperationsFail(t *testing.T) {
	c := New(Options{Logger: quiet})
	ctx := context.Background()

	event := calendar.Event{UID: "review", Start: date(2024, 3, 1), End: date(2024, 3, 2)}.Item()

	ops := map[string]func() error{
		"jump to page":     func() error { return c.JumpToPage(0) },
		"jump to date":     func() error { return c.JumpToDate(date(2024, 3, 1)) },
		"animate to page":  func() error { return c.AnimateToPage(ctx, 1) },
		"animate to date":  func() error { return c.AnimateToDate(ctx, date(2024, 3, 1)) },
		"animate to event": func() error { return c.AnimateToEvent(ctx, event) },
		"next page":        func() error { return c.NextPage(ctx) },
		"previous page":    func() error { return c.PreviousPage(ctx) },
		"adjust zoom":      func() error { return c.AdjustZoom(2) },
		"lock scroll":      func() error { return c.LockScroll() },
		"unlock scroll":    func() error { return c.UnlockScroll() },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrDetached) {
			t.Errorf("%s: err = %v, want ErrDetached", name, err)
		}
	}
	if c.IsAttached() {
		t.Error("new controller reports attached")
	}
}

func TestDebugModePanics(t *testing.T) {
	c := New(Options{Debug: true, Logger: quiet})
	defer func() {
		if recover() == nil {
			t.Error("detached call did not panic in debug mode")
		}
	}()
	c.JumpToPage(0)
}

func TestJumpToDateOutOfRangeDoesNotMutate(t *testing.T) {
	c, s, _ := newAttached(t, daterange.SingleDay(), Options{})
	before := s.Snapshot()

	for _, d := range []time.Time{overall.End.AddDate(0, 0, 1), overall.Start.AddDate(0, 0, -1)} {
		if err := c.JumpToDate(d); !errors.Is(err, daterange.ErrDateOutOfRange) {
			t.Errorf("JumpToDate(%v) = %v, want ErrDateOutOfRange", d, err)
		}
	}
	if !s.Snapshot().Equal(before) {
		t.Error("rejected jump mutated state")
	}
}

func TestJumpAndAnimate(t *testing.T) {
	c, s, h := newAttached(t, daterange.Week(), Options{})
	ctx := context.Background()

	if err := c.JumpToDate(date(2024, 6, 5)); err != nil {
		t.Fatalf("JumpToDate: %v", err)
	}
	if !s.Snapshot().VisibleRange.Contains(date(2024, 6, 5)) {
		t.Errorf("visible range %v does not contain Jun 5", s.Snapshot().VisibleRange)
	}

	if err := c.AnimateToDate(ctx, date(2024, 9, 1), WithCurve(navigation.Linear)); err != nil {
		t.Fatalf("AnimateToDate: %v", err)
	}
	page := s.Snapshot().PageIndex
	if h.Page() != page || !s.Snapshot().VisibleRange.Contains(date(2024, 9, 1)) {
		t.Errorf("scroller page %d, state %+v", h.Page(), s.Snapshot())
	}

	if err := c.PreviousPage(ctx, WithDuration(time.Microsecond)); err != nil {
		t.Fatalf("PreviousPage: %v", err)
	}
	if got := s.Snapshot().PageIndex; got != page-1 {
		t.Errorf("page after PreviousPage = %d, want %d", got, page-1)
	}

	if err := c.JumpToPage(s.Indexer().NumPages()); !errors.Is(err, daterange.ErrIndexOutOfRange) {
		t.Errorf("JumpToPage past end = %v", err)
	}
}

func TestAnimateToEvent(t *testing.T) {
	c, s, h := newAttached(t, daterange.SingleDay(), Options{})
	if err := c.AdjustZoom(2); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 7, 4, 18, 30, 0, 0, time.UTC)
	item := calendar.Event{UID: "fireworks", Start: start, End: start.Add(time.Hour)}.Item()
	if err := c.AnimateToEvent(context.Background(), item); err != nil {
		t.Fatalf("AnimateToEvent: %v", err)
	}
	if !s.Snapshot().VisibleRange.Contains(start) {
		t.Errorf("visible range %v does not contain event", s.Snapshot().VisibleRange)
	}
	if want := float64(18*60+30) * 2; h.Offset() != want {
		t.Errorf("time offset = %v, want %v", h.Offset(), want)
	}
	if s.Phase() != navigation.PhaseDone {
		t.Errorf("phase = %v", s.Phase())
	}
}

func TestZoomAndScrollLock(t *testing.T) {
	c, s, h := newAttached(t, daterange.Month(), Options{})

	if err := c.AdjustZoom(2); !errors.Is(err, navigation.ErrNoTimeAxis) {
		t.Errorf("month AdjustZoom = %v, want ErrNoTimeAxis", err)
	}

	if err := c.LockScroll(); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().ScrollLocked || h.Physics() != navigation.PhysicsNever {
		t.Errorf("after lock: %+v physics %q", s.Snapshot(), h.Physics())
	}
	if err := c.UnlockScroll(navigation.PhysicsClamping); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().ScrollLocked || h.Physics() != navigation.PhysicsClamping {
		t.Errorf("after unlock: %+v physics %q", s.Snapshot(), h.Physics())
	}
}

func TestReattachReplacesState(t *testing.T) {
	c, first, _ := newAttached(t, daterange.SingleDay(), Options{})

	var seen []*navigation.State
	c.OnAttach(func(s *navigation.State) { seen = append(seen, s) })

	second, err := navigation.New(navigation.Options{Granularity: daterange.Month(), Range: overall, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	c.Attach(second)

	got, err := c.State()
	if err != nil || got != second || got == first {
		t.Errorf("State() = %p, %v; want second state", got, err)
	}
	if len(seen) != 1 || seen[0] != second {
		t.Errorf("OnAttach saw %v", seen)
	}

	c.Detach()
	if c.IsAttached() {
		t.Error("still attached after Detach")
	}
}

func TestAnimateToEventInOtherZone(t *testing.T) {
	c, s, h := newAttached(t, daterange.SingleDay(), Options{})

	// 06:15 on March 20 in UTC+10 is 20:15 on March 19 on the UTC page grid.
	aest := time.FixedZone("AEST", 10*60*60)
	start := time.Date(2024, 3, 20, 6, 15, 0, 0, aest)
	item := calendar.Event{UID: "standup", Start: start, End: start.Add(15 * time.Minute)}.Item()
	if err := c.AnimateToEvent(context.Background(), item); err != nil {
		t.Fatalf("AnimateToEvent: %v", err)
	}
	if got, want := s.Snapshot().VisibleRange.Start, date(2024, 3, 19); !got.Equal(want) {
		t.Errorf("visible range starts %v, want %v", got, want)
	}
	if want := float64(20*60 + 15); h.Offset() != want {
		t.Errorf("time offset = %v, want %v", h.Offset(), want)
	}
}
