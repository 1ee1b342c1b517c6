// Package navigation holds the mutable navigation state of one calendar view:
// the current page, its visible range, the zoom of the time axis, and the
// scroll-lock policy. It drives the host's page and time scrollers and
// publishes every state transition to observers.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/observe"
)

var (
	// ErrInvalidZoom is returned for zoom values that are not positive and finite.
	ErrInvalidZoom = errors.New("zoom must be a positive finite number")
	// ErrNoTimeAxis is returned for time-axis operations on a Month view.
	ErrNoTimeAxis = errors.New("granularity has no time axis")
	// ErrSuperseded is returned to an animated navigation call that was
	// overridden by a newer navigation request before it settled. It is not
	// a failure: the newer request owns the outcome.
	ErrSuperseded = errors.New("navigation superseded by a newer request")
)

// DefaultZoom is the initial height per minute of time-axis views.
const DefaultZoom = 1.0

// Config holds the defaults a view is constructed with.
type Config struct {
	DefaultAnimationDuration time.Duration
	DefaultAnimationCurve    Curve
	// FallbackRangeSpanDays sizes the overall range when none is given:
	// that many days on each side of now. Zero means 250 pages.
	FallbackRangeSpanDays int
}

// DefaultConfig returns the stock animation and range defaults.
func DefaultConfig() Config {
	return Config{
		DefaultAnimationDuration: 300 * time.Millisecond,
		DefaultAnimationCurve:    Ease,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultAnimationDuration <= 0 {
		c.DefaultAnimationDuration = d.DefaultAnimationDuration
	}
	if c.DefaultAnimationCurve == nil {
		c.DefaultAnimationCurve = d.DefaultAnimationCurve
	}
	return c
}

// Options configures a new State.
type Options struct {
	Granularity daterange.Granularity
	// Range is the overall navigable range. Zero means a fallback range
	// around Now, sized by Config.FallbackRangeSpanDays.
	Range daterange.Range
	// Initial is the date shown first. Zero means Now, clamped into Range.
	Initial time.Time
	// Zoom is the initial height per minute; zero means DefaultZoom.
	// Ignored for Month.
	Zoom   float64
	Config Config

	Pages PageScroller
	Times TimeScroller

	Logger *slog.Logger
	Now    func() time.Time
}

// Snapshot is one consistent view of the navigation state.
type Snapshot struct {
	PageIndex    int
	VisibleRange daterange.Range
	// Zoom is the height per minute; zero when the view has no time axis.
	Zoom         float64
	ScrollLocked bool
	Physics      Physics
}

// Equal reports whether two snapshots describe the same state.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.PageIndex == o.PageIndex &&
		s.VisibleRange.Equal(o.VisibleRange) &&
		s.Zoom == o.Zoom &&
		s.ScrollLocked == o.ScrollLocked &&
		s.Physics == o.Physics
}

// State is the single source of truth for one attached view.
type State struct {
	cfg     Config
	indexer *daterange.Indexer
	log     *slog.Logger

	snap    *observe.Value[Snapshot]
	visible *observe.Value[daterange.Range]
	zoom    *observe.Value[float64]
	unbind  []func()

	mu      sync.Mutex
	pages   PageScroller
	times   TimeScroller
	unlock  Physics // physics restored when scrolling is unlocked
	animGen uint64
	cancel  context.CancelFunc
	phase   Phase
}

// New creates the navigation state for a view. It fails fast on contract
// violations: an inverted range or a non-positive zoom.
func New(opts Options) (*State, error) {
	now := time.Now
	switch {
	case opts.Now != nil:
		now = opts.Now
	case !opts.Initial.IsZero():
		// Lay pages out in the zone the caller shows Initial in.
		loc := opts.Initial.Location()
		now = func() time.Time { return time.Now().In(loc) }
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg := opts.Config.withDefaults()
	g := opts.Granularity

	overall := opts.Range
	if overall.IsZero() {
		if cfg.FallbackRangeSpanDays > 0 {
			overall = daterange.FallbackRangeDays(g, now(), cfg.FallbackRangeSpanDays)
		} else {
			overall = daterange.FallbackRange(g, now(), daterange.DefaultSpanPages)
		}
	}
	ix, err := daterange.NewIndexer(g, overall)
	if err != nil {
		return nil, fmt.Errorf("create navigation state: %w", err)
	}

	zoom := 0.0
	if g.HasTimeAxis() {
		zoom = opts.Zoom
		if zoom == 0 {
			zoom = DefaultZoom
		}
		if !validZoom(zoom) {
			return nil, fmt.Errorf("create navigation state: %w: %v", ErrInvalidZoom, zoom)
		}
	}

	initial := opts.Initial
	if initial.IsZero() {
		initial = now()
	}
	page, err := ix.IndexForDate(initial)
	if err != nil {
		// An initial date outside the range lands on the nearest end.
		page = 0
		if initial.After(overall.End) {
			page = ix.NumPages() - 1
		}
	}
	visible, err := ix.RangeForIndex(page)
	if err != nil {
		return nil, fmt.Errorf("create navigation state: %w", err)
	}

	s := &State{
		cfg:     cfg,
		indexer: ix,
		log:     log,
		pages:   nopScroller{},
		times:   nopScroller{},
	}
	s.snap = observe.NewValue(Snapshot{
		PageIndex:    page,
		VisibleRange: visible,
		Zoom:         zoom,
	}, Snapshot.Equal)

	var cancelVisible, cancelZoom func()
	s.visible, cancelVisible = observe.Derive(s.snap,
		func(sn Snapshot) daterange.Range { return sn.VisibleRange },
		daterange.Range.Equal)
	s.zoom, cancelZoom = observe.Derive(s.snap,
		func(sn Snapshot) float64 { return sn.Zoom },
		func(a, b float64) bool { return a == b })
	s.unbind = []func(){cancelVisible, cancelZoom}

	s.SetScrollers(opts.Pages, opts.Times)
	return s, nil
}

// SetScrollers binds the host scrollers. Nil leaves a no-op scroller in place.
// The page scroller is moved to the current page.
func (s *State) SetScrollers(pages PageScroller, times TimeScroller) {
	s.mu.Lock()
	if pages != nil {
		s.pages = pages
	}
	if times != nil {
		s.times = times
	}
	p := s.pages
	s.mu.Unlock()

	sn := s.snap.Get()
	p.JumpToPage(sn.PageIndex)
	if sn.ScrollLocked {
		p.SetPhysics(PhysicsNever)
	}
}

// Close detaches the derived observables.
func (s *State) Close() {
	for _, fn := range s.unbind {
		fn()
	}
	s.unbind = nil
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

// Config returns the effective configuration.
func (s *State) Config() Config { return s.cfg }

// Indexer returns the page <-> range mapping.
func (s *State) Indexer() *daterange.Indexer { return s.indexer }

// Granularity returns the paging policy.
func (s *State) Granularity() daterange.Granularity { return s.indexer.Granularity() }

// HasTimeAxis reports whether the view has a vertical time axis.
func (s *State) HasTimeAxis() bool { return s.Granularity().HasTimeAxis() }

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot { return s.snap.Get() }

// Subscribe registers fn for every state transition.
func (s *State) Subscribe(fn func(Snapshot)) func() { return s.snap.Subscribe(fn) }

// VisibleRange is the observable visible range.
func (s *State) VisibleRange() *observe.Value[daterange.Range] { return s.visible }

// Zoom is the observable zoom (height per minute).
func (s *State) Zoom() *observe.Value[float64] { return s.zoom }

// Phase returns the phase of the latest animate-to-event sequence.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// PageForDate returns the page containing t.
func (s *State) PageForDate(t time.Time) (int, error) {
	return s.indexer.IndexForDate(t)
}

// SetPageIndex jumps to page i. It overrides any in-flight animation.
func (s *State) SetPageIndex(i int) error {
	if _, err := s.indexer.RangeForIndex(i); err != nil {
		s.log.Warn("rejected page jump", "index", i, "error", err)
		return err
	}
	gen := s.supersede()
	s.pageScroller().JumpToPage(i)
	return s.commitPage(i, gen)
}

// SetPageIndexAnimated animates the page scroller to i and then commits the
// new page. A later navigation call wins: this call then returns ErrSuperseded
// without committing.
func (s *State) SetPageIndexAnimated(ctx context.Context, i int, d time.Duration, curve Curve) error {
	if _, err := s.indexer.RangeForIndex(i); err != nil {
		s.log.Warn("rejected page animation", "index", i, "error", err)
		return err
	}
	actx, gen := s.claim(ctx)
	defer s.release(gen)
	return s.animatePage(actx, gen, i, d, curve)
}

// NextPage animates one page forward.
func (s *State) NextPage(ctx context.Context, d time.Duration, curve Curve) error {
	return s.SetPageIndexAnimated(ctx, s.Snapshot().PageIndex+1, d, curve)
}

// PreviousPage animates one page back.
func (s *State) PreviousPage(ctx context.Context, d time.Duration, curve Curve) error {
	return s.SetPageIndexAnimated(ctx, s.Snapshot().PageIndex-1, d, curve)
}

// OnExternalPageChanged records a page change the host scroller already
// performed, e.g. a user swipe. The scroller is not driven.
func (s *State) OnExternalPageChanged(i int) error {
	if _, err := s.indexer.RangeForIndex(i); err != nil {
		s.log.Warn("ignored external page change", "index", i, "error", err)
		return err
	}
	return s.commitPage(i, 0)
}

// SetZoom sets the height per minute of the time axis.
func (s *State) SetZoom(z float64) error {
	if !s.HasTimeAxis() {
		s.log.Warn("rejected zoom", "zoom", z, "error", ErrNoTimeAxis)
		return ErrNoTimeAxis
	}
	if !validZoom(z) {
		s.log.Warn("rejected zoom", "zoom", z, "error", ErrInvalidZoom)
		return fmt.Errorf("%w: %v", ErrInvalidZoom, z)
	}
	_, err := s.snap.Update(func(cur Snapshot) (Snapshot, error) {
		cur.Zoom = z
		return cur, nil
	})
	return err
}

// SetScrollLock locks or unlocks user scrolling of the page scroller.
// override, if set, is the physics applied when unlocking.
func (s *State) SetScrollLock(locked bool, override Physics) {
	s.mu.Lock()
	if !locked && override != PhysicsDefault {
		s.unlock = override
	}
	physics := s.unlock
	pages := s.pages
	s.mu.Unlock()

	if locked {
		physics = PhysicsNever
	}
	pages.SetPhysics(physics)
	s.snap.Update(func(cur Snapshot) (Snapshot, error) {
		cur.ScrollLocked = locked
		cur.Physics = physics
		return cur, nil
	})
}

// JumpToOffset moves the time scroller without animating.
func (s *State) JumpToOffset(offset float64) error {
	if !s.HasTimeAxis() {
		return ErrNoTimeAxis
	}
	s.supersede()
	s.timeScroller().JumpToOffset(offset)
	return nil
}

// AnimateToOffset animates the time scroller to offset.
func (s *State) AnimateToOffset(ctx context.Context, offset float64, d time.Duration, curve Curve) error {
	if !s.HasTimeAxis() {
		return ErrNoTimeAxis
	}
	actx, gen := s.claim(ctx)
	defer s.release(gen)
	return s.animateOffset(actx, gen, offset, d, curve)
}

// AnimateToEvent brings an event starting at start into view: first the
// page containing start, then, for views with a time axis, the time scroller
// to start's offset. The second stage starts only after the first settled.
func (s *State) AnimateToEvent(ctx context.Context, start time.Time, d time.Duration, curve Curve) error {
	page, err := s.indexer.IndexForDate(start)
	if err != nil {
		s.log.Warn("rejected animate to event", "start", start, "error", err)
		return err
	}
	actx, gen := s.claim(ctx)
	defer s.release(gen)

	timeAxis := s.HasTimeAxis()
	phase := nextPhase(PhaseIdle, timeAxis, nil)
	for {
		s.setPhase(gen, phase)
		switch phase {
		case PhaseAnimatingPage:
			err = s.animatePage(actx, gen, page, d, curve)
		case PhaseAnimatingOffset:
			var offset float64
			offset, err = s.OffsetForTime(start)
			if err == nil {
				err = s.animateOffset(actx, gen, offset, d, curve)
			}
		case PhaseDone:
			return nil
		case PhaseAborted:
			return err
		}
		phase = nextPhase(phase, timeAxis, err)
	}
}

func (s *State) animatePage(ctx context.Context, gen uint64, i int, d time.Duration, curve Curve) error {
	d, curve = s.defaults(d, curve)
	err := s.pageScroller().AnimateToPage(ctx, i, d, curve)
	if !s.isCurrent(gen) {
		s.log.Debug("page animation superseded", "index", i)
		return ErrSuperseded
	}
	if err != nil {
		return fmt.Errorf("animate to page %d: %w", i, err)
	}
	return s.commitPage(i, gen)
}

func (s *State) animateOffset(ctx context.Context, gen uint64, offset float64, d time.Duration, curve Curve) error {
	d, curve = s.defaults(d, curve)
	err := s.timeScroller().AnimateToOffset(ctx, offset, d, curve)
	if !s.isCurrent(gen) {
		s.log.Debug("offset animation superseded", "offset", offset)
		return ErrSuperseded
	}
	if err != nil {
		return fmt.Errorf("animate to offset %.1f: %w", offset, err)
	}
	return nil
}

// commitPage updates page and visible range in one published transition.
// A non-zero gen must still own the animation slot.
func (s *State) commitPage(i int, gen uint64) error {
	r, err := s.indexer.RangeForIndex(i)
	if err != nil {
		return err
	}
	_, err = s.snap.Update(func(cur Snapshot) (Snapshot, error) {
		if gen != 0 && !s.isCurrent(gen) {
			return cur, ErrSuperseded
		}
		cur.PageIndex = i
		cur.VisibleRange = r
		return cur, nil
	})
	return err
}

func (s *State) defaults(d time.Duration, curve Curve) (time.Duration, Curve) {
	if d <= 0 {
		d = s.cfg.DefaultAnimationDuration
	}
	if curve == nil {
		curve = s.cfg.DefaultAnimationCurve
	}
	return d, curve
}

// claim takes the single animation slot, canceling whatever held it.
func (s *State) claim(ctx context.Context) (context.Context, uint64) {
	actx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.animGen++
	s.cancel = cancel
	return actx, s.animGen
}

// supersede empties the animation slot, canceling any in-flight animation.
func (s *State) supersede() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.animGen++
	return s.animGen
}

func (s *State) release(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.animGen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *State) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animGen == gen
}

func (s *State) setPhase(gen uint64, p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.animGen == gen {
		s.phase = p
	}
}

func (s *State) pageScroller() PageScroller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

func (s *State) timeScroller() TimeScroller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.times
}

func validZoom(z float64) bool {
	return z > 0 && !math.IsInf(z, 0) && !math.IsNaN(z)
}
