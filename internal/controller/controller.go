// Package controller is the imperative handle hosts use to drive a calendar
// view. A Controller is created detached; every operation needs it attached
// to a navigation state first.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/navigation"
)

// ErrDetached is returned by operations on a controller with no attached view.
var ErrDetached = errors.New("controller is not attached to a view")

// Options configures a Controller.
type Options struct {
	// Debug turns precondition violations into panics.
	Debug  bool
	Logger *slog.Logger
}

// Ranged is anything occupying a date-time range, e.g. calendar.Item.
type Ranged interface {
	DateTimeRange() daterange.Range
}

// lifecycle is either detached or attached.
type lifecycle interface{ isLifecycle() }

type detached struct{}

type attached struct {
	state *navigation.State
}

func (detached) isLifecycle() {}
func (attached) isLifecycle() {}

// Controller drives one attached view.
type Controller struct {
	debug bool
	log   *slog.Logger

	mu    sync.Mutex
	phase lifecycle

	onAttach []func(*navigation.State)
}

// New returns a detached controller.
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{debug: opts.Debug, log: log, phase: detached{}}
}

// Attach binds the controller to a view's state. Attaching again replaces
// the previous binding.
func (c *Controller) Attach(state *navigation.State) {
	if state == nil {
		c.violation("attach", ErrDetached)
		return
	}
	c.mu.Lock()
	if a, ok := c.phase.(attached); ok && a.state != state {
		c.log.Debug("controller re-attached; previous view released")
	}
	c.phase = attached{state: state}
	fns := append(([]func(*navigation.State))(nil), c.onAttach...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// Detach releases the view. Later operations fail with ErrDetached.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = detached{}
}

// IsAttached reports whether a view is bound.
func (c *Controller) IsAttached() bool {
	_, err := c.state()
	return err == nil
}

// OnAttach registers fn to run on every Attach.
func (c *Controller) OnAttach(fn func(*navigation.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAttach = append(c.onAttach, fn)
}

// State returns the attached navigation state.
func (c *Controller) State() (*navigation.State, error) {
	return c.state()
}

func (c *Controller) state() (*navigation.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p := c.phase.(type) {
	case attached:
		return p.state, nil
	default:
		return nil, ErrDetached
	}
}

// attachedState resolves the state for op, reporting a violation if detached.
func (c *Controller) attachedState(op string) (*navigation.State, error) {
	s, err := c.state()
	if err != nil {
		return nil, c.violation(op, err)
	}
	return s, nil
}

// violation logs a precondition violation, or panics in debug mode.
func (c *Controller) violation(op string, err error, attrs ...any) error {
	if c.debug {
		panic(fmt.Sprintf("calpager: %s: %v", op, err))
	}
	c.log.Warn("precondition violated", append([]any{"op", op, "error", err}, attrs...)...)
	return fmt.Errorf("%s: %w", op, err)
}

// check reports err from a state operation as a violation, except for
// superseded animations which are an expected outcome.
func (c *Controller) check(op string, err error, attrs ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, navigation.ErrSuperseded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, daterange.ErrIndexOutOfRange),
		errors.Is(err, daterange.ErrDateOutOfRange),
		errors.Is(err, navigation.ErrInvalidZoom),
		errors.Is(err, navigation.ErrNoTimeAxis):
		return c.violation(op, err, attrs...)
	default:
		return err
	}
}

// AnimateOption customizes one animated call.
type AnimateOption func(*animateConfig)

type animateConfig struct {
	duration time.Duration
	curve    navigation.Curve
}

// WithDuration overrides the configured animation duration.
func WithDuration(d time.Duration) AnimateOption {
	return func(a *animateConfig) { a.duration = d }
}

// WithCurve overrides the configured animation curve.
func WithCurve(curve navigation.Curve) AnimateOption {
	return func(a *animateConfig) { a.curve = curve }
}

func animateOptions(s *navigation.State, opts []AnimateOption) animateConfig {
	cfg := s.Config()
	a := animateConfig{duration: cfg.DefaultAnimationDuration, curve: cfg.DefaultAnimationCurve}
	for _, o := range opts {
		o(&a)
	}
	return a
}

// JumpToPage shows page i without animating.
func (c *Controller) JumpToPage(i int) error {
	s, err := c.attachedState("jump to page")
	if err != nil {
		return err
	}
	return c.check("jump to page", s.SetPageIndex(i), "index", i)
}

// JumpToDate shows the page containing t without animating.
func (c *Controller) JumpToDate(t time.Time) error {
	s, err := c.attachedState("jump to date")
	if err != nil {
		return err
	}
	i, err := s.PageForDate(t)
	if err != nil {
		return c.check("jump to date", err, "date", t)
	}
	return c.check("jump to date", s.SetPageIndex(i), "date", t)
}

// AnimateToPage animates to page i and blocks until it settles.
func (c *Controller) AnimateToPage(ctx context.Context, i int, opts ...AnimateOption) error {
	s, err := c.attachedState("animate to page")
	if err != nil {
		return err
	}
	a := animateOptions(s, opts)
	return c.check("animate to page", s.SetPageIndexAnimated(ctx, i, a.duration, a.curve), "index", i)
}

// AnimateToDate animates to the page containing t.
func (c *Controller) AnimateToDate(ctx context.Context, t time.Time, opts ...AnimateOption) error {
	s, err := c.attachedState("animate to date")
	if err != nil {
		return err
	}
	i, err := s.PageForDate(t)
	if err != nil {
		return c.check("animate to date", err, "date", t)
	}
	a := animateOptions(s, opts)
	return c.check("animate to date", s.SetPageIndexAnimated(ctx, i, a.duration, a.curve), "date", t)
}

// AnimateToEvent brings an event into view: its page first, then, on views
// with a time axis, its start time.
func (c *Controller) AnimateToEvent(ctx context.Context, event Ranged, opts ...AnimateOption) error {
	s, err := c.attachedState("animate to event")
	if err != nil {
		return err
	}
	start := event.DateTimeRange().Start
	a := animateOptions(s, opts)
	return c.check("animate to event", s.AnimateToEvent(ctx, start, a.duration, a.curve), "date", start)
}

// NextPage animates one page forward.
func (c *Controller) NextPage(ctx context.Context, opts ...AnimateOption) error {
	s, err := c.attachedState("next page")
	if err != nil {
		return err
	}
	a := animateOptions(s, opts)
	return c.check("next page", s.NextPage(ctx, a.duration, a.curve))
}

// PreviousPage animates one page back.
func (c *Controller) PreviousPage(ctx context.Context, opts ...AnimateOption) error {
	s, err := c.attachedState("previous page")
	if err != nil {
		return err
	}
	a := animateOptions(s, opts)
	return c.check("previous page", s.PreviousPage(ctx, a.duration, a.curve))
}

// AdjustZoom sets the height per minute of the time axis.
func (c *Controller) AdjustZoom(z float64) error {
	s, err := c.attachedState("adjust zoom")
	if err != nil {
		return err
	}
	return c.check("adjust zoom", s.SetZoom(z), "zoom", z)
}

// LockScroll disables user scrolling of the pager.
func (c *Controller) LockScroll() error {
	s, err := c.attachedState("lock scroll")
	if err != nil {
		return err
	}
	s.SetScrollLock(true, navigation.PhysicsDefault)
	return nil
}

// UnlockScroll re-enables user scrolling, optionally with new physics.
func (c *Controller) UnlockScroll(physics ...navigation.Physics) error {
	s, err := c.attachedState("unlock scroll")
	if err != nil {
		return err
	}
	p := navigation.PhysicsDefault
	if len(physics) > 0 {
		p = physics[0]
	}
	s.SetScrollLock(false, p)
	return nil
}
