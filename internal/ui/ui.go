// Package ui provides hosts for a calendar view: a GTK window with a
// swipeable pager, or a terminal that reprints the visible page.
package ui

import (
	"io"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/filter"
	"github.com/cpuguy83/calpager/internal/navigation"
	"github.com/cpuguy83/calpager/internal/ui/text"
)

// defaultWeekStart lays out month rows when the granularity has no week start.
const defaultWeekStart = time.Monday

// Host displays one navigation state and the events in a store.
type Host interface {
	// Init builds the host and binds its scrollers to the state.
	// Must be called before other methods.
	Init() error

	// Show displays the current page.
	Show()

	// Refresh re-renders after the store changed.
	Refresh()

	// Close releases the state bindings.
	Close()
}

// Config holds host configuration.
type Config struct {
	Title  string
	State  *navigation.State
	Store  *calendar.Store[calendar.Event]
	Filter *filter.Filter
}

// Terminal prints the visible page to a writer whenever it changes.
type Terminal struct {
	cfg      Config
	out      io.Writer
	scroller *navigation.Headless
	view     *text.View
}

// NewTerminal creates a terminal host writing to out.
func NewTerminal(cfg Config, out io.Writer) *Terminal {
	return &Terminal{cfg: cfg, out: out}
}

// Init binds a timer-driven scroller and starts following the state.
func (t *Terminal) Init() error {
	t.scroller = navigation.NewHeadless(t.cfg.State.OnExternalPageChanged)
	t.cfg.State.SetScrollers(t.scroller, t.scroller)
	t.view = text.NewView(t.cfg.State, t.cfg.Store, t.cfg.Filter, t.out)
	return nil
}

// Show prints the current page.
func (t *Terminal) Show() {
	t.view.Refresh()
}

// Refresh prints the current page with the store's latest events.
func (t *Terminal) Refresh() {
	t.view.Refresh()
}

// Close stops following the state.
func (t *Terminal) Close() {
	if t.view != nil {
		t.view.Close()
	}
}

// Swipe moves the pager by delta pages as a user gesture would. It reports
// false when the swipe was ignored or ran past either end of the range.
func (t *Terminal) Swipe(delta int) bool {
	return t.scroller.Swipe(delta)
}
