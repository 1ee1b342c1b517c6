//go:build !nogtk && cgo

package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/navigation"
)

// GTK hosts the view in a window holding an adw.Carousel with one child per
// page. Page contents are built when a page comes near the visible one.
type GTK struct {
	cfg Config
	app *gtk.Application

	window   *gtk.ApplicationWindow
	carousel *adw.Carousel
	pages    []*page
	current  int

	pager *carouselPager
	times *adjustmentScroller

	unbind []func()
}

// NewGTK creates a GTK host inside app.
func NewGTK(cfg Config, app *gtk.Application) *GTK {
	return &GTK{cfg: cfg, app: app}
}

// GTKAvailable reports whether the binary was built with GTK support.
func GTKAvailable() bool {
	return true
}

// Init builds the window. Must be called from the GTK main thread.
func (g *GTK) Init() error {
	adw.Init()

	state := g.cfg.State
	n := state.Indexer().NumPages()

	g.window = gtk.NewApplicationWindow(g.app)
	g.window.SetTitle(g.cfg.Title)
	g.window.SetDefaultSize(960, 720)

	g.carousel = adw.NewCarousel()
	g.carousel.SetHExpand(true)
	g.carousel.SetVExpand(true)
	g.carousel.SetAllowScrollWheel(false)

	g.pages = make([]*page, n)
	for i := range g.pages {
		r, err := state.Indexer().RangeForIndex(i)
		if err != nil {
			return fmt.Errorf("build page %d: %w", i, err)
		}
		g.pages[i] = newPage(r)
		g.carousel.Append(g.pages[i].root)
	}
	g.window.SetChild(g.carousel)

	g.pager = newCarouselPager(g.carousel,
		func(i int) gtk.Widgetter { return g.pages[i].root },
		func(i int) {
			if err := state.OnExternalPageChanged(i); err != nil {
				slog.Warn("page change from carousel rejected", "index", i, "error", err)
			}
		})
	g.times = &adjustmentScroller{current: func() *gtk.Adjustment {
		return g.pages[g.current].adjustment()
	}}
	state.SetScrollers(g.pager, g.times)

	g.unbind = append(g.unbind,
		state.Subscribe(func(sn navigation.Snapshot) {
			glib.IdleAdd(func() { g.show(sn.PageIndex) })
		}),
		state.Zoom().Subscribe(func(float64) {
			glib.IdleAdd(g.rebuild)
		}),
	)

	g.addKeys()
	g.applyCSS()
	g.show(state.Snapshot().PageIndex)
	return nil
}

// Show presents the window.
func (g *GTK) Show() {
	glib.IdleAdd(func() {
		g.window.SetVisible(true)
		g.window.Present()
	})
}

// Refresh rebuilds the pages around the visible one.
func (g *GTK) Refresh() {
	glib.IdleAdd(g.rebuild)
}

// Close unbinds from the state.
func (g *GTK) Close() {
	for _, fn := range g.unbind {
		fn()
	}
	g.unbind = nil
}

// show fills the pages adjacent to i so swipes reveal content.
func (g *GTK) show(i int) {
	g.current = i
	for _, j := range []int{i - 1, i, i + 1} {
		if j < 0 || j >= len(g.pages) || g.pages[j].built {
			continue
		}
		g.fill(g.pages[j])
	}
}

func (g *GTK) rebuild() {
	for _, p := range g.pages {
		p.built = false
	}
	g.show(g.current)
}

func (g *GTK) fill(p *page) {
	state := g.cfg.State
	gran := state.Granularity()
	f := g.cfg.Filter

	if !gran.HasTimeAxis() {
		wd, aligned := gran.WeekStart()
		if !aligned {
			wd = defaultWeekStart
		}
		weeks := daterange.WeekRows(p.visible.Start, wd)
		grid := daterange.Range{Start: weeks[0].Start, End: weeks[len(weeks)-1].End}
		p.buildMonth(wd, f.ApplyItems(g.cfg.Store.Between(grid)))
		return
	}

	zoom := state.Snapshot().Zoom
	p.buildTimeAxis(f.ApplyItems(g.cfg.Store.Between(p.visible)), zoom, gran.SkipsWeekends())
}

// addKeys binds arrow keys to paging.
func (g *GTK) addKeys() {
	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, keycode uint, _ gdk.ModifierType) bool {
		delta := 0
		switch keyval {
		case gdk.KEY_Left, gdk.KEY_Page_Up:
			delta = -1
		case gdk.KEY_Right, gdk.KEY_Page_Down:
			delta = 1
		default:
			return false
		}
		go func() {
			state := g.cfg.State
			if err := state.SetPageIndexAnimated(context.Background(), state.Snapshot().PageIndex+delta, 0, nil); err != nil {
				slog.Debug("key paging", "delta", delta, "error", err)
			}
		}()
		return true
	})
	g.window.AddController(keys)
}

// applyCSS loads the page styles.
func (g *GTK) applyCSS() {
	css := `
		.day-header {
			font-weight: bold;
			padding: 4px;
		}

		.hour-label {
			font-size: 10px;
			color: alpha(@view_fg_color, 0.5);
		}

		.event-block {
			background: alpha(@accent_bg_color, 0.25);
			border-left: 3px solid @accent_bg_color;
			border-radius: 4px;
			padding: 2px 4px;
			font-size: 11px;
		}

		.event-block.continues {
			border-left-style: dashed;
		}

		.event-bar {
			background: alpha(@accent_bg_color, 0.4);
			border-radius: 4px;
			padding: 1px 6px;
			font-size: 11px;
		}

		.other-month {
			color: alpha(@view_fg_color, 0.35);
		}
	`

	provider := gtk.NewCSSProvider()
	provider.LoadFromData(css)

	if display := gdk.DisplayGetDefault(); display != nil {
		gtk.StyleContextAddProviderForDisplay(display, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	}
}
