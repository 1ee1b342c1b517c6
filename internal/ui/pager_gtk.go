//go:build !nogtk && cgo

package ui

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/cpuguy83/calpager/internal/navigation"
)

const (
	// settleSlack bounds how long past the requested duration we wait for
	// the carousel's own spring animation to report the new page.
	settleSlack = 400 * time.Millisecond

	frameMillis = 16
)

// carouselPager drives an adw.Carousel as the page scroller.
//
// The carousel animates with its own spring, so the requested curve is not
// applied to page transitions.
type carouselPager struct {
	carousel *adw.Carousel
	page     func(i int) gtk.Widgetter
	onUser   func(i int)

	mu      sync.Mutex
	pending int // target of the running animation, -1 when idle
	done    chan error
}

func newCarouselPager(c *adw.Carousel, page func(int) gtk.Widgetter, onUser func(int)) *carouselPager {
	p := &carouselPager{carousel: c, page: page, onUser: onUser, pending: -1}
	c.ConnectPageChanged(func(index uint) {
		p.pageChanged(int(index))
	})
	return p
}

func (p *carouselPager) pageChanged(i int) {
	p.mu.Lock()
	pending, done := p.pending, p.done
	p.pending, p.done = -1, nil
	p.mu.Unlock()

	switch {
	case pending == i:
		done <- nil
		return
	case pending >= 0:
		done <- fmt.Errorf("pager settled on page %d, want %d", i, pending)
	}
	if p.onUser != nil {
		p.onUser(i)
	}
}

func (p *carouselPager) JumpToPage(index int) {
	glib.IdleAdd(func() {
		p.carousel.ScrollTo(p.page(index), false)
	})
}

func (p *carouselPager) AnimateToPage(ctx context.Context, index int, d time.Duration, _ navigation.Curve) error {
	done := make(chan error, 1)
	p.mu.Lock()
	p.pending, p.done = index, done
	p.mu.Unlock()

	glib.IdleAdd(func() {
		if int(math.Round(p.carousel.Position())) == index {
			p.pageChanged(index)
			return
		}
		p.carousel.ScrollTo(p.page(index), true)
	})

	timer := time.NewTimer(d + settleSlack)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		p.forget(done)
		return ctx.Err()
	case err := <-done:
		return err
	case <-timer.C:
		p.forget(done)
		return nil
	}
}

// forget drops done if it still owns the pending slot.
func (p *carouselPager) forget(done chan error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.pending, p.done = -1, nil
	}
}

func (p *carouselPager) SetPhysics(physics navigation.Physics) {
	glib.IdleAdd(func() {
		switch physics {
		case navigation.PhysicsNever:
			p.carousel.SetInteractive(false)
		case navigation.PhysicsClamping, navigation.PhysicsPage:
			p.carousel.SetInteractive(true)
			p.carousel.SetAllowLongSwipes(false)
		default:
			p.carousel.SetInteractive(true)
			p.carousel.SetAllowLongSwipes(true)
		}
	})
}

// adjustmentScroller drives the vertical adjustment of the current page's
// time axis. All fields are owned by the GTK main loop.
type adjustmentScroller struct {
	current func() *gtk.Adjustment
	active  glib.SourceHandle
}

func (s *adjustmentScroller) JumpToOffset(offset float64) {
	glib.IdleAdd(func() {
		s.stop()
		if adj := s.current(); adj != nil {
			adj.SetValue(offset)
		}
	})
}

func (s *adjustmentScroller) AnimateToOffset(ctx context.Context, offset float64, d time.Duration, curve navigation.Curve) error {
	done := make(chan struct{})
	var mine glib.SourceHandle // main loop only
	glib.IdleAdd(func() {
		s.stop()
		adj := s.current()
		if adj == nil {
			close(done)
			return
		}
		from := adj.Value()
		start := time.Now()
		s.active = glib.TimeoutAdd(frameMillis, func() bool {
			t := float64(time.Since(start)) / float64(d)
			if t >= 1 {
				adj.SetValue(offset)
				s.active = 0
				close(done)
				return false
			}
			adj.SetValue(from + (offset-from)*curve(t))
			return true
		})
		mine = s.active
	})

	select {
	case <-ctx.Done():
		glib.IdleAdd(func() {
			if mine != 0 && s.active == mine {
				s.stop()
			}
		})
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (s *adjustmentScroller) stop() {
	if s.active != 0 {
		glib.SourceRemove(s.active)
		s.active = 0
	}
}
