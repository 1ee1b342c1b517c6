package navigation

import (
	"context"
	"sync"
	"time"
)

// Headless is a timer-driven scroller for hosts without a widget toolkit.
// It implements both PageScroller and TimeScroller. Animations complete after
// their duration unless replaced or canceled.
type Headless struct {
	mu      sync.Mutex
	page    int
	offset  float64
	physics Physics
	cancel  context.CancelFunc
	onPage  func(int) error
}

// NewHeadless returns a Headless scroller. onPage, if set, is called when a
// user swipe settles on a page; an error rejects the page and the swipe is
// rolled back.
func NewHeadless(onPage func(int) error) *Headless {
	return &Headless{onPage: onPage}
}

// Page returns the page the scroller shows.
func (h *Headless) Page() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.page
}

// Offset returns the time-axis offset the scroller shows.
func (h *Headless) Offset() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.offset
}

// Physics returns the applied scroll physics.
func (h *Headless) Physics() Physics {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.physics
}

func (h *Headless) JumpToPage(index int) {
	h.mu.Lock()
	h.stop()
	h.page = index
	h.mu.Unlock()
}

func (h *Headless) AnimateToPage(ctx context.Context, index int, d time.Duration, _ Curve) error {
	return h.animate(ctx, d, func() { h.page = index })
}

func (h *Headless) SetPhysics(p Physics) {
	h.mu.Lock()
	h.physics = p
	h.mu.Unlock()
}

func (h *Headless) JumpToOffset(offset float64) {
	h.mu.Lock()
	h.stop()
	h.offset = offset
	h.mu.Unlock()
}

func (h *Headless) AnimateToOffset(ctx context.Context, offset float64, d time.Duration, _ Curve) error {
	return h.animate(ctx, d, func() { h.offset = offset })
}

// Swipe simulates a user gesture moving by delta pages. It reports whether
// the scroller moved: swipes are ignored while scrolling is locked, and a
// page rejected by onPage springs back to where the gesture started.
func (h *Headless) Swipe(delta int) bool {
	h.mu.Lock()
	if h.physics == PhysicsNever {
		h.mu.Unlock()
		return false
	}
	h.stop()
	from := h.page
	h.page += delta
	page, fn := h.page, h.onPage
	h.mu.Unlock()

	if fn == nil {
		return true
	}
	if err := fn(page); err != nil {
		h.mu.Lock()
		if h.page == page {
			h.page = from
		}
		h.mu.Unlock()
		return false
	}
	return true
}

func (h *Headless) animate(ctx context.Context, d time.Duration, apply func()) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.mu.Lock()
	h.stop()
	h.cancel = cancel
	h.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	apply()
	h.cancel = nil
	return nil
}

// stop cancels the running animation. Caller holds mu.
func (h *Headless) stop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
