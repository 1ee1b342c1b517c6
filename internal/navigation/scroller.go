package navigation

import (
	"context"
	"time"
)

// Physics names the scroll behavior a host scroller should apply.
type Physics string

const (
	PhysicsDefault  Physics = ""
	PhysicsNever    Physics = "never" // user scrolling disabled
	PhysicsClamping Physics = "clamping"
	PhysicsBouncing Physics = "bouncing"
	PhysicsPage     Physics = "page"
)

// PageScroller is the host's horizontal pager.
//
// AnimateToPage blocks until the pager settles on index or ctx is done. The
// pager has a single animation slot: starting a new animation replaces the
// previous one.
type PageScroller interface {
	JumpToPage(index int)
	AnimateToPage(ctx context.Context, index int, d time.Duration, curve Curve) error
	SetPhysics(p Physics)
}

// TimeScroller is the host's vertical scroller over the time axis.
type TimeScroller interface {
	JumpToOffset(offset float64)
	AnimateToOffset(ctx context.Context, offset float64, d time.Duration, curve Curve) error
}

// nopScroller stands in until the host binds real scrollers.
type nopScroller struct{}

func (nopScroller) JumpToPage(int) {}

func (nopScroller) AnimateToPage(ctx context.Context, _ int, _ time.Duration, _ Curve) error {
	return ctx.Err()
}

func (nopScroller) SetPhysics(Physics) {}

func (nopScroller) JumpToOffset(float64) {}

func (nopScroller) AnimateToOffset(ctx context.Context, _ float64, _ time.Duration, _ Curve) error {
	return ctx.Err()
}
