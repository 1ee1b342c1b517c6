package navigation

import (
	"fmt"
	"strings"
)

// Curve maps animation progress in [0, 1] to eased progress in [0, 1].
type Curve func(t float64) float64

// Named curves. Ease and friends match the CSS cubic-bezier definitions.
var (
	Linear    Curve = func(t float64) float64 { return clamp01(t) }
	Ease            = CubicBezier(0.25, 0.1, 0.25, 1.0)
	EaseIn          = CubicBezier(0.42, 0, 1, 1)
	EaseOut         = CubicBezier(0, 0, 0.58, 1)
	EaseInOut       = CubicBezier(0.42, 0, 0.58, 1)
)

// ParseCurve resolves a configured curve name.
func ParseCurve(name string) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear, nil
	case "ease", "":
		return Ease, nil
	case "ease_in", "ease-in":
		return EaseIn, nil
	case "ease_out", "ease-out":
		return EaseOut, nil
	case "ease_in_out", "ease-in-out":
		return EaseInOut, nil
	default:
		return nil, fmt.Errorf("unknown animation curve %q", name)
	}
}

// CubicBezier returns the curve through (0,0), (x1,y1), (x2,y2), (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Curve {
	bez := func(a, b, s float64) float64 {
		// Bernstein form with P0 = 0 and P3 = 1.
		inv := 1 - s
		return 3*inv*inv*s*a + 3*inv*s*s*b + s*s*s
	}
	return func(t float64) float64 {
		t = clamp01(t)
		if t == 0 || t == 1 {
			return t
		}
		// x(s) is monotonic for x1, x2 in [0, 1]; bisect for s.
		lo, hi := 0.0, 1.0
		s := t
		for i := 0; i < 40; i++ {
			x := bez(x1, x2, s)
			if x < t {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return bez(y1, y2, s)
	}
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
