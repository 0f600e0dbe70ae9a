package animation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Easing curves transform linear animation progress into natural-feeling
// motion. Each curve maps t in [0, 1] to an eased value.

// LinearCurve returns linear progress (no easing).
func LinearCurve(t float64) float64 {
	return t
}

// Ease is a general-purpose curve. Equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates. Equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.4, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates. Equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.2, 1.0)

// EaseInOut starts and ends slowly. Equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.4, 0.0, 0.2, 1.0)

var namedCurves = map[string]func(float64) float64{
	"linear":      LinearCurve,
	"ease":        Ease,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
}

// ParseCurve resolves a curve name as used in configuration files. It accepts
// the CSS keywords linear, ease, ease-in, ease-out and ease-in-out, and the
// functional form cubic-bezier(x1, y1, x2, y2). An empty name yields Ease.
func ParseCurve(name string) (func(float64) float64, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Ease, nil
	}
	if curve, ok := namedCurves[name]; ok {
		return curve, nil
	}

	args, ok := strings.CutPrefix(name, "cubic-bezier(")
	if !ok {
		return nil, fmt.Errorf("unknown curve %q", name)
	}
	args, ok = strings.CutSuffix(args, ")")
	if !ok {
		return nil, fmt.Errorf("unterminated curve %q", name)
	}
	parts := strings.Split(args, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("cubic-bezier needs 4 arguments, got %d", len(parts))
	}
	var p [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("cubic-bezier argument %d: %w", i+1, err)
		}
		p[i] = v
	}
	if p[0] < 0 || p[0] > 1 || p[2] < 0 || p[2] > 1 {
		return nil, fmt.Errorf("cubic-bezier x values must be within [0, 1]")
	}
	return CubicBezier(p[0], p[1], p[2], p[3]), nil
}

// CubicBezier returns a cubic-bezier easing function matching CSS cubic-bezier().
// The parameters define the two control points (x1,y1) and (x2,y2) of the curve.
// The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) func(float64) float64 {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Fallback to bisection to guarantee a stable solution in [0,1].
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
