// Package animation provides the timing primitives behind animated style
// transitions.
//
// # Core Components
//
//   - [AnimationController]: drives a value from 0.0 to 1.0 over a duration with
//     an easing curve.
//   - [Tween]: maps controller progress onto float64 or [graphics.Size] ranges.
//   - Curves: [LinearCurve], [Ease], [EaseIn], [EaseOut], [EaseInOut] and
//     [CubicBezier], resolvable by name through [ParseCurve].
//   - [Ticker]: per-frame callbacks advanced by [StepTickers].
//
// The time source is replaceable with [SetClock], which lets tests advance a
// fake clock and step frames deterministically.
//
// [graphics.Size]: github.com/go-drift/switcher/pkg/graphics.Size
package animation
