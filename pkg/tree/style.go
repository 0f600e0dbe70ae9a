package tree

import (
	"strconv"
	"time"

	"github.com/go-drift/switcher/pkg/animation"
)

// Length is an optional pixel length. The zero value is None, meaning the
// property is unconstrained.
type Length struct {
	value float64
	set   bool
}

// None is the unconstrained length.
var None = Length{}

// Px returns a pixel length. Negative values clamp to zero.
func Px(v float64) Length {
	if v < 0 {
		v = 0
	}
	return Length{value: v, set: true}
}

// IsNone reports whether the length is unconstrained.
func (l Length) IsNone() bool { return !l.set }

// Value returns the pixel value. It is zero for None.
func (l Length) Value() float64 { return l.value }

func (l Length) String() string {
	if !l.set {
		return "none"
	}
	return strconv.FormatFloat(l.value, 'g', -1, 64) + "px"
}

// Style holds the animatable size constraints of a node.
type Style struct {
	MaxWidth  Length
	MaxHeight Length
}

// Transition configures how committed changes to MaxWidth and MaxHeight
// animate. A zero Duration applies changes immediately.
type Transition struct {
	Duration time.Duration
	// Curve eases the transition. Nil means animation.Ease.
	Curve func(float64) float64
}

type axis int

const (
	axisWidth axis = iota
	axisHeight
)

func (s Style) get(a axis) Length {
	if a == axisWidth {
		return s.MaxWidth
	}
	return s.MaxHeight
}

func (s *Style) set(a axis, l Length) {
	if a == axisWidth {
		s.MaxWidth = l
	} else {
		s.MaxHeight = l
	}
}

// propertyTransition animates one committed length toward its new value.
type propertyTransition struct {
	controller *animation.AnimationController
	tween      *animation.Tween[float64]
}

func newPropertyTransition(from, to float64, t Transition, onTick func()) *propertyTransition {
	c := animation.NewAnimationController(t.Duration)
	c.Curve = t.Curve
	if c.Curve == nil {
		c.Curve = animation.Ease
	}
	p := &propertyTransition{
		controller: c,
		tween:      animation.TweenFloat64(from, to),
	}
	c.AddListener(onTick)
	c.Forward()
	return p
}

func (p *propertyTransition) value() float64 {
	return p.tween.Transform(p.controller)
}

func (p *propertyTransition) stop() {
	p.controller.Dispose()
}
