// Package graphics provides the geometry primitives shared by the tree,
// animation, and switcher packages.
package graphics

import (
	"fmt"
	"math"
)

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Size represents width and height dimensions in logical pixels.
type Size struct {
	Width  float64
	Height float64
}

// SizeZero is the empty size.
var SizeZero = Size{}

// Max returns the component-wise maximum of s and other.
func (s Size) Max(other Size) Size {
	return Size{
		Width:  math.Max(s.Width, other.Width),
		Height: math.Max(s.Height, other.Height),
	}
}

// Min returns the component-wise minimum of s and other.
func (s Size) Min(other Size) Size {
	return Size{
		Width:  math.Min(s.Width, other.Width),
		Height: math.Min(s.Height, other.Height),
	}
}

// IsZero reports whether both dimensions are (approximately) zero.
func (s Size) IsZero() bool {
	return math.Abs(s.Width) < epsilon && math.Abs(s.Height) < epsilon
}

// ApproxEqual reports whether s and other differ by less than the comparison
// tolerance on both axes.
func (s Size) ApproxEqual(other Size) bool {
	return math.Abs(s.Width-other.Width) < epsilon && math.Abs(s.Height-other.Height) < epsilon
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}
