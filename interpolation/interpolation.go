// Package interpolation extends a single characterized data point to other
// bit widths, using the implicit anchor that a zero-width unit costs nothing.
package interpolation

// Point is a characterized value at a bit width.
type Point struct {
	X float64
	Y float64
}

// Zero is the anchor that every primitive passes through.
var Zero = Point{}

// Linear returns the value at width x on the line through (0, 0) and
// (native, value).
func Linear(x, native, value float64) float64 {
	return OneDLinear(x, [2]Point{Zero, {X: native, Y: value}})
}

// Quadratic returns the value at width x on the parabola y = a*x^2 through
// (0, 0) and (native, value).
func Quadratic(x, native, value float64) float64 {
	return OneDQuadratic(x, [2]Point{Zero, {X: native, Y: value}})
}

// OneDLinear interpolates between two known points. Two points with the same
// X give the Y of the first one.
func OneDLinear(x float64, known [2]Point) float64 {
	p0, p1 := known[0], known[1]
	if p0.X == p1.X {
		return p0.Y
	}

	if x == p1.X {
		return p1.Y
	}

	if x == p0.X {
		return p0.Y
	}

	slope := (p1.Y - p0.Y) / (p1.X - p0.X)

	return p0.Y + slope*(x-p0.X)
}

// OneDQuadratic interpolates on the parabola y = a*x^2 + c that passes
// through the two known points.
func OneDQuadratic(x float64, known [2]Point) float64 {
	p0, p1 := known[0], known[1]
	x0sq, x1sq := p0.X*p0.X, p1.X*p1.X
	if x0sq == x1sq {
		return p0.Y
	}

	if x == p1.X {
		return p1.Y
	}

	if x == p0.X {
		return p0.Y
	}

	a := (p1.Y - p0.Y) / (x1sq - x0sq)
	c := p0.Y - a*x0sq

	return a*x*x + c
}
