package geometry

import (
	"errors"
	"math"

	"github.com/golang/geo/r2"
)

// ErrDegenerate is returned when a set of points does not span a usable
// polygon (too few points, coincident or collinear corners).
var ErrDegenerate = errors.New("degenerate geometry")

// Point is a 2D coordinate in image pixel space.
type Point = r2.Point

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}

// Centroid returns the mean of pts. For a quadrilateral this is the vertex
// average, not the area centroid.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}

// IsFinite reports whether every coordinate in pts is a finite number.
func IsFinite(pts ...Point) bool {
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return Distance(p, a)
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return Distance(p, a.Add(ab.Mul(t)))
}
