package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// boundaryEps is the distance under which a point counts as lying on an edge.
const boundaryEps = 1e-9

// SignedArea returns the shoelace area of the closed polygon pts. It is
// positive for polygons that run clockwise on screen (Y down).
func SignedArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].Cross(pts[j])
	}
	return sum / 2
}

// Area returns the absolute enclosed area of the closed polygon pts.
func Area(pts []Point) float64 {
	return math.Abs(SignedArea(pts))
}

// Perimeter returns the length of the polyline through pts, including the
// closing edge when closed is true.
func Perimeter(pts []Point, closed bool) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < n; i++ {
		sum += Distance(pts[i-1], pts[i])
	}
	if closed {
		sum += Distance(pts[n-1], pts[0])
	}
	return sum
}

// BoundingBox returns the axis-aligned bounding box of pts.
func BoundingBox(pts []Point) r2.Rect {
	return r2.RectFromPoints(pts...)
}

// ContainsPoint reports whether p lies inside the closed polygon poly or on
// its boundary. Uses the even-odd crossing rule for interior points.
func ContainsPoint(poly []Point, p Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if segmentDistance(p, poly[i], poly[(i+1)%n]) <= boundaryEps {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// IsConvex reports whether the closed polygon pts is strictly convex and
// simple. Collinear consecutive vertices make the polygon non-convex.
func IsConvex(pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	sign := 0
	var turning float64
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		c := pts[(i+2)%n]
		e1 := b.Sub(a)
		e2 := c.Sub(b)
		cross := e1.Cross(e2)
		if cross == 0 || math.IsNaN(cross) {
			return false
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
		turning += math.Atan2(cross, e1.Dot(e2))
	}
	// A star polygon turns the same way at every vertex but winds more than once.
	return math.Abs(math.Abs(turning)-2*math.Pi) < 1e-6
}
