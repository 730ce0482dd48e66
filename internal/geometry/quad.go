package geometry

import (
	"fmt"
	"sort"
)

// Quad is a quadrilateral. Depending on where it came from the corners are
// either in contour-tracing order (raw) or in canonical order: top-left,
// top-right, bottom-right, bottom-left.
type Quad [4]Point

// QuadFromPoints builds a Quad from exactly four points.
func QuadFromPoints(pts []Point) (Quad, error) {
	var q Quad
	if len(pts) != 4 {
		return q, fmt.Errorf("%w: need exactly 4 points, got %d", ErrDegenerate, len(pts))
	}
	copy(q[:], pts)
	return q, nil
}

// Points returns the corners as a slice.
func (q Quad) Points() []Point {
	return q[:]
}

// Area returns the enclosed area.
func (q Quad) Area() float64 {
	return Area(q[:])
}

// Centroid returns the vertex mean.
func (q Quad) Centroid() Point {
	return Centroid(q[:])
}

// Scale multiplies every coordinate by f.
func (q Quad) Scale(f float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Mul(f)
	}
	return out
}

// Pairs returns the corners as [x, y] pairs, the wire form used by clients.
func (q Quad) Pairs() [][2]float64 {
	out := make([][2]float64, 4)
	for i, p := range q {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

// CornerRule names a corner ordering rule.
type CornerRule string

const (
	SumDiff CornerRule = "sumdiff"
	XSort   CornerRule = "xsort"
)

// Valid reports whether r names a known rule.
func (r CornerRule) Valid() bool {
	return r == SumDiff || r == XSort
}

// Order puts q into canonical order with the given rule. An empty rule means
// SumDiff.
func Order(rule CornerRule, q Quad) Quad {
	if rule == XSort {
		return OrderCornersByX(q)
	}
	return OrderCorners(q)
}

// OrderCorners returns q ordered top-left, top-right, bottom-right,
// bottom-left using coordinate sums and differences. On ties the earliest
// point wins.
func OrderCorners(q Quad) Quad {
	tl, br, tr, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		p := q[i]
		if p.X+p.Y < q[tl].X+q[tl].Y {
			tl = i
		}
		if p.X+p.Y > q[br].X+q[br].Y {
			br = i
		}
		if p.Y-p.X < q[tr].Y-q[tr].X {
			tr = i
		}
		if p.Y-p.X > q[bl].Y-q[bl].X {
			bl = i
		}
	}
	return Quad{q[tl], q[tr], q[br], q[bl]}
}

// OrderCornersByX returns q ordered top-left, top-right, bottom-right,
// bottom-left by splitting it into a left and a right pair on x.
func OrderCornersByX(q Quad) Quad {
	pts := q
	sort.SliceStable(pts[:], func(i, j int) bool {
		return pts[i].X < pts[j].X
	})
	left := pts[:2]
	right := pts[2:]
	if left[0].Y > left[1].Y {
		left[0], left[1] = left[1], left[0]
	}
	if right[0].Y > right[1].Y {
		right[0], right[1] = right[1], right[0]
	}
	return Quad{left[0], right[0], right[1], left[1]}
}

// EdgeLengths returns the top, right, bottom and left edge lengths of a quad
// in canonical order.
func (q Quad) EdgeLengths() (top, right, bottom, left float64) {
	return Distance(q[0], q[1]), Distance(q[1], q[2]), Distance(q[2], q[3]), Distance(q[3], q[0])
}
