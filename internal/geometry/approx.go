package geometry

// ApproxPolygon reduces pts to fewer vertices with the Douglas-Peucker
// algorithm. Every removed point lies within epsilon of the result.
//
// For closed curves the curve is split at the point farthest from pts[0] and
// both halves are simplified independently. A final pass then drops any vertex
// lying within epsilon of the segment joining its neighbours, so the result
// does not depend on where tracing happened to start.
func ApproxPolygon(pts []Point, epsilon float64, closed bool) []Point {
	n := len(pts)
	if n < 3 || epsilon <= 0 {
		out := make([]Point, n)
		copy(out, pts)
		return out
	}
	if !closed {
		return simplify(pts, epsilon)
	}

	far, best := 0, -1.0
	for i := 1; i < n; i++ {
		if d := Distance(pts[0], pts[i]); d > best {
			far, best = i, d
		}
	}
	if far == 0 {
		return []Point{pts[0]}
	}

	first := simplify(pts[:far+1], epsilon)
	tail := make([]Point, 0, n-far+1)
	tail = append(tail, pts[far:]...)
	tail = append(tail, pts[0])
	second := simplify(tail, epsilon)

	out := make([]Point, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	return dropNearCollinear(out, epsilon)
}

// simplify runs Douglas-Peucker on an open polyline, keeping both endpoints.
func simplify(pts []Point, epsilon float64) []Point {
	n := len(pts)
	if n < 3 {
		out := make([]Point, n)
		copy(out, pts)
		return out
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true
	stack := [][2]int{{0, n - 1}}
	for len(stack) > 0 {
		span := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := span[0], span[1]
		if b-a < 2 {
			continue
		}
		idx, dmax := -1, -1.0
		for i := a + 1; i < b; i++ {
			if d := segmentDistance(pts[i], pts[a], pts[b]); d > dmax {
				idx, dmax = i, d
			}
		}
		if dmax > epsilon {
			keep[idx] = true
			stack = append(stack, [2]int{a, idx}, [2]int{idx, b})
		}
	}

	out := make([]Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func dropNearCollinear(pts []Point, epsilon float64) []Point {
	for len(pts) > 3 {
		removed := false
		for i := 0; i < len(pts) && len(pts) > 3; i++ {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			if segmentDistance(pts[i], prev, next) <= epsilon {
				pts = append(pts[:i], pts[i+1:]...)
				removed = true
				i--
			}
		}
		if !removed {
			break
		}
	}
	return pts
}
