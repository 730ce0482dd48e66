package geometry

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"
)

// clipperScale converts pixel coordinates to Clipper's integer grid.
const clipperScale = 100.0

// Inset shrinks q by d pixels on every side using a mitered polygon offset,
// which keeps the corners sharp. d must not be negative.
func Inset(q Quad, d float64) (Quad, error) {
	if d == 0 {
		return q, nil
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return q, fmt.Errorf("%w: inset must be a non-negative number, got %v", ErrDegenerate, d)
	}

	var path clipper.Path
	for _, p := range q {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(math.Round(p.X * clipperScale)),
			Y: clipper.CInt(math.Round(p.Y * clipperScale)),
		})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)
	solution := co.Execute(-d * clipperScale)
	if len(solution) != 1 {
		return q, fmt.Errorf("%w: inset of %.1fpx collapses the quadrilateral", ErrDegenerate, d)
	}

	pts := make([]Point, 0, len(solution[0]))
	for _, ip := range solution[0] {
		pts = append(pts, Pt(float64(ip.X)/clipperScale, float64(ip.Y)/clipperScale))
	}
	if len(pts) > 4 {
		pts = ApproxPolygon(pts, 0.5, true)
	}
	if len(pts) != 4 || Area(pts) < 1 {
		return q, fmt.Errorf("%w: inset of %.1fpx collapses the quadrilateral", ErrDegenerate, d)
	}
	return QuadFromPoints(pts)
}
