package detection

import (
	"github.com/ironsheep/docscan/internal/geometry"
)

// QuadOptions controls which contours are accepted as document candidates.
type QuadOptions struct {
	// MinAreaFrac and MaxAreaFrac bound the contour's enclosed area as a
	// fraction of the working image area.
	MinAreaFrac float64
	MaxAreaFrac float64

	// Epsilon is the polygon approximation tolerance as a fraction of the
	// contour perimeter.
	Epsilon float64
}

// FilterQuads keeps the contours that approximate a convex quadrilateral
// whose area lies inside the configured band, and rescales their corners to
// original image coordinates by dividing by ratio.
//
// Parameters:
//   - contours: Contours in working-resolution coordinates.
//   - workArea: Pixel area of the working image.
//   - ratio: Working size divided by original size.
//   - opts: Area band and approximation tolerance.
//
// Returns the accepted quads in contour order. Contours that cannot be
// analysed (too few points, non-finite values) are skipped.
func FilterQuads(contours []Contour, workArea, ratio float64, opts QuadOptions) []geometry.Quad {
	if workArea <= 0 || ratio <= 0 {
		return nil
	}
	minArea := opts.MinAreaFrac * workArea
	maxArea := opts.MaxAreaFrac * workArea

	quads := make([]geometry.Quad, 0)
	for _, c := range contours {
		if len(c) < 4 {
			continue
		}
		pts := toPoints(c)

		area := geometry.Area(pts)
		if area < minArea || area > maxArea {
			continue
		}

		epsilon := opts.Epsilon * geometry.Perimeter(pts, true)
		approx := geometry.ApproxPolygon(pts, epsilon, true)
		if len(approx) != 4 || !geometry.IsConvex(approx) {
			continue
		}

		q, err := geometry.QuadFromPoints(approx)
		if err != nil {
			continue
		}
		q = q.Scale(1 / ratio)
		if !geometry.IsFinite(q.Points()...) {
			continue
		}
		quads = append(quads, q)
	}
	return quads
}

func toPoints(c Contour) []geometry.Point {
	pts := make([]geometry.Point, len(c))
	for i, p := range c {
		pts[i] = geometry.Pt(float64(p.X), float64(p.Y))
	}
	return pts
}
