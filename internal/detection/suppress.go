package detection

import (
	"sort"

	"github.com/ironsheep/docscan/internal/geometry"
)

// Containment selects how nested candidates are recognised during
// suppression.
type Containment string

const (
	// ContainPolygon rejects a candidate whose centroid lies inside or on
	// the boundary of a kept quad.
	ContainPolygon Containment = "polygon"

	// ContainBBox rejects a candidate whose centroid lies strictly inside
	// the axis-aligned bounding box of a kept quad.
	ContainBBox Containment = "bbox"
)

// Valid reports whether c names a known containment rule.
func (c Containment) Valid() bool {
	return c == ContainPolygon || c == ContainBBox
}

// Suppress removes nested and near-duplicate candidates.
//
// Candidates are visited from the largest area to the smallest; equal areas
// are ordered by centroid x, then y, so the result does not depend on the
// input order. A candidate is kept unless:
//   - its centroid is contained in an already kept quad (per mode),
//   - a kept quad's centroid lies inside it (per mode), or
//   - its centroid is closer than minDist to a kept centroid.
//
// Kept quads are returned in visiting order, corners untouched.
func Suppress(quads []geometry.Quad, minDist float64, mode Containment) []geometry.Quad {
	type entry struct {
		quad     geometry.Quad
		area     float64
		centroid geometry.Point
	}

	entries := make([]entry, 0, len(quads))
	for _, q := range quads {
		if !geometry.IsFinite(q.Points()...) {
			continue
		}
		entries = append(entries, entry{quad: q, area: q.Area(), centroid: q.Centroid()})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.area != b.area {
			return a.area > b.area
		}
		if a.centroid.X != b.centroid.X {
			return a.centroid.X < b.centroid.X
		}
		return a.centroid.Y < b.centroid.Y
	})

	kept := make([]entry, 0, len(entries))
	for _, e := range entries {
		nested := false
		for _, k := range kept {
			if contains(k.quad, e.centroid, mode) ||
				contains(e.quad, k.centroid, mode) ||
				geometry.Distance(e.centroid, k.centroid) < minDist {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, e)
		}
	}

	out := make([]geometry.Quad, len(kept))
	for i, k := range kept {
		out[i] = k.quad
	}
	return out
}

func contains(q geometry.Quad, p geometry.Point, mode Containment) bool {
	if mode == ContainBBox {
		return geometry.BoundingBox(q.Points()).InteriorContainsPoint(p)
	}
	return geometry.ContainsPoint(q.Points(), p)
}
