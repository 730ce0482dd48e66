package scanner

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/pose"
)

// DetectResult holds the outcome of one detection pass.
type DetectResult struct {
	// Candidates are deduplicated document quads in original image
	// coordinates, corners in contour order (not canonical).
	Candidates []geometry.Quad

	// Edges is the closed binary edge map at working resolution.
	Edges *image.Gray

	// Working is the normalized colour image the edges were computed on.
	Working *image.NRGBA

	// Ratio is working size divided by original size.
	Ratio float64
}

// Overlay returns the working image with every candidate outlined and
// numbered in its own colour.
func (r *DetectResult) Overlay() *image.NRGBA {
	quads := make([]geometry.Quad, len(r.Candidates))
	for i, q := range r.Candidates {
		quads[i] = q.Scale(r.Ratio)
	}
	return imaging.DrawQuads(r.Working, quads, 3)
}

// Detect finds candidate document boundaries in img.
//
// The image is normalized to the working size, converted to an edge map,
// and every traced contour that approximates a convex quadrilateral within
// the area band becomes a candidate. Nested and near-duplicate candidates
// are then suppressed, largest first.
//
// Returns ErrParameter for invalid params. An image without any page-like
// contour yields an empty candidate list, not an error.
func Detect(img image.Image, p Params) (*DetectResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	ex, err := detection.Extract(p.Backend, img, p.extractOptions())
	if err != nil {
		if errors.Is(err, detection.ErrUnknownBackend) {
			return nil, fmt.Errorf("%w: %v", ErrParameter, err)
		}
		return nil, fmt.Errorf("edge extraction failed: %w", err)
	}

	quads := detection.FilterQuads(ex.Contours, ex.WorkArea(), ex.Ratio, p.quadOptions())
	return &DetectResult{
		Candidates: detection.Suppress(quads, p.FilterDist, p.Containment),
		Edges:      ex.Edges,
		Working:    ex.Working,
		Ratio:      ex.Ratio,
	}, nil
}

// WarpOptions controls rectification.
type WarpOptions struct {
	// CornerOrder picks the canonical ordering rule; empty means sum/diff.
	CornerOrder geometry.CornerRule

	// Inset shrinks the quad by this many pixels before rectifying.
	Inset float64

	// Pose requests an orientation estimate.
	Pose bool
}

// WarpResult holds a rectified page.
type WarpResult struct {
	Image *image.NRGBA

	// Ordered are the canonical corners that were rectified (after inset):
	// top-left, top-right, bottom-right, bottom-left.
	Ordered geometry.Quad

	Width, Height int

	// Pose is set only when requested. It describes the page corners
	// before any inset.
	Pose *pose.Pose
}

// Warp rectifies the quadrilateral described by points into a flat,
// axis-aligned image.
//
// The four points may come in any order. Output width is the longer of the
// top and bottom edges, output height the longer of the left and right
// edges, both truncated to whole pixels.
//
// Returns ErrInvalidGeometry unless points are exactly four finite,
// non-degenerate corners, and ErrParameter for an unknown corner rule or a
// negative inset.
func Warp(img image.Image, points []geometry.Point, opts WarpOptions) (*WarpResult, error) {
	rule := opts.CornerOrder
	if rule == "" {
		rule = geometry.SumDiff
	}
	if !rule.Valid() {
		return nil, fmt.Errorf("%w: unknown corner order %q", ErrParameter, opts.CornerOrder)
	}
	if math.IsNaN(opts.Inset) || opts.Inset < 0 {
		return nil, fmt.Errorf("%w: inset must be non-negative, got %v", ErrParameter, opts.Inset)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	q, err := geometry.QuadFromPoints(points)
	if err != nil {
		return nil, fmt.Errorf("%w: need exactly 4 points, got %d", ErrInvalidGeometry, len(points))
	}
	if !geometry.IsFinite(points...) {
		return nil, fmt.Errorf("%w: non-finite coordinates", ErrInvalidGeometry)
	}
	if spanArea(q) < 1 {
		return nil, fmt.Errorf("%w: points are collinear or coincident", ErrInvalidGeometry)
	}

	page := geometry.Order(rule, q)
	if page.Area() < 1 {
		return nil, fmt.Errorf("%w: corners cannot be ordered by %s", ErrInvalidGeometry, rule)
	}
	ordered := page
	if opts.Inset > 0 {
		inset, err := geometry.Inset(page, opts.Inset)
		if err != nil {
			return nil, fmt.Errorf("%w: inset of %v collapses the quad", ErrInvalidGeometry, opts.Inset)
		}
		ordered = geometry.Order(rule, inset)
	}

	top, right, bottom, left := ordered.EdgeLengths()
	width := max(int(top), int(bottom))
	height := max(int(left), int(right))
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: output would be %dx%d", ErrInvalidGeometry, width, height)
	}

	// Quad corners are relative to the image bounds origin.
	origin := img.Bounds().Min
	shifted := ordered
	for i := range shifted {
		shifted[i] = shifted[i].Sub(geometry.Pt(float64(origin.X), float64(origin.Y)))
	}
	out, err := imaging.WarpPerspective(img, shifted, width, height)
	if err != nil {
		if errors.Is(err, geometry.ErrDegenerate) || errors.Is(err, geometry.ErrSingular) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		return nil, err
	}

	res := &WarpResult{
		Image:   out,
		Ordered: ordered,
		Width:   width,
		Height:  height,
	}
	if opts.Pose {
		b := img.Bounds()
		p := pose.Estimate(b.Dx(), b.Dy(), page)
		res.Pose = &p
	}
	return res, nil
}

// spanArea returns the largest triangle area over any three corners of q.
// It does not depend on the order the corners were given in.
func spanArea(q geometry.Quad) float64 {
	var best float64
	for skip := range q {
		tri := make([]geometry.Point, 0, 3)
		for i, p := range q {
			if i != skip {
				tri = append(tri, p)
			}
		}
		best = math.Max(best, geometry.Area(tri))
	}
	return best
}

// Select returns the index of the smallest candidate containing p, the
// boundary included. ok is false when no candidate contains p.
func Select(candidates []geometry.Quad, p geometry.Point) (index int, ok bool) {
	index = -1
	best := math.Inf(1)
	for i, q := range candidates {
		if !geometry.ContainsPoint(q.Points(), p) {
			continue
		}
		if a := q.Area(); a < best {
			best, index = a, i
		}
	}
	return index, index >= 0
}

// DecodeImage decodes a base64 data URL (or bare base64 payload) into an
// image. Failures wrap ErrDecode.
func DecodeImage(dataURL string) (image.Image, error) {
	img, err := imaging.DecodeDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// DecodeBytes decodes raw image container bytes. Failures wrap ErrDecode.
func DecodeBytes(data []byte) (image.Image, error) {
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
