package scanner

import (
	"fmt"
	"math"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/imaging"
)

// Params tunes the detection pipeline. The zero value is not useful; start
// from DefaultParams or a preset.
type Params struct {
	// Threshold1 and Threshold2 are the low and high Canny thresholds.
	Threshold1 float64 `json:"threshold1"`
	Threshold2 float64 `json:"threshold2"`

	// MorphStrategy joins broken edges: "close" or "dilate".
	MorphStrategy detection.Morph `json:"morph_strategy"`

	// MorphKernel is the square structuring element size. Even values are
	// bumped to the next odd one.
	MorphKernel int `json:"morph_kernel"`

	// DilateIterations is used by the "dilate" strategy.
	DilateIterations int `json:"dilate_iterations"`

	// ResizeWidth is the working size of the axis named by ScaleAxis.
	ResizeWidth int          `json:"resize_width"`
	ScaleAxis   imaging.Axis `json:"scale_axis"`

	// MinAreaFrac and MaxAreaFrac bound a candidate's area as a fraction
	// of the working image.
	MinAreaFrac float64 `json:"min_area_frac"`
	MaxAreaFrac float64 `json:"max_area_frac"`

	// Epsilon is the polygon approximation tolerance relative to the
	// contour perimeter.
	Epsilon float64 `json:"epsilon"`

	// FilterDist is the minimum distance in original pixels between kept
	// candidate centroids.
	FilterDist float64 `json:"filter_dist"`

	// Containment selects nested-candidate suppression: "polygon" or "bbox".
	Containment detection.Containment `json:"containment"`

	// Backend names the contour extractor ("native", or "opencv" in gocv
	// builds).
	Backend string `json:"backend"`
}

// Preset names accepted by Preset.
const (
	PresetClassic    = "classic"
	PresetAggressive = "aggressive"
)

// DefaultParams returns the classic pipeline: Canny 75/200, a 5x5 closing,
// width normalized to 600 px, candidates between 1% and 98% of the image,
// tolerance 0.02, 20 px proximity and point-in-polygon containment.
func DefaultParams() Params {
	return Params{
		Threshold1:       75,
		Threshold2:       200,
		MorphStrategy:    detection.MorphClose,
		MorphKernel:      5,
		DilateIterations: 3,
		ResizeWidth:      600,
		ScaleAxis:        imaging.AxisWidth,
		MinAreaFrac:      0.01,
		MaxAreaFrac:      0.98,
		Epsilon:          0.02,
		FilterDist:       20,
		Containment:      detection.ContainPolygon,
		Backend:          detection.NativeBackend,
	}
}

// Preset returns the named parameter set.
//
// "aggressive" favours finding a page on cluttered photos: three 5x5
// dilations, a 0.5%-90% area band, tolerance 0.04 and bounding-box
// containment.
func Preset(name string) (Params, error) {
	p := DefaultParams()
	switch name {
	case "", PresetClassic:
		return p, nil
	case PresetAggressive:
		p.MorphStrategy = detection.MorphDilate
		p.DilateIterations = 3
		p.MinAreaFrac = 0.005
		p.MaxAreaFrac = 0.90
		p.Epsilon = 0.04
		p.Containment = detection.ContainBBox
		return p, nil
	default:
		return Params{}, fmt.Errorf("%w: unknown preset %q", ErrParameter, name)
	}
}

// Validate reports the first parameter outside its sane range, wrapped in
// ErrParameter.
func (p Params) Validate() error {
	switch {
	case p.ResizeWidth <= 0:
		return paramErr("resize_width must be positive, got %d", p.ResizeWidth)
	case p.ResizeWidth > 10000:
		return paramErr("resize_width must be at most 10000, got %d", p.ResizeWidth)
	case !p.ScaleAxis.Valid():
		return paramErr("scale_axis must be width or height, got %q", p.ScaleAxis)
	case !finite(p.Threshold1, p.Threshold2) || p.Threshold1 < 0 || p.Threshold2 < 0:
		return paramErr("thresholds must be non-negative, got %v/%v", p.Threshold1, p.Threshold2)
	case p.Threshold1 > p.Threshold2:
		return paramErr("threshold1 (%v) must not exceed threshold2 (%v)", p.Threshold1, p.Threshold2)
	case !p.MorphStrategy.Valid():
		return paramErr("morph_strategy must be close or dilate, got %q", p.MorphStrategy)
	case p.MorphKernel < 1 || p.MorphKernel > 51:
		return paramErr("morph_kernel must be between 1 and 51, got %d", p.MorphKernel)
	case p.MorphStrategy == detection.MorphDilate && (p.DilateIterations < 1 || p.DilateIterations > 10):
		return paramErr("dilate_iterations must be between 1 and 10, got %d", p.DilateIterations)
	case !finite(p.MinAreaFrac, p.MaxAreaFrac) || p.MinAreaFrac <= 0 || p.MaxAreaFrac > 1 || p.MinAreaFrac >= p.MaxAreaFrac:
		return paramErr("area band must satisfy 0 < min < max <= 1, got %v-%v", p.MinAreaFrac, p.MaxAreaFrac)
	case !finite(p.Epsilon) || p.Epsilon <= 0 || p.Epsilon > 0.2:
		return paramErr("epsilon must be in (0, 0.2], got %v", p.Epsilon)
	case !finite(p.FilterDist) || p.FilterDist < 0:
		return paramErr("filter_dist must be non-negative, got %v", p.FilterDist)
	case !p.Containment.Valid():
		return paramErr("containment must be polygon or bbox, got %q", p.Containment)
	}
	if _, ok := detection.Lookup(p.Backend); !ok {
		return paramErr("backend %q is not available (have %v)", p.Backend, detection.Backends())
	}
	return nil
}

func (p Params) extractOptions() detection.ExtractOptions {
	return detection.ExtractOptions{
		Resize:     p.ResizeWidth,
		Axis:       p.ScaleAxis,
		Low:        p.Threshold1,
		High:       p.Threshold2,
		Morph:      p.MorphStrategy,
		Kernel:     imaging.NormalizeKernel(p.MorphKernel),
		Iterations: p.DilateIterations,
	}
}

func (p Params) quadOptions() detection.QuadOptions {
	return detection.QuadOptions{
		MinAreaFrac: p.MinAreaFrac,
		MaxAreaFrac: p.MaxAreaFrac,
		Epsilon:     p.Epsilon,
	}
}

func paramErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParameter}, args...)...)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
