package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Axis selects which image dimension Normalize scales to the target size.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
)

// Valid reports whether a names a known axis.
func (a Axis) Valid() bool {
	return a == AxisWidth || a == AxisHeight
}

// Normalize resizes img so that the chosen axis equals target pixels,
// preserving the aspect ratio. It returns the working image and the ratio
// working/original, so original coordinates are working coordinates divided
// by ratio. The other dimension is truncated, never below one pixel.
func Normalize(img image.Image, target int, axis Axis) (*image.NRGBA, float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var ratio float64
	var nw, nh int
	if axis == AxisHeight {
		ratio = float64(target) / float64(h)
		nw, nh = int(float64(w)*ratio), target
	} else {
		ratio = float64(target) / float64(w)
		nw, nh = target, int(float64(h)*ratio)
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	if nw == w && nh == h {
		return imaging.Clone(img), ratio
	}
	return imaging.Resize(img, nw, nh, imaging.Linear), ratio
}
