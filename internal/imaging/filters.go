package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
)

// gaussian5 is the 5x5 Gaussian kernel (sigma about 1.0, sum 273).
var gaussian5 = []float64{
	1, 4, 7, 4, 1,
	4, 16, 26, 16, 4,
	7, 26, 41, 26, 7,
	4, 16, 26, 16, 4,
	1, 4, 7, 4, 1,
}

// Grayscale converts img to 8-bit luminance with ITU-R BT.601 weights.
func Grayscale(img image.Image) *image.Gray {
	return redChannel(effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114))
}

// GaussianBlur smooths gray with a fixed 5x5 Gaussian. Border pixels are
// extended.
func GaussianBlur(gray *image.Gray) *image.Gray {
	k := convolution.NewKernel(5, 5)
	copy(k.Matrix, gaussian5)
	out := convolution.Convolve(gray, k.Normalized(), &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true})
	return redChannel(out)
}

// redChannel copies the R channel of an RGBA image whose channels are all
// equal into a single-channel image.
func redChannel(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[di+x] = src.Pix[si+4*x]
		}
	}
	return dst
}
