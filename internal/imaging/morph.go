package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// NormalizeKernel returns an odd kernel size of at least 1. Even sizes are
// bumped to the next odd value.
func NormalizeKernel(size int) int {
	if size < 1 {
		return 1
	}
	if size%2 == 0 {
		return size + 1
	}
	return size
}

// Close applies a morphological closing (dilate then erode) with a square
// size x size structuring element. Gaps narrower than the kernel between
// edge segments are bridged.
func Close(bin *image.Gray, size int) *image.Gray {
	r := kernelRadius(size)
	if r == 0 {
		return Binarize(bin, 128)
	}
	return Binarize(effect.Erode(effect.Dilate(bin, r), r), 128)
}

// DilateN dilates bin iterations times with a square size x size
// structuring element.
func DilateN(bin *image.Gray, size, iterations int) *image.Gray {
	r := kernelRadius(size)
	var out image.Image = bin
	for i := 0; i < iterations && r > 0; i++ {
		out = effect.Dilate(out, r)
	}
	return Binarize(out, 128)
}

// Binarize maps pixels at or above level to 255 and the rest to 0.
func Binarize(img image.Image, level uint8) *image.Gray {
	return segment.Threshold(img, level)
}

// kernelRadius converts an odd kernel size to the radius bild expects
// (window length 2r+1).
func kernelRadius(size int) float64 {
	return float64(NormalizeKernel(size)-1) / 2
}
