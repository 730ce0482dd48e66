package imaging

import (
	"image"
	"math"
)

// Canny runs Canny edge detection on an already smoothed grayscale image and
// returns a binary map where edge pixels are 255 and everything else is 0.
//
// Parameters:
//   - gray: Smoothed 8-bit luminance image.
//   - low: Weak edge threshold on the gradient magnitude.
//   - high: Strong edge threshold on the gradient magnitude.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators, magnitude |Gx| + |Gy|
//     (the L1 norm, the scale the usual 75/200 document thresholds are
//     expressed in)
//
//  2. Non-maximum suppression: keep a pixel only if it is a local maximum
//     along its gradient direction, quantized to 4 directions
//
//  3. Hysteresis: pixels above high seed edges, which then grow through
//     8-connected neighbours above low
//
// Border pixels never become edges.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}
	if low > high {
		low, high = high, low
	}

	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	magnitude := make([]float64, width*height)
	direction := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			i := y*width + x
			magnitude[i] = math.Abs(gx) + math.Abs(gy)
			direction[i] = quantizeDirection(gx, gy)
		}
	}

	// Non-maximum suppression. The strict comparison on one side keeps a
	// single pixel on flat ridges.
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag <= low {
				continue
			}
			var n1, n2 float64
			switch direction[i] {
			case 0: // horizontal gradient
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case 1: // 45 degrees, y down
				n1, n2 = magnitude[i-width-1], magnitude[i+width+1]
			case 2: // vertical gradient
				n1, n2 = magnitude[i-width], magnitude[i+width]
			default: // 135 degrees
				n1, n2 = magnitude[i-width+1], magnitude[i+width-1]
			}
			if mag > n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis with an explicit stack so edges of any length are followed.
	stack := make([]int, 0, 1024)
	for i, v := range suppressed {
		if v > high && result.Pix[i] == 0 {
			result.Pix[i] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jx, jy := j%width, j/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := jx+dx, jy+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					k := ny*width + nx
					if result.Pix[k] == 0 && suppressed[k] > low {
						result.Pix[k] = 255
						stack = append(stack, k)
					}
				}
			}
		}
	}

	return result
}

// quantizeDirection maps a gradient to one of four directions:
// 0 horizontal, 1 diagonal down-right, 2 vertical, 3 diagonal down-left.
func quantizeDirection(gx, gy float64) uint8 {
	angle := math.Atan2(gy, gx)
	if angle < 0 {
		angle += math.Pi
	}
	switch {
	case angle < math.Pi/8 || angle >= 7*math.Pi/8:
		return 0
	case angle < 3*math.Pi/8:
		return 1
	case angle < 5*math.Pi/8:
		return 2
	default:
		return 3
	}
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
