package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan/internal/geometry"
)

// WarpPerspective maps the quadrilateral quad of src onto a width x height
// axis-aligned image. quad must be in canonical order (top-left, top-right,
// bottom-right, bottom-left); its corners land on (0,0), (width-1,0),
// (width-1,height-1) and (0,height-1).
//
// Every output pixel is mapped back into the source through the inverse
// transform and sampled bilinearly. Samples falling outside the source are
// black.
func WarpPerspective(src image.Image, quad geometry.Quad, width, height int) (*image.NRGBA, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: output size %dx%d", geometry.ErrDegenerate, width, height)
	}

	target := [4]geometry.Point{
		geometry.Pt(0, 0),
		geometry.Pt(float64(width-1), 0),
		geometry.Pt(float64(width-1), float64(height-1)),
		geometry.Pt(0, float64(height-1)),
	}
	// Solve directly for the output -> source direction.
	h, err := geometry.ComputeHomography(target, quad)
	if err != nil {
		return nil, err
	}

	s := imaging.Clone(src)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * dst.Stride
			for x := 0; x < width; x++ {
				p, ok := h.Apply(geometry.Pt(float64(x), float64(y)))
				i := row + 4*x
				if !ok {
					dst.Pix[i+3] = 255
					continue
				}
				bilinear(s, p.X, p.Y, dst.Pix[i:i+4])
			}
		}
	})
	return dst, nil
}

// bilinear writes the interpolated colour of src at (fx, fy) into out.
func bilinear(src *image.NRGBA, fx, fy float64, out []uint8) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	const eps = 1e-6
	if fx < -eps || fy < -eps || fx > float64(w-1)+eps || fy > float64(h-1)+eps {
		out[0], out[1], out[2], out[3] = 0, 0, 0, 255
		return
	}

	x0 := clamp(int(math.Floor(fx)), 0, w-1)
	y0 := clamp(int(math.Floor(fy)), 0, h-1)
	x1 := clamp(x0+1, 0, w-1)
	y1 := clamp(y0+1, 0, h-1)
	dx := math.Max(0, math.Min(1, fx-float64(x0)))
	dy := math.Max(0, math.Min(1, fy-float64(y0)))

	p00 := src.Pix[y0*src.Stride+4*x0:]
	p10 := src.Pix[y0*src.Stride+4*x1:]
	p01 := src.Pix[y1*src.Stride+4*x0:]
	p11 := src.Pix[y1*src.Stride+4*x1:]
	for c := 0; c < 4; c++ {
		top := float64(p00[c])*(1-dx) + float64(p10[c])*dx
		bottom := float64(p01[c])*(1-dx) + float64(p11[c])*dx
		out[c] = uint8(math.Round(top*(1-dy) + bottom*dy))
	}
}
