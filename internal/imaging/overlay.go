package imaging

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/docscan/internal/geometry"
)

// Palette returns n visually distinct, deterministic colours spaced evenly in
// HCL hue.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, n)
	for i := range out {
		hue := math.Mod(float64(i)*360/math.Max(1, float64(n))+30, 360)
		r, g, b := colorful.Hcl(hue, 0.8, 0.55).Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// DrawQuads returns a copy of img with each quad outlined in its own palette
// colour and labelled with its index. Quad coordinates are in img's pixel
// space.
func DrawQuads(img image.Image, quads []geometry.Quad, thickness int) *image.NRGBA {
	dst := imaging.Clone(img)
	if thickness < 1 {
		thickness = 1
	}
	colors := Palette(len(quads))
	for i, q := range quads {
		c := colors[i]
		for k := 0; k < 4; k++ {
			drawLine(dst, q[k], q[(k+1)%4], thickness, c)
		}
		drawLabel(dst, q.Centroid(), strconv.Itoa(i), c)
	}
	return dst
}

// drawLine stamps a square brush of the given thickness along the segment.
func drawLine(dst *image.NRGBA, a, b geometry.Point, thickness int, c color.NRGBA) {
	steps := int(math.Ceil(geometry.Distance(a, b)))
	if steps < 1 {
		steps = 1
	}
	half := thickness / 2
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(a.X + (b.X-a.X)*t))
		y := int(math.Round(a.Y + (b.Y-a.Y)*t))
		for dy := -half; dy < thickness-half; dy++ {
			for dx := -half; dx < thickness-half; dx++ {
				px, py := x+dx, y+dy
				if image.Pt(px, py).In(dst.Rect) {
					dst.SetNRGBA(px, py, c)
				}
			}
		}
	}
}

func drawLabel(dst *image.NRGBA, at geometry.Point, text string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(at.X)-3*len(text), int(at.Y)+5),
	}
	d.DrawString(text)
}
