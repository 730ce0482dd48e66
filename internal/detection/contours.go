package detection

import (
	"image"
)

// Contour is a closed border of a connected region, in pixel coordinates.
// The last point connects back to the first.
type Contour []image.Point

// neighbours in clockwise order on screen (y grows downward), starting east.
var neighbours = [8]image.Point{
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
}

// TraceContours finds every border in a binary image: the outer border of
// each connected foreground region and the border of each hole inside one.
// Pixels with a non-zero value are foreground. No hierarchy is built; outer
// and hole borders are returned in one flat list in raster-scan order of
// their starting pixel.
//
// Each contour is compressed the same way as a simple chain approximation:
// runs of points moving in the same direction are reduced to their end
// points, so an axis-aligned rectangle yields four points.
//
// # Algorithm
//
// Topological border following (Suzuki and Abe, 1985). The image is copied
// into a label grid padded with a zero frame. A raster scan finds border
// starting points; each border is followed by rotating around the current
// pixel and visited pixels are labelled so the same border is never
// started twice. Foreground is 8-connected, background 4-connected.
func TraceContours(bin *image.Gray) []Contour {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	t := newTracer(bin)
	var contours []Contour
	nbd := int32(1)

	for y := 1; y <= h; y++ {
		for x := 1; x <= w; x++ {
			v := t.at(x, y)
			if v == 0 {
				continue
			}

			var from image.Point
			switch {
			case v == 1 && t.at(x-1, y) == 0:
				from = image.Pt(x-1, y) // outer border
			case v >= 1 && t.at(x+1, y) == 0:
				from = image.Pt(x+1, y) // hole border
			default:
				continue
			}

			nbd++
			c := t.follow(image.Pt(x, y), from, nbd)
			contours = append(contours, compressChain(c))
		}
	}

	return contours
}

// tracer holds the padded label grid used while following borders.
type tracer struct {
	labels []int32
	stride int
}

func newTracer(bin *image.Gray) *tracer {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	t := &tracer{
		labels: make([]int32, (w+2)*(h+2)),
		stride: w + 2,
	}
	for y := 0; y < h; y++ {
		row := bin.Pix[bin.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			if row[x] != 0 {
				t.labels[(y+1)*t.stride+x+1] = 1
			}
		}
	}
	return t
}

func (t *tracer) at(x, y int) int32 {
	return t.labels[y*t.stride+x]
}

func (t *tracer) set(p image.Point, v int32) {
	t.labels[p.Y*t.stride+p.X] = v
}

// direction returns the neighbour index of q relative to p.
func direction(p, q image.Point) int {
	d := q.Sub(p)
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// follow traces one border starting at start, whose zero neighbour from
// which the border was discovered is from. Returned points are in image
// coordinates (padding removed).
func (t *tracer) follow(start, from image.Point, nbd int32) Contour {
	unpad := image.Pt(1, 1)

	// Find the first foreground neighbour clockwise from the entry point.
	d0 := direction(start, from)
	first := image.Point{}
	found := false
	for k := 0; k < 8; k++ {
		q := start.Add(neighbours[(d0+k)%8])
		if t.at(q.X, q.Y) != 0 {
			first, found = q, true
			break
		}
	}
	if !found {
		// Isolated pixel.
		t.set(start, -nbd)
		return Contour{start.Sub(unpad)}
	}

	contour := Contour{start.Sub(unpad)}
	prev, cur := first, start
	for {
		// Examine counterclockwise, beginning just after prev.
		dp := direction(cur, prev)
		var next image.Point
		eastZero := false
		for k := 1; k <= 8; k++ {
			d := (dp - k + 16) % 8
			q := cur.Add(neighbours[d])
			if t.at(q.X, q.Y) != 0 {
				next = q
				break
			}
			if d == 0 {
				eastZero = true
			}
		}

		switch {
		case eastZero:
			t.set(cur, -nbd)
		case t.at(cur.X, cur.Y) == 1:
			t.set(cur, nbd)
		}

		if next == start && cur == first {
			return contour
		}
		prev, cur = cur, next
		contour = append(contour, cur.Sub(unpad))
	}
}

// compressChain drops points that continue the previous step direction,
// keeping only the points where the chain turns.
func compressChain(c Contour) Contour {
	n := len(c)
	if n <= 2 {
		return c
	}
	out := make(Contour, 0, n/4+4)
	for i := 0; i < n; i++ {
		prev := c[(i-1+n)%n]
		next := c[(i+1)%n]
		if c[i].Sub(prev) != next.Sub(c[i]) {
			out = append(out, c[i])
		}
	}
	if len(out) == 0 {
		return c[:1]
	}
	return out
}
