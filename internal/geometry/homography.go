package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when four point pairs do not determine a
// projective transform.
var ErrSingular = errors.New("singular perspective transform")

// maxCondition bounds the condition number accepted from the 8x8 system.
const maxCondition = 1e14

// Homography is a 3x3 projective transform in row-major order with H[8] = 1.
type Homography [9]float64

// ComputeHomography returns the transform mapping each src[i] onto dst[i].
//
// With h33 fixed to 1 every correspondence contributes two linear equations:
//
//	u = (h0*x + h1*y + h2) / (h6*x + h7*y + 1)
//	v = (h3*x + h4*y + h5) / (h6*x + h7*y + 1)
//
// giving an 8x8 system solved by LU decomposition. Both point sets are first
// moved to their centroid and scaled to a mean radius of sqrt(2) so the system
// stays well conditioned for large images.
func ComputeHomography(src, dst [4]Point) (Homography, error) {
	var h Homography
	if !IsFinite(src[:]...) || !IsFinite(dst[:]...) {
		return h, fmt.Errorf("%w: non-finite coordinates", ErrSingular)
	}

	ts, ok := normalization(src)
	if !ok {
		return h, fmt.Errorf("%w: coincident source points", ErrSingular)
	}
	td, ok := normalization(dst)
	if !ok {
		return h, fmt.Errorf("%w: coincident target points", ErrSingular)
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		s := ts.apply(src[i])
		d := td.apply(dst[i])
		x, y := s.X, s.Y
		u, v := d.X, d.Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var lu mat.LU
	lu.Factorize(a)
	if c := lu.Cond(); math.IsInf(c, 0) || math.IsNaN(c) || c > maxCondition {
		return h, ErrSingular
	}
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return h, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	hn := mat.NewDense(3, 3, []float64{
		x.AtVec(0), x.AtVec(1), x.AtVec(2),
		x.AtVec(3), x.AtVec(4), x.AtVec(5),
		x.AtVec(6), x.AtVec(7), 1,
	})

	// H = Td^-1 * Hn * Ts
	var tmp, full mat.Dense
	tmp.Mul(td.inverse(), hn)
	full.Mul(&tmp, ts.matrix())

	scale := full.At(2, 2)
	if math.Abs(scale) < 1e-12 {
		scale = 1
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r*3+c] = full.At(r, c) / scale
		}
	}
	return h, nil
}

// similarity is an isotropic scale about a centre.
type similarity struct {
	cx, cy, s float64
}

func normalization(pts [4]Point) (similarity, bool) {
	c := Centroid(pts[:])
	var mean float64
	for _, p := range pts {
		mean += Distance(p, c)
	}
	mean /= 4
	if mean < 1e-12 {
		return similarity{}, false
	}
	return similarity{cx: c.X, cy: c.Y, s: math.Sqrt2 / mean}, true
}

func (t similarity) apply(p Point) Point {
	return Point{X: (p.X - t.cx) * t.s, Y: (p.Y - t.cy) * t.s}
}

func (t similarity) matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.s, 0, -t.s * t.cx,
		0, t.s, -t.s * t.cy,
		0, 0, 1,
	})
}

func (t similarity) inverse() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1 / t.s, 0, t.cx,
		0, 1 / t.s, t.cy,
		0, 0, 1,
	})
}

// Apply maps p through the transform. ok is false when p maps to infinity.
func (h Homography) Apply(p Point) (q Point, ok bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// Matrix returns h as a 3x3 gonum matrix.
func (h Homography) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, h[:])
}
