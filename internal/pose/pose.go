package pose

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/ironsheep/docscan/internal/geometry"
)

// ErrNoSolution is returned by SolvePnP when no pose explains the corners.
var ErrNoSolution = errors.New("no pose solution")

// Camera is a distortion-free pinhole camera.
type Camera struct {
	Focal  float64 // focal length in pixels
	Cx, Cy float64 // principal point
}

// NewCamera returns the uncalibrated camera assumed for a photo of the
// given size: focal length equal to the image width, principal point at the
// image centre.
func NewCamera(width, height int) Camera {
	return Camera{
		Focal: float64(width),
		Cx:    float64(width) / 2,
		Cy:    float64(height) / 2,
	}
}

// Project maps a camera-space point to pixel coordinates. ok is false for
// points on or behind the image plane.
func (c Camera) Project(x, y, z float64) (geometry.Point, bool) {
	if z <= 0 {
		return geometry.Point{}, false
	}
	return geometry.Pt(c.Focal*x/z+c.Cx, c.Focal*y/z+c.Cy), true
}

// Object is a planar rectangle in millimetres, lying in z = 0 with corners
// (0,0), (W,0), (W,H), (0,H) in top-left, top-right, bottom-right,
// bottom-left order.
type Object struct {
	Width, Height float64
}

// A4 is the default page model.
var A4 = Object{Width: 210, Height: 297}

// Corners returns the object corners in canonical order.
func (o Object) Corners() [4]geometry.Point {
	return [4]geometry.Point{
		geometry.Pt(0, 0),
		geometry.Pt(o.Width, 0),
		geometry.Pt(o.Width, o.Height),
		geometry.Pt(0, o.Height),
	}
}

// Pose is the orientation of the page relative to the camera, in degrees
// rounded to two decimals.
type Pose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Estimate returns the orientation of an A4 page whose canonical corners
// (top-left, top-right, bottom-right, bottom-left) were found in a photo of
// the given size.
//
// Pose is advisory: any numerical failure yields the zero pose instead of
// an error.
func Estimate(width, height int, corners geometry.Quad) Pose {
	if width <= 0 || height <= 0 || !geometry.IsFinite(corners.Points()...) {
		return Pose{}
	}

	rvec, _, err := SolvePnP(NewCamera(width, height), A4, corners)
	if err != nil {
		return Pose{}
	}

	x, y, z := RotationToEuler(Rodrigues(rvec))
	p := Pose{Pitch: degrees(x), Yaw: degrees(y), Roll: degrees(z)}
	if math.IsNaN(p.Pitch) || math.IsNaN(p.Yaw) || math.IsNaN(p.Roll) {
		return Pose{}
	}
	return p
}

// SolvePnP finds the rotation vector and translation that map the object's
// corners onto the observed image corners.
//
// # Algorithm
//
//  1. Normalize the image corners with the camera intrinsics
//  2. Compute the plane-to-image homography and decompose it into
//     r1, r2 and t, choosing the sign that puts the page in front of the
//     camera; r3 = r1 x r2
//  3. Project the result onto the nearest true rotation (SVD)
//  4. Refine all six parameters by minimizing the reprojection error with
//     Nelder-Mead; the refinement is discarded if it does not improve
//     the error
func SolvePnP(cam Camera, obj Object, corners geometry.Quad) (rvec, tvec [3]float64, err error) {
	if cam.Focal <= 0 {
		return rvec, tvec, fmt.Errorf("%w: focal length %v", ErrNoSolution, cam.Focal)
	}

	var normalized [4]geometry.Point
	for i, p := range corners {
		normalized[i] = geometry.Pt((p.X-cam.Cx)/cam.Focal, (p.Y-cam.Cy)/cam.Focal)
	}
	h, err := geometry.ComputeHomography(obj.Corners(), normalized)
	if err != nil {
		return rvec, tvec, fmt.Errorf("%w: %v", ErrNoSolution, err)
	}

	h1 := []float64{h[0], h[3], h[6]}
	h2 := []float64{h[1], h[4], h[7]}
	h3 := []float64{h[2], h[5], h[8]}
	norm := floats.Norm(h1, 2) + floats.Norm(h2, 2)
	if norm == 0 || math.IsNaN(norm) {
		return rvec, tvec, ErrNoSolution
	}
	lambda := 2 / norm
	if h3[2] < 0 {
		lambda = -lambda
	}
	floats.Scale(lambda, h1)
	floats.Scale(lambda, h2)
	floats.Scale(lambda, h3)
	r3 := cross(h1, h2)

	approx := mat.NewDense(3, 3, []float64{
		h1[0], h2[0], r3[0],
		h1[1], h2[1], r3[1],
		h1[2], h2[2], r3[2],
	})
	r, ok := orthonormalize(approx)
	if !ok {
		return rvec, tvec, ErrNoSolution
	}

	rvec = RotationVector(r)
	copy(tvec[:], h3)

	x0 := []float64{rvec[0], rvec[1], rvec[2], tvec[0], tvec[1], tvec[2]}
	cost := reprojectionCost(cam, obj, corners)
	f0 := cost(x0)
	if math.IsInf(f0, 0) || math.IsNaN(f0) {
		return rvec, tvec, ErrNoSolution
	}

	res, err := optimize.Minimize(
		optimize.Problem{Func: cost},
		x0,
		&optimize.Settings{
			MajorIterations: 2000,
			Converger:       &optimize.FunctionConverge{Absolute: 1e-12, Iterations: 200},
		},
		&optimize.NelderMead{},
	)
	if err == nil && res != nil && res.F < f0 {
		copy(rvec[:], res.X[:3])
		copy(tvec[:], res.X[3:])
	}
	return rvec, tvec, nil
}

// reprojectionCost returns the sum of squared pixel distances between the
// observed corners and the object corners projected with parameters
// x = (rvec, tvec).
func reprojectionCost(cam Camera, obj Object, corners geometry.Quad) func(x []float64) float64 {
	model := obj.Corners()
	return func(x []float64) float64 {
		r := Rodrigues([3]float64{x[0], x[1], x[2]})
		var sum float64
		for i, m := range model {
			cx := r.At(0, 0)*m.X + r.At(0, 1)*m.Y + x[3]
			cy := r.At(1, 0)*m.X + r.At(1, 1)*m.Y + x[4]
			cz := r.At(2, 0)*m.X + r.At(2, 1)*m.Y + x[5]
			p, ok := cam.Project(cx, cy, cz)
			if !ok {
				return math.Inf(1)
			}
			d := p.Sub(corners[i])
			sum += d.X*d.X + d.Y*d.Y
		}
		return sum
	}
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// degrees converts radians to degrees rounded to two decimals.
func degrees(rad float64) float64 {
	return math.Round(rad*180/math.Pi*100) / 100
}
