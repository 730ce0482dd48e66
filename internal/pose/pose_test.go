package pose

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/docscan/internal/geometry"
)

// projectPage renders the A4 corners seen by cam under the given pose.
func projectPage(t *testing.T, cam Camera, rvec, tvec [3]float64) geometry.Quad {
	t.Helper()
	r := Rodrigues(rvec)
	var q geometry.Quad
	for i, m := range A4.Corners() {
		x := r.At(0, 0)*m.X + r.At(0, 1)*m.Y + tvec[0]
		y := r.At(1, 0)*m.X + r.At(1, 1)*m.Y + tvec[1]
		z := r.At(2, 0)*m.X + r.At(2, 1)*m.Y + tvec[2]
		p, ok := cam.Project(x, y, z)
		if !ok {
			t.Fatalf("corner %d behind the camera", i)
		}
		q[i] = p
	}
	return q
}

func TestNewCamera(t *testing.T) {
	cam := NewCamera(1000, 801)
	if cam.Focal != 1000 || cam.Cx != 500 || cam.Cy != 400.5 {
		t.Errorf("got %+v", cam)
	}
}

func TestEstimate_FrontoParallel(t *testing.T) {
	corners := geometry.Quad{
		geometry.Pt(395, 351.5),
		geometry.Pt(605, 351.5),
		geometry.Pt(605, 648.5),
		geometry.Pt(395, 648.5),
	}

	p := Estimate(1000, 1000, corners)
	if math.Abs(p.Pitch) > 1 || math.Abs(p.Yaw) > 1 || math.Abs(p.Roll) > 1 {
		t.Errorf("got %+v, want all angles within 1 degree of 0", p)
	}
}

func TestEstimate_FrontoParallelScaled(t *testing.T) {
	// Same page further away and off centre: still no rotation.
	cam := NewCamera(1200, 900)
	corners := projectPage(t, cam, [3]float64{}, [3]float64{-300, -50, 2500})

	p := Estimate(1200, 900, corners)
	if math.Abs(p.Pitch) > 1 || math.Abs(p.Yaw) > 1 || math.Abs(p.Roll) > 1 {
		t.Errorf("got %+v, want all angles within 1 degree of 0", p)
	}
}

func TestEstimate_KnownRotation(t *testing.T) {
	tests := []struct {
		name string
		rvec [3]float64
	}{
		{"pitch", [3]float64{0.3, 0, 0}},
		{"yaw", [3]float64{0, -0.25, 0}},
		{"roll", [3]float64{0, 0, 0.4}},
		{"mixed", [3]float64{0.2, -0.1, 0.05}},
	}

	cam := NewCamera(1000, 1000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corners := projectPage(t, cam, tt.rvec, [3]float64{-105, -148.5, 900})

			wx, wy, wz := RotationToEuler(Rodrigues(tt.rvec))
			want := Pose{Pitch: degrees(wx), Yaw: degrees(wy), Roll: degrees(wz)}

			got := Estimate(1000, 1000, corners)
			if math.Abs(got.Pitch-want.Pitch) > 0.5 ||
				math.Abs(got.Yaw-want.Yaw) > 0.5 ||
				math.Abs(got.Roll-want.Roll) > 0.5 {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestEstimate_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		corners geometry.Quad
	}{
		{"collinear", 1000, geometry.Quad{
			geometry.Pt(0, 0), geometry.Pt(10, 10), geometry.Pt(20, 20), geometry.Pt(30, 30),
		}},
		{"coincident", 1000, geometry.Quad{
			geometry.Pt(5, 5), geometry.Pt(5, 5), geometry.Pt(5, 5), geometry.Pt(5, 5),
		}},
		{"nan", 1000, geometry.Quad{
			geometry.Pt(math.NaN(), 0), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10),
		}},
		{"zero width", 0, geometry.Quad{
			geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.width, 1000, tt.corners); got != (Pose{}) {
				t.Errorf("got %+v, want zero pose", got)
			}
		})
	}
}

func TestSolvePnP_RecoversTranslation(t *testing.T) {
	cam := NewCamera(1000, 1000)
	rvec := [3]float64{0.1, 0.2, -0.1}
	tvec := [3]float64{-80, -120, 1100}
	corners := projectPage(t, cam, rvec, tvec)

	gotR, gotT, err := SolvePnP(cam, A4, corners)
	if err != nil {
		t.Fatalf("SolvePnP failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(gotR[i]-rvec[i]) > 1e-3 {
			t.Errorf("rvec[%d]: got %v, want %v", i, gotR[i], rvec[i])
		}
		if math.Abs(gotT[i]-tvec[i]) > 0.5 {
			t.Errorf("tvec[%d]: got %v, want %v", i, gotT[i], tvec[i])
		}
	}
}

func TestSolvePnP_BadCamera(t *testing.T) {
	_, _, err := SolvePnP(Camera{}, A4, geometry.Quad{})
	if err == nil {
		t.Error("expected error for zero focal length")
	}
}

func TestRodrigues_RoundTrip(t *testing.T) {
	vecs := [][3]float64{
		{0, 0, 0},
		{0.1, 0, 0},
		{0, -1.2, 0},
		{0.3, 0.4, -0.5},
		{2.5, 0.3, 0.1},
		{0, 0, math.Pi},
	}

	for _, v := range vecs {
		r := Rodrigues(v)

		// Orthonormal with determinant 1.
		var rrt mat.Dense
		rrt.Mul(r, r.T())
		if !mat.EqualApprox(&rrt, identity(), 1e-9) {
			t.Errorf("%v: R·Rᵀ is not identity", v)
		}
		if d := mat.Det(r); math.Abs(d-1) > 1e-9 {
			t.Errorf("%v: det = %v", v, d)
		}

		back := Rodrigues(RotationVector(r))
		if !mat.EqualApprox(back, r, 1e-6) {
			t.Errorf("%v: round trip mismatch", v)
		}
	}
}

func TestRotationToEuler(t *testing.T) {
	rx := func(a float64) *mat.Dense {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, math.Cos(a), -math.Sin(a), 0, math.Sin(a), math.Cos(a)})
	}
	ry := func(a float64) *mat.Dense {
		return mat.NewDense(3, 3, []float64{math.Cos(a), 0, math.Sin(a), 0, 1, 0, -math.Sin(a), 0, math.Cos(a)})
	}
	rz := func(a float64) *mat.Dense {
		return mat.NewDense(3, 3, []float64{math.Cos(a), -math.Sin(a), 0, math.Sin(a), math.Cos(a), 0, 0, 0, 1})
	}

	tests := []struct {
		name    string
		x, y, z float64
	}{
		{"identity", 0, 0, 0},
		{"x only", 0.3, 0, 0},
		{"y only", 0, -0.4, 0},
		{"z only", 0, 0, 1.1},
		{"all", 0.2, 0.3, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var zy, r mat.Dense
			zy.Mul(rz(tt.z), ry(tt.y))
			r.Mul(&zy, rx(tt.x))

			x, y, z := RotationToEuler(&r)
			if math.Abs(x-tt.x) > 1e-9 || math.Abs(y-tt.y) > 1e-9 || math.Abs(z-tt.z) > 1e-9 {
				t.Errorf("got (%v, %v, %v), want (%v, %v, %v)", x, y, z, tt.x, tt.y, tt.z)
			}
		})
	}
}

func TestRotationToEuler_GimbalLock(t *testing.T) {
	// 90 degrees about y combined with a rotation about x.
	var r mat.Dense
	r.Mul(
		mat.NewDense(3, 3, []float64{0, 0, 1, 0, 1, 0, -1, 0, 0}),
		mat.NewDense(3, 3, []float64{1, 0, 0, 0, math.Cos(0.3), -math.Sin(0.3), 0, math.Sin(0.3), math.Cos(0.3)}),
	)

	x, y, z := RotationToEuler(&r)
	if z != 0 {
		t.Errorf("roll should be forced to 0, got %v", z)
	}
	if math.Abs(y-math.Pi/2) > 1e-9 {
		t.Errorf("y: got %v, want pi/2", y)
	}
	if math.Abs(x-0.3) > 1e-9 {
		t.Errorf("x: got %v, want 0.3", x)
	}
}

func TestDegrees(t *testing.T) {
	if got := degrees(math.Pi / 2); got != 90 {
		t.Errorf("got %v, want 90", got)
	}
	if got := degrees(0.123456); got != 7.07 {
		t.Errorf("got %v, want 7.07", got)
	}
}
