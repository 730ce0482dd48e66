package geometry

import (
	"errors"
	"math"
	"testing"
)

func square(x0, y0, size float64) []Point {
	return []Point{Pt(x0, y0), Pt(x0+size, y0), Pt(x0+size, y0+size), Pt(x0, y0+size)}
}

func TestDistance(t *testing.T) {
	if d := Distance(Pt(0, 0), Pt(3, 4)); d != 5 {
		t.Errorf("Distance: got %v, want 5", d)
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid(square(10, 20, 100))
	if c.X != 60 || c.Y != 70 {
		t.Errorf("Centroid: got %v, want (60, 70)", c)
	}
	if c := Centroid(nil); c.X != 0 || c.Y != 0 {
		t.Errorf("Centroid(nil): got %v, want origin", c)
	}
}

func TestArea(t *testing.T) {
	sq := square(0, 0, 10)
	if a := Area(sq); a != 100 {
		t.Errorf("Area: got %v, want 100", a)
	}
	// Screen-clockwise order is positive with Y pointing down.
	if a := SignedArea(sq); a != 100 {
		t.Errorf("SignedArea clockwise: got %v, want 100", a)
	}
	rev := []Point{sq[3], sq[2], sq[1], sq[0]}
	if a := SignedArea(rev); a != -100 {
		t.Errorf("SignedArea counter-clockwise: got %v, want -100", a)
	}
	if a := Area(sq[:2]); a != 0 {
		t.Errorf("Area of segment: got %v, want 0", a)
	}
}

func TestPerimeter(t *testing.T) {
	sq := square(0, 0, 10)
	if p := Perimeter(sq, true); p != 40 {
		t.Errorf("closed: got %v, want 40", p)
	}
	if p := Perimeter(sq, false); p != 30 {
		t.Errorf("open: got %v, want 30", p)
	}
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point{Pt(5, 1), Pt(2, 8), Pt(9, 4)})
	if box.X.Lo != 2 || box.X.Hi != 9 || box.Y.Lo != 1 || box.Y.Hi != 8 {
		t.Errorf("BoundingBox: got %v", box)
	}
}

func TestContainsPoint(t *testing.T) {
	sq := square(0, 0, 10)
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Pt(5, 5), true},
		{"on edge", Pt(10, 5), true},
		{"on vertex", Pt(0, 0), true},
		{"outside right", Pt(11, 5), false},
		{"outside above", Pt(5, -0.5), false},
		{"far away", Pt(100, 100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPoint(sq, tt.p); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	// Concave "L" shape: the notch is outside.
	l := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 4), Pt(4, 4), Pt(4, 10), Pt(0, 10)}
	if ContainsPoint(l, Pt(7, 7)) {
		t.Error("point in the notch of an L should be outside")
	}
	if !ContainsPoint(l, Pt(2, 8)) {
		t.Error("point in the L leg should be inside")
	}
}

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want bool
	}{
		{"square", square(0, 0, 10), true},
		{"reversed square", []Point{Pt(0, 10), Pt(10, 10), Pt(10, 0), Pt(0, 0)}, true},
		{"trapezoid", []Point{Pt(2, 0), Pt(8, 0), Pt(10, 10), Pt(0, 10)}, true},
		{"bowtie", []Point{Pt(0, 0), Pt(10, 10), Pt(10, 0), Pt(0, 10)}, false},
		{"dart", []Point{Pt(0, 0), Pt(5, 3), Pt(10, 0), Pt(5, 10)}, false},
		{"collinear vertex", []Point{Pt(0, 0), Pt(5, 0), Pt(10, 0), Pt(5, 10)}, false},
		{"two points", []Point{Pt(0, 0), Pt(1, 1)}, false},
		{"pentagram", []Point{Pt(0, -10), Pt(5.88, 8.09), Pt(-9.51, -3.09), Pt(9.51, -3.09), Pt(-5.88, 8.09)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConvex(tt.pts); got != tt.want {
				t.Errorf("IsConvex = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApproxPolygon_RectangleContour(t *testing.T) {
	// Dense contour of a 200x100 rectangle starting in the middle of the top edge.
	var pts []Point
	for x := 100; x <= 200; x++ {
		pts = append(pts, Pt(float64(x), 0))
	}
	for y := 1; y <= 100; y++ {
		pts = append(pts, Pt(200, float64(y)))
	}
	for x := 199; x >= 0; x-- {
		pts = append(pts, Pt(float64(x), 100))
	}
	for y := 99; y >= 0; y-- {
		pts = append(pts, Pt(0, float64(y)))
	}
	for x := 1; x < 100; x++ {
		pts = append(pts, Pt(float64(x), 0))
	}

	approx := ApproxPolygon(pts, 0.02*Perimeter(pts, true), true)
	if len(approx) != 4 {
		t.Fatalf("got %d vertices (%v), want 4", len(approx), approx)
	}
	want := map[Point]bool{Pt(0, 0): true, Pt(200, 0): true, Pt(200, 100): true, Pt(0, 100): true}
	for _, p := range approx {
		if !want[p] {
			t.Errorf("unexpected vertex %v", p)
		}
	}
}

func TestApproxPolygon_Open(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(1, 0.1), Pt(2, 0), Pt(3, 5), Pt(4, 0)}
	got := ApproxPolygon(pts, 0.5, false)
	if len(got) != 4 {
		t.Fatalf("got %v, want the small wiggle dropped and the spike kept", got)
	}
	if got[0] != pts[0] || got[len(got)-1] != pts[4] {
		t.Errorf("endpoints not preserved: %v", got)
	}
}

func TestHomography_MapsCorners(t *testing.T) {
	src := [4]Point{Pt(12, 30), Pt(410, 8), Pt(395, 520), Pt(20, 480)}
	dst := [4]Point{Pt(0, 0), Pt(299, 0), Pt(299, 399), Pt(0, 399)}

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("ComputeHomography: %v", err)
	}
	for i := range src {
		got, ok := h.Apply(src[i])
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if Distance(got, dst[i]) > 1e-6 {
			t.Errorf("corner %d: got %v, want %v", i, got, dst[i])
		}
	}
}

func TestHomography_Identity(t *testing.T) {
	pts := [4]Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	h, err := ComputeHomography(pts, pts)
	if err != nil {
		t.Fatalf("ComputeHomography: %v", err)
	}
	want := Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
	for i := range h {
		if math.Abs(h[i]-want[i]) > 1e-9 {
			t.Errorf("h[%d] = %v, want %v", i, h[i], want[i])
		}
	}
}

func TestHomography_Degenerate(t *testing.T) {
	dst := [4]Point{Pt(0, 0), Pt(9, 0), Pt(9, 9), Pt(0, 9)}
	tests := []struct {
		name string
		src  [4]Point
	}{
		{"collinear", [4]Point{Pt(0, 0), Pt(10, 10), Pt(20, 20), Pt(30, 30)}},
		{"coincident", [4]Point{Pt(5, 5), Pt(5, 5), Pt(5, 5), Pt(5, 5)}},
		{"nan", [4]Point{Pt(math.NaN(), 0), Pt(1, 0), Pt(1, 1), Pt(0, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeHomography(tt.src, dst)
			if !errors.Is(err, ErrSingular) {
				t.Errorf("got %v, want ErrSingular", err)
			}
		})
	}
}

func TestInset(t *testing.T) {
	q := Quad{Pt(100, 100), Pt(300, 100), Pt(300, 200), Pt(100, 200)}
	got, err := Inset(q, 10)
	if err != nil {
		t.Fatalf("Inset: %v", err)
	}
	box := BoundingBox(got[:])
	if math.Abs(box.X.Lo-110) > 0.05 || math.Abs(box.X.Hi-290) > 0.05 ||
		math.Abs(box.Y.Lo-110) > 0.05 || math.Abs(box.Y.Hi-190) > 0.05 {
		t.Errorf("Inset bounds: got %v, want [110,290]x[110,190]", box)
	}
	if math.Abs(got.Area()-180*80) > 20 {
		t.Errorf("Inset area: got %v, want ~%v", got.Area(), 180*80)
	}
}

func TestInset_Collapse(t *testing.T) {
	q := Quad{Pt(0, 0), Pt(20, 0), Pt(20, 20), Pt(0, 20)}
	if _, err := Inset(q, 15); !errors.Is(err, ErrDegenerate) {
		t.Errorf("got %v, want ErrDegenerate", err)
	}
	if _, err := Inset(q, -1); !errors.Is(err, ErrDegenerate) {
		t.Errorf("negative inset: got %v, want ErrDegenerate", err)
	}
	if got, err := Inset(q, 0); err != nil || got != q {
		t.Errorf("zero inset: got %v, %v; want unchanged quad", got, err)
	}
}
