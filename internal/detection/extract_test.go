package detection

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/docscan/internal/imaging"
)

func defaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Resize: 600,
		Axis:   imaging.AxisWidth,
		Low:    75,
		High:   200,
		Morph:  MorphClose,
		Kernel: 5,
	}
}

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createRectangleOutline draws a black outline of the given thickness whose
// outer edge runs through (x1,y1)-(x2,y2) inclusive.
func createRectangleOutline(width, height, x1, y1, x2, y2, thickness int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if x < x1+thickness || x > x2-thickness || y < y1+thickness || y > y2-thickness {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestBackends(t *testing.T) {
	names := Backends()
	found := false
	for _, n := range names {
		if n == NativeBackend {
			found = true
		}
	}
	if !found {
		t.Errorf("native backend missing from %v", names)
	}

	if _, ok := Lookup(NativeBackend); !ok {
		t.Error("Lookup(native) failed")
	}
}

func TestExtract_UnknownBackend(t *testing.T) {
	img := createTestImage(10, 10, color.White)
	_, err := Extract("tensor-magic", img, defaultExtractOptions())
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	called := false
	Register("test-stub", func(img image.Image, opts ExtractOptions) (*Extraction, error) {
		called = true
		return &Extraction{Edges: image.NewGray(image.Rect(0, 0, 1, 1)), Ratio: 1}, nil
	})
	defer func() {
		mu.Lock()
		delete(extractors, "test-stub")
		mu.Unlock()
	}()

	if _, err := Extract("test-stub", createTestImage(2, 2, color.White), defaultExtractOptions()); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !called {
		t.Error("registered extractor was not called")
	}
}

func TestExtractNative_Outline(t *testing.T) {
	img := createRectangleOutline(1000, 1200, 100, 100, 900, 1100, 4)

	ex, err := Extract(NativeBackend, img, defaultExtractOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if ex.Ratio != 0.6 {
		t.Errorf("ratio: got %v, want 0.6", ex.Ratio)
	}
	if b := ex.Edges.Bounds(); b.Dx() != 600 || b.Dy() != 720 {
		t.Errorf("edge map size: got %v, want 600x720", b)
	}
	if ex.WorkArea() != 600*720 {
		t.Errorf("work area: got %v", ex.WorkArea())
	}
	if len(ex.Contours) == 0 {
		t.Fatal("no contours traced")
	}

	// Edge pixels near the outline (x = 60 at working size), none in the middle.
	if ex.Edges.GrayAt(300, 360).Y != 0 {
		t.Error("unexpected edge in the page interior")
	}
	hit := false
	for x := 56; x <= 66; x++ {
		if ex.Edges.GrayAt(x, 360).Y == 255 {
			hit = true
		}
	}
	if !hit {
		t.Error("left side of the outline missing from the edge map")
	}

	quads := FilterQuads(ex.Contours, ex.WorkArea(), ex.Ratio, defaultQuadOptions)
	if len(quads) == 0 {
		t.Fatal("no quads accepted")
	}
	kept := Suppress(quads, 20, ContainPolygon)
	if len(kept) != 1 {
		t.Fatalf("got %d candidates after suppression, want 1", len(kept))
	}
}

func TestExtractNative_DilateStrategy(t *testing.T) {
	img := createRectangleOutline(800, 600, 100, 100, 700, 500, 3)
	opts := defaultExtractOptions()
	opts.Morph = MorphDilate
	opts.Iterations = 3

	ex, err := Extract(NativeBackend, img, opts)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	quads := FilterQuads(ex.Contours, ex.WorkArea(), ex.Ratio, QuadOptions{MinAreaFrac: 0.005, MaxAreaFrac: 0.9, Epsilon: 0.04})
	if got := Suppress(quads, 20, ContainBBox); len(got) != 1 {
		t.Errorf("got %d candidates, want 1", len(got))
	}
}

func TestExtractNative_BlankImage(t *testing.T) {
	ex, err := Extract(NativeBackend, createTestImage(300, 200, color.White), defaultExtractOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(ex.Contours) != 0 {
		t.Errorf("blank image gave %d contours", len(ex.Contours))
	}
}

func TestMorphValid(t *testing.T) {
	if !MorphClose.Valid() || !MorphDilate.Valid() {
		t.Error("known strategies should be valid")
	}
	if Morph("erode").Valid() {
		t.Error("unknown strategy should be invalid")
	}
}
