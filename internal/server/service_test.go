package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/scanner"
)

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

// createPageImage draws one page outline with corners (100,100) and
// (900,1100) on a 1000x1200 white image.
func createPageImage() *image.RGBA {
	img := createTestImage(1000, 1200, color.White)
	for y := 100; y <= 1100; y++ {
		for x := 100; x <= 900; x++ {
			if x < 104 || x > 896 || y < 104 || y > 1096 {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// toDataURL encodes img as a PNG data URL.
func toDataURL(t *testing.T, img image.Image) string {
	t.Helper()
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// writeImageFile saves img as PNG under t.TempDir and returns the path.
func writeImageFile(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.png")
	if err := imaging.SaveFile(img, path); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}
	return path
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return b
}

func newTestService(allowPaths bool) *Service {
	return NewService(Options{AllowPaths: allowPaths}, nil)
}

func TestService_Detect(t *testing.T) {
	svc := newTestService(false)
	raw := mustJSON(t, map[string]interface{}{
		"action": "detect",
		"image":  toDataURL(t, createPageImage()),
	})

	out, err := svc.Process(ActionDetect, raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	resp := out.(*DetectResponse)

	if len(resp.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(resp.Candidates))
	}
	if len(resp.Candidates[0]) != 4 {
		t.Errorf("candidate has %d corners", len(resp.Candidates[0]))
	}
	if resp.Width != 1000 || resp.Height != 1200 {
		t.Errorf("dimensions: got %dx%d", resp.Width, resp.Height)
	}
	if !strings.HasPrefix(resp.EdgeImage, "data:image/jpeg;base64,") {
		t.Error("edge_image should be a JPEG data URL")
	}
	if resp.OverlayImage != "" {
		t.Error("overlay_image should only be returned on request")
	}
}

func TestService_DetectBlankEncodesEmptyList(t *testing.T) {
	svc := newTestService(false)
	raw := mustJSON(t, map[string]interface{}{
		"image":         toDataURL(t, createTestImage(200, 150, color.White)),
		"include_edges": false,
	})

	out, err := svc.Process("", raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	b, _ := json.Marshal(out)
	if !strings.Contains(string(b), `"candidates":[]`) {
		t.Errorf("expected an empty candidate list, got %s", b)
	}
	if strings.Contains(string(b), "edge_image") {
		t.Errorf("edge_image should be omitted, got %s", b)
	}
}

func TestService_DecodeDetect(t *testing.T) {
	svc := NewService(Options{Backend: detection.NativeBackend}, nil)

	req, err := svc.DecodeDetect(json.RawMessage(`{"preset":"aggressive","threshold1":50,"include_overlay":true}`))
	if err != nil {
		t.Fatalf("DecodeDetect failed: %v", err)
	}
	if req.MorphStrategy != detection.MorphDilate || req.Containment != detection.ContainBBox {
		t.Errorf("preset not applied: %+v", req.Params)
	}
	if req.Threshold1 != 50 || req.Threshold2 != 200 {
		t.Errorf("thresholds: got %v/%v", req.Threshold1, req.Threshold2)
	}
	if !req.IncludeEdges || !req.IncludeOverlay {
		t.Errorf("preview flags: edges=%v overlay=%v", req.IncludeEdges, req.IncludeOverlay)
	}

	req, err = svc.DecodeDetect(nil)
	if err != nil {
		t.Fatalf("DecodeDetect(nil) failed: %v", err)
	}
	if req.Params != scanner.DefaultParams() {
		t.Errorf("empty request should use defaults, got %+v", req.Params)
	}

	if _, err := svc.DecodeDetect(json.RawMessage(`{"preset":"turbo"}`)); !errors.Is(err, scanner.ErrParameter) {
		t.Errorf("unknown preset: expected ErrParameter, got %v", err)
	}
	if _, err := svc.DecodeDetect(json.RawMessage(`{"threshold1":"high"}`)); !errors.Is(err, scanner.ErrParameter) {
		t.Errorf("mistyped field: expected ErrParameter, got %v", err)
	}
}

func TestService_DetectErrors(t *testing.T) {
	svc := newTestService(false)
	img := toDataURL(t, createTestImage(50, 50, color.White))

	tests := []struct {
		name string
		body map[string]interface{}
		want error
	}{
		{"no image", map[string]interface{}{}, scanner.ErrDecode},
		{"bad image", map[string]interface{}{"image": "data:image/png;base64,AAAA"}, scanner.ErrDecode},
		{"bad resize", map[string]interface{}{"image": img, "resize_width": 0}, scanner.ErrParameter},
		{"inverted thresholds", map[string]interface{}{"image": img, "threshold1": 300}, scanner.ErrParameter},
		{"unknown backend", map[string]interface{}{"image": img, "backend": "quantum"}, scanner.ErrParameter},
		{"path refused", map[string]interface{}{"path": "/etc/passwd"}, scanner.ErrParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(ActionDetect, mustJSON(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_Warp(t *testing.T) {
	svc := newTestService(false)
	raw := mustJSON(t, map[string]interface{}{
		"image":  toDataURL(t, createTestImage(300, 200, color.RGBA{200, 30, 30, 255})),
		"points": [][]float64{{250, 140}, {50, 40}, {250, 40}, {50, 140}},
	})

	out, err := svc.Process(ActionWarp, raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	resp := out.(*WarpResponse)

	if resp.Width != 200 || resp.Height != 100 {
		t.Errorf("size: got %dx%d, want 200x100", resp.Width, resp.Height)
	}
	want := [][2]float64{{50, 40}, {250, 40}, {250, 140}, {50, 140}}
	for i := range want {
		if resp.OrderedPoints[i] != want[i] {
			t.Errorf("ordered point %d: got %v, want %v", i, resp.OrderedPoints[i], want[i])
		}
	}
	if resp.Pose == nil {
		t.Error("pose should be estimated by default")
	}

	img, err := imaging.DecodeDataURL(resp.ProcessedImage)
	if err != nil {
		t.Fatalf("processed_image does not decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("processed image: got %v", img.Bounds())
	}
}

func TestService_WarpWithoutPose(t *testing.T) {
	svc := newTestService(false)
	raw := mustJSON(t, map[string]interface{}{
		"image":  toDataURL(t, createTestImage(300, 200, color.White)),
		"points": [][]float64{{50, 40}, {250, 40}, {250, 140}, {50, 140}},
		"pose":   false,
	})

	out, err := svc.Process(ActionWarp, raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out.(*WarpResponse).Pose != nil {
		t.Error("pose should be omitted when disabled")
	}
}

func TestService_WarpToFile(t *testing.T) {
	svc := newTestService(true)
	dst := filepath.Join(t.TempDir(), "page.jpg")
	raw := mustJSON(t, map[string]interface{}{
		"path":   writeImageFile(t, createTestImage(300, 200, color.White)),
		"points": [][]float64{{50, 40}, {250, 40}, {250, 140}, {50, 140}},
		"output": dst,
	})

	out, err := svc.Process(ActionWarp, raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	resp := out.(*WarpResponse)
	if resp.OutputPath != dst || resp.ProcessedImage != "" {
		t.Errorf("expected file output only, got path=%q inline=%d bytes", resp.OutputPath, len(resp.ProcessedImage))
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestService_WarpErrors(t *testing.T) {
	svc := newTestService(false)
	img := toDataURL(t, createTestImage(300, 200, color.White))
	rect := [][]float64{{50, 40}, {250, 40}, {250, 140}, {50, 140}}

	tests := []struct {
		name string
		body map[string]interface{}
		want error
	}{
		{"three points", map[string]interface{}{"image": img, "points": rect[:3]}, scanner.ErrInvalidGeometry},
		{"short pair", map[string]interface{}{"image": img, "points": [][]float64{{1}, {2, 3}, {4, 5}, {6, 7}}}, scanner.ErrInvalidGeometry},
		{"collinear", map[string]interface{}{"image": img, "points": [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}}, scanner.ErrInvalidGeometry},
		{"bad corner order", map[string]interface{}{"image": img, "points": rect, "corner_order": "spiral"}, scanner.ErrParameter},
		{"negative inset", map[string]interface{}{"image": img, "points": rect, "inset": -1}, scanner.ErrParameter},
		{"output refused", map[string]interface{}{"image": img, "points": rect, "output": "/tmp/x.jpg"}, scanner.ErrParameter},
		{"no image", map[string]interface{}{"points": rect}, scanner.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(ActionWarp, mustJSON(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_Select(t *testing.T) {
	svc := newTestService(false)
	cands := [][][]float64{
		{{0, 0}, {100, 0}, {100, 100}, {0, 100}},
		{{20, 20}, {40, 20}, {40, 40}, {20, 40}},
	}

	out, err := svc.Process(ActionSelect, mustJSON(t, map[string]interface{}{"candidates": cands, "point": []float64{30, 30}}))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	resp := out.(*SelectResponse)
	if !resp.Found || resp.Index != 1 || len(resp.Candidate) != 4 {
		t.Errorf("got %+v, want index 1", resp)
	}

	out, err = svc.Process(ActionSelect, mustJSON(t, map[string]interface{}{"candidates": cands, "point": []float64{500, 500}}))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if resp := out.(*SelectResponse); resp.Found || resp.Index != -1 {
		t.Errorf("got %+v, want no selection", resp)
	}

	bad := [][][]float64{{{0, 0}, {1, 0}, {1, 1}}}
	if _, err := svc.Process(ActionSelect, mustJSON(t, map[string]interface{}{"candidates": bad, "point": []float64{0, 0}})); !errors.Is(err, scanner.ErrInvalidGeometry) {
		t.Errorf("short candidate: expected ErrInvalidGeometry, got %v", err)
	}
	if _, err := svc.Process(ActionSelect, mustJSON(t, map[string]interface{}{"candidates": cands, "point": []float64{1}})); !errors.Is(err, scanner.ErrParameter) {
		t.Errorf("short point: expected ErrParameter, got %v", err)
	}
}

func TestService_UnknownAction(t *testing.T) {
	_, err := newTestService(false).Process("rotate", json.RawMessage(`{}`))
	if !errors.Is(err, scanner.ErrParameter) {
		t.Errorf("expected ErrParameter, got %v", err)
	}
}
