package detection

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/ironsheep/docscan/internal/imaging"
)

// ErrUnknownBackend is returned by Extract for an unregistered backend name.
var ErrUnknownBackend = errors.New("unknown extraction backend")

// Morph selects how broken edge segments are joined before contour tracing.
type Morph string

const (
	// MorphClose applies a single closing with a Kernel x Kernel square.
	MorphClose Morph = "close"

	// MorphDilate dilates Iterations times with a Kernel x Kernel square.
	MorphDilate Morph = "dilate"
)

// Valid reports whether m names a known strategy.
func (m Morph) Valid() bool {
	return m == MorphClose || m == MorphDilate
}

// ExtractOptions configures edge and contour extraction.
type ExtractOptions struct {
	// Resize is the working size of the normalized axis, in pixels.
	Resize int
	Axis   imaging.Axis

	// Low and High are the Canny hysteresis thresholds.
	Low, High float64

	Morph      Morph
	Kernel     int // even sizes are bumped to the next odd value
	Iterations int // used by MorphDilate
}

// Extraction is the result of one extraction pass.
type Extraction struct {
	// Edges is the binary map contours were traced from, at working
	// resolution.
	Edges *image.Gray

	// Working is the normalized colour image.
	Working *image.NRGBA

	// Contours are in working-resolution coordinates.
	Contours []Contour

	// Ratio is working size divided by original size.
	Ratio float64
}

// WorkArea returns the pixel area of the working image.
func (e *Extraction) WorkArea() float64 {
	b := e.Edges.Bounds()
	return float64(b.Dx() * b.Dy())
}

// Extractor turns an image into an edge map and its contours.
type Extractor func(img image.Image, opts ExtractOptions) (*Extraction, error)

var (
	mu         sync.RWMutex
	extractors = map[string]Extractor{}
)

// NativeBackend is the pure Go extractor, always available.
const NativeBackend = "native"

func init() {
	Register(NativeBackend, extractNative)
}

// Register makes an extractor available under name, replacing any previous
// registration.
func Register(name string, fn Extractor) {
	mu.Lock()
	defer mu.Unlock()
	extractors[name] = fn
}

// Lookup returns the extractor registered under name.
func Lookup(name string) (Extractor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := extractors[name]
	return fn, ok
}

// Backends lists the registered extractor names in sorted order.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extract runs the named backend on img.
func Extract(backend string, img image.Image, opts ExtractOptions) (*Extraction, error) {
	fn, ok := Lookup(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, backend, Backends())
	}
	return fn(img, opts)
}

// extractNative implements the pipeline with the imaging package:
// normalize, grayscale, 5x5 Gaussian, Canny, morphology, border following.
func extractNative(img image.Image, opts ExtractOptions) (*Extraction, error) {
	working, ratio := imaging.Normalize(img, opts.Resize, opts.Axis)

	gray := imaging.GaussianBlur(imaging.Grayscale(working))
	edges := imaging.Canny(gray, opts.Low, opts.High)

	var closed *image.Gray
	switch opts.Morph {
	case MorphDilate:
		closed = imaging.DilateN(edges, opts.Kernel, opts.Iterations)
	default:
		closed = imaging.Close(edges, opts.Kernel)
	}

	return &Extraction{
		Edges:    closed,
		Working:  working,
		Contours: TraceContours(closed),
		Ratio:    ratio,
	}, nil
}
