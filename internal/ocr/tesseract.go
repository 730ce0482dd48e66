package ocr

import (
	"errors"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/docscan/internal/imaging"
)

// ErrEmptyImage is returned when there is nothing to recognize.
var ErrEmptyImage = errors.New("ocr: empty image")

// DefaultLanguage is the Tesseract language code used when none is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is one recognized word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the text recognized on a page.
type OCRResult struct {
	// FullText is all recognized text with original spacing/newlines.
	FullText string `json:"full_text"`

	// Regions are individual words. Empty if bounding box extraction
	// failed; the text is still in FullText.
	Regions []TextRegion `json:"regions"`
}

// Options selects the recognition language and model location.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu+eng".
	Language string

	// TessdataPrefix overrides the traineddata directory. Empty means the
	// TESSDATA_PREFIX environment variable or the Tesseract default.
	TessdataPrefix string
}

// ExtractText runs Tesseract on an in-memory image, typically a rectified
// page, and returns the full text plus word-level boxes.
//
// The image is handed to Tesseract as PNG bytes, so no temporary file is
// written. Word boxes are in the coordinates of img with its bounds origin
// at (0,0).
func ExtractText(img image.Image, opts Options) (*OCRResult, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{
		FullText: text,
		Regions:  regions,
	}, nil
}

// Version returns the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}
