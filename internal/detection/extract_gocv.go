//go:build gocv
// +build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/docscan/internal/imaging"
)

// OpenCVBackend is the extractor backed by OpenCV. It is registered only in
// builds with the gocv tag.
const OpenCVBackend = "opencv"

func init() {
	Register(OpenCVBackend, extractOpenCV)
}

func extractOpenCV(img image.Image, opts ExtractOptions) (*Extraction, error) {
	working, ratio := imaging.Normalize(img, opts.Resize, opts.Axis)

	mat, err := gocv.ImageToMatRGB(working)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, float32(opts.Low), float32(opts.High))

	k := imaging.NormalizeKernel(opts.Kernel)
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer func() { closed.Close() }()
	switch opts.Morph {
	case MorphDilate:
		edges.CopyTo(&closed)
		for i := 0; i < opts.Iterations; i++ {
			next := gocv.NewMat()
			gocv.Dilate(closed, &next, kernel)
			closed.Close()
			closed = next
		}
	default:
		gocv.MorphologyEx(edges, &closed, gocv.MorphClose, kernel)
	}

	pv := gocv.FindContours(closed, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer pv.Close()

	contours := make([]Contour, 0, pv.Size())
	for i := 0; i < pv.Size(); i++ {
		contours = append(contours, Contour(pv.At(i).ToPoints()))
	}

	preview, err := closed.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to read edge map: %w", err)
	}

	return &Extraction{
		Edges:    imaging.Binarize(preview, 128),
		Working:  working,
		Contours: contours,
		Ratio:    ratio,
	}, nil
}
