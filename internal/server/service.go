package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/ocr"
	"github.com/ironsheep/docscan/internal/pose"
	"github.com/ironsheep/docscan/internal/scanner"
)

// Actions accepted by Service.Process.
const (
	ActionDetect = "detect"
	ActionWarp   = "warp"
	ActionSelect = "select"
)

// Options configures a Service.
type Options struct {
	// Backend is the contour extractor used when a request names none.
	Backend string

	// OCR holds the default language and traineddata location.
	OCR ocr.Options

	// AllowPaths lets requests read and write local files. Only the stdio
	// MCP transport enables it.
	AllowPaths bool
}

// Service adapts JSON requests to the scanner operations. It keeps no
// state between requests and is safe for concurrent use.
type Service struct {
	opts Options
	log  logrus.FieldLogger
}

// NewService creates a Service. A nil logger discards log output.
func NewService(opts Options, log logrus.FieldLogger) *Service {
	if opts.Backend == "" {
		opts.Backend = scanner.DefaultParams().Backend
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Service{opts: opts, log: log}
}

// DetectRequest is the input of the detect action. Tuning fields of
// scanner.Params are inlined; unset fields keep the preset's values.
type DetectRequest struct {
	// Image is a data URL or bare base64 payload.
	Image string `json:"image"`

	// Path names a local image file instead of Image.
	Path string `json:"path,omitempty"`

	// Preset picks the starting parameter set ("classic" or "aggressive").
	Preset string `json:"preset,omitempty"`

	IncludeEdges   bool `json:"include_edges"`
	IncludeOverlay bool `json:"include_overlay"`

	scanner.Params
}

// DetectResponse lists candidate quads in original image coordinates.
type DetectResponse struct {
	Candidates   [][][2]float64 `json:"candidates"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	EdgeImage    string         `json:"edge_image,omitempty"`
	OverlayImage string         `json:"overlay_image,omitempty"`
}

// WarpRequest is the input of the warp action.
type WarpRequest struct {
	Image string `json:"image"`
	Path  string `json:"path,omitempty"`

	// Points are exactly four [x, y] pairs in any order.
	Points [][]float64 `json:"points"`

	CornerOrder geometry.CornerRule `json:"corner_order,omitempty"`
	Inset       float64             `json:"inset,omitempty"`
	Pose        bool                `json:"pose"`
	OCR         bool                `json:"ocr,omitempty"`
	Language    string              `json:"language,omitempty"`

	// Output writes the rectified page to a local file instead of
	// returning it inline.
	Output string `json:"output,omitempty"`
}

// WarpResponse carries the rectified page.
type WarpResponse struct {
	ProcessedImage string           `json:"processed_image,omitempty"`
	OutputPath     string           `json:"output_path,omitempty"`
	OrderedPoints  [][2]float64     `json:"ordered_points"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Pose           *pose.Pose       `json:"pose,omitempty"`
	Text           string           `json:"text,omitempty"`
	Words          []ocr.TextRegion `json:"words,omitempty"`
}

// SelectRequest hit-tests a point against detect candidates.
type SelectRequest struct {
	Candidates [][][]float64 `json:"candidates"`
	Point      []float64     `json:"point"`
}

// SelectResponse reports the smallest candidate containing the point.
// Index is -1 when Found is false.
type SelectResponse struct {
	Index     int          `json:"index"`
	Found     bool         `json:"found"`
	Candidate [][2]float64 `json:"candidate,omitempty"`
}

// Process decodes raw as the request of action and runs it. An empty
// action means detect.
func (s *Service) Process(action string, raw json.RawMessage) (interface{}, error) {
	switch action {
	case "", ActionDetect:
		req, err := s.DecodeDetect(raw)
		if err != nil {
			return nil, err
		}
		return s.Detect(req)
	case ActionWarp:
		req, err := DecodeWarp(raw)
		if err != nil {
			return nil, err
		}
		return s.Warp(req)
	case ActionSelect:
		var req SelectRequest
		if err := decodeJSON(raw, &req); err != nil {
			return nil, err
		}
		return s.Select(&req)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", scanner.ErrParameter, action)
	}
}

// DecodeDetect parses a detect request on top of the named preset and the
// service's default backend.
func (s *Service) DecodeDetect(raw json.RawMessage) (*DetectRequest, error) {
	var head struct {
		Preset string `json:"preset"`
	}
	if err := decodeJSON(raw, &head); err != nil {
		return nil, err
	}
	p, err := scanner.Preset(head.Preset)
	if err != nil {
		return nil, err
	}
	p.Backend = s.opts.Backend

	req := &DetectRequest{IncludeEdges: true, Params: p}
	if err := decodeJSON(raw, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeWarp parses a warp request. Pose estimation is on unless the
// request disables it.
func DecodeWarp(raw json.RawMessage) (*WarpRequest, error) {
	req := &WarpRequest{Pose: true}
	if err := decodeJSON(raw, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Detect runs candidate detection.
func (s *Service) Detect(req *DetectRequest) (*DetectResponse, error) {
	start := time.Now()

	img, err := s.loadImage(req.Image, req.Path)
	if err != nil {
		return nil, err
	}

	res, err := scanner.Detect(img, req.Params)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	resp := &DetectResponse{
		Candidates: make([][][2]float64, 0, len(res.Candidates)),
		Width:      b.Dx(),
		Height:     b.Dy(),
	}
	for _, q := range res.Candidates {
		resp.Candidates = append(resp.Candidates, q.Pairs())
	}

	if req.IncludeEdges {
		if resp.EdgeImage, err = imaging.EncodeDataURL(res.Edges); err != nil {
			return nil, err
		}
	}
	if req.IncludeOverlay {
		if resp.OverlayImage, err = imaging.EncodeDataURL(res.Overlay()); err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"action":     ActionDetect,
		"backend":    req.Backend,
		"width":      resp.Width,
		"height":     resp.Height,
		"candidates": len(resp.Candidates),
		"duration":   time.Since(start).String(),
	}).Info("detect complete")
	return resp, nil
}

// Warp rectifies the requested quad and optionally reads its text.
func (s *Service) Warp(req *WarpRequest) (*WarpResponse, error) {
	start := time.Now()

	if req.Output != "" && !s.opts.AllowPaths {
		return nil, fmt.Errorf("%w: output paths are not accepted by this transport", scanner.ErrParameter)
	}
	points, err := toPoints(req.Points)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(req.Image, req.Path)
	if err != nil {
		return nil, err
	}

	res, err := scanner.Warp(img, points, scanner.WarpOptions{
		CornerOrder: req.CornerOrder,
		Inset:       req.Inset,
		Pose:        req.Pose,
	})
	if err != nil {
		return nil, err
	}

	resp := &WarpResponse{
		OrderedPoints: res.Ordered.Pairs(),
		Width:         res.Width,
		Height:        res.Height,
		Pose:          res.Pose,
	}

	if req.Output != "" {
		if err := imaging.SaveFile(res.Image, req.Output); err != nil {
			return nil, err
		}
		resp.OutputPath = req.Output
	} else if resp.ProcessedImage, err = imaging.EncodeDataURL(res.Image); err != nil {
		return nil, err
	}

	if req.OCR {
		opts := s.opts.OCR
		if req.Language != "" {
			opts.Language = req.Language
		}
		text, err := ocr.ExtractText(res.Image, opts)
		if err != nil {
			return nil, fmt.Errorf("OCR failed: %w", err)
		}
		resp.Text = text.FullText
		resp.Words = text.Regions
	}

	s.log.WithFields(logrus.Fields{
		"action":   ActionWarp,
		"width":    resp.Width,
		"height":   resp.Height,
		"pose":     req.Pose,
		"ocr":      req.OCR,
		"duration": time.Since(start).String(),
	}).Info("warp complete")
	return resp, nil
}

// Select hit-tests req.Point against the candidates.
func (s *Service) Select(req *SelectRequest) (*SelectResponse, error) {
	if len(req.Point) != 2 {
		return nil, fmt.Errorf("%w: point must be [x, y]", scanner.ErrParameter)
	}
	quads := make([]geometry.Quad, len(req.Candidates))
	for i, c := range req.Candidates {
		pts, err := toPoints(c)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		if quads[i], err = geometry.QuadFromPoints(pts); err != nil {
			return nil, fmt.Errorf("candidate %d: %w: %v", i, scanner.ErrInvalidGeometry, err)
		}
	}

	idx, ok := scanner.Select(quads, geometry.Pt(req.Point[0], req.Point[1]))
	resp := &SelectResponse{Index: idx, Found: ok}
	if ok {
		resp.Candidate = quads[idx].Pairs()
	}
	return resp, nil
}

func (s *Service) loadImage(data, path string) (image.Image, error) {
	if path != "" {
		if !s.opts.AllowPaths {
			return nil, fmt.Errorf("%w: file paths are not accepted by this transport", scanner.ErrParameter)
		}
		img, err := imaging.LoadFile(path)
		if err != nil {
			if errors.Is(err, imaging.ErrDecode) {
				return nil, fmt.Errorf("%w: %v", scanner.ErrDecode, err)
			}
			return nil, err
		}
		return img, nil
	}
	if data == "" {
		return nil, fmt.Errorf("%w: no image supplied", scanner.ErrDecode)
	}
	return scanner.DecodeImage(data)
}

func toPoints(pairs [][]float64) ([]geometry.Point, error) {
	pts := make([]geometry.Point, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: point %d must be [x, y], got %d values", scanner.ErrInvalidGeometry, i, len(p))
		}
		pts[i] = geometry.Pt(p[0], p[1])
	}
	return pts, nil
}

func decodeJSON(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid request: %v", scanner.ErrParameter, err)
	}
	return nil
}
