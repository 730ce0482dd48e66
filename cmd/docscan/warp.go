package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/ocr"
	"github.com/ironsheep/docscan/internal/pose"
	"github.com/ironsheep/docscan/internal/scanner"
)

type warpOptions struct {
	Points      string
	Output      string
	CornerOrder string
	Inset       float64
	Pose        bool
	OCR         bool
	Language    string
}

// warpSummary is printed to stdout after a successful warp.
type warpSummary struct {
	Output        string       `json:"output"`
	OrderedPoints [][2]float64 `json:"ordered_points"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	Pose          *pose.Pose   `json:"pose,omitempty"`
	Text          string       `json:"text,omitempty"`
}

func newWarpCmd(a *app) *cobra.Command {
	var opts warpOptions

	cmd := &cobra.Command{
		Use:   "warp FILE",
		Short: "Flatten one page of an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := parsePoints(opts.Points)
			if err != nil {
				return err
			}
			img, err := imaging.LoadFile(args[0])
			if err != nil {
				return err
			}

			res, err := scanner.Warp(img, points, scanner.WarpOptions{
				CornerOrder: geometry.CornerRule(opts.CornerOrder),
				Inset:       opts.Inset,
				Pose:        opts.Pose,
			})
			if err != nil {
				return err
			}

			out := opts.Output
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".flat.jpg"
			}
			if err := imaging.SaveFile(res.Image, out); err != nil {
				return err
			}

			summary := warpSummary{
				Output:        out,
				OrderedPoints: res.Ordered.Pairs(),
				Width:         res.Width,
				Height:        res.Height,
				Pose:          res.Pose,
			}
			if opts.OCR {
				lang := opts.Language
				if lang == "" {
					lang = a.cfg.OCRLanguage
				}
				text, err := ocr.ExtractText(res.Image, ocr.Options{Language: lang, TessdataPrefix: a.cfg.TessdataPrefix})
				if err != nil {
					return fmt.Errorf("OCR failed: %w", err)
				}
				summary.Text = text.FullText
			}

			a.log.WithFields(logrus.Fields{
				"file":   args[0],
				"output": out,
				"width":  res.Width,
				"height": res.Height,
			}).Info("page flattened")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Points, "points", "p", "", "four corners as x1,y1,x2,y2,x3,y3,x4,y4 (any order)")
	f.StringVarP(&opts.Output, "output", "o", "", "output file (default FILE.flat.jpg)")
	f.StringVar(&opts.CornerOrder, "corner-order", string(geometry.SumDiff), "corner ordering rule: sumdiff or xsort")
	f.Float64Var(&opts.Inset, "inset", 0, "shrink the quadrilateral by this many pixels")
	f.BoolVar(&opts.Pose, "pose", false, "estimate the page orientation")
	f.BoolVar(&opts.OCR, "ocr", false, "read the page text")
	f.StringVar(&opts.Language, "lang", "", "OCR language (default from DOCSCAN_OCR_LANGUAGE)")
	cmd.MarkFlagRequired("points")
	return cmd
}

// parsePoints reads "x,y,x,y,..." into points. Whether there are exactly
// four is left to scanner.Warp.
func parsePoints(s string) ([]geometry.Point, error) {
	fields := strings.Split(s, ",")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("%w: --points needs x,y pairs, got %d values", scanner.ErrInvalidGeometry, len(fields))
	}
	pts := make([]geometry.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("--points: %w", err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("--points: %w", err)
		}
		pts = append(pts, geometry.Pt(x, y))
	}
	return pts, nil
}
