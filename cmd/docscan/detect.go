package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/scanner"
)

type detectOptions struct {
	Preset      string
	Threshold1  float64
	Threshold2  float64
	MorphKernel int
	ResizeWidth int
	FilterDist  float64
	Containment string
	Backend     string
	Workers     int
	OverlayDir  string
	Quiet       bool
}

// detectLine is one JSON line of detect output.
type detectLine struct {
	File       string         `json:"file"`
	Width      int            `json:"width,omitempty"`
	Height     int            `json:"height,omitempty"`
	Candidates [][][2]float64 `json:"candidates"`
	Overlay    string         `json:"overlay,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func newDetectCmd(a *app) *cobra.Command {
	var opts detectOptions

	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: "Detect candidate pages in image files",
		Long: "Detect candidate pages in image files. Prints one JSON line per file " +
			"(in completion order) and a progress bar on stderr.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := detectParams(cmd, a, opts)
			if err != nil {
				return err
			}
			workers := opts.Workers
			if workers < 1 {
				workers = a.cfg.Workers
			}
			return runDetect(cmd.Context(), a.log, args, p, workers, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Preset, "preset", scanner.PresetClassic, "parameter preset: classic or aggressive")
	f.Float64Var(&opts.Threshold1, "threshold1", 75, "low Canny threshold")
	f.Float64Var(&opts.Threshold2, "threshold2", 200, "high Canny threshold")
	f.IntVar(&opts.MorphKernel, "morph-kernel", 5, "morphology kernel size")
	f.IntVar(&opts.ResizeWidth, "resize-width", 600, "working resolution")
	f.Float64Var(&opts.FilterDist, "filter-dist", 20, "minimum distance between candidate centroids")
	f.StringVar(&opts.Containment, "containment", "", "nested-candidate test: polygon or bbox (default from preset)")
	f.StringVar(&opts.Backend, "backend", "", "contour backend (default from DOCSCAN_BACKEND)")
	f.IntVarP(&opts.Workers, "workers", "w", 0, "parallel workers (default from DOCSCAN_WORKERS)")
	f.StringVar(&opts.OverlayDir, "overlay-dir", "", "write candidate overlays as JPEG into this directory")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

// detectParams starts from the preset and applies only the flags the user
// set explicitly.
func detectParams(cmd *cobra.Command, a *app, opts detectOptions) (scanner.Params, error) {
	p, err := scanner.Preset(opts.Preset)
	if err != nil {
		return p, err
	}
	p.Backend = a.cfg.Backend

	f := cmd.Flags()
	if f.Changed("threshold1") {
		p.Threshold1 = opts.Threshold1
	}
	if f.Changed("threshold2") {
		p.Threshold2 = opts.Threshold2
	}
	if f.Changed("morph-kernel") {
		p.MorphKernel = opts.MorphKernel
	}
	if f.Changed("resize-width") {
		p.ResizeWidth = opts.ResizeWidth
	}
	if f.Changed("filter-dist") {
		p.FilterDist = opts.FilterDist
	}
	if opts.Containment != "" {
		p.Containment = detection.Containment(opts.Containment)
	}
	if opts.Backend != "" {
		p.Backend = opts.Backend
	}
	return p, p.Validate()
}

// runDetect processes files with a pool of workers. Results are written as
// they complete; the error reports how many files failed.
func runDetect(ctx context.Context, log logrus.FieldLogger, files []string, p scanner.Params,
	workers int, opts detectOptions, stdout, stderr io.Writer) error {

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("detecting"),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(!opts.Quiet),
	)

	tasks := make(chan string, workers)
	results := make(chan detectLine, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				results <- detectFile(file, p, opts.OverlayDir)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, file := range files {
			select {
			case tasks <- file:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	enc := json.NewEncoder(stdout)
	var writeErr error
	done, failed := 0, 0
	for res := range results {
		done++
		if res.Error != "" {
			failed++
			log.WithFields(logrus.Fields{"file": res.File, "error": res.Error}).Warn("detect failed")
		}
		// Keep draining so workers can exit.
		if writeErr == nil {
			writeErr = enc.Encode(res)
		}
		bar.Add(1)
	}
	bar.Finish()

	if writeErr != nil {
		return fmt.Errorf("failed to write result: %w", writeErr)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted after %d of %d files: %w", done, len(files), err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func detectFile(file string, p scanner.Params, overlayDir string) detectLine {
	line := detectLine{File: file, Candidates: [][][2]float64{}}

	img, err := imaging.LoadFile(file)
	if err != nil {
		line.Error = err.Error()
		return line
	}
	b := img.Bounds()
	line.Width, line.Height = b.Dx(), b.Dy()

	res, err := scanner.Detect(img, p)
	if err != nil {
		line.Error = err.Error()
		return line
	}
	for _, q := range res.Candidates {
		line.Candidates = append(line.Candidates, q.Pairs())
	}

	if overlayDir != "" {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		line.Overlay = filepath.Join(overlayDir, base+".overlay.jpg")
		if err := imaging.SaveFile(res.Overlay(), line.Overlay); err != nil {
			line.Error = err.Error()
			line.Overlay = ""
		}
	}
	return line
}
