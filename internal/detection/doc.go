// Package detection finds candidate document boundaries in an image.
//
// This package implements the contour side of the scanner: turning an image
// into a closed edge map, tracing the borders in that map, keeping the
// borders that look like a page, and pruning nested or duplicated
// candidates.
//
// # Pipeline
//
// A detection pass runs three stages:
//
//  1. Extraction: an Extractor normalizes the image to a working size,
//     finds edges and joins them with morphology, then traces every border
//     (outer and hole alike, no hierarchy) with simple chain compression.
//  2. Quad filtering: FilterQuads keeps contours whose area falls inside a
//     fraction band of the working image, whose Douglas-Peucker
//     approximation has exactly four vertices, and which are convex.
//     Corners are rescaled to original image coordinates.
//  3. Suppression: Suppress visits candidates from largest to smallest and
//     drops any candidate nested in, or too close to, one already kept.
//
// # Backends
//
// Extractors are registered by name. The "native" backend is pure Go and
// always present. Building with the gocv tag adds an "opencv" backend that
// runs the same stages through OpenCV:
//
//	go build -tags gocv ./...
//
// # Coordinate System
//
// Contours are in working-resolution pixel coordinates; quads returned by
// FilterQuads and Suppress are in original image coordinates. The origin is
// the top-left corner with y growing downward.
//
// # Failure Handling
//
// Contours that cannot be analysed (too few points, degenerate or
// non-finite geometry) are skipped rather than failing the pass. An image
// without any acceptable contour yields an empty candidate list.
package detection
