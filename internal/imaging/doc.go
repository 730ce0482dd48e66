// Package imaging provides the pixel-level operations behind document
// detection and rectification.
//
// This package implements the raster stages of the scanner: decoding and
// encoding (including base64 data URLs), resolution normalization, grayscale
// conversion and Gaussian smoothing, Canny edge detection, binary morphology,
// perspective warping and a diagnostic overlay of detected candidates.
// Every function returns a new image; inputs are never modified in place.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Pipeline
//
// Detection uses the stages in this order:
//
//  1. Normalize: resize so the width (or height) equals the working size
//  2. Grayscale: BT.601 luminance
//  3. GaussianBlur: fixed 5x5 kernel
//  4. Canny: binary edge map
//  5. Close or DilateN: bridge broken edge segments into closed loops
//
// # Libraries
//
// Resizing, decoding and encoding use disintegration/imaging. Grayscale,
// convolution and morphology use anthonynsimon/bild. Extra input formats
// (BMP, TIFF, WebP) are registered from golang.org/x/image.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package imaging
