// Package ocr reads the text of a rectified page using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It is only
// used when a caller asks for text alongside a warp; detection and
// rectification never depend on it.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A custom traineddata directory can be passed through Options.TessdataPrefix.
//
// # Error Handling
//
// ExtractText returns errors for an empty image, an unknown language and
// Tesseract initialization failures. If word bounding boxes cannot be
// extracted, the full text is still returned with an empty Regions slice.
package ocr
