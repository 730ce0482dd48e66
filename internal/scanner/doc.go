// Package scanner exposes the two document-scanner operations: Detect, which
// proposes candidate page boundaries in a photo, and Warp, which flattens a
// chosen boundary into an upright rectangular image and optionally
// estimates the page tilt.
//
// All functions are pure: they take explicit inputs, keep no state between
// calls and never log. They are safe for concurrent use.
//
// # Parameters
//
// Detection is tuned through Params. DefaultParams is the classic pipeline
// (closing, 1%-98% area band, tolerance 0.02, point-in-polygon
// containment); Preset("aggressive") switches to repeated dilation, a
// 0.5%-90% band, tolerance 0.04 and bounding-box containment.
//
// # Errors
//
// Failures are classified with errors.Is against ErrDecode,
// ErrInvalidGeometry and ErrParameter. Contours that cannot be analysed are
// skipped silently and pose failures produce the zero pose.
//
// # Corner Order
//
// Warp accepts corners in any order and canonicalizes them to top-left,
// top-right, bottom-right, bottom-left. The default rule takes the extremes
// of x+y and y-x; the alternative sorts by x. The two rules can disagree
// for quads rotated near 45 degrees.
package scanner
