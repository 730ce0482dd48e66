// Package geometry provides the planar primitives used by document detection
// and rectification.
//
// Points are golang/geo r2.Point values in image pixel space. All functions are
// pure and operate on explicit inputs, so they are safe for concurrent use.
//
// # Coordinate System
//
//   - Origin (0, 0) at the top-left corner of the image
//   - X increases rightward
//   - Y increases downward
//
// Because Y points down, a polygon that looks clockwise on screen has a
// positive signed area.
//
// # Corner Ordering
//
// Rectification needs the four corners of a quadrilateral in the canonical
// order top-left, top-right, bottom-right, bottom-left. Two rules are provided:
//
//   - SumDiff (default): top-left has the smallest x+y, bottom-right the
//     largest x+y, top-right the smallest y-x, bottom-left the largest y-x.
//     Robust to rotations up to 45 degrees either way.
//   - XSort: the two points with the smallest x form the left pair, the other
//     two the right pair, and each pair is ordered by y. Assumes the quad is
//     close to axis-aligned.
//
// The two rules can disagree for quads rotated close to 45 degrees. Neither
// is wrong; callers pick one with CornerRule.
package geometry
