// Package pose estimates how a photographed page is tilted relative to the
// camera.
//
// The camera is an uncalibrated pinhole: focal length equal to the image
// width and principal point at the image centre, no lens distortion. The
// page is modelled as an A4 sheet (210 x 297 mm) lying in the z = 0 plane.
//
// Given the four canonical page corners in the photo, SolvePnP recovers the
// rotation and translation of the page, and Estimate reports the rotation
// as pitch, yaw and roll in degrees (rotation about x, y and z, extracted
// from R = Rz·Ry·Rx).
//
// The result is advisory. Estimate never fails: degenerate corners or a
// numerical breakdown produce the zero pose.
package pose
