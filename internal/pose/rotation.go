package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// gimbalEps is the threshold on sqrt(R00² + R10²) below which the Euler
// decomposition is singular.
const gimbalEps = 1e-6

// Rodrigues converts a rotation vector (axis scaled by angle in radians) to
// a 3x3 rotation matrix.
func Rodrigues(rvec [3]float64) *mat.Dense {
	theta := math.Sqrt(rvec[0]*rvec[0] + rvec[1]*rvec[1] + rvec[2]*rvec[2])
	r := mat.NewDense(3, 3, nil)
	if theta < 1e-12 {
		r.Copy(identity())
		return r
	}

	kx, ky, kz := rvec[0]/theta, rvec[1]/theta, rvec[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	v := 1 - c

	r.Set(0, 0, c+kx*kx*v)
	r.Set(0, 1, kx*ky*v-kz*s)
	r.Set(0, 2, kx*kz*v+ky*s)
	r.Set(1, 0, ky*kx*v+kz*s)
	r.Set(1, 1, c+ky*ky*v)
	r.Set(1, 2, ky*kz*v-kx*s)
	r.Set(2, 0, kz*kx*v-ky*s)
	r.Set(2, 1, kz*ky*v+kx*s)
	r.Set(2, 2, c+kz*kz*v)
	return r
}

// RotationVector is the inverse of Rodrigues: it returns the rotation
// vector of a rotation matrix.
func RotationVector(r mat.Matrix) [3]float64 {
	tr := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
	cosT := math.Max(-1, math.Min(1, (tr-1)/2))
	theta := math.Acos(cosT)

	if theta < 1e-12 {
		return [3]float64{}
	}

	if math.Pi-theta < 1e-6 {
		// Near 180 degrees the antisymmetric part vanishes; read the axis
		// from the diagonal instead.
		ax := math.Sqrt(math.Max(0, (r.At(0, 0)+1)/2))
		ay := math.Sqrt(math.Max(0, (r.At(1, 1)+1)/2))
		az := math.Sqrt(math.Max(0, (r.At(2, 2)+1)/2))
		switch {
		case ax >= ay && ax >= az:
			ay = math.Copysign(ay, r.At(0, 1))
			az = math.Copysign(az, r.At(0, 2))
		case ay >= az:
			ax = math.Copysign(ax, r.At(0, 1))
			az = math.Copysign(az, r.At(1, 2))
		default:
			ax = math.Copysign(ax, r.At(0, 2))
			ay = math.Copysign(ay, r.At(1, 2))
		}
		n := math.Sqrt(ax*ax + ay*ay + az*az)
		return [3]float64{theta * ax / n, theta * ay / n, theta * az / n}
	}

	k := theta / (2 * math.Sin(theta))
	return [3]float64{
		k * (r.At(2, 1) - r.At(1, 2)),
		k * (r.At(0, 2) - r.At(2, 0)),
		k * (r.At(1, 0) - r.At(0, 1)),
	}
}

// RotationToEuler decomposes a rotation matrix R = Rz·Ry·Rx into rotations
// about the x, y and z axes, in radians.
//
// When sqrt(R00² + R10²) is below 1e-6 the decomposition is singular
// (y is ±90 degrees); the z rotation is then reported as 0 and the whole
// remaining rotation is attributed to x.
func RotationToEuler(r mat.Matrix) (x, y, z float64) {
	sy := math.Hypot(r.At(0, 0), r.At(1, 0))
	if sy >= gimbalEps {
		x = math.Atan2(r.At(2, 1), r.At(2, 2))
		y = math.Atan2(-r.At(2, 0), sy)
		z = math.Atan2(r.At(1, 0), r.At(0, 0))
		return x, y, z
	}
	x = math.Atan2(-r.At(1, 2), r.At(1, 1))
	y = math.Atan2(-r.At(2, 0), sy)
	return x, y, 0
}

// orthonormalize returns the rotation matrix closest to m in the Frobenius
// norm.
func orthonormalize(m mat.Matrix) (*mat.Dense, bool) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return nil, false
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	r := mat.NewDense(3, 3, nil)
	r.Mul(&u, v.T())
	if mat.Det(r) < 0 {
		// Reflection: flip the axis of the smallest singular value.
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		r.Mul(&u, v.T())
	}
	return r, true
}

func identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
