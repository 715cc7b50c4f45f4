package omath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the threshold under which a float32 length is treated as zero.
const Epsilon = 1e-6

// BaseUp is the up axis of the base (unrotated) frame.
var BaseUp = mgl32.Vec3{0, 1, 0}

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Vec3ApproxEq determines whether every component of the two vectors is within the threshold passed.
func Vec3ApproxEq(a, b mgl32.Vec3, threshold float32) bool {
	return math32.Abs(a[0]-b[0]) <= threshold &&
		math32.Abs(a[1]-b[1]) <= threshold &&
		math32.Abs(a[2]-b[2]) <= threshold
}

// IsNearZero returns true if the length of the vector is below Epsilon.
func IsNearZero(v mgl32.Vec3) bool {
	return v.LenSqr() < Epsilon*Epsilon
}

// NormalizeOr returns the normalized vector, or fallback if v has no direction.
func NormalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if IsNearZero(v) {
		return fallback
	}
	return v.Normalize()
}

// UpRotation returns the rotation that aligns BaseUp with up. up is expected to be normalized.
func UpRotation(up mgl32.Vec3) mgl32.Quat {
	if Vec3ApproxEq(up, BaseUp, 1e-6) {
		return mgl32.QuatIdent()
	}
	if Vec3ApproxEq(up, BaseUp.Mul(-1), 1e-6) {
		// Any axis perpendicular to up works for a half turn; X keeps the result deterministic.
		return mgl32.QuatRotate(math32.Pi, mgl32.Vec3{1, 0, 0})
	}
	return mgl32.QuatBetweenVectors(BaseUp, up)
}

// Vertical returns the component of v along up. up is expected to be normalized.
func Vertical(v, up mgl32.Vec3) mgl32.Vec3 {
	return up.Mul(v.Dot(up))
}

// Horizontal returns the component of v perpendicular to up. up is expected to be normalized.
func Horizontal(v, up mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(Vertical(v, up))
}
