// Package gravity implements the gravity capability consumed by characters and bodies. Uniform and point
// source gravity are both Providers and are chosen per subject.
package gravity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/omath"
)

// Provider returns the gravity acting on a subject. com resolves the subject's current center of mass and
// is only called by providers that depend on position.
type Provider interface {
	Gravity(self backend.BodyID, com func() mgl32.Vec3) mgl32.Vec3
}

// Uniform is gravity with the same vector everywhere.
type Uniform struct {
	Vector mgl32.Vec3
}

// Earth returns uniform gravity of 9.81 m/s² along -Y.
func Earth() Uniform {
	return Uniform{Vector: mgl32.Vec3{0, -9.81, 0}}
}

// Gravity ...
func (u Uniform) Gravity(backend.BodyID, func() mgl32.Vec3) mgl32.Vec3 {
	return u.Vector
}

// Point is gravity pulling towards Center with a constant magnitude of Strength.
type Point struct {
	Center   mgl32.Vec3
	Strength float32
}

// Gravity returns zero gravity for a subject exactly at the center.
func (p Point) Gravity(_ backend.BodyID, com func() mgl32.Vec3) mgl32.Vec3 {
	if com == nil {
		return mgl32.Vec3{}
	}
	dir := p.Center.Sub(com())
	if omath.IsNearZero(dir) {
		return mgl32.Vec3{}
	}
	return dir.Normalize().Mul(p.Strength)
}

// Func adapts a function to a Provider.
type Func func(self backend.BodyID, com func() mgl32.Vec3) mgl32.Vec3

// Gravity ...
func (f Func) Gravity(self backend.BodyID, com func() mgl32.Vec3) mgl32.Vec3 {
	return f(self, com)
}
