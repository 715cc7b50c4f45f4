package virtual

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
)

// MotionType is how a body is moved by the world.
type MotionType uint8

const (
	// MotionStatic bodies never move.
	MotionStatic MotionType = iota
	// MotionKinematic bodies move with their velocity and are not affected by gravity or collisions.
	MotionKinematic
	// MotionDynamic bodies are affected by gravity and collide with other bodies.
	MotionDynamic
)

// BodySettings holds the settings a body is created with.
type BodySettings struct {
	Motion MotionType
	// Position is the centre of the body.
	Position mgl32.Vec3
	Rotation mgl32.Quat
	// HalfExtents are the half extents of the axis aligned box of the body. Rotation does not affect the
	// box.
	HalfExtents mgl32.Vec3
	Layer       uint16

	Friction    float32
	Restitution float32

	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3
}

// Body is a box shaped body of a World.
type Body struct {
	id          backend.BodyID
	motion      MotionType
	shape       cube.BBox
	layer       uint16
	friction    float32
	restitution float32

	position mgl32.Vec3
	rotation mgl32.Quat
	linear   mgl32.Vec3
	angular  mgl32.Vec3

	asleep    bool
	restSteps int
	// driven bodies are moved by a Character instead of the world.
	driven bool
}

// Compile time check to make sure Body implements backend.Body.
var _ backend.Body = (*Body)(nil)

func (b *Body) ID() backend.BodyID          { return b.id }
func (b *Body) Rotation() mgl32.Quat        { return b.rotation }
func (b *Body) CenterOfMass() mgl32.Vec3    { return b.position }
func (b *Body) LinearVelocity() mgl32.Vec3  { return b.linear }
func (b *Body) AngularVelocity() mgl32.Vec3 { return b.angular }
func (b *Body) Motion() MotionType          { return b.motion }
func (b *Body) Layer() uint16               { return b.layer }
func (b *Body) Position() mgl32.Vec3        { return b.position }
func (b *Body) Asleep() bool                { return b.asleep }

// SetPosition moves the centre of the body.
func (b *Body) SetPosition(pos mgl32.Vec3) {
	b.position = pos
}

// SetRotation sets the rotation of the body. It only affects surface velocities, not the collision box.
func (b *Body) SetRotation(rot mgl32.Quat) {
	b.rotation = rot
}

// SetLinearVelocity sets the velocity of the body and wakes it up.
func (b *Body) SetLinearVelocity(v mgl32.Vec3) {
	b.linear = v
	b.wake()
}

// SetAngularVelocity sets the angular velocity of the body. Angular velocity is reported but not
// integrated.
func (b *Body) SetAngularVelocity(v mgl32.Vec3) {
	b.angular = v
}

// Box returns the world space box of the body.
func (b *Body) Box() cube.BBox {
	return b.shape.Translate(b.position)
}

func (b *Body) wake() {
	b.asleep = false
	b.restSteps = 0
}
