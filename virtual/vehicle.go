package virtual

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
)

// Vehicle is a crude vehicle constraint accelerating its body along the body's forward axis (+Z).
type Vehicle struct {
	body *Body

	// Acceleration is the acceleration in m/s² at full throttle.
	Acceleration float32
	// TurnRate is the turn rate in rad/s at full steering.
	TurnRate float32
	// BrakeRate is the fraction of horizontal speed removed per second at full brake.
	BrakeRate float32

	forward, right, brake, handBrake float32
}

// Compile time check to make sure Vehicle implements backend.VehicleConstraint.
var _ backend.VehicleConstraint = (*Vehicle)(nil)

// CreateVehicle attaches a vehicle constraint to body. The constraint is applied before bodies move in
// every step.
func (w *World) CreateVehicle(body *Body) *Vehicle {
	v := &Vehicle{body: body, Acceleration: 8, TurnRate: 1.5, BrakeRate: 4}
	w.vehicles = append(w.vehicles, v)
	return v
}

// Body ...
func (v *Vehicle) Body() backend.BodyID {
	return v.body.id
}

// SetDriverInput ...
func (v *Vehicle) SetDriverInput(forward, right, brake, handBrake float32) {
	v.forward, v.right, v.brake, v.handBrake = forward, right, brake, handBrake
}

// DriverInput returns the most recent driver input.
func (v *Vehicle) DriverInput() (forward, right, brake, handBrake float32) {
	return v.forward, v.right, v.brake, v.handBrake
}

func (v *Vehicle) apply(dt float32) {
	b := v.body
	if b.asleep {
		return
	}
	if v.right != 0 {
		b.rotation = b.rotation.Mul(mgl32.QuatRotate(-v.right*v.TurnRate*dt, mgl32.Vec3{0, 1, 0})).Normalize()
	}
	forward := b.rotation.Rotate(mgl32.Vec3{0, 0, 1})
	b.linear = b.linear.Add(forward.Mul(v.forward * v.Acceleration * dt))

	if keep := 1 - math32.Min(1, (v.brake+v.handBrake)*v.BrakeRate*dt); keep < 1 {
		b.linear[0] *= keep
		b.linear[2] *= keep
	}
}
