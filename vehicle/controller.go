// Package vehicle pushes driver input into native vehicle constraints before every sub-step.
package vehicle

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
)

// Input is the driver input of a vehicle.
type Input struct {
	// Forward is the throttle in [-1, 1]. Negative values drive backwards.
	Forward float32
	// Right is the steering in [-1, 1]. Negative values steer left.
	Right float32
	// Brake is the brake pressure in [0, 1].
	Brake float32
	// HandBrake is the hand brake pressure in [0, 1].
	HandBrake float32
}

// clamped returns the input with every axis clamped to its range.
func (in Input) clamped() Input {
	return Input{
		Forward:   mgl32.Clamp(in.Forward, -1, 1),
		Right:     mgl32.Clamp(in.Right, -1, 1),
		Brake:     mgl32.Clamp(in.Brake, 0, 1),
		HandBrake: mgl32.Clamp(in.HandBrake, 0, 1),
	}
}

// InputHandler provides the driver input of a vehicle.
type InputHandler interface {
	Input() Input
}

// InputFunc adapts a function to an InputHandler.
type InputFunc func() Input

// Input ...
func (f InputFunc) Input() Input {
	return f()
}

// Controller is a step.Participant driving a backend.VehicleConstraint.
type Controller struct {
	constraint backend.VehicleConstraint
	bodies     backend.Bodies

	input InputHandler
	last  Input
}

// New returns a Controller for constraint. bodies is used to wake the vehicle body up when input is
// given and may be nil.
func New(constraint backend.VehicleConstraint, bodies backend.Bodies) *Controller {
	return &Controller{constraint: constraint, bodies: bodies}
}

// Constraint returns the native vehicle constraint of the controller.
func (c *Controller) Constraint() backend.VehicleConstraint {
	return c.constraint
}

// SetInputHandler sets the handler providing the driver input. A controller without a handler leaves
// the constraint untouched.
func (c *Controller) SetInputHandler(h InputHandler) {
	c.input = h
}

// InputHandler ...
func (c *Controller) InputHandler() InputHandler {
	return c.input
}

// LastInput returns the clamped input pushed in the most recent sub-step.
func (c *Controller) LastInput() Input {
	return c.last
}

// PreStep pushes the current driver input into the constraint.
func (c *Controller) PreStep(float64) {
	if c.input == nil {
		return
	}
	in := c.input.Input().clamped()
	if in != (Input{}) && c.bodies != nil {
		c.bodies.ActivateBody(c.constraint.Body())
	}
	c.constraint.SetDriverInput(in.Forward, in.Right, in.Brake, in.HandBrake)
	c.last = in
}
