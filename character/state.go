package character

import "github.com/go-gl/mathgl/mgl32"

// GroundState is the ground classification of a character as seen by its controller.
type GroundState uint8

const (
	GroundStateOnGround GroundState = iota
	GroundStateRising
	GroundStateFalling
)

// String ...
func (s GroundState) String() string {
	switch s {
	case GroundStateOnGround:
		return "OnGround"
	case GroundStateRising:
		return "Rising"
	case GroundStateFalling:
		return "Falling"
	}
	return "Unknown"
}

// UserState is what the character is doing as a result of its input.
type UserState uint8

const (
	UserStateIdle UserState = iota
	UserStateMoving
	UserStateJumping
)

// String ...
func (s UserState) String() string {
	switch s {
	case UserStateIdle:
		return "Idle"
	case UserStateMoving:
		return "Moving"
	case UserStateJumping:
		return "Jumping"
	}
	return "Unknown"
}

// State is a snapshot of a character controller after its most recent tick.
type State struct {
	Position mgl32.Vec3
	Up       mgl32.Vec3
	Rotation mgl32.Quat

	// LinearVelocity is the velocity resolved by the backend in the most recent extended update.
	LinearVelocity mgl32.Vec3
	// DesiredVelocity is the smoothed input velocity in the base frame.
	DesiredVelocity mgl32.Vec3

	GroundState GroundState
	UserState   UserState

	// AllowSliding is true if the character may slide down slopes, which is the case while it is moved
	// or not controlled.
	AllowSliding bool
	// InputHonored is true if the input was applied in the most recent tick.
	InputHonored bool
}

// Input is the movement input of a character for a single tick.
type Input struct {
	// Direction is the horizontal movement direction in the base frame, where +Y is up. Its length
	// scales the speed.
	Direction mgl32.Vec3
	// Jump is true if the character should jump if it can.
	Jump bool
}

// InputHandler provides the input of a character. A controller without an InputHandler does not move
// its character.
type InputHandler interface {
	Input() Input
}

// InputFunc adapts a function to an InputHandler.
type InputFunc func() Input

// Input ...
func (f InputFunc) Input() Input {
	return f()
}
