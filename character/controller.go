// Package character converts per tick input and ground state into the velocity of a native character and
// drives its extended update.
package character

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/gravity"
	"github.com/oomph-ac/physcore/omath"
)

// movingTowardsGroundThreshold is the relative vertical speed below which a character is considered to
// move towards the ground.
const movingTowardsGroundThreshold = 0.1

// Controller moves a backend.Character every sub-step. It is a step.FrameParticipant.
type Controller struct {
	char     backend.Character
	gravity  gravity.Provider
	filters  backend.FilterProvider
	settings Settings
	log      *slog.Logger

	input    InputHandler
	state    State
	contacts *ContactRouter
	closed   bool
}

// New returns a Controller for char. The controller installs its ContactRouter as the listener of char.
// A nil gravity provider is treated as uniform earth gravity and a nil filter provider passes empty
// filters to the extended update.
func New(char backend.Character, gp gravity.Provider, s Settings, filters backend.FilterProvider, log *slog.Logger) *Controller {
	if gp == nil {
		gp = gravity.Earth()
	}
	if log == nil {
		log = slog.Default()
	}
	up := omath.BaseUp
	if s.UpAxis != nil {
		up = omath.NormalizeOr(*s.UpAxis, omath.BaseUp)
	}
	c := &Controller{
		char:     char,
		gravity:  gp,
		filters:  filters,
		settings: s,
		log:      log,
		contacts: newContactRouter(char.InnerBodyID(), log),
		state: State{
			Position: char.Position(),
			Up:       up,
			Rotation: omath.UpRotation(up),
		},
	}
	char.SetListener(c.contacts)
	return c
}

// Character returns the native character moved by the controller.
func (c *Controller) Character() backend.Character {
	return c.char
}

// Contacts returns the router dispatching the contact events of the character.
func (c *Controller) Contacts() *ContactRouter {
	return c.contacts
}

// Settings returns the settings of the controller.
func (c *Controller) Settings() Settings {
	return c.settings
}

// SetSettings replaces the settings of the controller. They are used from the next tick.
func (c *Controller) SetSettings(s Settings) {
	c.settings = s
}

// SetInputHandler sets the handler providing the input of the character. Passing nil stops the
// controller from moving the character.
func (c *Controller) SetInputHandler(h InputHandler) {
	c.input = h
}

// InputHandler returns the current input handler, or nil if none is set.
func (c *Controller) InputHandler() InputHandler {
	return c.input
}

// State returns the state of the controller after its most recent tick.
func (c *Controller) State() State {
	return c.state
}

// Close detaches the controller from its character. A closed controller ignores further ticks.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.input = nil
	c.char.SetListener(nil)
	return nil
}

// BeginFrame snapshots the contact subscriptions used during the frame.
func (c *Controller) BeginFrame() {
	c.contacts.BeginStep()
}

// PreStep computes the velocity of the character for a sub-step of delta seconds and runs the extended
// update of the backend with it.
func (c *Controller) PreStep(delta float64) {
	if c.closed || c.input == nil {
		return
	}
	var (
		in = c.input.Input()
		dt = float32(delta)
		s  = c.settings
	)

	// Input is applied based on the support resolved in the previous tick.
	honored := s.ControlDuringJump || c.char.IsSupported()
	c.state.InputHonored = honored
	if honored {
		raw := in.Direction.Mul(s.CharacterSpeed)
		if s.Inertia {
			c.state.DesiredVelocity = c.state.DesiredVelocity.Mul(0.75).Add(raw.Mul(0.25))
		} else {
			c.state.DesiredVelocity = raw
		}
		c.state.AllowSliding = !omath.IsNearZero(raw)
	} else {
		c.state.AllowSliding = true
	}

	g := c.gravity.Gravity(c.char.InnerBodyID(), c.char.Position)
	up := c.state.Up
	if s.UpAxis != nil {
		up = omath.NormalizeOr(*s.UpAxis, omath.BaseUp)
	} else if !omath.IsNearZero(g) {
		up = g.Mul(-1).Normalize()
	}
	rot := omath.UpRotation(up)
	c.char.SetUp(up)
	c.char.SetRotation(rot)

	var (
		groundVelocity = c.char.GetGroundVelocity()
		current        = c.char.GetLinearVelocity()
		grounded       = c.char.GetGroundState() == backend.GroundStateOnGround
		normal         = c.char.GetGroundNormal()
	)
	towardsGround := current.Dot(up)-groundVelocity.Dot(up) < movingTowardsGroundThreshold

	switch {
	case grounded:
		c.state.GroundState = GroundStateOnGround
		if omath.IsNearZero(c.state.DesiredVelocity) {
			c.state.UserState = UserStateIdle
		} else {
			c.state.UserState = UserStateMoving
		}
	case towardsGround:
		c.state.GroundState = GroundStateFalling
	default:
		c.state.GroundState = GroundStateRising
	}

	standing := !c.char.IsSlopeTooSteep(normal)
	if s.Inertia {
		standing = towardsGround
	}
	var velocity mgl32.Vec3
	if grounded && standing {
		velocity = groundVelocity
		if in.Jump && towardsGround {
			velocity = velocity.Add(up.Mul(s.JumpSpeed))
			c.state.UserState = UserStateJumping
		}
	} else {
		velocity = omath.Vertical(current, up)
	}

	// A derived up axis is already aligned with gravity.
	frameGravity := g
	if s.UpAxis != nil {
		frameGravity = rot.Rotate(g)
	}
	velocity = velocity.Add(frameGravity.Mul(dt))
	if honored {
		velocity = velocity.Add(rot.Rotate(c.state.DesiredVelocity))
	} else {
		velocity = velocity.Add(omath.Horizontal(current, up))
	}

	update := backend.ExtendedUpdateSettings{
		WalkStairsMinStepForward:         s.WalkStairsMinStepForward,
		WalkStairsStepForwardTest:        s.WalkStairsStepForwardTest,
		WalkStairsCosAngleForwardContact: s.WalkStairsCosAngleForwardContact,
		WalkStairsStepDownExtra:          s.WalkStairsStepDownExtra,
	}
	if s.StickToFloor {
		update.StickToFloorStepDown = up.Mul(-s.MaxStepDown)
	}
	if s.WalkStairs {
		update.WalkStairsStepUp = up.Mul(s.MaxStepUp)
	}

	var filters backend.Filters
	if c.filters != nil {
		filters = c.filters.Filters(s.Layer)
	}
	c.char.SetLinearVelocity(velocity)
	c.char.ExtendedUpdate(dt, frameGravity, update, filters)

	c.state.Up = up
	c.state.Rotation = rot
	c.state.Position = c.char.Position()
	c.state.LinearVelocity = c.char.GetLinearVelocity()
}
