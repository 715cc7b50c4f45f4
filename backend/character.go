package backend

import "github.com/go-gl/mathgl/mgl32"

// GroundState is the native classification of the support under a character.
type GroundState uint8

const (
	// GroundStateOnGround means the character is standing on walkable ground.
	GroundStateOnGround GroundState = iota
	// GroundStateOnSteepGround means the character touches ground that is too steep to stand on.
	GroundStateOnSteepGround
	// GroundStateNotSupported means the character touches an object but is not supported by it.
	GroundStateNotSupported
	// GroundStateInAir means the character touches nothing.
	GroundStateInAir
)

// String ...
func (s GroundState) String() string {
	switch s {
	case GroundStateOnGround:
		return "OnGround"
	case GroundStateOnSteepGround:
		return "OnSteepGround"
	case GroundStateNotSupported:
		return "NotSupported"
	case GroundStateInAir:
		return "InAir"
	}
	return "Unknown"
}

// ExtendedUpdateSettings holds the step assistance parameters of a native extended update.
type ExtendedUpdateSettings struct {
	// StickToFloorStepDown is the vector the character is cast along to stay attached to the floor. A
	// zero vector disables floor sticking.
	StickToFloorStepDown mgl32.Vec3
	// WalkStairsStepUp is the vector the character is cast along to walk up stairs. A zero vector
	// disables stair walking.
	WalkStairsStepUp mgl32.Vec3

	WalkStairsMinStepForward         float32
	WalkStairsStepForwardTest        float32
	WalkStairsCosAngleForwardContact float32
	WalkStairsStepDownExtra          mgl32.Vec3
}

// CharacterContactSettings is the native, mutable response record of a character contact.
type CharacterContactSettings struct {
	CanPushCharacter   bool
	CanReceiveImpulses bool
}

// CharacterContactListener receives the native callbacks raised by a Character during ExtendedUpdate.
type CharacterContactListener interface {
	OnCharacterContactValidate(body BodyID) bool
	OnCharacterContactAdded(body BodyID, position, normal mgl32.Vec3, settings *CharacterContactSettings)
	OnAdjustBodyVelocity(body BodyID, linear, angular *mgl32.Vec3)
}

// Character is the native character resolution primitive. All ground queries report the state resolved
// by the previous ExtendedUpdate.
type Character interface {
	Position() mgl32.Vec3
	SetUp(up mgl32.Vec3)
	SetRotation(rot mgl32.Quat)

	GetGroundState() GroundState
	GetGroundVelocity() mgl32.Vec3
	GetGroundNormal() mgl32.Vec3
	IsSupported() bool
	IsSlopeTooSteep(normal mgl32.Vec3) bool

	GetLinearVelocity() mgl32.Vec3
	SetLinearVelocity(v mgl32.Vec3)

	// ExtendedUpdate integrates the linear velocity over delta, resolving penetration and applying the
	// step assistance in settings.
	ExtendedUpdate(delta float32, gravity mgl32.Vec3, settings ExtendedUpdateSettings, filters Filters)

	// SetListener installs the listener receiving the contact callbacks of ExtendedUpdate.
	SetListener(l CharacterContactListener)
	// InnerBodyID returns the id of the body following the character, or InvalidBodyID.
	InnerBodyID() BodyID
}
