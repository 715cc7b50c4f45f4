package backend

import "github.com/go-gl/mathgl/mgl32"

// ValidateResult is the answer to a contact validate callback.
type ValidateResult uint8

const (
	AcceptAllContactsForThisBodyPair ValidateResult = iota
	AcceptContact
	RejectContact
	RejectAllContactsForThisBodyPair
)

// String ...
func (r ValidateResult) String() string {
	switch r {
	case AcceptAllContactsForThisBodyPair:
		return "AcceptAllContactsForThisBodyPair"
	case AcceptContact:
		return "AcceptContact"
	case RejectContact:
		return "RejectContact"
	case RejectAllContactsForThisBodyPair:
		return "RejectAllContactsForThisBodyPair"
	}
	return "Unknown"
}

// ContactSettings is the native, mutable contact response record handed to contact added and persisted
// callbacks. Fields suffixed 1 belong to body1 of the pair, fields suffixed 2 to body2. Surface velocities
// are in world space: the surface velocity of body2 minus that of body1, with angular motion taken about
// the centre of mass of body1.
type ContactSettings struct {
	CombinedFriction    float32
	CombinedRestitution float32

	InvMassScale1    float32
	InvInertiaScale1 float32
	InvMassScale2    float32
	InvInertiaScale2 float32

	IsSensor bool

	RelativeLinearSurfaceVelocity  mgl32.Vec3
	RelativeAngularSurfaceVelocity mgl32.Vec3
}

// ContactListener receives the native contact callbacks of a World. Body pairs are delivered in the
// native order, which carries no meaning.
type ContactListener interface {
	OnContactValidate(body1, body2 BodyID) ValidateResult
	OnContactAdded(body1, body2 BodyID, settings *ContactSettings)
	OnContactPersisted(body1, body2 BodyID, settings *ContactSettings)
	OnContactRemoved(body1, body2 BodyID)
}
