// Package backend declares the collaborators physcore drives but does not implement: the native physics
// world, its body registry and the native character and vehicle primitives. A backend adapter implements
// these interfaces for one native engine version.
package backend

import "github.com/go-gl/mathgl/mgl32"

// BodyID is the stable integer identifying a native body. Ids are owned by the body registry and are only
// looked up by physcore, never created.
type BodyID uint32

// InvalidBodyID is returned by collaborators that have no body to report, such as a character without an
// inner body.
const InvalidBodyID BodyID = ^BodyID(0)

// World is the native physics world.
type World interface {
	// Step advances the native simulation by delta seconds. Contact callbacks fire synchronously from
	// within Step.
	Step(delta float64)
	// SetContactListener installs the listener that receives the native contact callbacks.
	SetContactListener(l ContactListener)
}

// Body is a read view of a native body used while dispatching contact events.
type Body interface {
	// ID returns the id of the body.
	ID() BodyID
	// Rotation returns the world space rotation of the body.
	Rotation() mgl32.Quat
	// CenterOfMass returns the world space center of mass of the body.
	CenterOfMass() mgl32.Vec3
	// LinearVelocity returns the linear velocity of the body's center of mass.
	LinearVelocity() mgl32.Vec3
	// AngularVelocity returns the angular velocity of the body.
	AngularVelocity() mgl32.Vec3
}

// Bodies is the body registry resolving native ids to bodies.
type Bodies interface {
	// Body resolves id. The second return value is false if the body no longer exists.
	Body(id BodyID) (Body, bool)
	// ActivateBody wakes the body up if it was sleeping.
	ActivateBody(id BodyID)
}

// LayerFilter decides which object layers a query may interact with.
type LayerFilter interface {
	ShouldCollide(layer uint16) bool
}

// BodyFilter decides which bodies a query may interact with.
type BodyFilter interface {
	ShouldCollide(id BodyID) bool
}

// Filters is the set of broad and narrow phase filters passed to the native character update. The values
// are opaque to physcore.
type Filters struct {
	BroadPhase LayerFilter
	Object     LayerFilter
	Body       BodyFilter
}

// FilterProvider creates the default filters for an object layer.
type FilterProvider interface {
	Filters(layer uint16) Filters
}
