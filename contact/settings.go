package contact

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
)

// Settings is the contact response of one contact added or persisted event, as seen by one of the two
// bodies. Fields suffixed 1 belong to the receiving body, fields suffixed 2 to the other body. The
// surface velocities are local to the receiving body: a listener that sets them describes the motion of
// its own surface, such as a conveyor belt.
type Settings struct {
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

// FromNative copies the native settings record into a Settings value. A nil record yields the neutral
// response: no scaling of mass or inertia and no surface velocity.
func FromNative(raw *backend.ContactSettings) Settings {
	if raw == nil {
		return Settings{InvMassScale1: 1, InvInertiaScale1: 1, InvMassScale2: 1, InvInertiaScale2: 1}
	}
	return Settings{
		CombinedFriction:               raw.CombinedFriction,
		CombinedRestitution:            raw.CombinedRestitution,
		InvMassScale1:                  raw.InvMassScale1,
		InvInertiaScale1:               raw.InvInertiaScale1,
		InvMassScale2:                  raw.InvMassScale2,
		InvInertiaScale2:               raw.InvInertiaScale2,
		IsSensor:                       raw.IsSensor,
		RelativeLinearSurfaceVelocity:  raw.RelativeLinearSurfaceVelocity,
		RelativeAngularSurfaceVelocity: raw.RelativeAngularSurfaceVelocity,
	}
}

// ToNative writes s back into the native settings record. It is a no-op for a nil record.
func (s Settings) ToNative(raw *backend.ContactSettings) {
	if raw == nil {
		return
	}
	raw.CombinedFriction = s.CombinedFriction
	raw.CombinedRestitution = s.CombinedRestitution
	raw.InvMassScale1 = s.InvMassScale1
	raw.InvInertiaScale1 = s.InvInertiaScale1
	raw.InvMassScale2 = s.InvMassScale2
	raw.InvInertiaScale2 = s.InvInertiaScale2
	raw.IsSensor = s.IsSensor
	raw.RelativeLinearSurfaceVelocity = s.RelativeLinearSurfaceVelocity
	raw.RelativeAngularSurfaceVelocity = s.RelativeAngularSurfaceVelocity
}

// Reversed returns the settings as seen from the other body: every 1 field is swapped with its 2
// counterpart. Shared fields are kept. Reversed is its own inverse.
func (s Settings) Reversed() Settings {
	s.InvMassScale1, s.InvMassScale2 = s.InvMassScale2, s.InvMassScale1
	s.InvInertiaScale1, s.InvInertiaScale2 = s.InvInertiaScale2, s.InvInertiaScale1
	return s
}

// scalarField is a non-vector field of Settings that only one listener per event may decide.
type scalarField struct {
	name string
	ptr  func(s *Settings) *float32
}

var scalarFields = [...]scalarField{
	{"CombinedFriction", func(s *Settings) *float32 { return &s.CombinedFriction }},
	{"CombinedRestitution", func(s *Settings) *float32 { return &s.CombinedRestitution }},
	{"InvMassScale1", func(s *Settings) *float32 { return &s.InvMassScale1 }},
	{"InvInertiaScale1", func(s *Settings) *float32 { return &s.InvInertiaScale1 }},
	{"InvMassScale2", func(s *Settings) *float32 { return &s.InvMassScale2 }},
	{"InvInertiaScale2", func(s *Settings) *float32 { return &s.InvInertiaScale2 }},
}
