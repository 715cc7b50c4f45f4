// Package virtual is an in-memory backend made of axis aligned boxes. It implements the backend
// interfaces closely enough to drive physcore without a native engine, and is used by tests and the
// sandbox. It is not a physics engine: collision is resolved along the world axes only, rotations do not
// affect shapes and characters assume +Y as up.
package virtual

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/assert"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/gravity"
	"github.com/oomph-ac/physcore/omath"
	"github.com/oomph-ac/physcore/utils"
)

const (
	// contactSlop is the distance at which two boxes are considered touching.
	contactSlop = 0.01
	// sleepSteps is the amount of steps a dynamic body must rest before it falls asleep.
	sleepSteps = 30
	// sleepSpeed is the speed below which a dynamic body is considered resting.
	sleepSpeed = 1e-3
)

type pairKey struct {
	body1, body2 backend.BodyID
}

// World is a world of box shaped bodies.
type World struct {
	log     *slog.Logger
	gravity gravity.Provider
	layers  *Layers

	lastID   backend.BodyID
	bodies   *orderedmap.OrderedMap[backend.BodyID, *Body]
	vehicles []*Vehicle

	listener backend.ContactListener
	contacts map[pairKey]backend.ContactSettings

	stepping bool
	steps    uint64
}

// Compile time checks to make sure World implements the backend world and body registry.
var (
	_ backend.World  = (*World)(nil)
	_ backend.Bodies = (*World)(nil)
)

// NewWorld returns an empty world. A nil gravity provider is uniform earth gravity and nil layers let
// every layer collide with every other layer.
func NewWorld(gp gravity.Provider, layers *Layers, log *slog.Logger) *World {
	if gp == nil {
		gp = gravity.Earth()
	}
	if log == nil {
		log = slog.Default()
	}
	return &World{
		log:      log,
		gravity:  gp,
		layers:   layers,
		bodies:   orderedmap.NewOrderedMap[backend.BodyID, *Body](),
		contacts: make(map[pairKey]backend.ContactSettings),
	}
}

// Layers returns the layer table of the world. It may be nil.
func (w *World) Layers() *Layers {
	return w.layers
}

// CreateBody adds a body to the world and returns it.
func (w *World) CreateBody(s BodySettings) *Body {
	w.lastID++
	if s.Rotation == (mgl32.Quat{}) {
		s.Rotation = mgl32.QuatIdent()
	}
	b := &Body{
		id:          w.lastID,
		motion:      s.Motion,
		shape:       utils.BoxFromHalfExtents(s.HalfExtents),
		layer:       s.Layer,
		friction:    s.Friction,
		restitution: s.Restitution,
		position:    s.Position,
		rotation:    s.Rotation,
		linear:      s.LinearVelocity,
		angular:     s.AngularVelocity,
	}
	w.bodies.Set(b.id, b)
	w.log.Debug("body created", "id", b.id, "motion", b.motion, "layer", b.layer)
	return b
}

// RemoveBody removes a body from the world. Contacts of the body are reported as removed in the next step.
func (w *World) RemoveBody(id backend.BodyID) bool {
	return w.bodies.Delete(id)
}

// Body ...
func (w *World) Body(id backend.BodyID) (backend.Body, bool) {
	b, ok := w.bodies.Get(id)
	if !ok {
		return nil, false
	}
	return b, true
}

// VirtualBody returns the body with id.
func (w *World) VirtualBody(id backend.BodyID) (*Body, bool) {
	return w.bodies.Get(id)
}

// Len returns the amount of bodies in the world.
func (w *World) Len() int {
	return w.bodies.Len()
}

// ActivateBody wakes a sleeping body up.
func (w *World) ActivateBody(id backend.BodyID) {
	if b, ok := w.bodies.Get(id); ok {
		b.wake()
	}
}

// SetContactListener ...
func (w *World) SetContactListener(l backend.ContactListener) {
	w.listener = l
}

// Contact returns the settings of the contact between body1 and body2 as decided in the most recent step.
func (w *World) Contact(body1, body2 backend.BodyID) (backend.ContactSettings, bool) {
	s, ok := w.contacts[pairKey{body1, body2}]
	return s, ok
}

// Contacts returns the amount of touching pairs.
func (w *World) Contacts() int {
	return len(w.contacts)
}

// Steps returns the amount of steps simulated.
func (w *World) Steps() uint64 {
	return w.steps
}

// Step advances the world by delta seconds. Contact callbacks are called after all bodies moved.
func (w *World) Step(delta float64) {
	assert.IsFalse(w.stepping, "virtual world stepped from within its own step")
	w.stepping = true
	defer func() { w.stepping = false }()

	dt := float32(delta)
	for _, v := range w.vehicles {
		v.apply(dt)
	}
	for _, b := range w.list() {
		switch {
		case b.motion == MotionKinematic && !b.driven:
			b.position = b.position.Add(b.linear.Mul(dt))
		case b.motion == MotionDynamic:
			w.integrate(b, dt)
		}
	}
	w.updateContacts()
	w.steps++
}

// list returns the bodies in creation order.
func (w *World) list() []*Body {
	bodies := make([]*Body, 0, w.bodies.Len())
	for el := w.bodies.Front(); el != nil; el = el.Next() {
		bodies = append(bodies, el.Value)
	}
	return bodies
}

// integrate applies gravity to a dynamic body and moves it, resolving collisions one axis at a time.
func (w *World) integrate(b *Body, dt float32) {
	if b.asleep {
		return
	}
	b.linear = b.linear.Add(w.gravity.Gravity(b.id, b.CenterOfMass).Mul(dt))

	move := b.linear.Mul(dt)
	box := b.Box()
	colliders := w.colliders(b, box.Extend(move))

	resolved, collided := sweep(colliders, box, move)
	for i, hit := range collided {
		if hit {
			b.linear[i] = -b.linear[i] * b.restitution
		}
	}
	b.position = b.position.Add(resolved)

	if b.linear.Len() < sleepSpeed {
		b.restSteps++
		if b.restSteps >= sleepSteps {
			b.asleep = true
			b.linear = mgl32.Vec3{}
		}
		return
	}
	b.restSteps = 0
}

// sweep moves box by move one axis at a time, vertical first, clipping the movement against boxes. It
// returns the movement that could be made and which axes were blocked.
func sweep(boxes []cube.BBox, box cube.BBox, move mgl32.Vec3) (resolved mgl32.Vec3, collided [3]bool) {
	for _, axis := range [3]int{1, 0, 2} {
		var v mgl32.Vec3
		v[axis] = move[axis]
		for _, c := range boxes {
			v = utils.ClipCollide(c, box, v, false, nil)
		}
		box = box.Translate(v)
		resolved = resolved.Add(v)
	}
	for i := range 3 {
		collided[i] = math32.Abs(resolved[i]-move[i]) >= 1e-5
	}
	return resolved, collided
}

// colliders returns the boxes of all bodies other than b that may be hit by b within area.
func (w *World) colliders(b *Body, area cube.BBox) []cube.BBox {
	area = area.Grow(contactSlop)
	var boxes []cube.BBox
	for el := w.bodies.Front(); el != nil; el = el.Next() {
		o := el.Value
		if o == b || !w.layers.ShouldCollide(b.layer, o.layer) {
			continue
		}
		if box := o.Box(); box.IntersectsWith(area) {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// updateContacts finds all touching pairs and reports them to the contact listener.
func (w *World) updateContacts() {
	var (
		bodies  = w.list()
		current = make(map[pairKey]backend.ContactSettings, len(w.contacts))
	)
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			if a.motion != MotionDynamic && b.motion != MotionDynamic {
				continue
			}
			if !w.layers.ShouldCollide(a.layer, b.layer) || !a.Box().Grow(contactSlop).IntersectsWith(b.Box()) {
				continue
			}
			key := pairKey{a.id, b.id}
			settings := combine(a, b)
			if _, touching := w.contacts[key]; touching {
				if w.listener != nil {
					w.listener.OnContactPersisted(a.id, b.id, &settings)
				}
			} else if w.listener != nil {
				switch w.listener.OnContactValidate(a.id, b.id) {
				case backend.RejectContact, backend.RejectAllContactsForThisBodyPair:
					continue
				}
				w.listener.OnContactAdded(a.id, b.id, &settings)
			}
			current[key] = settings
			applySurfaceVelocity(a, b, settings)
		}
	}

	var removed []pairKey
	for key := range w.contacts {
		if _, ok := current[key]; !ok {
			removed = append(removed, key)
		}
	}
	slices.SortFunc(removed, func(a, b pairKey) int {
		if c := cmp.Compare(a.body1, b.body1); c != 0 {
			return c
		}
		return cmp.Compare(a.body2, b.body2)
	})
	w.contacts = current
	if w.listener == nil {
		return
	}
	for _, key := range removed {
		w.listener.OnContactRemoved(key.body1, key.body2)
	}
}

// combine returns the default response of a contact between a and b.
func combine(a, b *Body) backend.ContactSettings {
	return backend.ContactSettings{
		CombinedFriction:    math32.Sqrt(a.friction * b.friction),
		CombinedRestitution: math32.Max(a.restitution, b.restitution),
		InvMassScale1:       1,
		InvInertiaScale1:    1,
		InvMassScale2:       1,
		InvInertiaScale2:    1,
	}
}

// applySurfaceVelocity carries a dynamic body resting on the other body of a contact along with the
// relative surface velocity of the contact.
func applySurfaceVelocity(body1, body2 *Body, s backend.ContactSettings) {
	rel := s.RelativeLinearSurfaceVelocity
	if omath.IsNearZero(rel) || s.IsSensor {
		return
	}
	switch {
	case body2.motion == MotionDynamic && restsOn(body2, body1):
		carry(body2, body1.linear.Sub(rel))
	case body1.motion == MotionDynamic && restsOn(body1, body2):
		carry(body1, body2.linear.Add(rel))
	}
}

// restsOn returns true if the bottom of top touches the top of bottom.
func restsOn(top, bottom *Body) bool {
	return math32.Abs(top.Box().Min().Y()-bottom.Box().Max().Y()) <= contactSlop
}

func carry(b *Body, target mgl32.Vec3) {
	b.linear[0], b.linear[2] = target[0], target[2]
	b.wake()
}
