package virtual

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/oerror"
)

const dt = 1.0 / 60

type contactLog struct {
	added, persisted int
	removed          [][2]backend.BodyID
	validate         backend.ValidateResult
	onAdded          func(b1, b2 backend.BodyID, s *backend.ContactSettings)
}

func (l *contactLog) OnContactValidate(backend.BodyID, backend.BodyID) backend.ValidateResult {
	return l.validate
}

func (l *contactLog) OnContactAdded(b1, b2 backend.BodyID, s *backend.ContactSettings) {
	l.added++
	if l.onAdded != nil {
		l.onAdded(b1, b2, s)
	}
}

func (l *contactLog) OnContactPersisted(b1, b2 backend.BodyID, s *backend.ContactSettings) {
	l.persisted++
	if l.onAdded != nil {
		l.onAdded(b1, b2, s)
	}
}

func (l *contactLog) OnContactRemoved(b1, b2 backend.BodyID) {
	l.removed = append(l.removed, [2]backend.BodyID{b1, b2})
}

func newTestWorld() (*World, *Body) {
	w := NewWorld(nil, nil, nil)
	floor := w.CreateBody(BodySettings{
		Motion:      MotionStatic,
		Position:    mgl32.Vec3{0, -0.5, 0},
		HalfExtents: mgl32.Vec3{10, 0.5, 10},
		Friction:    0.5,
	})
	return w, floor
}

func dropBox(w *World, height float32) *Body {
	return w.CreateBody(BodySettings{
		Motion:      MotionDynamic,
		Position:    mgl32.Vec3{0, height, 0},
		HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5},
		Friction:    0.5,
	})
}

func stepFor(w *World, steps int) {
	for range steps {
		w.Step(dt)
	}
}

func TestBoxLandsOnFloor(t *testing.T) {
	w, floor := newTestWorld()
	box := dropBox(w, 2)
	l := &contactLog{}
	w.SetContactListener(l)
	stepFor(w, 120)

	if y := box.Position().Y(); y < 0.49 || y > 0.51 {
		t.Fatalf("expected box to rest on the floor, got y=%v", y)
	}
	if l.added != 1 || l.persisted == 0 {
		t.Fatalf("expected a single added contact followed by persisted ones, got %d added %d persisted", l.added, l.persisted)
	}
	s, ok := w.Contact(floor.ID(), box.ID())
	if !ok || s.CombinedFriction != 0.5 || s.InvMassScale1 != 1 {
		t.Fatalf("unexpected contact settings %+v (found %v)", s, ok)
	}
	if !box.Asleep() {
		t.Fatalf("expected resting box to fall asleep")
	}
	w.ActivateBody(box.ID())
	if box.Asleep() {
		t.Fatalf("expected box to be woken up")
	}
	if w.Steps() != 120 {
		t.Fatalf("expected 120 steps, got %d", w.Steps())
	}
}

func TestRemovedBodyReportsRemovedContact(t *testing.T) {
	w, floor := newTestWorld()
	box := dropBox(w, 0.5)
	l := &contactLog{}
	w.SetContactListener(l)
	w.Step(dt)
	if w.Contacts() != 1 {
		t.Fatalf("expected box to touch the floor")
	}

	w.RemoveBody(box.ID())
	w.Step(dt)
	if len(l.removed) != 1 || l.removed[0] != [2]backend.BodyID{floor.ID(), box.ID()} {
		t.Fatalf("unexpected removed contacts %v", l.removed)
	}
	if _, ok := w.Body(box.ID()); ok {
		t.Fatalf("expected removed body not to resolve")
	}
}

func TestRejectedContactIsNotReported(t *testing.T) {
	w, _ := newTestWorld()
	dropBox(w, 0.5)
	l := &contactLog{validate: backend.RejectAllContactsForThisBodyPair}
	w.SetContactListener(l)
	stepFor(w, 5)
	if l.added != 0 || w.Contacts() != 0 {
		t.Fatalf("expected rejected contact not to be added")
	}
}

func TestSurfaceVelocityCarriesBox(t *testing.T) {
	w, _ := newTestWorld()
	box := dropBox(w, 0.5)
	w.SetContactListener(&contactLog{onAdded: func(_, _ backend.BodyID, s *backend.ContactSettings) {
		// The floor is body1: its surface moving along +X is a negative relative velocity.
		s.RelativeLinearSurfaceVelocity = mgl32.Vec3{-1, 0, 0}
	}})
	stepFor(w, 60)
	if x := box.Position().X(); x < 0.9 {
		t.Fatalf("expected box to be carried along +X, got x=%v", x)
	}
}

func TestLayersDisableCollision(t *testing.T) {
	layers := NewLayers()
	layers.DisableCollision(1, 0)
	w := NewWorld(nil, layers, nil)
	w.CreateBody(BodySettings{Motion: MotionStatic, Position: mgl32.Vec3{0, -0.5, 0}, HalfExtents: mgl32.Vec3{10, 0.5, 10}, Layer: 1})
	box := w.CreateBody(BodySettings{Motion: MotionDynamic, Position: mgl32.Vec3{0, 1, 0}, HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}})
	stepFor(w, 60)
	if box.Position().Y() > -1 {
		t.Fatalf("expected box to fall through the floor, got y=%v", box.Position().Y())
	}
	if layers.Filters(0).Object.ShouldCollide(1) || !layers.Filters(0).Object.ShouldCollide(0) {
		t.Fatalf("unexpected layer filter results")
	}
	layers.EnableCollision(0, 1)
	if !layers.ShouldCollide(1, 0) {
		t.Fatalf("expected layers to collide again")
	}
}

func TestKinematicBodyMoves(t *testing.T) {
	w, _ := newTestWorld()
	platform := w.CreateBody(BodySettings{Motion: MotionKinematic, Position: mgl32.Vec3{0, 5, 0}, HalfExtents: mgl32.Vec3{1, 0.1, 1}})
	platform.SetLinearVelocity(mgl32.Vec3{0, 0, 6})
	stepFor(w, 30)
	if z := platform.Position().Z(); z < 2.99 || z > 3.01 {
		t.Fatalf("expected platform to move 3m, got z=%v", z)
	}
}

func TestVehicleAccelerates(t *testing.T) {
	w, _ := newTestWorld()
	body := dropBox(w, 0.5)
	v := w.CreateVehicle(body)
	v.SetDriverInput(1, 0, 0, 0)
	stepFor(w, 60)
	if z := body.LinearVelocity().Z(); z < 7 {
		t.Fatalf("expected vehicle to accelerate along +Z, got %v", z)
	}
	if f, _, _, _ := v.DriverInput(); f != 1 {
		t.Fatalf("expected driver input to be kept")
	}

	v.SetDriverInput(0, 0, 1, 0)
	stepFor(w, 60)
	if z := body.LinearVelocity().Z(); z > 0.2 {
		t.Fatalf("expected vehicle to brake, got %v", z)
	}
}

func TestReentrantStepPanics(t *testing.T) {
	w, _ := newTestWorld()
	dropBox(w, 0.5)
	w.SetContactListener(&contactLog{onAdded: func(backend.BodyID, backend.BodyID, *backend.ContactSettings) {
		w.Step(dt)
	}})
	defer func() {
		if _, ok := recover().(*oerror.PhysError); !ok {
			t.Fatalf("expected a PhysError panic")
		}
	}()
	w.Step(dt)
	t.Fatalf("expected re-entrant step to panic")
}
