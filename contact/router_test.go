package contact

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/oerror"
	"github.com/oomph-ac/physcore/omath"
)

type mockBody struct {
	id  backend.BodyID
	rot mgl32.Quat
	com mgl32.Vec3
}

func newMockBody(id backend.BodyID) *mockBody {
	return &mockBody{id: id, rot: mgl32.QuatIdent()}
}

func (b *mockBody) ID() backend.BodyID          { return b.id }
func (b *mockBody) Rotation() mgl32.Quat        { return b.rot }
func (b *mockBody) CenterOfMass() mgl32.Vec3    { return b.com }
func (b *mockBody) LinearVelocity() mgl32.Vec3  { return mgl32.Vec3{} }
func (b *mockBody) AngularVelocity() mgl32.Vec3 { return mgl32.Vec3{} }

type mockBodies map[backend.BodyID]*mockBody

func (m mockBodies) Body(id backend.BodyID) (backend.Body, bool) {
	b, ok := m[id]
	if !ok {
		return nil, false
	}
	return b, true
}

func (m mockBodies) ActivateBody(backend.BodyID) {}

func (m mockBodies) add(b *mockBody) mockBodies {
	m[b.id] = b
	return m
}

type recorder struct {
	NopHandler

	pairs    []Pair
	onAdd    func(p Pair, s *Settings)
	validate func(p Pair) (backend.ValidateResult, bool)
	removed  []Pair
}

func (r *recorder) HandleContactAdded(p Pair, s *Settings) {
	r.pairs = append(r.pairs, p)
	if r.onAdd != nil {
		r.onAdd(p, s)
	}
}

func (r *recorder) HandleContactPersisted(p Pair, s *Settings) {
	r.HandleContactAdded(p, s)
}

func (r *recorder) HandleContactValidate(p Pair) (backend.ValidateResult, bool) {
	r.pairs = append(r.pairs, p)
	if r.validate == nil {
		return 0, false
	}
	return r.validate(p)
}

func (r *recorder) HandleContactRemoved(p Pair) {
	r.removed = append(r.removed, p)
}

func newTestRouter() (*Router, mockBodies, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	bodies := mockBodies{}.add(newMockBody(1)).add(newMockBody(2)).add(newMockBody(3))
	return NewRouter(bodies, slog.New(slog.NewTextHandler(buf, nil))), bodies, buf
}

func neutralSettings() *backend.ContactSettings {
	return &backend.ContactSettings{
		CombinedFriction:    0.4,
		CombinedRestitution: 0.1,
		InvMassScale1:       1,
		InvInertiaScale1:    1,
		InvMassScale2:       1,
		InvInertiaScale2:    1,
	}
}

func TestSettingsReversedIsSelfInverse(t *testing.T) {
	s := Settings{CombinedFriction: 0.2, InvMassScale1: 0.3, InvInertiaScale1: 0.4, InvMassScale2: 0.5, InvInertiaScale2: 0.6, IsSensor: true}
	r := s.Reversed()
	if r.InvMassScale2 != 0.3 || r.InvInertiaScale2 != 0.4 || r.InvMassScale1 != 0.5 || r.InvInertiaScale1 != 0.6 {
		t.Fatalf("expected swapped scales, got %+v", r)
	}
	if r.CombinedFriction != 0.2 || !r.IsSensor {
		t.Fatalf("expected shared fields to be kept, got %+v", r)
	}
	if r.Reversed() != s {
		t.Fatalf("expected Reversed to be its own inverse")
	}
}

func TestSettingsNativeRoundTrip(t *testing.T) {
	raw := neutralSettings()
	raw.RelativeLinearSurfaceVelocity = mgl32.Vec3{1, 2, 3}
	s := FromNative(raw)
	s.CombinedFriction = 0.9
	s.ToNative(raw)
	if raw.CombinedFriction != 0.9 || raw.RelativeLinearSurfaceVelocity != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("unexpected native settings after round trip: %+v", raw)
	}
	if FromNative(nil).InvMassScale1 != 1 {
		t.Fatalf("expected neutral settings for nil record")
	}
}

func TestDispatchDeliversBothRoles(t *testing.T) {
	r, _, _ := newTestRouter()
	h1, h2 := &recorder{}, &recorder{}
	r.Subscribe(1, KindAdd, nil, h1)
	r.Subscribe(2, KindAdd, nil, h2)
	r.BeginStep()

	r.OnContactAdded(1, 2, neutralSettings())
	if len(h1.pairs) != 1 || h1.pairs[0] != (Pair{Self: 1, Other: 2}) {
		t.Fatalf("unexpected pairs for body 1: %v", h1.pairs)
	}
	if len(h2.pairs) != 1 || h2.pairs[0] != (Pair{Self: 2, Other: 1, Reversed: true}) {
		t.Fatalf("unexpected pairs for body 2: %v", h2.pairs)
	}
}

func TestReversedViewWritesOtherSide(t *testing.T) {
	r, _, _ := newTestRouter()
	r.Subscribe(2, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) {
		s.InvMassScale1 = 0.3
	}})
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactAdded(1, 2, raw)
	if raw.InvMassScale2 != 0.3 || raw.InvMassScale1 != 1 {
		t.Fatalf("expected body 2 scale to be written to InvMassScale2, got %+v", raw)
	}
}

func TestPersistUsesSameViews(t *testing.T) {
	r, _, _ := newTestRouter()
	h := &recorder{onAdd: func(p Pair, s *Settings) { s.CombinedRestitution = 0.75 }}
	r.Subscribe(2, KindPersist, nil, h)
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactPersisted(2, 3, raw)
	if raw.CombinedRestitution != 0.75 || len(h.pairs) != 1 || h.pairs[0].Reversed {
		t.Fatalf("unexpected persist dispatch: %+v %v", raw, h.pairs)
	}
}

func TestConflictingWritesKeepFirst(t *testing.T) {
	r, _, buf := newTestRouter()
	r.Subscribe(1, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) {
		s.CombinedFriction = 0.5
		s.InvMassScale1 = 0.2
	}})
	r.Subscribe(1, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) { s.CombinedFriction = 0.8 }})
	r.Subscribe(2, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) { s.InvMassScale2 = 0.7 }})
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactAdded(1, 2, raw)
	if raw.CombinedFriction != 0.5 {
		t.Fatalf("expected first friction to be kept, got %v", raw.CombinedFriction)
	}
	if raw.InvMassScale1 != 0.2 {
		t.Fatalf("expected first mass scale to be kept, got %v", raw.InvMassScale1)
	}
	if n := strings.Count(buf.String(), oerror.WarningAmbiguousContact.String()); n != 2 {
		t.Fatalf("expected 2 ambiguity warnings, got %d: %s", n, buf.String())
	}
}

func TestEqualWritesAreNotConflicts(t *testing.T) {
	r, _, buf := newTestRouter()
	set := func(p Pair, s *Settings) { s.IsSensor = true }
	r.Subscribe(1, KindAdd, nil, &recorder{onAdd: set})
	r.Subscribe(2, KindAdd, nil, &recorder{onAdd: set})
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactAdded(1, 2, raw)
	if !raw.IsSensor || buf.Len() != 0 {
		t.Fatalf("expected sensor without warnings, got %+v %q", raw, buf.String())
	}
}

func TestSurfaceVelocityFolding(t *testing.T) {
	r, bodies, _ := newTestRouter()
	bodies[2].rot = mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})
	bodies[2].com = mgl32.Vec3{1, 0, 0}

	r.Subscribe(1, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) {
		s.RelativeLinearSurfaceVelocity = mgl32.Vec3{0, 0, 1}
	}})
	r.Subscribe(2, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) {
		if s.RelativeLinearSurfaceVelocity != (mgl32.Vec3{}) {
			t.Errorf("expected a zero local surface velocity, got %v", s.RelativeLinearSurfaceVelocity)
		}
		s.RelativeLinearSurfaceVelocity = mgl32.Vec3{1, 0, 0}
		s.RelativeAngularSurfaceVelocity = mgl32.Vec3{0, 1, 0}
	}})
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactAdded(1, 2, raw)

	// Body 1: -(0,0,1). Body 2: (0,0,-1) + (0,1,0)x(-1,0,0) = (0,0,0).
	if !omath.Vec3ApproxEq(raw.RelativeLinearSurfaceVelocity, mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("unexpected linear surface velocity %v", raw.RelativeLinearSurfaceVelocity)
	}
	if !omath.Vec3ApproxEq(raw.RelativeAngularSurfaceVelocity, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Fatalf("unexpected angular surface velocity %v", raw.RelativeAngularSurfaceVelocity)
	}
}

func TestSpinningSecondBodySurfaceVelocity(t *testing.T) {
	r, bodies, _ := newTestRouter()
	bodies[1].com = mgl32.Vec3{2, 0, 0}

	spin := mgl32.Vec3{0, 1, 0}
	r.Subscribe(2, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) {
		s.RelativeAngularSurfaceVelocity = spin
	}})
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactAdded(1, 2, raw)

	// The folded velocity evaluated at a contact point must match the velocity of the surface of body 2
	// at that point, since body 1 does not move its surface.
	point := mgl32.Vec3{1, 0, 0}
	got := raw.RelativeLinearSurfaceVelocity.Add(raw.RelativeAngularSurfaceVelocity.Cross(point.Sub(bodies[1].com)))
	want := spin.Cross(point.Sub(bodies[2].com))
	if !omath.Vec3ApproxEq(got, want, 1e-5) {
		t.Fatalf("expected surface velocity %v at %v, got %v", want, point, got)
	}
	if !omath.Vec3ApproxEq(raw.RelativeLinearSurfaceVelocity, mgl32.Vec3{0, 0, -2}, 1e-5) {
		t.Fatalf("unexpected linear surface velocity %v", raw.RelativeLinearSurfaceVelocity)
	}
}

func TestFirstBodySurfaceVelocityIsSubtracted(t *testing.T) {
	r, bodies, _ := newTestRouter()
	bodies[2].com = mgl32.Vec3{0, 5, 0}
	r.Subscribe(1, KindAdd, nil, &recorder{onAdd: func(p Pair, s *Settings) {
		s.RelativeLinearSurfaceVelocity = mgl32.Vec3{2, 0, 0}
		s.RelativeAngularSurfaceVelocity = mgl32.Vec3{0, 1, 0}
	}})
	r.BeginStep()

	raw := neutralSettings()
	r.OnContactAdded(1, 2, raw)
	if raw.RelativeLinearSurfaceVelocity != (mgl32.Vec3{-2, 0, 0}) || raw.RelativeAngularSurfaceVelocity != (mgl32.Vec3{0, -1, 0}) {
		t.Fatalf("expected body 1 surface velocity to be subtracted, got %v %v", raw.RelativeLinearSurfaceVelocity, raw.RelativeAngularSurfaceVelocity)
	}
}

func TestValidateAggregation(t *testing.T) {
	r, _, buf := newTestRouter()
	if res := r.OnContactValidate(1, 2); res != backend.AcceptAllContactsForThisBodyPair {
		t.Fatalf("expected accept all without listeners, got %v", res)
	}

	undecided := &recorder{}
	r.Subscribe(1, KindValidate, nil, undecided)
	r.Subscribe(2, KindValidate, nil, &recorder{validate: func(Pair) (backend.ValidateResult, bool) {
		return backend.RejectContact, true
	}})
	r.BeginStep()
	if res := r.OnContactValidate(1, 2); res != backend.RejectContact {
		t.Fatalf("expected reject, got %v", res)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no warning for a single answer, got %q", buf.String())
	}

	r.Subscribe(1, KindValidate, nil, &recorder{validate: func(Pair) (backend.ValidateResult, bool) {
		return backend.AcceptContact, true
	}})
	r.BeginStep()
	if res := r.OnContactValidate(1, 2); res != backend.AcceptContact {
		t.Fatalf("expected first answer to win, got %v", res)
	}
	if !strings.Contains(buf.String(), oerror.WarningAmbiguousValidate.String()) {
		t.Fatalf("expected ambiguity warning, got %q", buf.String())
	}
	if len(undecided.pairs) != 2 {
		t.Fatalf("expected undecided listener to be asked every time, got %d", len(undecided.pairs))
	}
}

func TestFilterRestrictsOtherBody(t *testing.T) {
	r, _, _ := newTestRouter()
	h := &recorder{}
	r.Subscribe(1, KindAdd, []backend.BodyID{3}, h)
	r.BeginStep()

	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 0 {
		t.Fatalf("expected filtered listener not to be called, got %v", h.pairs)
	}
	r.OnContactAdded(3, 1, neutralSettings())
	if len(h.pairs) != 1 || h.pairs[0] != (Pair{Self: 1, Other: 3, Reversed: true}) {
		t.Fatalf("unexpected pairs %v", h.pairs)
	}
}

func TestSubscriptionsApplyFromNextStep(t *testing.T) {
	r, _, _ := newTestRouter()
	h := &recorder{}
	r.BeginStep()
	r.Subscribe(1, KindAdd, nil, h)

	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 0 {
		t.Fatalf("expected subscription to be deferred")
	}
	r.BeginStep()
	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 1 {
		t.Fatalf("expected subscription to be active after BeginStep")
	}

	r.Unsubscribe(1, KindAdd, nil, h)
	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 2 {
		t.Fatalf("expected unsubscription to be deferred")
	}
	r.BeginStep()
	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 2 {
		t.Fatalf("expected unsubscription to be active after BeginStep")
	}
}

func TestClearAndRegisterInterest(t *testing.T) {
	r, _, _ := newTestRouter()
	h := &recorder{}
	r.Subscribe(1, KindAdd, nil, h)
	r.Clear()
	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 0 {
		t.Fatalf("expected no dispatch without interest")
	}
	r.RegisterInterest(1, KindAdd)
	r.OnContactAdded(1, 2, neutralSettings())
	if len(h.pairs) != 1 {
		t.Fatalf("expected dispatch after registering interest")
	}
}

func TestUnsubscribeUnorderedFilter(t *testing.T) {
	r, _, buf := newTestRouter()
	h := &recorder{}
	r.Subscribe(1, KindRemove, []backend.BodyID{3, 2}, h)
	if !r.Unsubscribe(1, KindRemove, []backend.BodyID{2, 3, 2}, h) {
		t.Fatalf("expected unsubscribe with reordered filter to succeed")
	}
	if r.Subscribed(1, KindRemove) != 0 {
		t.Fatalf("expected no subscriptions left")
	}
	if r.Unsubscribe(1, KindRemove, nil, h) {
		t.Fatalf("expected unsubscribe of unknown handler to fail")
	}
	if !strings.Contains(buf.String(), oerror.WarningMissingHandler.String()) {
		t.Fatalf("expected missing handler warning, got %q", buf.String())
	}
}

func TestRemoveSkipsStaleBodies(t *testing.T) {
	r, bodies, _ := newTestRouter()
	h1, h2 := &recorder{}, &recorder{}
	r.Subscribe(1, KindRemove, nil, h1)
	r.Subscribe(2, KindRemove, nil, h2)
	r.BeginStep()

	delete(bodies, 1)
	r.OnContactRemoved(1, 2)
	if len(h1.removed) != 0 {
		t.Fatalf("expected stale body to be skipped")
	}
	if len(h2.removed) != 1 || h2.removed[0] != (Pair{Self: 2, Other: 1, Reversed: true}) {
		t.Fatalf("unexpected remove pairs %v", h2.removed)
	}
}
