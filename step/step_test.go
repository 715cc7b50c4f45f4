package step

import (
	"context"
	"math"
	"testing"

	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/oerror"
)

type mockWorld struct {
	steps []float64
	log   *[]string
}

func (w *mockWorld) Step(delta float64) {
	w.steps = append(w.steps, delta)
	if w.log != nil {
		*w.log = append(*w.log, "world")
	}
}

func (w *mockWorld) SetContactListener(backend.ContactListener) {}

type mockParticipant struct {
	name   string
	log    *[]string
	deltas []float64
	frames int
}

func (p *mockParticipant) PreStep(delta float64) {
	p.deltas = append(p.deltas, delta)
	*p.log = append(*p.log, p.name)
}

type mockFrameParticipant struct {
	mockParticipant
}

func (p *mockFrameParticipant) BeginFrame() {
	p.frames++
	*p.log = append(*p.log, p.name+":frame")
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func TestSubdivideMergesTail(t *testing.T) {
	var deltas []float64
	steps, backlog, err := Subdivide(0.04, 1.0/60.0, 10, func(d float64) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps != 2 || len(deltas) != 2 {
		t.Fatalf("expected 2 sub-steps, got %d (%v)", steps, deltas)
	}
	if math.Abs(deltas[0]-1.0/60.0) > 1e-9 || math.Abs(deltas[1]-(0.04-1.0/60.0)) > 1e-9 {
		t.Fatalf("expected [1/60, 0.04-1/60], got %v", deltas)
	}
	if math.Abs(sum(deltas)-0.04) > 1e-9 || backlog != 0 {
		t.Fatalf("expected deltas to sum to the frame delta without backlog, got %v (backlog %v)", sum(deltas), backlog)
	}
}

func TestSubdivideShortFrameIsSingleStep(t *testing.T) {
	// 0.025 - 1/60 leaves less than one fixed step, so the whole frame is taken at once.
	var deltas []float64
	steps, _, err := Subdivide(0.025, 1.0/60.0, 10, func(d float64) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps != 1 || math.Abs(deltas[0]-0.025) > 1e-9 {
		t.Fatalf("expected a single step of 0.025, got %v", deltas)
	}
}

func TestSubdivideExactMultiple(t *testing.T) {
	var deltas []float64
	_, _, _ = Subdivide(1, 0.25, 10, func(d float64) { deltas = append(deltas, d) })
	if len(deltas) != 4 {
		t.Fatalf("expected 4 sub-steps, got %v", deltas)
	}
	if sum(deltas) != 1 {
		t.Fatalf("expected deltas to sum to 1, got %v", sum(deltas))
	}
	for _, d := range deltas {
		if d != 0.25 {
			t.Fatalf("expected no sub-step shorter than the fixed step, got %v", deltas)
		}
	}
}

func TestSubdivideWithoutMaxSteps(t *testing.T) {
	var deltas []float64
	steps, _, err := Subdivide(0.5, 1.0/60.0, 0, func(d float64) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps != 1 || len(deltas) != 1 || deltas[0] != 0.5 {
		t.Fatalf("expected one step of the full delta, got %v", deltas)
	}

	// The fixed step is irrelevant without subdivision, even when it is invalid.
	deltas = nil
	if _, _, err := Subdivide(0.5, 0, 0, func(d float64) { deltas = append(deltas, d) }); err != nil || len(deltas) != 1 {
		t.Fatalf("expected a single step without error, got %v (%v)", deltas, err)
	}
}

func TestSubdivideFallsBehind(t *testing.T) {
	var deltas []float64
	steps, backlog, err := Subdivide(0.2, 1.0/60.0, 3, func(d float64) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps != 3 {
		t.Fatalf("expected the step count to be capped at 3, got %d", steps)
	}
	if math.Abs(backlog-(0.2-3.0/60.0)) > 1e-9 {
		t.Fatalf("unexpected backlog %v", backlog)
	}
}

func TestSubdivideRejectsNonPositiveFixedStep(t *testing.T) {
	for _, fixed := range []float64{0, -1, math.NaN()} {
		called := false
		_, _, err := Subdivide(0.1, fixed, 5, func(float64) { called = true })
		if !oerror.IsConfiguration(err) {
			t.Fatalf("expected a configuration error for fixed step %v, got %v", fixed, err)
		}
		if called {
			t.Fatalf("expected no step to be taken for fixed step %v", fixed)
		}
	}
	if _, _, err := Subdivide(0.1, 0.01, -1, func(float64) {}); !oerror.IsConfiguration(err) {
		t.Fatalf("expected a configuration error for negative max steps, got %v", err)
	}
}

func TestSchedulerCallsParticipantsInOrder(t *testing.T) {
	var log []string
	w := &mockWorld{log: &log}
	s := NewScheduler(w, Config{FixedTimeStep: 0.25, MaxSteps: 10, UseDeltaForWorldStep: true}, nil)

	a := &mockFrameParticipant{mockParticipant{name: "a", log: &log}}
	b := &mockParticipant{name: "b", log: &log}
	s.Register(a)
	s.Register(b)

	if err := s.Step(context.Background(), 0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a:frame", "a", "b", "world", "a", "b", "world"}
	if len(log) != len(want) {
		t.Fatalf("expected call order %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected call order %v, got %v", want, log)
		}
	}
	if len(w.steps) != len(b.deltas) {
		t.Fatalf("expected native steps to match participant calls, got %d and %d", len(w.steps), len(b.deltas))
	}
	if a.frames != 1 {
		t.Fatalf("expected BeginFrame once per frame, got %d", a.frames)
	}
}

func TestSchedulerRejectsInvalidConfigBeforeStepping(t *testing.T) {
	var log []string
	w := &mockWorld{}
	s := NewScheduler(w, DefaultConfig(), nil)
	p := &mockFrameParticipant{mockParticipant{name: "p", log: &log}}
	s.Register(p)

	s.SetFixedTimeStep(0)
	s.SetMaxSteps(5)
	if err := s.Step(context.Background(), 0.016); !oerror.IsConfiguration(err) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	if len(log) != 0 || len(w.steps) != 0 {
		t.Fatalf("expected no participant or native step to run, got %v and %v", log, w.steps)
	}
}

func TestSchedulerUsesConfiguredTimeStep(t *testing.T) {
	w := &mockWorld{}
	s := NewScheduler(w, Config{TimeStep: 0.05, FixedTimeStep: 0.05, MaxSteps: 2}, nil)
	if err := s.Step(context.Background(), 0.3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.steps) != 1 || w.steps[0] != 0.05 {
		t.Fatalf("expected one step of the configured time step, got %v", w.steps)
	}

	s.SetUseDeltaForWorldStep(true)
	w.steps = nil
	if err := s.Step(context.Background(), 0.3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.steps) != 2 {
		t.Fatalf("expected the frame delta to be capped at 2 steps, got %v", w.steps)
	}
	frame, ok := s.LastFrame()
	if !ok || frame.SubSteps != 2 || math.Abs(frame.Backlog-0.2) > 1e-9 || math.Abs(frame.Simulated-0.1) > 1e-9 {
		t.Fatalf("unexpected frame stats %+v", frame)
	}
	if len(s.History()) != 2 {
		t.Fatalf("expected 2 frames of history, got %d", len(s.History()))
	}
}

type unregisteringParticipant struct {
	s     *Scheduler
	other ParticipantID
	calls int
}

func (p *unregisteringParticipant) PreStep(float64) {
	p.calls++
	p.s.Unregister(p.other)
}

func TestSchedulerRegistrationChangesApplyNextFrame(t *testing.T) {
	var log []string
	w := &mockWorld{}
	s := NewScheduler(w, Config{FixedTimeStep: 0.25, MaxSteps: 10, UseDeltaForWorldStep: true}, nil)

	u := &unregisteringParticipant{s: s}
	s.Register(u)
	victim := &mockParticipant{name: "victim", log: &log}
	u.other = s.Register(victim)

	if err := s.Step(context.Background(), 0.75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(victim.deltas) != 3 {
		t.Fatalf("expected the removed participant to finish the running frame, got %d calls", len(victim.deltas))
	}
	if err := s.Step(context.Background(), 0.75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(victim.deltas) != 3 {
		t.Fatalf("expected the removed participant not to be called in the next frame, got %d calls", len(victim.deltas))
	}
	if s.Participants() != 1 {
		t.Fatalf("expected 1 participant left, got %d", s.Participants())
	}
}
