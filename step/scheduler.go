package step

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/utils"
)

// historySize is the amount of frames kept in the frame history of a Scheduler.
const historySize = 120

// Participant is called before every native sub-step.
type Participant interface {
	PreStep(delta float64)
}

// FrameParticipant is a Participant that is also notified once at the start of every frame, before the
// first sub-step of that frame.
type FrameParticipant interface {
	Participant
	BeginFrame()
}

// ParticipantID identifies a registered Participant.
type ParticipantID uint64

// FrameStats describes how a single frame was simulated.
type FrameStats struct {
	// Delta is the world delta of the frame.
	Delta float64
	// SubSteps is the amount of native steps taken.
	SubSteps int
	// Simulated is the sum of the deltas of all native steps.
	Simulated float64
	// Backlog is the part of Delta that was not simulated because MaxSteps was reached.
	Backlog float64
}

// Scheduler drives a backend.World with fixed sub-steps and invokes its participants before every
// sub-step, in registration order.
type Scheduler struct {
	world backend.World
	cfg   Config
	log   *slog.Logger

	nextID       ParticipantID
	participants *orderedmap.OrderedMap[ParticipantID, Participant]

	history *utils.CircularQueue[FrameStats]
}

// NewScheduler returns a Scheduler stepping world. A nil logger falls back to slog.Default().
func NewScheduler(world backend.World, cfg Config, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		world:        world,
		cfg:          cfg,
		log:          log,
		participants: orderedmap.NewOrderedMap[ParticipantID, Participant](),
		history:      utils.NewCircularQueue[FrameStats](historySize),
	}
}

// Config returns the current configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// SetConfig replaces the whole configuration. It takes effect from the next frame.
func (s *Scheduler) SetConfig(cfg Config) {
	s.cfg = cfg
}

// SetTimeStep sets the world delta used when the frame delta is not used.
func (s *Scheduler) SetTimeStep(timeStep float64) {
	s.cfg.TimeStep = timeStep
}

// SetFixedTimeStep sets the length of a sub-step.
func (s *Scheduler) SetFixedTimeStep(fixedTimeStep float64) {
	s.cfg.FixedTimeStep = fixedTimeStep
}

// SetMaxSteps sets the maximum amount of sub-steps per frame.
func (s *Scheduler) SetMaxSteps(maxSteps int) {
	s.cfg.MaxSteps = maxSteps
}

// SetUseDeltaForWorldStep sets whether the frame delta or TimeStep is simulated.
func (s *Scheduler) SetUseDeltaForWorldStep(use bool) {
	s.cfg.UseDeltaForWorldStep = use
}

// Register adds a participant after all currently registered participants. Participants registered while
// a frame is being simulated are first called in the next frame.
func (s *Scheduler) Register(p Participant) ParticipantID {
	s.nextID++
	s.participants.Set(s.nextID, p)
	return s.nextID
}

// Unregister removes a participant. It returns false if the id is unknown.
func (s *Scheduler) Unregister(id ParticipantID) bool {
	return s.participants.Delete(id)
}

// Participant returns the participant registered with id.
func (s *Scheduler) Participant(id ParticipantID) (Participant, bool) {
	return s.participants.Get(id)
}

// Participants returns the amount of registered participants.
func (s *Scheduler) Participants() int {
	return s.participants.Len()
}

// Step simulates one frame. A ConfigurationError is returned before any participant or native step is
// called if the current configuration is invalid.
func (s *Scheduler) Step(ctx context.Context, frameDelta float64) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	delta := s.cfg.TimeStep
	if s.cfg.UseDeltaForWorldStep {
		delta = frameDelta
	}

	span := sentry.StartSpan(ctx, "physcore.step")
	defer span.Finish()

	participants := make([]Participant, 0, s.participants.Len())
	for el := s.participants.Front(); el != nil; el = el.Next() {
		participants = append(participants, el.Value)
	}
	for _, p := range participants {
		if fp, ok := p.(FrameParticipant); ok {
			fp.BeginFrame()
		}
	}

	var simulated float64
	steps, backlog, err := Subdivide(delta, s.cfg.FixedTimeStep, s.cfg.MaxSteps, func(dt float64) {
		for _, p := range participants {
			p.PreStep(dt)
		}
		s.world.Step(dt)
		simulated += dt
	})
	if err != nil {
		return err
	}

	span.SetData("delta", strconv.FormatFloat(delta, 'f', -1, 64))
	span.SetData("subSteps", strconv.Itoa(steps))
	if backlog > 0 {
		span.SetData("backlog", strconv.FormatFloat(backlog, 'f', -1, 64))
		s.log.Debug("simulation fell behind", "delta", delta, "backlog", backlog, "maxSteps", s.cfg.MaxSteps)
	}
	_ = s.history.Append(FrameStats{Delta: delta, SubSteps: steps, Simulated: simulated, Backlog: backlog})
	return nil
}

// LastFrame returns the statistics of the most recently simulated frame.
func (s *Scheduler) LastFrame() (FrameStats, bool) {
	return s.history.Last()
}

// History returns the statistics of recent frames, oldest first.
func (s *Scheduler) History() []FrameStats {
	frames := make([]FrameStats, 0, s.history.Len())
	for f := range s.history.Iter() {
		frames = append(frames, f)
	}
	return frames
}
