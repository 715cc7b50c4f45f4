// Package engine ties a native world to the scheduler, the contact router and the controllers moving
// characters and vehicles. A Context is owned explicitly by the host; several contexts may drive several
// worlds side by side.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/character"
	"github.com/oomph-ac/physcore/contact"
	"github.com/oomph-ac/physcore/gravity"
	"github.com/oomph-ac/physcore/oerror"
	"github.com/oomph-ac/physcore/step"
	"github.com/oomph-ac/physcore/vehicle"
)

// Opts holds the options of a Context.
type Opts struct {
	// Name identifies the context in logs and error reports.
	Name string
	// Step is the stepping configuration.
	Step step.Config
	// Gravity is the gravity of characters added without their own provider. Defaults to gravity.Earth().
	Gravity gravity.Provider
	// Filters provides the filters used by character extended updates. May be nil.
	Filters backend.FilterProvider
	// Log is the logger of the context and everything it creates. Defaults to slog.Default().
	Log *slog.Logger
}

// DefaultOpts returns the options used for a context without further configuration.
func DefaultOpts() Opts {
	return Opts{Name: "physcore", Step: step.DefaultConfig(), Gravity: gravity.Earth()}
}

// Context drives a single native world.
type Context struct {
	world  backend.World
	bodies backend.Bodies
	opts   Opts
	log    *slog.Logger

	router    *contact.Router
	scheduler *step.Scheduler

	frames uint64
}

// New returns a Context driving world and installs its contact router as the contact listener of world.
// A ConfigurationError is returned if world is nil or the step configuration is invalid.
func New(world backend.World, bodies backend.Bodies, opts Opts) (*Context, error) {
	if world == nil {
		return nil, oerror.NewConfigurationError("World", nil, "a world is required")
	}
	if err := opts.Step.Validate(); err != nil {
		return nil, err
	}
	if opts.Gravity == nil {
		opts.Gravity = gravity.Earth()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	log := opts.Log
	if opts.Name != "" {
		log = log.With("context", opts.Name)
	}

	c := &Context{
		world:     world,
		bodies:    bodies,
		opts:      opts,
		log:       log,
		router:    contact.NewRouter(bodies, log),
		scheduler: step.NewScheduler(world, opts.Step, log),
	}
	world.SetContactListener(c.router)
	return c, nil
}

// Router returns the contact router of the context.
func (c *Context) Router() *contact.Router {
	return c.router
}

// Scheduler returns the scheduler of the context. Its setters may be used to change the stepping
// configuration between frames.
func (c *Context) Scheduler() *step.Scheduler {
	return c.scheduler
}

// Frames returns the amount of frames simulated.
func (c *Context) Frames() uint64 {
	return c.frames
}

// AddCharacter creates a controller for char and registers it after all current participants. A nil
// gravity provider uses the gravity of the context.
func (c *Context) AddCharacter(char backend.Character, gp gravity.Provider, s character.Settings) (*character.Controller, step.ParticipantID) {
	if gp == nil {
		gp = c.opts.Gravity
	}
	ctrl := character.New(char, gp, s, c.opts.Filters, c.log)
	return ctrl, c.scheduler.Register(ctrl)
}

// AddVehicle creates a controller for constraint and registers it after all current participants.
func (c *Context) AddVehicle(constraint backend.VehicleConstraint) (*vehicle.Controller, step.ParticipantID) {
	ctrl := vehicle.New(constraint, c.bodies)
	return ctrl, c.scheduler.Register(ctrl)
}

// AddParticipant registers a custom participant after all current participants.
func (c *Context) AddParticipant(p step.Participant) step.ParticipantID {
	return c.scheduler.Register(p)
}

// Remove unregisters the participant with id and closes it if it implements io.Closer. It returns false
// if the id is unknown.
func (c *Context) Remove(id step.ParticipantID) bool {
	p, ok := c.scheduler.Participant(id)
	if !ok {
		return false
	}
	c.scheduler.Unregister(id)
	if closer, ok := p.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.log.Error("unable to close participant", "id", id, "error", err)
		}
	}
	return true
}

// Update simulates a frame of frameDelta seconds. Subscriptions made on the contact router before the
// call are active for the whole frame. A panic raised while simulating is reported and re-raised.
func (c *Context) Update(ctx context.Context, frameDelta float64) error {
	defer func() {
		if v := recover(); v != nil {
			c.log.Error("Update() panic", "error", v, "frame", c.frames)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("context", c.opts.Name)
				scope.SetTag("frame", fmt.Sprint(c.frames))
			})
			hub.Recover(oerror.New("%v", v))
			hub.Flush(time.Second * 5)
			panic(v)
		}
	}()

	c.router.BeginStep()
	if err := c.scheduler.Step(ctx, frameDelta); err != nil {
		return err
	}
	c.frames++
	return nil
}
