package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/character"
	"github.com/oomph-ac/physcore/contact"
	"github.com/oomph-ac/physcore/engine"
	"github.com/oomph-ac/physcore/settings"
	"github.com/oomph-ac/physcore/vehicle"
	"github.com/oomph-ac/physcore/virtual"
)

const (
	layerStatic uint16 = iota
	layerMoving
	layerCharacter
	layerDebris
)

// conveyor gives every body touching the belt a surface velocity along +X.
type conveyor struct {
	contact.NopHandler
	speed float32
}

func (c conveyor) HandleContactAdded(_ contact.Pair, s *contact.Settings) {
	s.RelativeLinearSurfaceVelocity = mgl32.Vec3{c.speed, 0, 0}
}

func (c conveyor) HandleContactPersisted(p contact.Pair, s *contact.Settings) {
	c.HandleContactAdded(p, s)
}

// scene is a small world with a walking character, a driving vehicle and a box on a conveyor belt.
type scene struct {
	name  string
	world *virtual.World
	ctx   *engine.Context
	log   *slog.Logger

	char    *character.Controller
	vehicle *vehicle.Controller
	box     *virtual.Body

	time float32
}

func newScene(name string, s settings.Settings, log *slog.Logger) (*scene, error) {
	layers := virtual.NewLayers()
	layers.DisableCollision(layerCharacter, layerDebris)

	sc := &scene{name: name, log: log.With("scene", name)}
	sc.world = virtual.NewWorld(s.GravityProvider(), layers, sc.log)

	opts := engine.DefaultOpts()
	opts.Name = name
	opts.Step = s.StepConfig()
	opts.Gravity = s.GravityProvider()
	opts.Filters = layers
	opts.Log = sc.log
	ctx, err := engine.New(sc.world, sc.world, opts)
	if err != nil {
		return nil, err
	}
	sc.ctx = ctx

	sc.world.CreateBody(virtual.BodySettings{
		Motion:      virtual.MotionStatic,
		Position:    mgl32.Vec3{0, -0.5, 0},
		HalfExtents: mgl32.Vec3{50, 0.5, 50},
		Layer:       layerStatic,
		Friction:    0.6,
	})
	belt := sc.world.CreateBody(virtual.BodySettings{
		Motion:      virtual.MotionStatic,
		Position:    mgl32.Vec3{-10, 0.25, 10},
		HalfExtents: mgl32.Vec3{5, 0.25, 1},
		Layer:       layerStatic,
		Friction:    0.6,
	})
	sc.box = sc.world.CreateBody(virtual.BodySettings{
		Motion:      virtual.MotionDynamic,
		Position:    mgl32.Vec3{-14, 2, 10},
		HalfExtents: mgl32.Vec3{0.4, 0.4, 0.4},
		Layer:       layerDebris,
		Friction:    0.5,
	})
	sc.ctx.Router().Subscribe(belt.ID(), contact.KindAdd, nil, &conveyor{speed: 1.5})
	sc.ctx.Router().Subscribe(belt.ID(), contact.KindPersist, nil, &conveyor{speed: 1.5})

	cs := virtual.DefaultCharacterSettings()
	cs.Position = mgl32.Vec3{0, 1, 0}
	cs.Layer = layerCharacter
	sc.char, _ = sc.ctx.AddCharacter(sc.world.CreateCharacter(cs), nil, s.CharacterSettings())
	sc.char.SetInputHandler(character.InputFunc(sc.characterInput))

	chassis := sc.world.CreateBody(virtual.BodySettings{
		Motion:      virtual.MotionDynamic,
		Position:    mgl32.Vec3{10, 0.75, -10},
		HalfExtents: mgl32.Vec3{1, 0.75, 2},
		Layer:       layerMoving,
		Friction:    0.8,
	})
	sc.vehicle, _ = sc.ctx.AddVehicle(sc.world.CreateVehicle(chassis))
	sc.vehicle.SetInputHandler(vehicle.InputFunc(sc.vehicleInput))
	return sc, nil
}

// characterInput walks the character in a circle and jumps every four seconds.
func (sc *scene) characterInput() character.Input {
	angle := sc.time * 0.5
	return character.Input{
		Direction: mgl32.Vec3{math32.Cos(angle), 0, math32.Sin(angle)},
		Jump:      math32.Mod(sc.time, 4) < 0.1,
	}
}

// vehicleInput accelerates for five seconds, then brakes while steering.
func (sc *scene) vehicleInput() vehicle.Input {
	if math32.Mod(sc.time, 8) < 5 {
		return vehicle.Input{Forward: 1}
	}
	return vehicle.Input{Right: 0.5, Brake: 1}
}

func (sc *scene) update(ctx context.Context, delta float64) error {
	sc.time += float32(delta)
	if err := sc.ctx.Update(ctx, delta); err != nil {
		return fmt.Errorf("scene %s: %w", sc.name, err)
	}
	return nil
}

func (sc *scene) report() {
	st := sc.char.State()
	in := sc.vehicle.LastInput()
	args := []any{
		"frame", sc.ctx.Frames(),
		"steps", sc.world.Steps(),
		"contacts", sc.world.Contacts(),
		"character", st.Position,
		"ground", st.GroundState,
		"user", st.UserState,
		"box", sc.box.Position(),
		"throttle", in.Forward,
	}
	if f, ok := sc.ctx.Scheduler().LastFrame(); ok {
		args = append(args, "substeps", f.SubSteps, "backlog", f.Backlog)
	}
	sc.log.Info("scene state", args...)
}
