package settings

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/character"
	"github.com/oomph-ac/physcore/gravity"
	"github.com/oomph-ac/physcore/oerror"
	"github.com/oomph-ac/physcore/step"
	"github.com/pelletier/go-toml"
)

// Settings contains everything about the simulation that can be configured from a file.
type Settings struct {
	Step struct {
		TimeStep             float64 `comment:"Delta simulated per frame when UseDeltaForWorldStep is false."`
		FixedTimeStep        float64 `comment:"Length of a single sub-step in seconds."`
		MaxSteps             int     `comment:"Maximum amount of sub-steps per frame. 0 disables subdivision."`
		UseDeltaForWorldStep bool    `comment:"Simulate the measured frame delta instead of TimeStep."`
	}
	Gravity Vector `comment:"Uniform gravity in m/s²."`
	Character struct {
		CharacterSpeed    float32
		JumpSpeed         float32
		ControlDuringJump bool
		Inertia           bool
		FixedUp           bool   `comment:"Use UpAxis instead of the opposite of gravity as up axis."`
		UpAxis            Vector
		StickToFloor      bool
		MaxStepDown       float32
		WalkStairs        bool
		MaxStepUp         float32
		Layer             uint16
	}
}

// Vector is a three component vector as written in a settings file.
type Vector struct {
	X, Y, Z float64
}

// Vec32 ...
func (v Vector) Vec32() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}

	cfg := step.DefaultConfig()
	s.Step.TimeStep = cfg.TimeStep
	s.Step.FixedTimeStep = cfg.FixedTimeStep
	s.Step.MaxSteps = cfg.MaxSteps
	s.Step.UseDeltaForWorldStep = cfg.UseDeltaForWorldStep

	s.Gravity = Vector{Y: -9.81}

	c := character.DefaultSettings()
	s.Character.CharacterSpeed = c.CharacterSpeed
	s.Character.JumpSpeed = c.JumpSpeed
	s.Character.ControlDuringJump = c.ControlDuringJump
	s.Character.Inertia = c.Inertia
	s.Character.UpAxis = Vector{Y: 1}
	s.Character.StickToFloor = c.StickToFloor
	s.Character.MaxStepDown = c.MaxStepDown
	s.Character.WalkStairs = c.WalkStairs
	s.Character.MaxStepUp = c.MaxStepUp
	s.Character.Layer = c.Layer
	return s
}

// StepConfig returns the stepping configuration. It is not validated.
func (s Settings) StepConfig() step.Config {
	return step.Config{
		TimeStep:             s.Step.TimeStep,
		FixedTimeStep:        s.Step.FixedTimeStep,
		MaxSteps:             s.Step.MaxSteps,
		UseDeltaForWorldStep: s.Step.UseDeltaForWorldStep,
	}
}

// GravityProvider returns the uniform gravity of the settings.
func (s Settings) GravityProvider() gravity.Uniform {
	return gravity.Uniform{Vector: s.Gravity.Vec32()}
}

// CharacterSettings returns the character settings, starting from character.DefaultSettings for the
// values that cannot be configured.
func (s Settings) CharacterSettings() character.Settings {
	c := character.DefaultSettings()
	c.CharacterSpeed = s.Character.CharacterSpeed
	c.JumpSpeed = s.Character.JumpSpeed
	c.ControlDuringJump = s.Character.ControlDuringJump
	c.Inertia = s.Character.Inertia
	if s.Character.FixedUp {
		up := s.Character.UpAxis.Vec32()
		c.UpAxis = &up
	}
	c.StickToFloor = s.Character.StickToFloor
	c.MaxStepDown = s.Character.MaxStepDown
	c.WalkStairs = s.Character.WalkStairs
	c.MaxStepUp = s.Character.MaxStepUp
	c.Layer = s.Character.Layer
	return c
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return oerror.Text("settings file already exists")
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return oerror.New("failed encoding default settings: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oerror.New("failed creating settings file: %v", err)
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
// Values missing from the file keep their default.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, oerror.Text("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, oerror.New("error reading config: %v", err)
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, oerror.New("error decoding config: %v", err)
	}
	return settings, nil
}
