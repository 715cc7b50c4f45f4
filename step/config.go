package step

import "github.com/oomph-ac/physcore/oerror"

// Config controls how a frame is subdivided into native steps. It is read once per frame and may be
// changed between frames through the Scheduler setters.
type Config struct {
	// TimeStep is the world delta of a frame when UseDeltaForWorldStep is false.
	TimeStep float64
	// FixedTimeStep is the length of a single sub-step.
	FixedTimeStep float64
	// MaxSteps is the maximum amount of sub-steps per frame. Zero disables subdivision: the whole frame
	// is simulated in one native step.
	MaxSteps int
	// UseDeltaForWorldStep makes the scheduler simulate the frame delta passed to Step instead of
	// TimeStep.
	UseDeltaForWorldStep bool
}

// DefaultConfig returns a 60Hz configuration simulating the real frame delta with at most 5 sub-steps.
func DefaultConfig() Config {
	return Config{
		TimeStep:             1.0 / 60.0,
		FixedTimeStep:        1.0 / 60.0,
		MaxSteps:             5,
		UseDeltaForWorldStep: true,
	}
}

// Validate returns a ConfigurationError if stepping with the config could never terminate.
func (c Config) Validate() error {
	return validate(c.FixedTimeStep, c.MaxSteps)
}

func validate(fixedTimeStep float64, maxSteps int) error {
	if maxSteps < 0 {
		return oerror.NewConfigurationError("MaxSteps", maxSteps, "must not be negative")
	}
	// Written as a negated comparison so that NaN is rejected too.
	if maxSteps > 0 && !(fixedTimeStep > 0) {
		return oerror.NewConfigurationError("FixedTimeStep", fixedTimeStep, "must be positive when MaxSteps > 0")
	}
	return nil
}
