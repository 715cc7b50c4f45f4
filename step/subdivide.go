package step

// Subdivide splits frameDelta into sub-steps of fixedTimeStep and calls perStep once for every sub-step,
// in order. perStep is expected to run the pre-step participants and then a single native step of the
// delta it receives.
//
// With maxSteps set to zero, perStep is called once with the whole frameDelta. Otherwise sub-steps of
// fixedTimeStep are taken until the frame is consumed or maxSteps is reached. If taking another full
// sub-step would leave less than one fixedTimeStep behind, the rest of the frame is consumed by the current
// sub-step instead. Time left over once maxSteps is reached is returned as backlog and is not carried over
// to the next frame.
//
// A ConfigurationError is returned, before perStep is ever called, if fixedTimeStep is not positive while
// maxSteps is, or if maxSteps is negative.
func Subdivide(frameDelta, fixedTimeStep float64, maxSteps int, perStep func(delta float64)) (steps int, backlog float64, err error) {
	if err := validate(fixedTimeStep, maxSteps); err != nil {
		return 0, 0, err
	}
	if maxSteps == 0 {
		perStep(frameDelta)
		return 1, 0, nil
	}

	remaining := frameDelta
	for remaining > 0 && steps < maxSteps {
		// The merge rule wins over a plain count of fixed steps: a 0.025s frame at 60Hz is one 0.025s
		// step, not 0.0167s followed by 0.0083s.
		if remaining-fixedTimeStep < fixedTimeStep {
			perStep(remaining)
			remaining = 0
		} else {
			remaining -= fixedTimeStep
			perStep(fixedTimeStep)
		}
		steps++
	}
	if remaining > 0 {
		backlog = remaining
	}
	return steps, backlog, nil
}
