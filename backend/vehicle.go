package backend

// VehicleConstraint is the native wheeled vehicle constraint driven by a vehicle controller.
type VehicleConstraint interface {
	// Body returns the id of the vehicle's chassis body.
	Body() BodyID
	// SetDriverInput passes the driver input for the next step. forward and right are in [-1, 1], brake
	// and handBrake are in [0, 1].
	SetDriverInput(forward, right, brake, handBrake float32)
}
