package character

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Settings holds the movement parameters of a Controller. Ranges are not validated.
type Settings struct {
	// CharacterSpeed is the horizontal speed in m/s reached with a unit input direction.
	CharacterSpeed float32
	// JumpSpeed is the speed in m/s added along the up axis when jumping.
	JumpSpeed float32
	// ControlDuringJump allows the input to steer the character while it is not supported.
	ControlDuringJump bool
	// Inertia smooths the desired velocity towards the input every tick instead of snapping to it.
	Inertia bool
	// UpAxis is a fixed up axis. If nil, the up axis follows the opposite of gravity.
	UpAxis *mgl32.Vec3

	// StickToFloor keeps the character on the floor when walking down slopes or steps of at most
	// MaxStepDown.
	StickToFloor bool
	MaxStepDown  float32
	// WalkStairs lets the character walk up steps of at most MaxStepUp.
	WalkStairs bool
	MaxStepUp  float32

	WalkStairsMinStepForward         float32
	WalkStairsStepForwardTest        float32
	WalkStairsCosAngleForwardContact float32
	WalkStairsStepDownExtra          mgl32.Vec3

	// Layer is the object layer of the character, used to select the filters of the extended update.
	Layer uint16
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		CharacterSpeed:                   6,
		JumpSpeed:                        4,
		Inertia:                          true,
		StickToFloor:                     true,
		MaxStepDown:                      0.5,
		WalkStairs:                       true,
		MaxStepUp:                        0.4,
		WalkStairsMinStepForward:         0.02,
		WalkStairsStepForwardTest:        0.15,
		WalkStairsCosAngleForwardContact: math32.Cos(75 * math32.Pi / 180),
	}
}
