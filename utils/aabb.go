package utils

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// clipResult is the result of clipping the velocity of a moving box against a stationary one.
type clipResult struct {
	penetration float32
	// clipped only prevents the moving box from entering the stationary box.
	clipped mgl32.Vec3
	// depenetrating also pushes the moving box out if it already overlaps.
	depenetrating mgl32.Vec3
}

// ClipCollide clips vel so that moving does not enter stationary when translated by it. Unless clipOnly
// is set, a moving box that already overlaps stationary is pushed out along the axis of least
// penetration. The penetration depth is written to penetration if it is non-nil.
func ClipCollide(stationary, moving cube.BBox, vel mgl32.Vec3, clipOnly bool, penetration *float32) mgl32.Vec3 {
	res := clip(stationary, moving, vel)
	if penetration != nil {
		*penetration = res.penetration
	}
	if clipOnly {
		return res.clipped
	}
	return res.depenetrating
}

func clip(stationary, moving cube.BBox, vel mgl32.Vec3) (res clipResult) {
	res.clipped, res.depenetrating = vel, vel
	if HasZeroVolume(stationary) {
		return
	}

	var (
		depth, signed, normal [3]float32

		separating, separatingAxis int
		minDepth                   = float32(math32.MaxFloat32)
	)
	for i := range 3 {
		below := snap(moving.Max()[i] - stationary.Min()[i])
		above := snap(stationary.Max()[i] - moving.Min()[i])

		switch {
		case below <= 0:
			signed[i], normal[i] = below, -1
			separating++
			separatingAxis = i
		case above <= 0:
			signed[i], normal[i] = above, 1
			separating++
			separatingAxis = i
		case below < above:
			depth[i], signed[i], normal[i] = below, below, -1
		default:
			depth[i], signed[i], normal[i] = above, above, 1
		}
		if separating > 1 {
			return
		}
		minDepth = math32.Min(minDepth, depth[i])
	}

	if separating == 0 {
		res.penetration = minDepth
		axis := 0
		for i := 1; i < 3; i++ {
			if depth[i] < depth[axis] {
				axis = i
			}
		}
		push := depth[axis] * normal[axis]
		if push > 0 {
			res.depenetrating[axis] = math32.Max(push, vel[axis])
		} else {
			res.depenetrating[axis] = math32.Min(push, vel[axis])
		}
		return
	}

	if signed[separatingAxis]-normal[separatingAxis]*vel[separatingAxis] <= 0 {
		return
	}
	resolved := signed[separatingAxis] * normal[separatingAxis]
	res.clipped[separatingAxis] = resolved
	res.depenetrating[separatingAxis] = resolved
	return
}

// snap rounds distances below the float noise floor to zero.
func snap(v float32) float32 {
	if math32.Abs(v) <= 1e-7 {
		return 0
	}
	return v
}

// HasZeroVolume returns true if the box is a single point.
func HasZeroVolume(bb cube.BBox) bool {
	return bb.Min() == bb.Max()
}

// BoxFromDimensions returns a box of the given width and height with its bottom centred on the origin.
func BoxFromDimensions(width, height float32) cube.BBox {
	h := width / 2
	return cube.Box(-h, 0, -h, h, height, h)
}

// BoxFromHalfExtents returns a box centred on the origin.
func BoxFromHalfExtents(e mgl32.Vec3) cube.BBox {
	return cube.Box(-e[0], -e[1], -e[2], e[0], e[1], e[2])
}
