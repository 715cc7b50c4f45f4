package virtual

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/assert"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/omath"
	"github.com/oomph-ac/physcore/utils"
)

// groundProbe is the distance below the feet of a character searched for support.
const groundProbe = 2 * contactSlop

// CharacterSettings holds the settings a character is created with.
type CharacterSettings struct {
	// Position is the position of the feet of the character.
	Position mgl32.Vec3
	Width    float32
	Height   float32
	Layer    uint16
	// MaxSlopeAngle is the steepest slope in radians the character can stand on.
	MaxSlopeAngle float32
}

// DefaultCharacterSettings returns settings for a character of human size.
func DefaultCharacterSettings() CharacterSettings {
	return CharacterSettings{Width: 0.6, Height: 1.8, MaxSlopeAngle: 50 * math32.Pi / 180}
}

// collider is a body a character may collide with during a single update.
type collider struct {
	body *Body
	box  cube.BBox
}

// Character is a kinematic character moved by ExtendedUpdate. It is followed by a driven kinematic body,
// through which dynamic bodies of the world touch it.
type Character struct {
	w     *World
	inner *Body
	shape cube.BBox
	layer uint16

	cosMaxSlope float32

	position mgl32.Vec3
	up       mgl32.Vec3
	rotation mgl32.Quat
	velocity mgl32.Vec3

	groundState    backend.GroundState
	groundBody     backend.BodyID
	groundNormal   mgl32.Vec3
	groundVelocity mgl32.Vec3

	touching map[backend.BodyID]backend.CharacterContactSettings
	listener backend.CharacterContactListener
	updating bool
}

// Compile time check to make sure Character implements backend.Character.
var _ backend.Character = (*Character)(nil)

// CreateCharacter adds a character to the world.
func (w *World) CreateCharacter(s CharacterSettings) *Character {
	c := &Character{
		w:           w,
		shape:       utils.BoxFromDimensions(s.Width, s.Height),
		layer:       s.Layer,
		cosMaxSlope: math32.Cos(s.MaxSlopeAngle),
		position:    s.Position,
		up:          omath.BaseUp,
		rotation:    mgl32.QuatIdent(),
		groundState: backend.GroundStateInAir,
		groundBody:  backend.InvalidBodyID,
		touching:    make(map[backend.BodyID]backend.CharacterContactSettings),
	}
	c.inner = w.CreateBody(BodySettings{
		Motion:      MotionKinematic,
		Position:    c.center(),
		HalfExtents: mgl32.Vec3{s.Width / 2, s.Height / 2, s.Width / 2},
		Layer:       s.Layer,
	})
	c.inner.driven = true
	return c
}

// RemoveCharacter removes the character and its inner body from the world.
func (w *World) RemoveCharacter(c *Character) {
	w.RemoveBody(c.inner.id)
	c.listener = nil
}

func (c *Character) center() mgl32.Vec3 {
	return c.position.Add(mgl32.Vec3{0, c.shape.Height() / 2, 0})
}

// Box returns the world space box of the character.
func (c *Character) Box() cube.BBox {
	return c.shape.Translate(c.position)
}

// Position returns the position of the feet of the character.
func (c *Character) Position() mgl32.Vec3 {
	return c.position
}

// SetPosition teleports the character.
func (c *Character) SetPosition(pos mgl32.Vec3) {
	c.position = pos
	c.inner.position = c.center()
}

func (c *Character) SetUp(up mgl32.Vec3)                 { c.up = up }
func (c *Character) Up() mgl32.Vec3                      { return c.up }
func (c *Character) GetGroundState() backend.GroundState { return c.groundState }
func (c *Character) GetGroundVelocity() mgl32.Vec3       { return c.groundVelocity }
func (c *Character) GetGroundNormal() mgl32.Vec3         { return c.groundNormal }
func (c *Character) GroundBody() backend.BodyID          { return c.groundBody }
func (c *Character) GetLinearVelocity() mgl32.Vec3       { return c.velocity }
func (c *Character) SetLinearVelocity(v mgl32.Vec3)      { c.velocity = v }
func (c *Character) InnerBodyID() backend.BodyID         { return c.inner.id }

// SetRotation ...
func (c *Character) SetRotation(rot mgl32.Quat) {
	c.rotation = rot
	c.inner.rotation = rot
}

// SetListener ...
func (c *Character) SetListener(l backend.CharacterContactListener) {
	c.listener = l
}

// IsSupported returns true if the character stands on ground, steep or not.
func (c *Character) IsSupported() bool {
	return c.groundState == backend.GroundStateOnGround || c.groundState == backend.GroundStateOnSteepGround
}

// IsSlopeTooSteep ...
func (c *Character) IsSlopeTooSteep(normal mgl32.Vec3) bool {
	return !omath.IsNearZero(normal) && normal.Dot(c.up) < c.cosMaxSlope
}

// Touching returns the contact settings of a body the character currently touches.
func (c *Character) Touching(id backend.BodyID) (backend.CharacterContactSettings, bool) {
	s, ok := c.touching[id]
	return s, ok
}

// ExtendedUpdate moves the character by its velocity over delta, walking up steps and sticking to the
// floor as configured in s.
func (c *Character) ExtendedUpdate(delta float32, _ mgl32.Vec3, s backend.ExtendedUpdateSettings, filters backend.Filters) {
	assert.IsFalse(c.updating, "virtual character updated from within its own update")
	c.updating = true
	defer func() { c.updating = false }()

	var (
		wasSupported = c.groundState == backend.GroundStateOnGround
		move         = c.velocity.Mul(delta)
		box          = c.Box()
		stepUp       = mgl32.Vec3{0, s.WalkStairsStepUp.Len(), 0}
		stepDown     = mgl32.Vec3{0, -s.StickToFloorStepDown.Len(), 0}
	)
	colliders := c.colliders(box.Extend(move).Extend(stepUp).Extend(stepDown), filters)
	boxes := make([]cube.BBox, len(colliders))
	for i, col := range colliders {
		boxes[i] = col.box
	}

	resolved, collided := sweep(boxes, box, move)
	if wasSupported && (collided[0] || collided[2]) && stepUp[1] > 0 {
		if stepped, ok := stepOver(boxes, box, move, stepUp); ok && horizontalLenSqr(stepped) > horizontalLenSqr(resolved) {
			resolved = stepped
			collided[0], collided[2] = false, false
		}
	}
	if wasSupported && resolved[1] <= 0 && stepDown[1] < 0 {
		moved := box.Translate(resolved)
		if _, ok := c.support(colliders, moved); !ok {
			if probe, hit := sweep(boxes, moved, stepDown); hit[1] {
				resolved[1] += probe[1]
			}
		}
	}
	for i, hit := range collided {
		if hit {
			c.velocity[i] = 0
		}
	}

	c.position = c.position.Add(resolved)
	c.inner.position = c.center()
	c.inner.linear = c.velocity

	c.updateGround(colliders)
	c.updateContacts(colliders)
}

// stepOver tries to move box by move after lifting it by up, and lowers it again afterwards.
func stepOver(boxes []cube.BBox, box cube.BBox, move, up mgl32.Vec3) (mgl32.Vec3, bool) {
	lift, _ := sweep(boxes, box, up)
	box = box.Translate(lift)
	horizontal, _ := sweep(boxes, box, mgl32.Vec3{move[0], 0, move[2]})
	box = box.Translate(horizontal)
	drop, _ := sweep(boxes, box, mgl32.Vec3{0, move[1] - lift[1], 0})
	box = box.Translate(drop).Grow(-contactSlop)
	for _, b := range boxes {
		if b.IntersectsWith(box) {
			return mgl32.Vec3{}, false
		}
	}
	return lift.Add(horizontal).Add(drop), true
}

func horizontalLenSqr(v mgl32.Vec3) float32 {
	return v[0]*v[0] + v[2]*v[2]
}

// colliders returns the bodies within area that pass the filters and the contact listener.
func (c *Character) colliders(area cube.BBox, filters backend.Filters) []collider {
	area = area.Grow(contactSlop)
	var found []collider
	for _, b := range c.w.list() {
		if b == c.inner {
			continue
		}
		if filters.BroadPhase != nil && !filters.BroadPhase.ShouldCollide(b.layer) {
			continue
		}
		if filters.Object != nil && !filters.Object.ShouldCollide(b.layer) {
			continue
		}
		if filters.Body != nil && !filters.Body.ShouldCollide(b.id) {
			continue
		}
		box := b.Box()
		if !box.IntersectsWith(area) {
			continue
		}
		if c.listener != nil && !c.listener.OnCharacterContactValidate(b.id) {
			continue
		}
		found = append(found, collider{body: b, box: box})
	}
	return found
}

// support returns the collider box carries, if any.
func (c *Character) support(colliders []collider, box cube.BBox) (collider, bool) {
	probe := box.Translate(mgl32.Vec3{0, -groundProbe, 0})
	feet := box.Min().Y()
	for _, col := range colliders {
		if col.box.Max().Y() <= feet+contactSlop && col.box.IntersectsWith(probe) {
			return col, true
		}
	}
	return collider{}, false
}

// updateGround resolves the ground state from the support of the character after moving.
func (c *Character) updateGround(colliders []collider) {
	box := c.Box()
	ground, ok := c.support(colliders, box)
	if !ok {
		c.groundBody = backend.InvalidBodyID
		c.groundNormal = mgl32.Vec3{}
		c.groundVelocity = mgl32.Vec3{}
		c.groundState = backend.GroundStateInAir
		for _, col := range colliders {
			if col.box.IntersectsWith(box.Grow(contactSlop)) {
				c.groundState = backend.GroundStateNotSupported
				break
			}
		}
		return
	}

	linear, angular := ground.body.linear, ground.body.angular
	if c.listener != nil {
		c.listener.OnAdjustBodyVelocity(ground.body.id, &linear, &angular)
	}
	c.groundBody = ground.body.id
	c.groundNormal = mgl32.Vec3{0, 1, 0}
	c.groundVelocity = linear
	c.groundState = backend.GroundStateOnGround
	if c.IsSlopeTooSteep(c.groundNormal) {
		c.groundState = backend.GroundStateOnSteepGround
	}
}

// updateContacts reports bodies the character started touching.
func (c *Character) updateContacts(colliders []collider) {
	box := c.Box().Grow(contactSlop)
	centre := c.center()
	current := make(map[backend.BodyID]backend.CharacterContactSettings, len(colliders))
	for _, col := range colliders {
		if !col.box.IntersectsWith(box) {
			continue
		}
		settings, touching := c.touching[col.body.id]
		if !touching {
			settings = backend.CharacterContactSettings{CanPushCharacter: true, CanReceiveImpulses: true}
			point := closestPoint(col.box, centre)
			normal := omath.NormalizeOr(centre.Sub(point), omath.BaseUp)
			if c.listener != nil {
				c.listener.OnCharacterContactAdded(col.body.id, point, normal, &settings)
			}
			if settings.CanReceiveImpulses && col.body.motion == MotionDynamic {
				col.body.wake()
			}
		}
		current[col.body.id] = settings
	}
	c.touching = current
}

// closestPoint returns the point of box closest to p.
func closestPoint(box cube.BBox, p mgl32.Vec3) mgl32.Vec3 {
	lo, hi := box.Min(), box.Max()
	return mgl32.Vec3{
		mgl32.Clamp(p[0], lo[0], hi[0]),
		mgl32.Clamp(p[1], lo[1], hi[1]),
		mgl32.Clamp(p[2], lo[2], hi[2]),
	}
}
