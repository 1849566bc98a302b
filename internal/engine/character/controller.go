// Package character implements a kinematic character controller over a
// solid-block world. Physics runs at a fixed 60 Hz step regardless of
// the caller's frame rate.
package character

import (
	gomath "math"

	"github.com/crowdware/raidkit/pkg/math"
)

const (
	fixedDt  = 1.0 / 60.0
	minDelta = 0.000001
)

// SolidQuery reports whether the block at the given integer cell is solid.
type SolidQuery func(ix, iy, iz int) bool

// Config holds the capsule shape and world tuning of a controller.
type Config struct {
	Radius        float32
	Height        float32
	Skin          float32
	StepHeight    float32
	JumpClearance float32
	BlockSize     float32
	Gravity       float32
}

// DefaultConfig returns the standard humanoid capsule.
func DefaultConfig() Config {
	return Config{
		Radius:        0.3,
		Height:        1.8,
		Skin:          0.01,
		StepHeight:    0.2,
		JumpClearance: 0.2,
		BlockSize:     0.6,
		Gravity:       -9.81,
	}
}

// Input is the per-update control state.
type Input struct {
	AccelX    float32
	AccelY    float32
	AccelZ    float32
	Jump      bool
	JumpSpeed float32
}

// Controller moves a capsule through the block world with per-axis
// collision resolution, step-up assist and grounded tracking.
type Controller struct {
	cfg              Config
	isSolid          SolidQuery
	position         math.Vec3
	velocity         math.Vec3
	grounded         bool
	gravityEnabled   bool
	collisionEnabled bool
	accumulator      float32
}

// New returns a controller with gravity and collision enabled.
func New(cfg Config) *Controller {
	return &Controller{
		cfg:              cfg,
		gravityEnabled:   true,
		collisionEnabled: true,
	}
}

// SetSolidQuery installs the world lookup. Without one the controller
// moves freely.
func (c *Controller) SetSolidQuery(q SolidQuery) { c.isSolid = q }

// SetPosition teleports the capsule center.
func (c *Controller) SetPosition(p math.Vec3) { c.position = p }

// SetVelocity overrides the current velocity.
func (c *Controller) SetVelocity(v math.Vec3) { c.velocity = v }

// SetGravity changes the gravity acceleration.
func (c *Controller) SetGravity(g float32) { c.cfg.Gravity = g }

// SetGravityEnabled toggles gravity. Disabling it also clears vertical
// velocity and grounded state (fly mode).
func (c *Controller) SetGravityEnabled(enabled bool) {
	c.gravityEnabled = enabled
	if enabled {
		return
	}
	c.velocity.Y = 0
	c.grounded = false
}

// SetCollisionEnabled toggles world collision (noclip when off).
func (c *Controller) SetCollisionEnabled(enabled bool) { c.collisionEnabled = enabled }

func (c *Controller) GravityEnabled() bool   { return c.gravityEnabled }
func (c *Controller) CollisionEnabled() bool { return c.collisionEnabled }
func (c *Controller) Position() math.Vec3    { return c.position }
func (c *Controller) Velocity() math.Vec3    { return c.velocity }
func (c *Controller) Grounded() bool         { return c.grounded }

// Update advances the simulation by dt seconds, running as many fixed
// steps as the accumulated time covers.
func (c *Controller) Update(dt float32, input Input) {
	if dt > 0 {
		c.accumulator += dt
	}
	for c.accumulator >= fixedDt {
		c.fixedUpdate(fixedDt, input)
		c.accumulator -= fixedDt
	}
}

func (c *Controller) fixedUpdate(dt float32, input Input) {
	wasGrounded := c.grounded
	c.grounded = false

	c.velocity.X += input.AccelX * dt
	c.velocity.Y += input.AccelY * dt
	c.velocity.Z += input.AccelZ * dt
	if c.gravityEnabled {
		c.velocity.Y += c.cfg.Gravity * dt
	}
	if input.Jump && wasGrounded && c.hasHeadroom(c.cfg.JumpClearance) {
		c.velocity.Y = input.JumpSpeed
	}

	c.moveAxis(c.velocity.X*dt, 0, true)
	c.moveAxis(c.velocity.Y*dt, 1, false)
	c.moveAxis(c.velocity.Z*dt, 2, true)
}

// moveAxis advances one axis, backing off in skin-sized increments on
// collision and trying a step-up for horizontal moves.
func (c *Controller) moveAxis(delta float32, axis int, allowStep bool) bool {
	if abs(delta) < minDelta {
		return false
	}

	original := c.position
	*axisOf(&c.position, axis) += delta
	if !c.overlapsSolid(c.aabb()) {
		return true
	}

	c.position = original
	direction := float32(1)
	if delta < 0 {
		direction = -1
	}
	var moved float32
	maxMove := abs(delta)
	step := c.cfg.Skin
	if step < 0.001 {
		step = 0.001
	}
	for traveled := float32(0); traveled < maxMove; traveled += step {
		moved = traveled + step
		if moved > maxMove {
			moved = maxMove
		}
		*axisOf(&c.position, axis) = *axisOf(&original, axis) + direction*moved
		if c.overlapsSolid(c.aabb()) {
			moved -= step
			if moved < 0 {
				moved = 0
			}
			break
		}
	}
	*axisOf(&c.position, axis) = *axisOf(&original, axis) + direction*moved

	if axis == 1 && direction < 0 {
		c.grounded = true
	}

	switch axis {
	case 0:
		c.velocity.X = 0
	case 1:
		c.velocity.Y = 0
	default:
		c.velocity.Z = 0
	}

	if allowStep && c.cfg.StepHeight > 0 && axis != 1 {
		beforeStep := c.position
		c.position.Y += c.cfg.StepHeight
		if !c.overlapsSolid(c.aabb()) {
			*axisOf(&c.position, axis) = *axisOf(&original, axis) + direction*maxMove
			if !c.overlapsSolid(c.aabb()) {
				return true
			}
		}
		c.position = beforeStep
	}
	return false
}

type aabb struct {
	min, max math.Vec3
}

func (c *Controller) aabb() aabb {
	halfHeight := c.cfg.Height*0.5 - c.cfg.Radius
	if halfHeight < 0 {
		halfHeight = 0
	}
	radius := c.cfg.Radius + c.cfg.Skin
	return aabb{
		min: math.Vec3{X: c.position.X - radius, Y: c.position.Y - halfHeight - radius, Z: c.position.Z - radius},
		max: math.Vec3{X: c.position.X + radius, Y: c.position.Y + halfHeight + radius, Z: c.position.Z + radius},
	}
}

func (c *Controller) overlapsSolid(box aabb) bool {
	if !c.collisionEnabled || c.isSolid == nil {
		return false
	}
	minX := floorToInt(box.min.X / c.cfg.BlockSize)
	minY := floorToInt(box.min.Y / c.cfg.BlockSize)
	minZ := floorToInt(box.min.Z / c.cfg.BlockSize)
	maxX := floorToInt(box.max.X / c.cfg.BlockSize)
	maxY := floorToInt(box.max.Y / c.cfg.BlockSize)
	maxZ := floorToInt(box.max.Z / c.cfg.BlockSize)
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if c.isSolid(x, y, z) {
					return true
				}
			}
		}
	}
	return false
}

func (c *Controller) hasHeadroom(clearance float32) bool {
	if clearance <= 0 {
		return true
	}
	box := c.aabb()
	box.min.Y += clearance
	box.max.Y += clearance
	return !c.overlapsSolid(box)
}

func axisOf(v *math.Vec3, i int) *float32 {
	switch i {
	case 0:
		return &v.X
	case 1:
		return &v.Y
	}
	return &v.Z
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func floorToInt(v float32) int {
	return int(gomath.Floor(float64(v)))
}
