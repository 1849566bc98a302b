package character

import (
	"testing"

	"github.com/crowdware/raidkit/pkg/math"
)

// flatFloor is solid for every cell at y < 0.
func flatFloor(ix, iy, iz int) bool {
	return iy < 0
}

func settle(c *Controller, steps int, input Input) {
	for i := 0; i < steps; i++ {
		c.Update(1.0/60.0, input)
	}
}

func TestFallsAndLands(t *testing.T) {
	c := New(DefaultConfig())
	c.SetSolidQuery(flatFloor)
	c.SetPosition(math.Vec3{Y: 5})

	settle(c, 180, Input{})

	if !c.Grounded() {
		t.Fatal("expected controller to be grounded after falling")
	}
	p := c.Position()
	// Capsule half extent: height/2 - radius + radius + skin = 0.91.
	if p.Y < 0.8 || p.Y > 1.1 {
		t.Errorf("rest height = %v, want just above the floor", p.Y)
	}
	if c.Velocity().Y != 0 {
		t.Errorf("vertical velocity = %v, want 0 at rest", c.Velocity().Y)
	}
}

func TestFixedStepAccumulator(t *testing.T) {
	a := New(DefaultConfig())
	a.SetSolidQuery(flatFloor)
	a.SetPosition(math.Vec3{Y: 5})

	b := New(DefaultConfig())
	b.SetSolidQuery(flatFloor)
	b.SetPosition(math.Vec3{Y: 5})

	// One second in uneven chunks must equal one second in fixed steps.
	settle(a, 60, Input{})
	for _, dt := range []float32{0.25, 0.1, 0.4, 0.25} {
		b.Update(dt, Input{})
	}

	// Accumulator rounding may leave the runs one fixed step apart.
	pa, pb := a.Position(), b.Position()
	if diff := pa.Y - pb.Y; diff > 0.2 || diff < -0.2 {
		t.Errorf("positions diverged: %v vs %v", pa.Y, pb.Y)
	}
}

func TestWallStopsMovement(t *testing.T) {
	// Wall occupying all cells at ix >= 2 (x >= 1.2 world).
	wall := func(ix, iy, iz int) bool {
		return iy < 0 || ix >= 2
	}
	c := New(DefaultConfig())
	c.SetSolidQuery(wall)
	c.SetPosition(math.Vec3{Y: 1})

	settle(c, 120, Input{AccelX: 20})

	p := c.Position()
	maxX := 1.2 - (DefaultConfig().Radius + DefaultConfig().Skin)
	if p.X > maxX+0.01 {
		t.Errorf("penetrated wall: x = %v, limit %v", p.X, maxX)
	}
	if p.X < 0.5 {
		t.Errorf("barely moved: x = %v", p.X)
	}
}

func TestStepUpAssist(t *testing.T) {
	// A single low ledge: one extra solid layer for ix >= 2.
	ledge := func(ix, iy, iz int) bool {
		if iy < 0 {
			return true
		}
		return ix >= 2 && iy == 0
	}
	cfg := DefaultConfig()
	cfg.StepHeight = 0.7 // above one block of 0.6
	c := New(cfg)
	c.SetSolidQuery(ledge)
	c.SetPosition(math.Vec3{Y: 1})
	settle(c, 60, Input{}) // settle onto the floor

	settle(c, 240, Input{AccelX: 10})

	p := c.Position()
	if p.X < 1.3 {
		t.Errorf("did not climb the ledge: x = %v", p.X)
	}
}

func TestJumpNeedsGroundAndHeadroom(t *testing.T) {
	t.Run("airborne jump ignored", func(t *testing.T) {
		c := New(DefaultConfig())
		c.SetSolidQuery(flatFloor)
		c.SetPosition(math.Vec3{Y: 5})
		c.Update(1.0/60.0, Input{Jump: true, JumpSpeed: 5.5})
		if c.Velocity().Y > 0 {
			t.Errorf("airborne jump set velocity %v", c.Velocity().Y)
		}
	})

	t.Run("grounded jump launches", func(t *testing.T) {
		c := New(DefaultConfig())
		c.SetSolidQuery(flatFloor)
		c.SetPosition(math.Vec3{Y: 2})
		settle(c, 120, Input{}) // land first
		if !c.Grounded() {
			t.Fatal("setup: not grounded")
		}
		c.Update(1.0/60.0, Input{Jump: true, JumpSpeed: 5.5})
		if c.Velocity().Y <= 0 {
			t.Errorf("grounded jump velocity = %v, want > 0", c.Velocity().Y)
		}
	})

	t.Run("low ceiling blocks jump", func(t *testing.T) {
		// Ceiling at y=2.4; the resting capsule top sits at ~1.82, so a
		// clearance larger than the gap must veto the jump.
		cave := func(ix, iy, iz int) bool {
			return iy < 0 || iy >= 4
		}
		cfg := DefaultConfig()
		cfg.JumpClearance = 0.7
		c := New(cfg)
		c.SetSolidQuery(cave)
		c.SetPosition(math.Vec3{Y: 1})
		settle(c, 120, Input{})
		if !c.Grounded() {
			t.Fatal("setup: not grounded")
		}
		c.Update(1.0/60.0, Input{Jump: true, JumpSpeed: 5.5})
		if c.Velocity().Y > 0 {
			t.Errorf("jump under ceiling set velocity %v", c.Velocity().Y)
		}
	})
}

func TestTogglesDisablePhysics(t *testing.T) {
	c := New(DefaultConfig())
	c.SetSolidQuery(flatFloor)
	c.SetPosition(math.Vec3{Y: 5})
	c.SetGravityEnabled(false)

	settle(c, 60, Input{})
	if p := c.Position(); p.Y != 5 {
		t.Errorf("gravity disabled but fell to %v", p.Y)
	}

	c.SetCollisionEnabled(false)
	c.SetGravityEnabled(true)
	settle(c, 600, Input{})
	if p := c.Position(); p.Y > -1 {
		t.Errorf("collision disabled but stopped at %v", p.Y)
	}
}
