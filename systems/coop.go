package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// Coop placement bounds.
const (
	coopMinSize      = 84
	coopViewportFrac = 0.14
	coopWallMin      = 6
	coopWallMax      = 12
	coopDoorMaxFrac  = 0.46
	coopEdgeMargin   = 18
	coopPushDamping  = 0.82
	coopPasses       = 3
	doorOutsideExtra = 10
)

// Coop is a circular walled structure with a doorway gap facing down (+Y).
// The region inside the inner radius is solid; only positions within the door's
// angular window may occupy the wall band.
type Coop struct {
	X, Y      float64 // Centre
	Size      float64 // Diameter of the outer wall
	Wall      float64
	DoorWidth float64
	DoorAngle float64

	cfg   config.CoopConfig
	space torus.Space
}

// NewCoop places a coop in the given world, sized relative to the viewport.
func NewCoop(space torus.Space, cfg config.CoopConfig) *Coop {
	size := math.Min(cfg.Size, math.Max(coopMinSize, math.Min(space.W, space.H)*coopViewportFrac))
	c := &Coop{
		Size:      size,
		Wall:      clampFloat(cfg.Wall, coopWallMin, coopWallMax),
		DoorWidth: math.Min(cfg.DoorWidth, size*coopDoorMaxFrac),
		DoorAngle: math.Pi / 2,
		cfg:       cfg,
		space:     space,
	}

	pad := coopEdgeMargin + size/2
	c.X = clampCentre(cfg.CenterX*space.W, pad, space.W)
	c.Y = clampCentre(cfg.CenterY*space.H, pad, space.H)
	return c
}

func clampCentre(v, pad, size float64) float64 {
	if size <= 2*pad {
		return size / 2
	}
	return clampFloat(v, pad, size-pad)
}

// Outer returns the outer wall radius.
func (c *Coop) Outer() float64 { return c.Size / 2 }

// Inner returns the inner wall radius.
func (c *Coop) Inner() float64 { return c.Outer() - c.Wall }

// DoorHalfAngle returns half the door's angular width.
func (c *Coop) DoorHalfAngle() float64 {
	return c.DoorWidth / c.Outer() / 2
}

// InDoorWindow reports whether an angle around the centre lies within the doorway.
func (c *Coop) InDoorWindow(angle float64) bool {
	d := angle - c.DoorAngle
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return math.Abs(d) <= c.DoorHalfAngle()
}

// offset returns the toroidal vector from the centre to (x, y).
func (c *Coop) offset(x, y float64) r2.Vec {
	return c.space.Vector(r2.Vec{X: c.X, Y: c.Y}, r2.Vec{X: x, Y: y})
}

// ResolveCollision pushes a circle of the given radius out of the coop.
// Returns true when the position was corrected.
func (c *Coop) ResolveCollision(pos *components.Position, vel *components.Velocity, radius float64, rng *rand.Rand) bool {
	outer, inner := c.Outer(), c.Inner()
	moved := false

	for pass := 0; pass < coopPasses; pass++ {
		v := c.offset(pos.X, pos.Y)
		dir, d := unitOr(rng, v)
		if d >= outer+radius {
			break
		}

		var target float64
		if d < inner {
			// Solid interior, door or not: out to the inner rim, the next pass clears the band.
			target = inner + radius + c.cfg.Pad
		} else {
			if c.InDoorWindow(math.Atan2(dir.Y, dir.X)) {
				break
			}
			// Wall band always resolves outward, even from the inner rim.
			target = outer + radius + c.cfg.Pad
		}

		p := r2.Add(r2.Vec{X: c.X, Y: c.Y}, r2.Scale(target, dir))
		pos.X, pos.Y = c.space.WrapPos(p.X, p.Y)
		vel.X *= coopPushDamping
		vel.Y *= coopPushDamping
		moved = true
	}
	return moved
}

// BodyContains reports whether (x, y) lies strictly inside the inner radius.
func (c *Coop) BodyContains(x, y float64) bool {
	return r2.Norm(c.offset(x, y)) < c.Inner()
}

// Contains reports whether (x, y) lies inside the outer radius plus margin.
func (c *Coop) Contains(x, y, margin float64) bool {
	return r2.Norm(c.offset(x, y)) < c.Outer()+margin
}

// DoorPoint returns the doorway centre on the outer wall.
func (c *Coop) DoorPoint() (float64, float64) {
	return c.space.WrapPos(c.X, c.Y+c.Outer())
}

// InDespawnZone reports whether (x, y) is within the despawn radius of the doorway.
func (c *Coop) InDespawnZone(x, y float64) bool {
	dx, dy := c.DoorPoint()
	return c.space.Dist(x, y, dx, dy) < c.cfg.DespawnRadius
}

// InSpawnZone reports whether (x, y) is within the spawn radius below the doorway.
func (c *Coop) InSpawnZone(x, y float64) bool {
	sx, sy := c.space.WrapPos(c.X, c.Y+c.Outer()+c.cfg.ZoneSpacing)
	return c.space.Dist(x, y, sx, sy) < c.cfg.SpawnRadius
}

// DoorOutside returns the point where fresh agents appear, past the spawn zone.
func (c *Coop) DoorOutside() (float64, float64) {
	return c.space.WrapPos(c.X, c.Y+c.Outer()+c.cfg.ZoneSpacing+c.cfg.SpawnRadius+doorOutsideExtra)
}

// AvoidanceForce returns a radial push that grows linearly toward the centre.
func (c *Coop) AvoidanceForce(x, y float64) r2.Vec {
	v := c.offset(x, y)
	d := r2.Norm(v)
	if d >= c.cfg.AvoidRadius || d < degenerateDist {
		return r2.Vec{}
	}
	mag := (1 - d/c.cfg.AvoidRadius) * c.cfg.AvoidStrength
	return r2.Scale(mag/d, v)
}

// HomeTarget returns the walk-home target for an agent at (x, y).
// Agents behind the coop and level with it route around a side first.
func (c *Coop) HomeTarget(x, y, margin, doorOffset float64) (tx, ty float64, bypass bool) {
	v := c.offset(x, y)
	outer := c.Outer()
	if v.Y < -margin && math.Abs(v.X) < outer+margin {
		side := 1.0
		if v.X < 0 {
			side = -1
		}
		tx, ty = c.space.WrapPos(c.X+side*(outer+margin), c.Y)
		return tx, ty, true
	}
	tx, ty = c.space.WrapPos(c.X, c.Y+outer+doorOffset)
	return tx, ty, false
}
