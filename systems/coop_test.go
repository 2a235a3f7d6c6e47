package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

func testCoop(t *testing.T) (*Coop, torus.Space) {
	t.Helper()
	cfg := config.Default()
	space := torus.New(1280, 800)
	return NewCoop(space, cfg.Coop), space
}

func TestNewCoopPlacement(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"wide", 1280, 800},
		{"small", 320, 240},
		{"tall", 400, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			c := NewCoop(torus.New(tt.w, tt.h), cfg.Coop)

			if c.Size > cfg.Coop.Size {
				t.Errorf("size %v exceeds configured %v", c.Size, cfg.Coop.Size)
			}
			if c.Wall < coopWallMin || c.Wall > coopWallMax {
				t.Errorf("wall %v outside [%v,%v]", c.Wall, coopWallMin, coopWallMax)
			}
			if c.DoorWidth > c.Size*coopDoorMaxFrac+1e-9 {
				t.Errorf("door width %v exceeds %v", c.DoorWidth, c.Size*coopDoorMaxFrac)
			}
			pad := coopEdgeMargin + c.Size/2
			if c.X < pad-1e-9 || c.X > tt.w-pad+1e-9 {
				t.Errorf("centre x %v not clamped into [%v,%v]", c.X, pad, tt.w-pad)
			}
			if c.Inner() >= c.Outer() {
				t.Errorf("inner %v >= outer %v", c.Inner(), c.Outer())
			}
		})
	}
}

func TestResolveCollisionFromCentre(t *testing.T) {
	c, space := testCoop(t)
	rng := rand.New(rand.NewSource(7))
	radius := 9.0

	for i := 0; i < 200; i++ {
		pos := components.Position{X: c.X, Y: c.Y}
		vel := components.Velocity{X: 40, Y: -30}
		c.ResolveCollision(&pos, &vel, radius, rng)

		d := space.Dist(pos.X, pos.Y, c.X, c.Y)
		angle := math.Atan2(pos.Y-c.Y, pos.X-c.X)
		if d < c.Inner()+radius && !c.InDoorWindow(angle) {
			t.Fatalf("agent left at distance %v, want >= %v", d, c.Inner()+radius)
		}
		if c.BodyContains(pos.X, pos.Y) {
			t.Fatalf("agent still inside coop body at %v,%v", pos.X, pos.Y)
		}
	}
}

func TestResolveCollisionWallBand(t *testing.T) {
	c, space := testCoop(t)
	rng := rand.New(rand.NewSource(1))
	radius := 9.0
	mid := (c.Inner() + c.Outer()) / 2

	tests := []struct {
		name    string
		angle   float64
		wantOut bool
	}{
		{"top of wall", -math.Pi / 2, true},
		{"left wall", math.Pi, true},
		{"doorway", c.DoorAngle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := components.Position{X: c.X + mid*math.Cos(tt.angle), Y: c.Y + mid*math.Sin(tt.angle)}
			vel := components.Velocity{X: 100, Y: 100}
			moved := c.ResolveCollision(&pos, &vel, radius, rng)

			if moved != tt.wantOut {
				t.Fatalf("moved = %v, want %v", moved, tt.wantOut)
			}
			if !tt.wantOut {
				return
			}
			d := space.Dist(pos.X, pos.Y, c.X, c.Y)
			if d < c.Outer()+radius-1e-9 {
				t.Errorf("distance after push = %v, want >= %v", d, c.Outer()+radius)
			}
			if math.Abs(vel.X-100*coopPushDamping) > 1e-9 {
				t.Errorf("velocity not damped: %v", vel.X)
			}
		})
	}
}

func TestResolveCollisionInnerRimPushesOut(t *testing.T) {
	c, space := testCoop(t)
	rng := rand.New(rand.NewSource(2))
	radius := 9.0

	d0 := c.Inner() + 0.5
	pos := components.Position{X: c.X - d0, Y: c.Y}
	vel := components.Velocity{}
	if !c.ResolveCollision(&pos, &vel, radius, rng) {
		t.Fatal("agent on the inner rim was not moved")
	}
	if d := space.Dist(pos.X, pos.Y, c.X, c.Y); d < c.Outer()+radius {
		t.Errorf("distance = %v, want >= %v", d, c.Outer()+radius)
	}
	if c.BodyContains(pos.X, pos.Y) {
		t.Error("agent pushed into the coop body")
	}
}

func TestResolveCollisionOutsideNoop(t *testing.T) {
	c, _ := testCoop(t)
	rng := rand.New(rand.NewSource(1))

	pos := components.Position{X: c.X + c.Outer() + 30, Y: c.Y}
	vel := components.Velocity{X: 5, Y: 5}
	if c.ResolveCollision(&pos, &vel, 9, rng) {
		t.Error("agent well outside the coop was moved")
	}
	if vel.X != 5 || vel.Y != 5 {
		t.Errorf("velocity changed to %v", vel)
	}
}

func TestZones(t *testing.T) {
	c, _ := testCoop(t)

	dx, dy := c.DoorPoint()
	if !c.InDespawnZone(dx, dy+1) {
		t.Error("point at the doorway not in despawn zone")
	}
	if c.InDespawnZone(c.X, c.Y-c.Outer()) {
		t.Error("point behind the coop in despawn zone")
	}

	ox, oy := c.DoorOutside()
	if c.InDespawnZone(ox, oy) {
		t.Error("spawn point inside despawn zone")
	}
	if c.Contains(ox, oy, 0) {
		t.Error("spawn point inside coop")
	}
	if !c.InSpawnZone(c.X, c.Y+c.Outer()+config.Default().Coop.ZoneSpacing) {
		t.Error("spawn zone centre not in spawn zone")
	}
}

func TestAvoidanceForce(t *testing.T) {
	c, _ := testCoop(t)
	cfg := config.Default().Coop

	far := c.AvoidanceForce(c.X+cfg.AvoidRadius+1, c.Y)
	if far.X != 0 || far.Y != 0 {
		t.Errorf("force beyond avoid radius = %v, want zero", far)
	}

	near := c.AvoidanceForce(c.X+cfg.AvoidRadius*0.25, c.Y)
	nearer := c.AvoidanceForce(c.X+cfg.AvoidRadius*0.1, c.Y)
	if near.X <= 0 {
		t.Errorf("force should push outward (+x), got %v", near)
	}
	if nearer.X <= near.X {
		t.Errorf("force should grow toward centre: %v <= %v", nearer.X, near.X)
	}
}

func TestHomeTargetBypass(t *testing.T) {
	c, _ := testCoop(t)

	// Directly above the coop: route round the side.
	_, _, bypass := c.HomeTarget(c.X+5, c.Y-c.Outer()-40, 24, 10)
	if !bypass {
		t.Error("agent behind the coop should bypass")
	}

	// Below the door: straight in.
	tx, ty, bypass := c.HomeTarget(c.X, c.Y+c.Outer()+100, 24, 10)
	if bypass {
		t.Error("agent below the door should not bypass")
	}
	if math.Abs(tx-c.X) > 1e-9 || math.Abs(ty-(c.Y+c.Outer()+10)) > 1e-9 {
		t.Errorf("home target = (%v,%v)", tx, ty)
	}
}
