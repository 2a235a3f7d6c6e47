package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// Steering constants.
const (
	eyeFollow   = 0.25
	eyeMinSpeed = 1.0
	minEatTime  = 0.05 // Seconds to finish a seed, floor
)

// Outcome says what happened to an agent after it moved.
type Outcome uint8

const (
	OutcomeStay          Outcome = iota
	OutcomeArrived               // Reached the coop door for rest
	OutcomeDespawnZone           // Entered the doorway despawn zone
	OutcomeSafetyDespawn         // Ended up inside the coop body
)

// MoveResult reports the outcome of one movement step.
type MoveResult struct {
	Outcome  Outcome
	Ate      bool // Pecked at a seed this tick
	Depleted bool // Finished a seed
}

// PhysicsSystem integrates agent motion, eating and coop collision.
type PhysicsSystem struct {
	cfg   *config.Config
	space torus.Space
	coop  *Coop
	seeds *SeedField
	rng   *rand.Rand
}

// NewPhysicsSystem creates a physics system.
func NewPhysicsSystem(cfg *config.Config, space torus.Space, coop *Coop, seeds *SeedField, rng *rand.Rand) *PhysicsSystem {
	return &PhysicsSystem{
		cfg:   cfg,
		space: space,
		coop:  coop,
		seeds: seeds,
		rng:   rng,
	}
}

// SetWorld rebinds the system to a resized world.
func (s *PhysicsSystem) SetWorld(space torus.Space, coop *Coop) {
	s.space = space
	s.coop = coop
}

// SpeedCap returns the speed limit for an agent's current directive.
func (s *PhysicsSystem) SpeedCap(a AgentRef) float64 {
	limit := a.Temp.MaxSpeed
	if !a.Mind.Directed() {
		return limit
	}
	limit *= s.cfg.Movement.ChaseSpeedMult
	switch a.Mind.Kind() {
	case components.KindPanicking:
		limit *= s.cfg.Panic.SpeedMult
	case components.KindFleeing:
		limit *= s.cfg.Flee.SpeedMult
	case components.KindGoingToCoop:
		limit *= s.cfg.Movement.CoopWalkSpeedMult
	}
	return limit
}

// Move integrates one agent given its accumulated social acceleration.
func (s *PhysicsSystem) Move(a AgentRef, social r2.Vec, dt float64) MoveResult {
	mv := s.cfg.Movement
	rng := s.rng
	t := a.Temp
	v := a.Vitals

	v.ZigzagPhase = math.Mod(v.ZigzagPhase+2*math.Pi*t.ZigzagFreq*dt, 2*math.Pi)
	wobble := math.Sin(v.ZigzagPhase)

	acc := r2.Add(social, r2.Scale(t.Wander, randUnit(rng)))
	if a.Mind.CoopBound() == nil {
		acc = r2.Add(acc, s.coop.AvoidanceForce(a.Pos.X, a.Pos.Y))
	}

	v.SkidTimer = math.Max(0, v.SkidTimer-dt)

	vel := r2.Vec{X: a.Vel.X, Y: a.Vel.Y}
	toTarget := s.space.Vector(pos(a), r2.Vec{X: a.Mind.TX, Y: a.Mind.TY})
	dir, dist := unitOr(rng, toTarget)
	perp := r2.Vec{X: -dir.Y, Y: dir.X}
	limit := s.SpeedCap(a)

	if a.Mind.Directed() {
		if v.SkidTimer <= 0 && dist < mv.SkidTrigger && r2.Norm(vel) > limit*mv.SkidSpeedFrac {
			v.SkidTimer = randRange(rng, mv.SkidTimeMin, mv.SkidTimeMax)
		}
		aim, _ := unitOr(rng, r2.Add(dir, r2.Scale(wobble*mv.ZigzagAmpChase, perp)))
		gain := mv.ChaseVelGain * t.ChaseBoost
		if v.SkidTimer > 0 {
			gain *= mv.SkidSteer
		}
		steer := r2.Scale(gain, r2.Sub(r2.Scale(limit, aim), vel))
		acc = r2.Scale(mv.ChaseAccelDamp, r2.Add(acc, steer))
	} else {
		pull := r2.Scale(t.CenterPull*mv.CenterPullGain/s.space.MaxDist(), toTarget)
		side := r2.Scale(wobble*mv.ZigzagAmpWander*r2.Norm(pull), perp)
		acc = r2.Add(acc, r2.Add(pull, side))
		if rng.Float64() < t.ImpulseChance*dt*60 {
			acc = r2.Add(acc, r2.Scale(mv.ImpulseAccel*t.ImpulseScale, randUnit(rng)))
		}
	}

	damp := t.Damping
	if v.SkidTimer > 0 {
		damp = mv.SkidDamping
	}
	vel = r2.Scale(frameDecay(damp, dt), r2.Add(vel, r2.Scale(dt, acc)))
	if v.PeckTimer > 0 {
		vel = r2.Scale(mv.PeckSlow, vel)
	}
	vel = clampMagnitude(vel, limit)
	a.Vel.X, a.Vel.Y = vel.X, vel.Y

	a.Pos.X, a.Pos.Y = s.space.WrapPos(a.Pos.X+vel.X*dt, a.Pos.Y+vel.Y*dt)
	s.updateEyes(a, vel)

	var res MoveResult
	switch {
	case s.arrived(a):
		res.Outcome = OutcomeArrived
		return res
	case s.coop.InDespawnZone(a.Pos.X, a.Pos.Y):
		res.Outcome = OutcomeDespawnZone
		return res
	}

	s.coop.ResolveCollision(a.Pos, a.Vel, a.Body.Radius(), rng)
	if s.coop.BodyContains(a.Pos.X, a.Pos.Y) {
		res.Outcome = OutcomeSafetyDespawn
		return res
	}

	res.Ate, res.Depleted = s.eat(a, dt)
	return res
}

// arrived reports whether a coop-bound agent reached its door target.
func (s *PhysicsSystem) arrived(a AgentRef) bool {
	home := a.Mind.CoopBound()
	if home == nil {
		return false
	}
	return s.space.Dist(a.Pos.X, a.Pos.Y, home.DoorX, home.DoorY) < s.cfg.Movement.ArrivalRadius
}

// eat pecks at the agent's target seed once it has landed within reach.
func (s *PhysicsSystem) eat(a AgentRef, dt float64) (ate, depleted bool) {
	c := a.Mind.Chase()
	if c == nil {
		return false, false
	}
	seed := s.seeds.ByID(c.SeedID)
	if seed == nil {
		a.Mind.Wander()
		a.Mind.NextTargetIn = 0
		return false, false
	}
	if !seed.Landed {
		return false, false
	}
	reach := s.cfg.Movement.EatRadius + a.Body.Radius()
	if s.space.DistSq(a.Pos.X, a.Pos.Y, seed.X, seed.Y) > reach*reach {
		return false, false
	}

	a.Vitals.PeckTimer = s.cfg.Movement.PeckTime
	if s.seeds.Consume(seed.ID, dt/max(s.cfg.Seeds.EatTime, minEatTime)*a.Temp.EatRate) {
		a.Mind.Wander()
		a.Mind.NextTargetIn = 0
		return true, true
	}
	return true, false
}

// updateEyes eases the eye offset toward the heading.
func (s *PhysicsSystem) updateEyes(a AgentRef, vel r2.Vec) {
	speed := r2.Norm(vel)
	if speed < eyeMinSpeed {
		return
	}
	a.Body.EyeX += (vel.X/speed - a.Body.EyeX) * eyeFollow
	a.Body.EyeY += (vel.Y/speed - a.Body.EyeY) * eyeFollow
}
