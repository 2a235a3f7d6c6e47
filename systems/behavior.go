package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// Wander retarget interval, scaled by personal tempo.
const (
	retargetMin = 1.2
	retargetMax = 3.2
)

// Decision reports the state triggers fired while deciding one agent.
type Decision uint8

const (
	DecisionMutated Decision = 1 << iota
	DecisionPanicked
	DecisionHeadedHome
)

// Has reports whether flag d is set.
func (d Decision) Has(flag Decision) bool {
	return d&flag != 0
}

// BehaviorSystem picks each agent's directive and steering target.
type BehaviorSystem struct {
	cfg   *config.Config
	space torus.Space
	coop  *Coop
	seeds *SeedField
	pop   *Population
	rng   *rand.Rand
}

// NewBehaviorSystem creates a behavior system.
func NewBehaviorSystem(cfg *config.Config, space torus.Space, coop *Coop, seeds *SeedField, pop *Population, rng *rand.Rand) *BehaviorSystem {
	return &BehaviorSystem{
		cfg:   cfg,
		space: space,
		coop:  coop,
		seeds: seeds,
		pop:   pop,
		rng:   rng,
	}
}

// SetWorld rebinds the system to a resized world.
func (s *BehaviorSystem) SetWorld(space torus.Space, coop *Coop) {
	s.space = space
	s.coop = coop
}

// Tired reports whether an agent's fatigue has crossed its rest threshold.
func (s *BehaviorSystem) Tired(v *components.Vitals) bool {
	return v.Fatigue >= s.cfg.Fatigue.Threshold*v.MaxFatigue
}

// Decide advances an agent's timers and settles its directive and target for this tick.
// hasFood is whether any seed exists in the world.
func (s *BehaviorSystem) Decide(a AgentRef, hasFood bool, dt float64) Decision {
	var out Decision
	rng := s.rng
	m := a.Mind
	v := a.Vitals

	v.StartleCooldown = math.Max(0, v.StartleCooldown-dt)
	v.PeckTimer = math.Max(0, v.PeckTimer-dt)

	if rng.Float64() < s.cfg.Temperament.MutationChancePerSec*dt {
		s.pop.MutateTemperament(a)
		out |= DecisionMutated
	}

	// Food suppresses panic and fear.
	if !hasFood && m.Kind() == components.KindWandering && rng.Float64() < s.cfg.Panic.ChancePerSec*dt {
		if s.pop.TriggerPanic(a) {
			out |= DecisionPanicked
		}
	}

	if pn := m.Panic(); pn != nil {
		pn.Timer -= dt
		pn.Clock += dt
		if hasFood || pn.Timer <= 0 {
			m.Wander()
			m.NextTargetIn = 0
		}
	}
	if f := m.Flee(); f != nil {
		f.Timer -= dt
		if hasFood || f.Timer <= 0 {
			m.Wander()
			m.NextTargetIn = 0
		}
	}

	panicking := m.Panic() != nil
	if !panicking && v.Rest == components.RestNone {
		v.Fatigue = math.Min(v.MaxFatigue, v.Fatigue+s.cfg.Fatigue.Rate*dt)
	}
	tired := s.Tired(v)

	if tired && !panicking && m.CoopBound() == nil {
		s.sendHome(a)
		out |= DecisionHeadedHome
	}

	switch {
	case m.CoopBound() != nil:
		s.steerHome(a)
	case panicking:
		s.steerPanic(a)
	case m.Flee() != nil:
		// Flee target is applied after flee detection.
	default:
		s.decideFood(a, hasFood, tired, dt)
		if m.Kind() == components.KindWandering {
			m.NextTargetIn -= dt
			if m.NextTargetIn <= 0 {
				s.retarget(a)
			}
		}
	}
	return out
}

// decideFood acquires or keeps a seed target once the agent has noticed the food.
func (s *BehaviorSystem) decideFood(a AgentRef, hasFood, tired bool, dt float64) {
	m := a.Mind
	v := a.Vitals

	if !hasFood || tired {
		if m.Chase() != nil {
			m.Wander()
			m.NextTargetIn = 0
		}
		return
	}

	if v.NoticeTimer > 0 {
		v.NoticeTimer -= dt
		if v.NoticeTimer > 0 {
			return
		}
	}

	var seed *Seed
	if c := m.Chase(); c != nil {
		seed = s.seeds.ByID(c.SeedID)
	}
	if seed == nil {
		seed = s.seeds.PickNearest(a.Pos.X, a.Pos.Y)
	}
	if seed == nil {
		m.Wander()
		m.NextTargetIn = 0
		return
	}
	if c := m.Chase(); c != nil {
		c.SeedID = seed.ID
	} else {
		m.Directive = &components.Chasing{SeedID: seed.ID}
	}
	m.TX, m.TY = seed.X, seed.AimY()
}

// retarget rolls a new wander point around the world centre.
func (s *BehaviorSystem) retarget(a AgentRef) {
	rng := s.rng
	t := a.Temp
	a.Mind.TX, a.Mind.TY = s.space.WrapPos(
		s.space.W/2+triangular(rng)*t.TargetSpread*s.space.W,
		s.space.H/2+triangular(rng)*t.TargetSpread*s.space.H,
	)
	a.Mind.NextTargetIn = randRange(rng, retargetMin, retargetMax) * t.TargetTempo
}

// sendHome redirects a tired agent to the coop door.
func (s *BehaviorSystem) sendHome(a AgentRef) {
	fc := s.cfg.Fatigue
	dx, dy := s.space.WrapPos(s.coop.X, s.coop.Y+s.coop.Outer()+fc.DoorOffset)
	a.Mind.Directive = &components.GoingToCoop{DoorX: dx, DoorY: dy}
	a.Mind.NextTargetIn = fleeHoldTime
	a.Vitals.Rest = components.RestGoing
	s.steerHome(a)
}

// steerHome aims at the door, or at a side waypoint when the coop is in the way.
func (s *BehaviorSystem) steerHome(a AgentRef) {
	fc := s.cfg.Fatigue
	a.Mind.TX, a.Mind.TY, _ = s.coop.HomeTarget(a.Pos.X, a.Pos.Y, fc.BypassMargin, fc.DoorOffset)
}

// steerPanic moves the target along the agent's panic pattern.
// Chase mode aims at the fallback point until a victim is resolved.
func (s *BehaviorSystem) steerPanic(a AgentRef) {
	pn := a.Mind.Panic()
	m := a.Mind
	switch pn.Mode {
	case components.PanicLinear, components.PanicChase:
		m.TX, m.TY = pn.PointX, pn.PointY
	case components.PanicCircular:
		ang := pn.Phase + pn.Omega*pn.Clock
		m.TX, m.TY = s.space.WrapPos(
			pn.CircleX+pn.Radius*math.Cos(ang),
			pn.CircleY+pn.Radius*math.Sin(ang),
		)
	case components.PanicWavy:
		look := s.cfg.Panic.WaveLookahead
		wave := pn.WaveAmp * math.Sin(2*math.Pi*pn.WaveFreq*pn.Clock)
		m.TX, m.TY = s.space.WrapPos(
			a.Pos.X+pn.DirX*look-pn.DirY*wave,
			a.Pos.Y+pn.DirY*look+pn.DirX*wave,
		)
	}
}

// DriftTemperament accumulates isolation and crowding for an idle agent and
// flips its temperament once either persists. neighbours counts agents within
// the isolation radius, crowd those within the cluster radius.
// Returns the flip reason and true when a flip happened.
func (s *BehaviorSystem) DriftTemperament(a AgentRef, neighbours, crowd int, dt float64) (FlipReason, bool) {
	cfg := s.cfg.Temperament
	soc := a.Social
	soc.Cooldown = math.Max(0, soc.Cooldown-dt)

	if a.Mind.Directed() {
		soc.IsolatedTime = 0
		soc.ClusteredTime = 0
		return 0, false
	}

	if neighbours == 0 {
		soc.IsolatedTime += dt
	} else {
		soc.IsolatedTime = 0
	}
	if crowd >= cfg.ClusterNeighbors {
		soc.ClusteredTime += dt
	} else {
		soc.ClusteredTime = 0
	}

	if soc.Cooldown > 0 {
		return 0, false
	}
	switch {
	case soc.IsolatedTime >= cfg.IsolatedFor:
		s.pop.FlipTemperament(a, FlipIsolated)
		return FlipIsolated, true
	case soc.ClusteredTime >= cfg.ClusteredFor:
		s.pop.FlipTemperament(a, FlipClustered)
		return FlipClustered, true
	}
	return 0, false
}

// ApplyFlee forces a fleeing agent's target to its flee point.
func ApplyFlee(a AgentRef) {
	f := a.Mind.Flee()
	if f == nil {
		return
	}
	a.Mind.TX, a.Mind.TY = f.X, f.Y
	a.Mind.NextTargetIn = fleeHoldTime
}

// pos returns the agent position as a vector.
func pos(a AgentRef) r2.Vec {
	return r2.Vec{X: a.Pos.X, Y: a.Pos.Y}
}
