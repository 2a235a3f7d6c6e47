package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/systems"
	"github.com/pthm-cable/coop/telemetry"
)

// removal is an agent leaving the active set at the end of the tick.
type removal struct {
	slot    int
	outcome systems.Outcome
}

// Step advances the world by dt seconds. dt is assumed already clamped by the caller.
// All social forces are accumulated before any agent moves.
func (g *Game) Step(dt float64) {
	perf := g.perfCollector
	perf.Begin()

	perf.Enter(telemetry.PhaseSeeds)
	if lost := g.seeds.Update(dt); lost > 0 {
		g.collector.RecordSeedsLost(lost)
	}

	perf.Enter(telemetry.PhaseRespawn)
	g.updateRespawns(dt)

	perf.Enter(telemetry.PhaseDecide)
	g.collectAgents()
	hasFood := g.seeds.Len() > 0
	for _, a := range g.agents {
		d := g.behavior.Decide(a, hasFood, dt)
		if d.Has(systems.DecisionMutated) {
			g.collector.RecordMutation()
		}
		if d.Has(systems.DecisionPanicked) {
			g.collector.RecordPanic()
		}
	}

	perf.Enter(telemetry.PhaseFlee)
	g.updateFlee(hasFood)

	perf.Enter(telemetry.PhaseTemperament)
	g.updateTemperament(dt)

	perf.Enter(telemetry.PhaseSocial)
	g.updateSocial()

	perf.Enter(telemetry.PhaseMovement)
	g.updateMovement(dt)

	perf.Enter(telemetry.PhaseScatter)
	g.rebuildGrid()
	if kicks := g.seeds.Scatter(dt, g.points, g.rng); kicks > 0 {
		g.collector.RecordScatter(kicks)
	}

	perf.Enter(telemetry.PhaseStartle)
	g.updateStartles()
	g.updateEvacuation(dt)
	g.applyRemovals()

	perf.Enter(telemetry.PhaseFeathers)
	g.feathers.Update(dt)

	perf.Enter(telemetry.PhaseTelemetry)
	g.tick++
	g.simTime += dt
	g.flushTelemetry()

	perf.End(len(g.agents))
}

// collectAgents gathers component pointers for every live agent into slots
// and rebuilds the spatial grid on their positions.
func (g *Game) collectAgents() {
	g.agents = g.agents[:0]
	clear(g.slots)

	query := g.agentFilter.Query()
	for query.Next() {
		pos, vel, body, temp, mind, vitals, social := query.Get()
		e := query.Entity()
		g.slots[e] = len(g.agents)
		g.agents = append(g.agents, systems.AgentRef{
			Entity: e,
			Pos:    pos,
			Vel:    vel,
			Body:   body,
			Temp:   temp,
			Mind:   mind,
			Vitals: vitals,
			Social: social,
		})
	}

	g.gone = g.gone[:0]
	for range g.agents {
		g.gone = append(g.gone, false)
	}
	g.rebuildGrid()
}

// rebuildGrid indexes the current agent positions by slot.
func (g *Game) rebuildGrid() {
	g.points = g.points[:0]
	for _, a := range g.agents {
		g.points = append(g.points, r2.Vec{X: a.Pos.X, Y: a.Pos.Y})
	}
	g.grid.Rebuild(g.points)
}

// updateFlee resolves chase-mode panics, sends their victims fleeing and
// forces every fleeing agent onto its flee point. Food overrides fear.
func (g *Game) updateFlee(hasFood bool) {
	if !hasFood {
		g.resolveChaseTargets()
		g.detectFlee()
	}
	for _, a := range g.agents {
		systems.ApplyFlee(a)
	}
}

// resolveChaseTargets gives every chase-mode panic a live victim and aims at it.
// A victim that despawned is replaced by the nearest other agent.
func (g *Game) resolveChaseTargets() {
	for i, a := range g.agents {
		pn := a.Mind.Panic()
		if pn == nil || pn.Mode != components.PanicChase {
			continue
		}

		if pn.HasTarget && !g.world.Alive(pn.Target) {
			pn.HasTarget = false
		}
		if !pn.HasTarget {
			j := g.nearestOther(i)
			if j < 0 {
				continue
			}
			pn.Target = g.agents[j].Entity
			pn.HasTarget = true
		}

		j, ok := g.slots[pn.Target]
		if !ok {
			continue
		}
		a.Mind.TX, a.Mind.TY = g.agents[j].Pos.X, g.agents[j].Pos.Y
	}
}

// nearestOther returns the slot of the agent closest to slot i, or -1.
func (g *Game) nearestOther(i int) int {
	best := -1
	bestD := math.Inf(1)
	p := g.points[i]
	for j, q := range g.points {
		if j == i {
			continue
		}
		if d := g.space.DistSq(p.X, p.Y, q.X, q.Y); d < bestD {
			best, bestD = j, d
		}
	}
	return best
}

// detectFlee triggers a flee on every agent targeted by a nearby chase-mode pursuer.
func (g *Game) detectFlee() {
	radius := g.cfg.Flee.DetectRadius
	for i, victim := range g.agents {
		if victim.Mind.Flee() != nil || victim.Mind.CoopBound() != nil {
			continue
		}

		g.neighbors = g.grid.QueryRadiusInto(g.neighbors[:0], g.points[i], radius, i)
		best := -1
		bestD := math.Inf(1)
		for _, n := range g.neighbors {
			pn := g.agents[n.Index].Mind.Panic()
			if pn == nil || pn.Mode != components.PanicChase || !pn.HasTarget || pn.Target != victim.Entity {
				continue
			}
			if n.DistSq < bestD {
				best, bestD = n.Index, n.DistSq
			}
		}

		if best >= 0 && g.pop.TriggerFlee(victim, g.agents[best]) {
			g.collector.RecordFlee()
		}
	}
}

// updateTemperament drifts idle agents toward a temperament flip.
func (g *Game) updateTemperament(dt float64) {
	tc := g.cfg.Temperament
	for i, a := range g.agents {
		var neighbours, crowd int
		if !a.Mind.Directed() {
			neighbours = g.grid.CountWithin(g.points[i], tc.IsolatedRadius, i)
			crowd = g.grid.CountWithin(g.points[i], tc.ClusterRadius, i)
		}
		if _, flipped := g.behavior.DriftTemperament(a, neighbours, crowd, dt); flipped {
			g.collector.RecordFlip()
		}
	}
}

// updateSocial accumulates the pairwise forces for this tick.
func (g *Game) updateSocial() {
	g.inputs = g.inputs[:0]
	g.accel = g.accel[:0]
	for _, a := range g.agents {
		g.inputs = append(g.inputs, systems.SocialInput{
			Pos:        r2.Vec{X: a.Pos.X, Y: a.Pos.Y},
			Vel:        r2.Vec{X: a.Vel.X, Y: a.Vel.Y},
			Socialness: a.Temp.Socialness,
			Directed:   a.Mind.Directed(),
		})
		g.accel = append(g.accel, r2.Vec{})
	}
	g.social.Accumulate(g.inputs, g.accel)
}

// updateMovement integrates every agent and queues those that left the yard.
func (g *Game) updateMovement(dt float64) {
	g.removals = g.removals[:0]
	for i, a := range g.agents {
		res := g.physics.Move(a, g.accel[i], dt)
		if res.Depleted {
			g.collector.RecordSeedEaten()
		}

		switch res.Outcome {
		case systems.OutcomeStay:
			continue
		case systems.OutcomeArrived:
			g.collector.RecordCoopArrival()
		case systems.OutcomeDespawnZone:
			g.collector.RecordDespawnExit()
		case systems.OutcomeSafetyDespawn:
			g.collector.RecordSafetyDespawn()
			slog.Debug("safety despawn",
				"tick", g.tick,
				"x", a.Pos.X,
				"y", a.Pos.Y,
				"directive", a.Mind.Kind().String(),
			)
		}
		g.gone[i] = true
		g.removals = append(g.removals, removal{slot: i, outcome: res.Outcome})
	}
}

// updateStartles startles agents run into by a running agent.
// When both are running, both are startled.
func (g *Game) updateStartles() {
	sc := g.cfg.Startle
	hasFood := g.seeds.Len() > 0
	for i, a := range g.agents {
		if g.gone[i] {
			continue
		}
		aRunning := math.Hypot(a.Vel.X, a.Vel.Y) >= sc.RunSpeed

		g.neighbors = g.grid.QueryRadiusInto(g.neighbors[:0], g.points[i], sc.CollisionDist, i)
		for _, n := range g.neighbors {
			j := n.Index
			if j < i || g.gone[j] {
				continue
			}
			b := g.agents[j]
			bRunning := math.Hypot(b.Vel.X, b.Vel.Y) >= sc.RunSpeed

			switch {
			case aRunning && bRunning:
				g.startle(a, hasFood, g.points[j])
				g.startle(b, hasFood, g.points[i])
			case aRunning:
				g.startle(b, hasFood, g.points[i])
			case bRunning:
				g.startle(a, hasFood, g.points[j])
			}
		}
	}
}

// startle startles one agent away from src and records the outcome.
func (g *Game) startle(a systems.AgentRef, hasFood bool, src r2.Vec) {
	wasPanicking := a.Mind.Panic() != nil
	if !g.pop.Startle(a, hasFood, &src) {
		return
	}
	g.collector.RecordStartle()
	if !wasPanicking && a.Mind.Panic() != nil {
		g.collector.RecordPanic()
	}
	g.emit(EventStartle, a.Pos.X, a.Pos.Y)
}

// applyRemovals moves departed agents from the world into the respawn queue.
// Component values are copied out before any entity is removed.
func (g *Game) applyRemovals() {
	if len(g.removals) == 0 {
		return
	}

	fc := g.cfg.Fatigue
	entities := make([]ecs.Entity, 0, len(g.removals))
	for _, r := range g.removals {
		a := g.agents[r.slot]
		agent := a.Snapshot()
		agent.Vitals.Rest = components.RestInside
		agent.Mind.Wander()
		g.respawns = append(g.respawns, pendingAgent{
			agent: agent,
			timer: fc.RestMin + g.rng.Float64()*(fc.RestMax-fc.RestMin),
		})
		entities = append(entities, a.Entity)
	}

	for _, e := range entities {
		g.world.RemoveEntity(e)
	}
	g.removals = g.removals[:0]
	g.agents = g.agents[:0]
}
