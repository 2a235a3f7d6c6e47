package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/coop/systems"
)

// spawnInitialPopulation creates the starting flock outside the coop door.
func (g *Game) spawnInitialPopulation() {
	for i := 0; i < g.cfg.Population.Count; i++ {
		a := g.pop.CreateAgent()
		g.spawnAgent(&a)
	}
}

// spawnAgent creates an entity from a full set of component values.
func (g *Game) spawnAgent(a *systems.Agent) ecs.Entity {
	return g.agentMapper.NewEntity(&a.Pos, &a.Vel, &a.Body, &a.Temp, &a.Mind, &a.Vitals, &a.Social)
}

// updateRespawns drains fatigue from resting agents and returns those whose
// rest is over to the yard.
func (g *Game) updateRespawns(dt float64) {
	recovery := g.cfg.Fatigue.RecoveryRate

	kept := g.respawns[:0]
	for _, p := range g.respawns {
		p.timer -= dt
		p.agent.Vitals.Fatigue = math.Max(0, p.agent.Vitals.Fatigue-recovery*dt)
		if p.timer > 0 {
			kept = append(kept, p)
			continue
		}

		g.pop.Respawn(&p.agent)
		g.spawnAgent(&p.agent)
		g.collector.RecordRespawn()
		g.emit(EventRespawn, p.agent.Pos.X, p.agent.Pos.Y)
	}
	g.respawns = kept
}

// Resting returns the number of agents in the respawn queue.
func (g *Game) Resting() int {
	return len(g.respawns)
}
