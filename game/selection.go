package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/coop/components"
)

// AgentInfo is an inspection snapshot of one agent.
type AgentInfo struct {
	Entity      ecs.Entity
	X, Y        float64
	Speed       float64
	Role        components.Role
	Kind        components.DirectiveKind
	Mood        components.Mood
	Rest        components.RestPhase
	Fatigue     float64
	MaxFatigue  float64
	Temperament components.Temperament
}

// AgentAt returns the agent nearest to the world point (x, y) within radius
// plus the agent's own body radius.
func (g *Game) AgentAt(x, y, radius float64) (ecs.Entity, bool) {
	var (
		best  ecs.Entity
		found bool
		bestD float64
	)
	query := g.agentFilter.Query()
	for query.Next() {
		pos, _, body, _, _, _, _ := query.Get()
		reach := radius + body.Radius()
		d := g.space.DistSq(x, y, pos.X, pos.Y)
		if d > reach*reach {
			continue
		}
		if !found || d < bestD {
			best, bestD, found = query.Entity(), d, true
		}
	}
	return best, found
}

// Inspect returns a snapshot of agent e. It reports false once e has
// despawned, including after a respawn reused its slot.
func (g *Game) Inspect(e ecs.Entity) (AgentInfo, bool) {
	if !g.world.Alive(e) {
		return AgentInfo{}, false
	}
	pos, vel, body, temp, mind, vitals, social := g.agentMapper.Get(e)
	return AgentInfo{
		Entity:      e,
		X:           pos.X,
		Y:           pos.Y,
		Speed:       math.Hypot(vel.X, vel.Y),
		Role:        body.Role,
		Kind:        mind.Kind(),
		Mood:        social.Mood,
		Rest:        vitals.Rest,
		Fatigue:     vitals.Fatigue,
		MaxFatigue:  vitals.MaxFatigue,
		Temperament: *temp,
	}, true
}
