package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/coop/components"
)

// Agent is a full set of agent component values.
// Used to create entities and to park resting agents in the respawn queue.
type Agent struct {
	Pos    components.Position
	Vel    components.Velocity
	Body   components.Body
	Temp   components.Temperament
	Mind   components.Mind
	Vitals components.Vitals
	Social components.Social
}

// Ref returns a view onto the agent's own fields.
func (a *Agent) Ref() AgentRef {
	return AgentRef{
		Pos:    &a.Pos,
		Vel:    &a.Vel,
		Body:   &a.Body,
		Temp:   &a.Temp,
		Mind:   &a.Mind,
		Vitals: &a.Vitals,
		Social: &a.Social,
	}
}

// AgentRef points at the components of one live agent.
// Pointers are only valid until the next structural change to the world.
type AgentRef struct {
	Entity ecs.Entity
	Pos    *components.Position
	Vel    *components.Velocity
	Body   *components.Body
	Temp   *components.Temperament
	Mind   *components.Mind
	Vitals *components.Vitals
	Social *components.Social
}

// Snapshot copies the referenced component values.
func (r AgentRef) Snapshot() Agent {
	return Agent{
		Pos:    *r.Pos,
		Vel:    *r.Vel,
		Body:   *r.Body,
		Temp:   *r.Temp,
		Mind:   *r.Mind,
		Vitals: *r.Vitals,
		Social: *r.Social,
	}
}
