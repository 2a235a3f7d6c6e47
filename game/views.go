package game

import (
	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/systems"
)

// AgentView is the render state of one agent.
type AgentView struct {
	X, Y       float64
	VX, VY     float64
	Size       float64
	Role       components.Role
	EyeX, EyeY float64
	TX, TY     float64 // Steering target
	Kind       components.DirectiveKind
	PeckTimer  float64
	PanicTimer float64 // Zero unless panicking
	FleeTimer  float64 // Zero unless fleeing
}

// SeedView is the render state of one seed.
type SeedView struct {
	X, Y    float64
	GroundY float64
	Landed  bool
	Amount  float64
}

// FeatherView is the render state of one feather particle.
type FeatherView struct {
	X, Y     float64
	Angle    float64
	Size     float64
	LifeFrac float64
	Kind     systems.FeatherKind
}

// CoopView is the coop geometry for drawing.
type CoopView struct {
	X, Y      float64
	Outer     float64
	Inner     float64
	DoorAngle float64
	DoorHalf  float64 // Half-angle of the door gap

	DoorX, DoorY   float64
	SpawnX, SpawnY float64
	DespawnRadius  float64
	SpawnRadius    float64
}

// Agents appends the render state of every live agent to dst.
func (g *Game) Agents(dst []AgentView) []AgentView {
	query := g.agentFilter.Query()
	for query.Next() {
		pos, vel, body, _, mind, vitals, _ := query.Get()
		v := AgentView{
			X:         pos.X,
			Y:         pos.Y,
			VX:        vel.X,
			VY:        vel.Y,
			Size:      body.Size,
			Role:      body.Role,
			EyeX:      body.EyeX,
			EyeY:      body.EyeY,
			TX:        mind.TX,
			TY:        mind.TY,
			Kind:      mind.Kind(),
			PeckTimer: vitals.PeckTimer,
		}
		if pn := mind.Panic(); pn != nil {
			v.PanicTimer = pn.Timer
		}
		if f := mind.Flee(); f != nil {
			v.FleeTimer = f.Timer
		}
		dst = append(dst, v)
	}
	return dst
}

// Seeds appends the render state of every seed to dst.
func (g *Game) Seeds(dst []SeedView) []SeedView {
	for i := range g.seeds.Seeds {
		s := &g.seeds.Seeds[i]
		dst = append(dst, SeedView{
			X:       s.X,
			Y:       s.Y,
			GroundY: s.GroundY,
			Landed:  s.Landed,
			Amount:  s.Amount,
		})
	}
	return dst
}

// Feathers appends the render state of every feather particle to dst.
func (g *Game) Feathers(dst []FeatherView) []FeatherView {
	for i := range g.feathers.Particles {
		p := &g.feathers.Particles[i]
		dst = append(dst, FeatherView{
			X:        p.X,
			Y:        p.Y,
			Angle:    p.Angle,
			Size:     p.Size,
			LifeFrac: p.LifeFrac(),
			Kind:     p.Kind,
		})
	}
	return dst
}

// Coop returns the coop geometry.
func (g *Game) Coop() CoopView {
	cc := g.cfg.Coop
	v := CoopView{
		X:             g.coop.X,
		Y:             g.coop.Y,
		Outer:         g.coop.Outer(),
		Inner:         g.coop.Inner(),
		DoorAngle:     g.coop.DoorAngle,
		DoorHalf:      g.coop.DoorHalfAngle(),
		DespawnRadius: cc.DespawnRadius,
		SpawnRadius:   cc.SpawnRadius,
	}
	v.DoorX, v.DoorY = g.coop.DoorPoint()
	v.SpawnX, v.SpawnY = g.space.WrapPos(g.coop.X, g.coop.Y+g.coop.Outer()+cc.ZoneSpacing)
	return v
}

// AgentCount returns the number of agents in the yard.
func (g *Game) AgentCount() int {
	n := 0
	query := g.agentFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// SeedCount returns the number of live seeds.
func (g *Game) SeedCount() int {
	return g.seeds.Len()
}

// DirectiveCounts returns the number of yard agents per directive kind.
func (g *Game) DirectiveCounts() [5]int {
	var counts [5]int
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, _, mind, _, _ := query.Get()
		counts[mind.Kind()]++
	}
	return counts
}
