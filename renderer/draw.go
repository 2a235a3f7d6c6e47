package renderer

import (
	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/game"
)

// Frame is one frame of render views, refilled from the game each frame.
type Frame struct {
	Coop     game.CoopView
	Agents   []game.AgentView
	Seeds    []game.SeedView
	Feathers []game.FeatherView
}

// Capture refills f from g, reusing its slices.
func (f *Frame) Capture(g *game.Game) {
	f.Coop = g.Coop()
	f.Agents = g.Agents(f.Agents[:0])
	f.Seeds = g.Seeds(f.Seeds[:0])
	f.Feathers = g.Feathers(f.Feathers[:0])
}

// Options selects optional layers.
type Options struct {
	Agents AgentOptions
	Zones  bool // Outline the coop despawn and spawn zones
}

// Scene draws whole frames in a fixed layer order.
type Scene struct {
	yard     *YardRenderer
	seeds    *SeedRenderer
	agents   *AgentRenderer
	feathers *FeatherRenderer
}

// NewScene creates a scene with all layer renderers.
func NewScene() *Scene {
	return &Scene{
		yard:     NewYardRenderer(),
		seeds:    NewSeedRenderer(),
		agents:   NewAgentRenderer(),
		feathers: NewFeatherRenderer(),
	}
}

// Draw renders a frame: ground, coop, seeds, agents, then feathers on top.
// Must be called between rl.BeginDrawing and rl.EndDrawing.
func (s *Scene) Draw(f *Frame, cam *camera.Camera, opts Options) {
	s.yard.DrawGround(cam)
	s.yard.DrawCoop(cam, f.Coop)
	if opts.Zones {
		s.yard.DrawZones(cam, f.Coop)
	}
	s.seeds.Draw(cam, f.Seeds)
	s.agents.Draw(cam, f.Agents, opts.Agents)
	s.feathers.Draw(cam, f.Feathers)
}
