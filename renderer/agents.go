package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/game"
)

// Agent body colours by role.
var roleColors = [...]rl.Color{
	components.RoleHen:     {R: 236, G: 222, B: 196, A: 255},
	components.RoleChick:   {R: 250, G: 214, B: 92, A: 255},
	components.RoleRooster: {R: 176, G: 92, B: 52, A: 255},
}

// Directive outline colours, indexed by components.DirectiveKind.
var directiveColors = [...]rl.Color{
	components.KindWandering:   {R: 0, G: 0, B: 0, A: 0},
	components.KindChasing:     {R: 240, G: 200, B: 90, A: 220},
	components.KindPanicking:   {R: 235, G: 80, B: 70, A: 240},
	components.KindFleeing:     {R: 220, G: 120, B: 220, A: 230},
	components.KindGoingToCoop: {R: 110, G: 170, B: 235, A: 220},
}

var (
	eyeColor    = rl.Color{R: 24, G: 20, B: 16, A: 255}
	beakColor   = rl.Color{R: 240, G: 150, B: 40, A: 255}
	targetColor = rl.Color{R: 255, G: 255, B: 255, A: 70}
)

// AgentOptions selects optional agent decorations.
type AgentOptions struct {
	Ghosts     bool // Draw wrapped copies near the view seams
	Directives bool // Outline directed agents
	Targets    bool // Line to the steering target
}

// AgentRenderer draws agents.
type AgentRenderer struct {
	ghosts []r2.Vec
}

// NewAgentRenderer creates a new agent renderer.
func NewAgentRenderer() *AgentRenderer {
	return &AgentRenderer{}
}

// Draw renders every agent.
func (r *AgentRenderer) Draw(cam *camera.Camera, agents []game.AgentView, opts AgentOptions) {
	for i := range agents {
		a := &agents[i]
		radius := a.Size / 2

		if opts.Targets && a.Kind != components.KindWandering {
			sx, sy := cam.WorldToScreen(a.X, a.Y)
			dx, dy := cam.Space.DxDy(a.X, a.Y, a.TX, a.TY)
			tx, ty := sx+cam.Scale(dx), sy+cam.Scale(dy)
			rl.DrawLineV(vec(sx, sy), vec(tx, ty), targetColor)
		}

		if cam.IsVisible(a.X, a.Y, radius) {
			sx, sy := cam.WorldToScreen(a.X, a.Y)
			r.drawBody(cam, a, sx, sy, opts.Directives)
		}
		if opts.Ghosts {
			r.ghosts = cam.GhostPositions(r.ghosts[:0], a.X, a.Y, radius)
			for _, g := range r.ghosts {
				r.drawBody(cam, a, g.X, g.Y, opts.Directives)
			}
		}
	}
}

// drawBody draws one agent centred on a screen point.
func (r *AgentRenderer) drawBody(cam *camera.Camera, a *game.AgentView, sx, sy float64, outline bool) {
	radius := cam.Scale(a.Size / 2)
	if radius < 1 {
		radius = 1
	}
	center := vec(sx, sy)

	body := roleColors[components.RoleHen]
	if int(a.Role) < len(roleColors) {
		body = roleColors[a.Role]
	}
	rl.DrawCircleV(center, float32(radius), body)

	if outline && int(a.Kind) < len(directiveColors) && a.Kind != components.KindWandering {
		rl.DrawRing(center, float32(radius), float32(radius+max(1.5, radius*0.25)), 0, 360, 24, directiveColors[a.Kind])
	}

	// Pecking agents dip the beak toward the ground.
	ex, ey := a.EyeX, a.EyeY
	if a.PeckTimer > 0 {
		ey = 1
	}
	beak := vec(sx+ex*radius*1.15, sy+ey*radius*1.15)
	rl.DrawCircleV(beak, float32(max(1, radius*0.22)), beakColor)
	eye := vec(sx+ex*radius*0.55-ey*radius*0.3, sy+ey*radius*0.55+ex*radius*0.3)
	rl.DrawCircleV(eye, float32(max(0.8, radius*0.14)), eyeColor)
}

func vec(x, y float64) rl.Vector2 {
	return rl.Vector2{X: float32(x), Y: float32(y)}
}
