package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/game"
	"github.com/pthm-cable/coop/systems"
)

// FeatherRenderer renders startle feather puffs.
type FeatherRenderer struct{}

// NewFeatherRenderer creates a new feather renderer.
func NewFeatherRenderer() *FeatherRenderer {
	return &FeatherRenderer{}
}

// Draw renders all feathers, fading with remaining life.
func (r *FeatherRenderer) Draw(cam *camera.Camera, feathers []game.FeatherView) {
	for i := range feathers {
		p := &feathers[i]
		if !cam.IsVisible(p.X, p.Y, p.Size) {
			continue
		}
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		alpha := uint8(p.LifeFrac * 230)
		size := float32(max(0.5, cam.Scale(p.Size)))

		switch p.Kind {
		case systems.FeatherDown:
			rl.DrawCircleV(vec(sx, sy), size*0.5, rl.Color{R: 250, G: 246, B: 236, A: alpha})
		case systems.FeatherQuill:
			// Quill as a rotated slim rectangle
			rect := rl.Rectangle{X: float32(sx), Y: float32(sy), Width: size * 1.6, Height: size * 0.4}
			origin := rl.Vector2{X: rect.Width / 2, Y: rect.Height / 2}
			rl.DrawRectanglePro(rect, origin, float32(p.Angle*180/math.Pi), rl.Color{R: 240, G: 232, B: 214, A: alpha})
		}
	}
}
