package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/game"
)

var (
	seedColor   = rl.Color{R: 222, G: 186, B: 98, A: 255}
	shadowColor = rl.Color{R: 30, G: 40, B: 24, A: 90}
)

// seedRadius is the drawn radius of a full seed in world units.
const seedRadius = 3.0

// SeedRenderer draws seeds and the shadows of falling ones.
type SeedRenderer struct{}

// NewSeedRenderer creates a new seed renderer.
func NewSeedRenderer() *SeedRenderer {
	return &SeedRenderer{}
}

// Draw renders all seeds. A seed shrinks as it is eaten.
func (r *SeedRenderer) Draw(cam *camera.Camera, seeds []game.SeedView) {
	for i := range seeds {
		s := &seeds[i]
		size := float32(max(1, cam.Scale(seedRadius*(0.4+0.6*s.Amount))))

		if !s.Landed && cam.IsVisible(s.X, s.GroundY, seedRadius) {
			gx, gy := cam.WorldToScreen(s.X, s.GroundY)
			rl.DrawEllipse(int32(gx), int32(gy), size, size*0.5, shadowColor)
		}
		if !cam.IsVisible(s.X, s.Y, seedRadius) {
			continue
		}
		sx, sy := cam.WorldToScreen(s.X, s.Y)
		rl.DrawCircleV(vec(sx, sy), size, seedColor)
	}
}
