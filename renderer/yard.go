package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/game"
)

// Yard colours.
var (
	GroundColor   = rl.Color{R: 74, G: 104, B: 58, A: 255}
	tuftColor     = rl.Color{R: 86, G: 120, B: 66, A: 255}
	coopWallColor = rl.Color{R: 126, G: 86, B: 52, A: 255}
	coopRoofColor = rl.Color{R: 92, G: 60, B: 38, A: 255}
	despawnColor  = rl.Color{R: 230, G: 90, B: 80, A: 90}
	spawnColor    = rl.Color{R: 110, G: 200, B: 240, A: 90}
)

// tuftSpacing is the world distance between ground texture tufts.
const tuftSpacing = 48.0

// YardRenderer draws the ground and the coop.
type YardRenderer struct{}

// NewYardRenderer creates a new yard renderer.
func NewYardRenderer() *YardRenderer {
	return &YardRenderer{}
}

// DrawGround fills the screen and scatters fixed tufts on a world grid so
// panning reads as motion.
func (r *YardRenderer) DrawGround(cam *camera.Camera) {
	rl.ClearBackground(GroundColor)

	size := float32(math.Max(1, cam.Scale(2)))
	for wy := tuftSpacing / 2; wy < cam.Space.H; wy += tuftSpacing {
		for wx := tuftSpacing / 2; wx < cam.Space.W; wx += tuftSpacing {
			// Offset alternate rows so the pattern is not a plain lattice
			ox := 0.0
			if int(wy/tuftSpacing)%2 == 1 {
				ox = tuftSpacing / 2
			}
			if !cam.IsVisible(wx+ox, wy, 2) {
				continue
			}
			sx, sy := cam.WorldToScreen(wx+ox, wy)
			rl.DrawCircleV(rl.Vector2{X: float32(sx), Y: float32(sy)}, size, tuftColor)
		}
	}
}

// DrawCoop draws the coop ring with its door gap.
func (r *YardRenderer) DrawCoop(cam *camera.Camera, c game.CoopView) {
	sx, sy := cam.WorldToScreen(c.X, c.Y)
	center := rl.Vector2{X: float32(sx), Y: float32(sy)}
	outer := float32(cam.Scale(c.Outer))
	inner := float32(cam.Scale(c.Inner))

	rl.DrawCircleV(center, inner, coopRoofColor)

	// Ring angles are degrees, clockwise from +X like world angles.
	door := c.DoorAngle * 180 / math.Pi
	half := c.DoorHalf * 180 / math.Pi
	rl.DrawRing(center, inner, outer, float32(door+half), float32(door-half+360), 48, coopWallColor)
}

// DrawZones outlines the despawn and spawn zones in front of the door.
func (r *YardRenderer) DrawZones(cam *camera.Camera, c game.CoopView) {
	dx, dy := cam.WorldToScreen(c.DoorX, c.DoorY)
	rl.DrawCircleLines(int32(dx), int32(dy), float32(cam.Scale(c.DespawnRadius)), despawnColor)
	sx, sy := cam.WorldToScreen(c.SpawnX, c.SpawnY)
	rl.DrawCircleLines(int32(sx), int32(sy), float32(cam.Scale(c.SpawnRadius)), spawnColor)
}
