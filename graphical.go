package main

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/coop/audio"
	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
	"github.com/pthm-cable/coop/renderer"
	"github.com/pthm-cable/coop/ui"
)

// selectRadius is the extra screen-pixel slack when picking an agent.
const selectRadius = 6.0

const controlsLegend = "[Click] Food  [Right click] Select  [Space] Pause  [,/.] Speed  [Arrows/Wheel] Camera  [Home] Reset  [O] Overlays"

// viewer is the raylib front-end state.
type viewer struct {
	cfg    *config.Config
	game   *game.Game
	player *audio.Player
	cam    *camera.Camera

	scene     *renderer.Scene
	frame     renderer.Frame
	hud       *ui.HUD
	overlays  *ui.OverlayRegistry
	flock     *ui.FlockPanel
	inspector *ui.Inspector
	perf      *ui.PerfPanel

	selected    ecs.Entity
	hasSelected bool

	// World tracks the window when no explicit world size is configured.
	followWindow bool
}

// runGraphical opens a window and runs the interactive simulation.
func runGraphical(cfg *config.Config, opts game.Options, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Coop")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	player := newAudio(cfg, opts.Seed)
	defer player.Close()

	v := &viewer{
		cfg:          cfg,
		game:         g,
		player:       player,
		cam:          camera.New(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()), g.Space()),
		scene:        renderer.NewScene(),
		hud:          ui.NewHUD(),
		overlays:     ui.NewOverlayRegistry(),
		flock:        ui.NewFlockPanel(10, 170, 220),
		inspector:    ui.NewInspector(int32(rl.GetScreenWidth())-290, 80, 280),
		perf:         ui.NewPerfPanel(int32(rl.GetScreenWidth())-260, 86),
		followWindow: cfg.World.Width == 0 && cfg.World.Height == 0,
	}
	v.overlays.SetEnabled(ui.OverlayGhosts, true)
	v.overlays.SetEnabled(ui.OverlayDirectives, true)
	v.overlays.SetEnabled(ui.OverlayInspector, true)

	start := time.Now()
	defer func() { logSummary(g, start) }()

	for !rl.WindowShouldClose() {
		v.handleInput()

		dt := min(float64(rl.GetFrameTime()), cfg.Screen.MaxDT)
		g.Update(dt)
		g.Perf().RecordFrame()
		player.Play(g.DrainEvents())

		v.draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return nil
}

// handleInput processes keyboard, mouse and window input.
func (v *viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.SetPaused(!v.game.Paused())
	}
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetSpeed(v.game.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.game.SetSpeed(v.game.Speed() + 1)
	}
	if rl.IsKeyPressed(rl.KeyO) {
		v.flock.ToggleOverlays()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.game.DropFood(v.cam.X, v.cam.Y)
	}
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		v.overlays.HandleKeyPress(key)
	}

	v.handleCameraInput()

	mouse := rl.GetMousePosition()
	if v.hud.OverControls(mouse) {
		return
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		wx, wy := v.cam.ScreenToWorld(float64(mouse.X), float64(mouse.Y))
		v.game.DropFood(wx, wy)
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		wx, wy := v.cam.ScreenToWorld(float64(mouse.X), float64(mouse.Y))
		v.selected, v.hasSelected = v.game.AgentAt(wx, wy, selectRadius/v.cam.Zoom)
	}
}

// handleResize refits the camera, and the world when it follows the window.
func (v *viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float64(rl.GetScreenWidth())
	h := float64(rl.GetScreenHeight())
	if v.followWindow {
		v.game.Resize(w, h)
		v.player.SetWorldWidth(w)
	}
	v.cam.Resize(w, h, v.game.Space())
	v.inspector.SetPosition(int32(w)-290, 80)
	v.perf.SetPosition(int32(w)-260, 86)
}

// handleCameraInput processes camera pan and zoom controls.
func (v *viewer) handleCameraInput() {
	// Screen-space pan speed; Pan divides by zoom.
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

// draw renders the world and the UI for one frame.
func (v *viewer) draw() {
	g := v.game
	v.frame.Capture(g)

	rl.BeginDrawing()
	defer rl.EndDrawing()

	v.scene.Draw(&v.frame, v.cam, renderer.Options{
		Agents: renderer.AgentOptions{
			Ghosts:     v.overlays.IsEnabled(ui.OverlayGhosts),
			Directives: v.overlays.IsEnabled(ui.OverlayDirectives),
			Targets:    v.overlays.IsEnabled(ui.OverlayTargets),
		},
		Zones: v.overlays.IsEnabled(ui.OverlayCoopZones),
	})

	if v.hasSelected {
		if info, ok := g.Inspect(v.selected); ok {
			sx, sy := v.cam.WorldToScreen(info.X, info.Y)
			rl.DrawCircleLines(int32(sx), int32(sy), float32(v.cam.Scale(20)), rl.White)
			if v.overlays.IsEnabled(ui.OverlayInspector) {
				v.inspector.Draw(ui.InspectorData{Agent: info, FatigueThreshold: v.cfg.Fatigue.Threshold})
			}
		} else {
			// Went home to rest
			v.hasSelected = false
		}
	}

	act := v.hud.Draw(ui.HUDData{
		Title:      "Coop",
		Agents:     g.AgentCount(),
		Resting:    g.Resting(),
		Seeds:      g.SeedCount(),
		Tick:       g.Tick(),
		Speed:      g.Speed(),
		MaxSpeed:   game.MaxSpeed,
		FPS:        rl.GetFPS(),
		Paused:     g.Paused(),
		Evacuating: g.Evacuating(),
		Directives: g.DirectiveCounts(),
	})
	if act.TogglePause {
		g.SetPaused(!g.Paused())
	}
	if act.DropFood {
		g.DropFood(v.cam.X, v.cam.Y)
	}
	if act.Speed != g.Speed() {
		g.SetSpeed(act.Speed)
	}

	roaming, going, inside := g.RestPhaseCounts()
	v.flock.Draw(ui.FlockData{
		Roaming:    roaming,
		Going:      going,
		Inside:     inside,
		Queued:     g.Resting(),
		Evacuating: g.Evacuating(),
	}, v.overlays)
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.Draw(g.Perf().Stats())
	}
	v.hud.DrawControls(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), controlsLegend)
}
