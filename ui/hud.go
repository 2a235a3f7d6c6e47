package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Agents     int
	Resting    int
	Seeds      int
	Tick       int32
	Speed      int
	MaxSpeed   int
	FPS        int32
	Paused     bool
	Evacuating bool
	Directives [5]int // Indexed by components.DirectiveKind
}

// HUDActions reports the controls the user operated this frame.
type HUDActions struct {
	TogglePause bool
	DropFood    bool
	Speed       int // Requested speed; equals HUDData.Speed when unchanged
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD and its controls.
func (h *HUD) Draw(data HUDData) HUDActions {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Yard: %d | Resting: %d | Seeds: %d", data.Agents, data.Resting, data.Seeds),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	y := int32(75)
	names := components.DirectiveNames()
	for k, n := range data.Directives {
		if n == 0 || k >= len(names) {
			continue
		}
		rl.DrawText(fmt.Sprintf("%s: %d", names[k], n), 10, y, 14, directiveTextColor(components.DirectiveKind(k)))
		y += 16
	}

	switch {
	case data.Paused:
		rl.DrawText("PAUSED", 10, y+4, 16, rl.Yellow)
	case data.Evacuating:
		rl.DrawText("EVACUATING", 10, y+4, 16, rl.Orange)
	}

	return h.drawControls(data)
}

// controlsRect is the screen area covered by the control strip.
func controlsRect() rl.Rectangle {
	return rl.Rectangle{X: float32(rl.GetScreenWidth()) - 340, Y: 4, Width: 336, Height: 64}
}

// OverControls reports whether a screen point lies on the control strip,
// so clicks there are not also handled as world clicks.
func (h *HUD) OverControls(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, controlsRect())
}

// drawControls draws the raygui control strip at the top right.
func (h *HUD) drawControls(data HUDData) HUDActions {
	act := HUDActions{Speed: data.Speed}
	r := controlsRect()
	h.renderer.DrawPanel(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
	x := r.X + 10
	y := r.Y + 6

	pauseLabel := "Pause"
	if data.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 90, Height: 26}, pauseLabel) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 100, Y: y, Width: 110, Height: 26}, "Drop Food") {
		act.DropFood = true
	}

	maxSpeed := data.MaxSpeed
	if maxSpeed < 1 {
		maxSpeed = 1
	}
	v := gui.SliderBar(
		rl.Rectangle{X: x + 50, Y: y + 36, Width: 220, Height: 18},
		"Speed", fmt.Sprintf("%dx", data.Speed),
		float32(data.Speed), 1, float32(maxSpeed),
	)
	if s := int(v + 0.5); s != data.Speed {
		act.Speed = s
	}
	return act
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// directiveTextColor picks the HUD text colour for a directive count.
func directiveTextColor(k components.DirectiveKind) rl.Color {
	switch k {
	case components.KindChasing:
		return rl.Color{R: 230, G: 200, B: 110, A: 255}
	case components.KindPanicking:
		return rl.Color{R: 235, G: 110, B: 95, A: 255}
	case components.KindFleeing:
		return rl.Color{R: 230, G: 150, B: 230, A: 255}
	case components.KindGoingToCoop:
		return rl.Color{R: 130, G: 180, B: 235, A: 255}
	}
	return rl.LightGray
}

// PerfPanel renders the tick phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with phases in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y
	height := int32(telemetry.NumPhases)*14 + 68
	p.renderer.DrawPanel(x-6, y-6, 250, height)

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  TPS: %.0f", stats.AvgStep.Round(time.Microsecond), stats.StepsPerSecond), x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("%.0f birds  %s/bird", stats.AvgAgents, stats.PerAgent.Round(10*time.Nanosecond)), x, y, 12, rl.LightGray)
	y += 16

	for ph := range telemetry.NumPhases {
		pct := stats.PhasePct[ph]
		color := rl.LightGray
		switch {
		case ph == stats.Slowest && pct > 0:
			color = rl.Red
		case pct > 15:
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %7s %5.1f%%", ph, stats.PhaseAvg[ph].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
