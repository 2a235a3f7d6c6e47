package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FlockData is the rest-cycle snapshot shown by the flock panel.
type FlockData struct {
	Roaming    int
	Going      int
	Inside     int // Includes Queued
	Queued     int // Waiting in the respawn queue
	Evacuating bool
}

// Total is the whole flock, roaming or not.
func (d FlockData) Total() int {
	return d.Roaming + d.Going + d.Inside
}

// restSplit divides width between the roaming, homeward and inside segments.
// Rounding slack goes to the inside segment so the bar is always full.
func restSplit(d FlockData, width int32) [3]int32 {
	total := d.Total()
	if total <= 0 || width <= 0 {
		return [3]int32{}
	}
	roam := width * int32(d.Roaming) / int32(total)
	going := width * int32(d.Going) / int32(total)
	return [3]int32{roam, going, width - roam - going}
}

var restColors = [3]rl.Color{
	{R: 110, G: 190, B: 110, A: 255},
	{R: 130, G: 180, B: 235, A: 255},
	{R: 215, G: 185, B: 95, A: 255},
}

// FlockPanel shows where the flock is in its rest cycle, with an expandable
// list of overlay toggles underneath.
type FlockPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	expanded bool
}

// NewFlockPanel creates a flock panel with the overlay list collapsed.
func NewFlockPanel(x, y, width int32) *FlockPanel {
	return &FlockPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// ToggleOverlays expands or collapses the overlay list.
func (p *FlockPanel) ToggleOverlays() bool {
	p.expanded = !p.expanded
	return p.expanded
}

// Draw renders the panel and returns the y below it.
func (p *FlockPanel) Draw(data FlockData, overlays *OverlayRegistry) int32 {
	r := p.renderer
	pad := r.Theme.Padding
	line := r.Theme.LineHeight
	inner := p.width - pad*2

	rows := int32(4)
	if data.Evacuating {
		rows++
	}
	if p.expanded {
		rows += int32(len(overlays.All())) + 1
	}
	r.DrawPanel(p.x, p.y, p.width, rows*line+pad*2)

	x, y := p.x+pad, p.y+pad
	y = r.DrawSectionHeader(x, y, "Rest Cycle")

	seg := restSplit(data, inner)
	bx := x
	for i, w := range seg {
		rl.DrawRectangle(bx, y+2, w, r.Theme.BarHeight, restColors[i])
		bx += w
	}
	if data.Total() == 0 {
		rl.DrawRectangle(x, y+2, inner, r.Theme.BarHeight, r.Theme.BarBg)
	}
	y += line

	rl.DrawText(fmt.Sprintf("out %d", data.Roaming), x, y, r.Theme.FontSize, restColors[0])
	rl.DrawText(fmt.Sprintf("home %d", data.Going), x+inner/3, y, r.Theme.FontSize, restColors[1])
	rl.DrawText(fmt.Sprintf("in %d", data.Inside), x+2*inner/3, y, r.Theme.FontSize, restColors[2])
	y += line
	y = r.DrawLabelValue(x, y, "Queued", fmt.Sprintf("%d", data.Queued))

	if data.Evacuating {
		rl.DrawText("Clearing the coop", x, y, r.Theme.FontSize, r.Theme.BarFillHigh)
		y += line
	}

	if !p.expanded {
		return y + pad
	}
	y = r.DrawSectionHeader(x, y, "Overlays")
	for _, desc := range overlays.All() {
		color := r.Theme.LabelColor
		if overlays.IsEnabled(desc.ID) {
			color = r.Theme.ValueColor
			rl.DrawRectangle(x, y+3, 6, 6, restColors[0])
		}
		rl.DrawText(fmt.Sprintf("[%s] %s", desc.KeyLabel, desc.Name), x+12, y, r.Theme.FontSize, color)
		y += line
	}
	return y + pad
}
