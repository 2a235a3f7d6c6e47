package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/game"
)

// InspectorData holds all the data needed to render the inspector panel.
type InspectorData struct {
	Agent            game.AgentInfo
	FatigueThreshold float64 // Fraction of MaxFatigue that sends the agent home
}

// Inspector renders the agent inspection panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data and returns the bottom Y.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	fields := components.TemperamentFieldDescriptors()
	a := &data.Agent

	panelHeight := padding*2 + r.Theme.LineHeight*8 + int32(len(fields))*(r.Theme.LineHeight+2) + 16
	r.DrawPanel(ins.x, ins.y, ins.width, panelHeight)

	x := ins.x + padding
	y := ins.y + padding
	contentWidth := ins.width - padding*2

	rl.DrawText(fmt.Sprintf("%s #%d", a.Role, a.Entity.ID()), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	y = r.DrawLabelValue(x, y, "Directive", a.Kind.String())
	y = r.DrawLabelValue(x, y, "Mood", a.Mood.String())
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.0f", a.Speed))
	y = r.DrawLabelValue(x, y, "Position", fmt.Sprintf("%.0f, %.0f", a.X, a.Y))
	y = r.DrawFatigueBar(x, y, "Fatigue", a.Fatigue, a.MaxFatigue, data.FatigueThreshold, contentWidth)
	y = r.DrawSpacer(y, 6)

	group := ""
	for _, fd := range fields {
		if fd.Group != group {
			group = fd.Group
			y = r.DrawSectionHeader(x, y, groupLabel(group))
		}
		v := components.TemperamentValue(&a.Temperament, fd.ID)
		switch {
		case fd.IsCentered:
			y = r.DrawCenteredBar(x, y, fd.Label, fd.Format, v, fd.Max, contentWidth)
		case fd.IsBar:
			y = r.DrawBar(x, y, fd.Label, fd.Format, v, fd.Min, fd.Max, contentWidth)
		default:
			y = r.DrawLabelValue(x, y, fd.Label, fmt.Sprintf(fd.Format, v))
		}
	}
	return y
}

// groupLabel returns a display label for a temperament field group.
func groupLabel(g string) string {
	switch g {
	case "mood":
		return "Mood"
	case "motion":
		return "Motion"
	case "food":
		return "Food"
	}
	return g
}
