// Package termview renders the flock to a terminal with tcell.
//
// Each cell covers a world patch twice as tall as it is wide, so the
// camera viewport is the cell grid with doubled rows.
package termview

import (
	"fmt"
	"math"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/coop/camera"
	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/game"
)

// Glyphs.
const (
	glyphWall        = '#'
	glyphSeedFalling = '.'
	glyphSeedLanded  = ':'
	glyphFeather     = '\''
)

// Styles.
var (
	styleGround  = tcell.StyleDefault.Background(tcell.NewRGBColor(38, 56, 30))
	styleWall    = styleGround.Foreground(tcell.NewRGBColor(150, 104, 62)).Bold(true)
	styleInside  = tcell.StyleDefault.Background(tcell.NewRGBColor(70, 48, 30))
	styleSeed    = styleGround.Foreground(tcell.NewRGBColor(222, 186, 98))
	styleFeather = styleGround.Foreground(tcell.ColorWhite)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.NewRGBColor(210, 200, 170))
)

// agentStyles is indexed by components.DirectiveKind.
var agentStyles = [...]tcell.Style{
	components.KindWandering:   styleGround.Foreground(tcell.NewRGBColor(236, 222, 196)),
	components.KindChasing:     styleGround.Foreground(tcell.ColorYellow).Bold(true),
	components.KindPanicking:   styleGround.Foreground(tcell.ColorRed).Bold(true),
	components.KindFleeing:     styleGround.Foreground(tcell.ColorPurple).Bold(true),
	components.KindGoingToCoop: styleGround.Foreground(tcell.ColorBlue),
}

// View draws a game onto a tcell screen and turns input into game actions.
type View struct {
	screen tcell.Screen
	game   *game.Game
	cam    *camera.Camera

	cols, rows int

	// Mouse buttons held at the last mouse event, for press edges
	buttons tcell.ButtonMask

	agents   []game.AgentView
	seeds    []game.SeedView
	feathers []game.FeatherView
}

// New creates a view over an initialised screen.
func New(screen tcell.Screen, g *game.Game) *View {
	v := &View{screen: screen, game: g}
	v.cam = camera.New(1, 1, g.Space())
	v.syncSize()
	return v
}

// Camera returns the cell-grid camera.
func (v *View) Camera() *camera.Camera {
	return v.cam
}

// syncSize refits the camera to the screen. The last row is the status line.
func (v *View) syncSize() {
	cols, rows := v.screen.Size()
	v.cols, v.rows = cols, rows
	field := max(rows-1, 1)
	v.cam.Resize(float64(max(cols, 1)), float64(2*field), v.game.Space())
	v.cam.Fit()
}

// CellToWorld returns the world point under the centre of cell (cx, cy).
func (v *View) CellToWorld(cx, cy int) (float64, float64) {
	return v.cam.ScreenToWorld(float64(cx)+0.5, float64(2*cy)+1)
}

// inWorld reports whether cell (cx, cy) lies inside the fitted world, not
// in the letterbox margin.
func (v *View) inWorld(cx, cy int) bool {
	c := v.cam
	dx := (float64(cx) + 0.5 - c.ViewportW/2) / c.Zoom
	dy := (float64(2*cy) + 1 - c.ViewportH/2) / c.Zoom
	return math.Abs(dx) <= c.Space.W/2 && math.Abs(dy) <= c.Space.H/2
}

// worldToCell maps a world point to a cell; ok is false outside the field.
func (v *View) worldToCell(wx, wy float64) (cx, cy int, ok bool) {
	sx, sy := v.cam.WorldToScreen(wx, wy)
	cx = int(math.Floor(sx))
	cy = int(math.Floor(sy / 2))
	return cx, cy, cx >= 0 && cx < v.cols && cy >= 0 && cy < v.rows-1
}

// Draw renders one frame and shows it.
func (v *View) Draw() {
	s := v.screen
	s.Clear()

	v.drawYard()

	v.seeds = v.game.Seeds(v.seeds[:0])
	for i := range v.seeds {
		sd := &v.seeds[i]
		glyph := glyphSeedFalling
		if sd.Landed {
			glyph = glyphSeedLanded
		}
		if cx, cy, ok := v.worldToCell(sd.X, sd.Y); ok {
			s.SetContent(cx, cy, glyph, nil, styleSeed)
		}
	}

	v.feathers = v.game.Feathers(v.feathers[:0])
	for i := range v.feathers {
		f := &v.feathers[i]
		if cx, cy, ok := v.worldToCell(f.X, f.Y); ok {
			s.SetContent(cx, cy, glyphFeather, nil, styleFeather)
		}
	}

	v.agents = v.game.Agents(v.agents[:0])
	for i := range v.agents {
		a := &v.agents[i]
		if cx, cy, ok := v.worldToCell(a.X, a.Y); ok {
			s.SetContent(cx, cy, AgentGlyph(a.Role, a.Kind), nil, agentStyles[a.Kind])
		}
	}

	v.drawStatus()
	s.Show()
}

// drawYard fills the field with ground and the coop, then traces the coop
// wall around its mid radius so walls thinner than a cell still show.
func (v *View) drawYard() {
	c := v.game.Coop()
	sp := v.game.Space()
	for cy := 0; cy < v.rows-1; cy++ {
		for cx := 0; cx < v.cols; cx++ {
			if !v.inWorld(cx, cy) {
				v.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault)
				continue
			}
			wx, wy := v.CellToWorld(cx, cy)
			if sp.Dist(c.X, c.Y, wx, wy) < c.Inner {
				v.screen.SetContent(cx, cy, ' ', nil, styleInside)
			} else {
				v.screen.SetContent(cx, cy, ' ', nil, styleGround)
			}
		}
	}

	mid := (c.Outer + c.Inner) / 2
	steps := max(16, int(4*2*math.Pi*v.cam.Scale(mid)))
	for i := 0; i < steps; i++ {
		ang := 2 * math.Pi * float64(i) / float64(steps)
		if inDoor(ang, c) {
			continue
		}
		if cx, cy, ok := v.worldToCell(c.X+mid*math.Cos(ang), c.Y+mid*math.Sin(ang)); ok {
			v.screen.SetContent(cx, cy, glyphWall, nil, styleWall)
		}
	}
}

// drawStatus writes the status line on the last row.
func (v *View) drawStatus() {
	g := v.game
	counts := g.DirectiveCounts()
	state := ""
	if g.Paused() {
		state = " PAUSED"
	}
	line := fmt.Sprintf(" yard %d  rest %d  seeds %d  panic %d  flee %d  tick %d  %dx%s  [click] food [space] pause [+/-] speed [q] quit",
		g.AgentCount(), g.Resting(), g.SeedCount(),
		counts[components.KindPanicking], counts[components.KindFleeing],
		g.Tick(), g.Speed(), state)

	y := v.rows - 1
	col := 0
	for _, r := range line {
		if col >= v.cols {
			break
		}
		v.screen.SetContent(col, y, r, nil, styleStatus)
		col++
	}
	for ; col < v.cols; col++ {
		v.screen.SetContent(col, y, ' ', nil, styleStatus)
	}
}

// AgentGlyph returns the glyph for an agent: c, h or R by role,
// upper-cased while panicking or fleeing.
func AgentGlyph(role components.Role, kind components.DirectiveKind) rune {
	var r rune
	switch role {
	case components.RoleChick:
		r = 'c'
	case components.RoleRooster:
		r = 'R'
	default:
		r = 'h'
	}
	if kind == components.KindPanicking || kind == components.KindFleeing {
		r = unicode.ToUpper(r)
	}
	return r
}

// inDoor reports whether angle falls within the coop door gap.
func inDoor(angle float64, c game.CoopView) bool {
	d := math.Mod(angle-c.DoorAngle+3*math.Pi, 2*math.Pi) - math.Pi
	return math.Abs(d) <= c.DoorHalf
}
