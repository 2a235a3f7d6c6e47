package termview

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"
)

// HandleEvent applies one terminal event. It returns true when the user asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)

	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && v.buttons&tcell.Button1 == 0
		v.buttons = buttons
		if !pressed {
			return false
		}
		cx, cy := ev.Position()
		if cy >= v.rows-1 || !v.inWorld(cx, cy) {
			return false
		}
		wx, wy := v.CellToWorld(cx, cy)
		n := v.game.DropFood(wx, wy)
		slog.Debug("food dropped", "x", wx, "y", wy, "seeds", n)

	case *tcell.EventResize:
		v.syncSize()
		v.screen.Sync()
	}
	return false
}

func (v *View) handleKey(ev *tcell.EventKey) bool {
	g := v.game
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case ' ':
		g.SetPaused(!g.Paused())
	case '+', '=':
		g.SetSpeed(g.Speed() + 1)
	case '-', '_':
		g.SetSpeed(g.Speed() - 1)
	case 'f':
		sp := g.Space()
		g.DropFood(sp.W/2, sp.H/2)
	}
	return false
}
