package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/systems"
	"github.com/pthm-cable/coop/telemetry"
)

// evacuation is the optional mass-panic window that clears the coop surroundings.
type evacuation struct {
	active bool
	timer  float64
}

// updateEvacuation starts an evacuation once enough agents panic at once.
// Only one evacuation runs at a time.
func (g *Game) updateEvacuation(dt float64) {
	ec := g.cfg.Coop.Evacuation
	if !ec.Enabled {
		return
	}
	if g.evac.active {
		g.evac.timer -= dt
		if g.evac.timer <= 0 {
			g.evac = evacuation{}
		}
		return
	}

	panicking := 0
	for i, a := range g.agents {
		if !g.gone[i] && a.Mind.Panic() != nil {
			panicking++
		}
	}
	if panicking < ec.PanicThreshold {
		return
	}

	g.evac = evacuation{active: true, timer: ec.Duration}
	centre := r2.Vec{X: g.coop.X, Y: g.coop.Y}
	reach := g.coop.Outer() + ec.Reach
	evacuated := 0
	for i, a := range g.agents {
		if g.gone[i] || a.Mind.CoopBound() != nil {
			continue
		}
		p := g.points[i]
		if g.space.Dist(p.X, p.Y, centre.X, centre.Y) >= reach {
			continue
		}
		g.evacuate(a, centre, p)
		evacuated++
	}

	g.collector.RecordEvacuation()
	if err := g.outputManager.WriteEvacuation(telemetry.EvacuationRow{
		RunID:     g.runID,
		Tick:      g.tick,
		SimTime:   g.simTime,
		Panicking: panicking,
		Evacuated: evacuated,
	}); err != nil {
		slog.Error("failed to write evacuation", "error", err)
	}
	slog.Debug("coop evacuation",
		"tick", g.tick,
		"panicking", panicking,
		"evacuated", evacuated,
	)
}

// evacuate sends one agent straight away from the coop centre.
// An agent exactly on the centre leaves through the door.
func (g *Game) evacuate(a systems.AgentRef, centre, p r2.Vec) {
	ec := g.cfg.Coop.Evacuation
	dir := g.space.Vector(centre, p)
	n := r2.Norm(dir)
	if n < 1e-6 {
		dir, n = r2.Vec{Y: 1}, 1
	}
	x, y := g.space.WrapPos(p.X+dir.X/n*ec.FleeDistance, p.Y+dir.Y/n*ec.FleeDistance)
	a.Mind.Directive = &components.Fleeing{Timer: ec.FleeTime, X: x, Y: y}
	systems.ApplyFlee(a)
}

// Evacuating reports whether an evacuation window is open.
func (g *Game) Evacuating() bool {
	return g.evac.active
}
