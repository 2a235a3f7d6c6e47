package game

import (
	"log/slog"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/systems"
	"github.com/pthm-cable/coop/torus"
)

// DropFood scatters a batch of seeds around (x, y) and alerts the flock.
// Returns the number of seeds created; a full seed field creates none.
func (g *Game) DropFood(x, y float64) int {
	x, y = g.space.WrapPos(x, y)
	n := g.seeds.Spawn(x, y, g.rng)
	if n == 0 {
		return 0
	}
	g.collector.RecordSeedsDropped(n)
	g.emit(EventFoodDrop, x, y)

	// Food overrides fear, and every agent starts its notice delay afresh.
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, temp, mind, vitals, _ := query.Get()
		vitals.NoticeTimer = temp.NoticeDelay
		vitals.SkidTimer = 0
		vitals.PeckTimer = 0
		switch mind.Kind() {
		case components.KindPanicking, components.KindFleeing:
			mind.Wander()
			mind.NextTargetIn = 0
		}
	}
	return n
}

// Resize adopts a new torus period. The coop is re-placed, every position and
// target is wrapped into the new world, wander targets are rerolled and the
// feather collection is reset.
func (g *Game) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	g.cfg.SetWorldSize(w, h)
	space := torus.New(w, h)
	g.space = space

	g.coop = systems.NewCoop(space, g.cfg.Coop)
	g.pop.SetWorld(space, g.coop)
	g.behavior.SetWorld(space, g.coop)
	g.physics.SetWorld(space, g.coop)
	g.social.SetWorld(space)
	g.seeds.Resize(space, g.coop)
	g.feathers.Reset(space)
	g.grid = systems.NewSpatialGrid(space, GridCellSize)

	query := g.agentFilter.Query()
	for query.Next() {
		pos, _, _, _, mind, _, _ := query.Get()
		pos.X, pos.Y = space.WrapPos(pos.X, pos.Y)
		mind.TX, mind.TY = space.WrapPos(mind.TX, mind.TY)
		if mind.Kind() == components.KindWandering {
			mind.NextTargetIn = 0
		}
		if home := mind.CoopBound(); home != nil {
			home.DoorX, home.DoorY = space.WrapPos(g.coop.X, g.coop.Y+g.coop.Outer()+g.cfg.Fatigue.DoorOffset)
		}
	}

	slog.Debug("world resized", "width", w, "height", h)
}
