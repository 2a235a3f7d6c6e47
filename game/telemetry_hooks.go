package game

import (
	"context"
	"log/slog"
	"math"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.simTime) {
		return
	}

	stats := g.collector.Flush(g.tick, g.simTime, g.sampleSnapshot())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		roaming, going, inside := g.RestPhaseCounts()
		rest := telemetry.RestRow{Roaming: roaming, Going: going, Inside: inside}
		if err := g.outputManager.WriteWindow(stats, perfStats, rest); err != nil {
			slog.Error("failed to write window", "error", err)
		}
	}

	ctx := context.Background()
	if g.store != nil {
		if err := g.store.WriteWindow(ctx, stats); err != nil {
			slog.Error("failed to store window", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if g.store != nil {
			if err := g.store.WriteBookmark(ctx, bm); err != nil {
				slog.Error("failed to store bookmark", "error", err)
			}
		}
	}
}

// sampleSnapshot collects the population state for the window that is closing.
func (g *Game) sampleSnapshot() telemetry.Snapshot {
	snap := telemetry.Snapshot{
		Resting: len(g.respawns),
		Seeds:   g.seeds.Len(),
	}

	query := g.agentFilter.Query()
	for query.Next() {
		_, vel, _, temp, mind, vitals, _ := query.Get()
		snap.Agents++
		snap.Directives[mind.Kind()]++
		snap.Speeds = append(snap.Speeds, math.Hypot(vel.X, vel.Y))
		if vitals.MaxFatigue > 0 {
			snap.Fatigue = append(snap.Fatigue, vitals.Fatigue/vitals.MaxFatigue)
		}
		snap.Socialness = append(snap.Socialness, temp.Socialness)
	}
	return snap
}

// UpdateHeadless runs one step without frame bookkeeping, for tools and tests.
func (g *Game) UpdateHeadless(dt float64) {
	g.Step(dt)
}

// RestPhaseCounts returns agents per rest phase, the queue counting as inside.
func (g *Game) RestPhaseCounts() (none, going, inside int) {
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, _, _, _, vitals, _ := query.Get()
		switch vitals.Rest {
		case components.RestGoing:
			going++
		case components.RestInside:
			inside++
		default:
			none++
		}
	}
	return none, going, inside + len(g.respawns)
}
