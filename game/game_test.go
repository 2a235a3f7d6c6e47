package game

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/telemetry"
)

const testDT = 1.0 / 60

func newTestGame(t *testing.T, seed int64, tweak func(*config.Config)) *Game {
	t.Helper()
	cfg := config.Default()
	if tweak != nil {
		tweak(cfg)
	}
	g, err := NewGameWithOptions(cfg, Options{Seed: seed, RunID: "test"})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

// quiet disables spontaneous panic and trait mutation.
func quiet(cfg *config.Config) {
	cfg.Panic.ChancePerSec = 0
	cfg.Temperament.MutationChancePerSec = 0
}

// firstEntity returns any live agent.
func firstEntity(t *testing.T, g *Game) ecs.Entity {
	t.Helper()
	var e ecs.Entity
	found := false
	query := g.agentFilter.Query()
	for query.Next() {
		if !found {
			e = query.Entity()
			found = true
		}
	}
	if !found {
		t.Fatal("no agents in world")
	}
	return e
}

func TestNewGamePopulation(t *testing.T) {
	g := newTestGame(t, 1, nil)
	want := g.Config().Population.Count

	if got := g.AgentCount(); got != want {
		t.Fatalf("AgentCount = %d, want %d", got, want)
	}

	views := g.Agents(nil)
	if len(views) != want {
		t.Fatalf("len(Agents) = %d, want %d", len(views), want)
	}
	space := g.Space()
	for i, v := range views {
		switch v.Role {
		case components.RoleHen, components.RoleChick, components.RoleRooster:
		default:
			t.Errorf("agent %d: role %v", i, v.Role)
		}
		if v.PeckTimer != 0 {
			t.Errorf("agent %d: PeckTimer = %v, want 0", i, v.PeckTimer)
		}
		if math.IsNaN(v.EyeX) || math.IsNaN(v.EyeY) {
			t.Errorf("agent %d: eye offset undefined", i)
		}
		if v.X < 0 || v.X >= space.W || v.Y < 0 || v.Y >= space.H {
			t.Errorf("agent %d: position (%v,%v) outside world", i, v.X, v.Y)
		}
		if v.Kind != components.KindWandering {
			t.Errorf("agent %d: kind = %v, want wandering", i, v.Kind)
		}
	}
}

func TestNewGameSameSeedSameWorld(t *testing.T) {
	a := newTestGame(t, 9, nil)
	b := newTestGame(t, 9, nil)
	for i := 0; i < 120; i++ {
		a.Step(testDT)
		b.Step(testDT)
	}

	va, vb := a.Agents(nil), b.Agents(nil)
	if len(va) != len(vb) {
		t.Fatalf("agent counts differ: %d vs %d", len(va), len(vb))
	}
	for i := range va {
		if va[i].X != vb[i].X || va[i].Y != vb[i].Y {
			t.Fatalf("agent %d diverged: (%v,%v) vs (%v,%v)", i, va[i].X, va[i].Y, vb[i].X, vb[i].Y)
		}
	}
}

func TestFatigueRoundTrip(t *testing.T) {
	g := newTestGame(t, 2, func(cfg *config.Config) {
		quiet(cfg)
		cfg.Population.Count = 1
	})

	e := firstEntity(t, g)
	vitals := ecs.NewMap[components.Vitals](g.world).Get(e)
	vitals.Fatigue = g.Config().Fatigue.Threshold * vitals.MaxFatigue

	g.Step(testDT)
	if going := g.DirectiveCounts()[components.KindGoingToCoop]; going != 1 {
		t.Fatalf("going to coop = %d, want 1", going)
	}

	for i := 0; i < 30*60 && g.world.Alive(e); i++ {
		g.Step(testDT)
	}
	if g.world.Alive(e) {
		t.Fatal("tired agent never reached the coop")
	}
	if g.AgentCount() != 0 || g.Resting() != 1 {
		t.Fatalf("yard = %d resting = %d, want 0 and 1", g.AgentCount(), g.Resting())
	}

	maxRest := g.Config().Fatigue.RestMax
	for i := 0; i < int(maxRest/testDT)+10 && g.AgentCount() == 0; i++ {
		g.Step(testDT)
	}
	if g.AgentCount() != 1 {
		t.Fatal("agent never respawned")
	}
	if g.world.Alive(e) {
		t.Error("stale handle reports a live entity after respawn")
	}

	back := firstEntity(t, g)
	v := ecs.NewMap[components.Vitals](g.world).Get(back)
	// Respawn happens before the tick's fatigue accrual.
	if v.Fatigue > g.Config().Fatigue.Rate*testDT+1e-9 {
		t.Errorf("fatigue after respawn = %v, want ~0", v.Fatigue)
	}
	if v.Rest != components.RestNone {
		t.Errorf("rest = %v, want RestNone", v.Rest)
	}
}

func TestFoodOverridesFear(t *testing.T) {
	g := newTestGame(t, 3, quiet)

	g.collectAgents()
	panicked, fled := g.agents[0], g.agents[1]
	if !g.pop.TriggerPanic(panicked) {
		t.Fatal("TriggerPanic refused")
	}
	g.pop.FleeFrom(fled, g.points[0])

	if n := g.DropFood(200, 600); n == 0 {
		t.Fatal("DropFood created no seeds")
	}
	g.Step(testDT)

	counts := g.DirectiveCounts()
	if counts[components.KindPanicking] != 0 || counts[components.KindFleeing] != 0 {
		t.Errorf("panicking = %d fleeing = %d after food, want 0",
			counts[components.KindPanicking], counts[components.KindFleeing])
	}
}

func TestDropFoodBatch(t *testing.T) {
	g := newTestGame(t, 4, nil)
	want := g.Config().Seeds.PerDrop

	if n := g.DropFood(200, 600); n != want {
		t.Fatalf("DropFood = %d, want %d", n, want)
	}
	seeds := g.Seeds(nil)
	if len(seeds) != want {
		t.Fatalf("len(Seeds) = %d, want %d", len(seeds), want)
	}
	for i, s := range seeds {
		if s.Y >= s.GroundY {
			t.Errorf("seed %d starts at y=%v, not above ground %v", i, s.Y, s.GroundY)
		}
	}

	ev := g.DrainEvents()
	if len(ev) != 1 || ev[0].Kind != EventFoodDrop {
		t.Errorf("events = %+v, want one food drop", ev)
	}
	if len(g.DrainEvents()) != 0 {
		t.Error("DrainEvents did not clear the queue")
	}
}

func TestNoSafetyDespawns(t *testing.T) {
	cfg := config.Default()
	var windows, safety, arrivals int
	g, err := NewGameWithOptions(cfg, Options{
		Seed:           5,
		StatsWindowSec: 5,
		StatsCallback: func(s telemetry.WindowStats) {
			windows++
			safety += s.SafetyDespawns
			arrivals += s.CoopArrivals + s.DespawnExits
		},
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	defer g.Close()

	space := g.Space()
	for i := 0; i < 90*60; i++ {
		if i%(8*60) == 0 {
			g.DropFood(space.W*0.25, space.H*0.7)
		}
		g.Step(testDT)
	}

	if windows == 0 {
		t.Fatal("no stats windows flushed")
	}
	if safety != 0 {
		t.Errorf("safety despawns = %d, want 0", safety)
	}
	if arrivals == 0 {
		t.Error("no agent went home to rest in 90 seconds")
	}
	if got := g.AgentCount() + g.Resting(); got != cfg.Population.Count {
		t.Errorf("yard + resting = %d, want %d", got, cfg.Population.Count)
	}
}

func TestResize(t *testing.T) {
	g := newTestGame(t, 6, nil)
	for i := 0; i < 30; i++ {
		g.Step(testDT)
	}

	g.Resize(900, 500)
	space := g.Space()
	if space.W != 900 || space.H != 500 {
		t.Fatalf("space = %vx%v, want 900x500", space.W, space.H)
	}
	coop := g.Coop()
	if coop.X < 0 || coop.X >= 900 || coop.Y < 0 || coop.Y >= 500 {
		t.Errorf("coop centre (%v,%v) outside resized world", coop.X, coop.Y)
	}
	if len(g.Feathers(nil)) != 0 {
		t.Error("feathers not reset on resize")
	}

	for i := 0; i < 60; i++ {
		g.Step(testDT)
	}
	for i, v := range g.Agents(nil) {
		if v.X < 0 || v.X >= 900 || v.Y < 0 || v.Y >= 500 {
			t.Errorf("agent %d at (%v,%v) outside resized world", i, v.X, v.Y)
		}
	}
}

func TestSetSpeedClamps(t *testing.T) {
	g := newTestGame(t, 7, nil)
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{3, 3},
		{MaxSpeed + 5, MaxSpeed},
	}
	for _, tt := range tests {
		g.SetSpeed(tt.in)
		if got := g.Speed(); got != tt.want {
			t.Errorf("SetSpeed(%d): Speed = %d, want %d", tt.in, got, tt.want)
		}
	}

	g.SetSpeed(2)
	g.SetPaused(true)
	g.Update(testDT)
	if g.Tick() != 0 {
		t.Errorf("paused Update advanced to tick %d", g.Tick())
	}
	g.SetPaused(false)
	g.Update(testDT)
	if g.Tick() != 2 {
		t.Errorf("Tick = %d after one Update at speed 2, want 2", g.Tick())
	}
}

func TestEvacuation(t *testing.T) {
	g := newTestGame(t, 8, func(cfg *config.Config) {
		quiet(cfg)
		cfg.Coop.Evacuation.Enabled = true
		cfg.Coop.Evacuation.PanicThreshold = 3
		cfg.Coop.Evacuation.Reach = 400
	})

	g.collectAgents()
	for _, a := range g.agents[:3] {
		g.pop.TriggerPanic(a)
		a.Mind.Panic().Timer = 10
	}
	g.Step(testDT)

	if !g.Evacuating() {
		t.Fatal("evacuation did not start")
	}
	// Fresh agents spawn below the door, within the widened reach.
	if g.DirectiveCounts()[components.KindFleeing] == 0 {
		t.Error("no agent evacuated")
	}
}

func TestEvacuationWritesRow(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	quiet(cfg)
	cfg.Coop.Evacuation.Enabled = true
	cfg.Coop.Evacuation.PanicThreshold = 3
	cfg.Coop.Evacuation.Reach = 400

	g, err := NewGameWithOptions(cfg, Options{Seed: 8, RunID: "evac", OutputDir: dir})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	g.collectAgents()
	for _, a := range g.agents[:3] {
		g.pop.TriggerPanic(a)
		a.Mind.Panic().Timer = 10
	}
	g.Step(testDT)
	g.Close()

	data, err := os.ReadFile(filepath.Join(dir, "evacuations.csv"))
	if err != nil {
		t.Fatalf("read evacuations.csv: %v", err)
	}
	var rows []telemetry.EvacuationRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("parse evacuations.csv: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.RunID != "evac" || row.Tick != 0 {
		t.Errorf("identity = (%q, %d), want (evac, 0)", row.RunID, row.Tick)
	}
	if row.Panicking < 3 {
		t.Errorf("panicking = %d, want at least 3", row.Panicking)
	}
	if row.Evacuated == 0 {
		t.Error("row records no evacuated agents")
	}
}

func TestTelemetrySinks(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	cfg := config.Default()

	g, err := NewGameWithOptions(cfg, Options{
		Seed:           10,
		RunID:          "sink-test",
		StatsWindowSec: 0.5,
		OutputDir:      dir,
		SQLitePath:     dbPath,
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	for i := 0; i < 2*60; i++ {
		g.Step(testDT)
	}
	g.Close()

	for _, name := range []string{"telemetry.csv", "perf.csv", "rest.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	store := telemetry.NewSQLiteStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()

	windows, err := store.Windows(context.Background(), "sink-test")
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(windows) < 2 {
		t.Fatalf("stored windows = %d, want at least 2", len(windows))
	}
	if windows[0].Agents+windows[0].Resting != cfg.Population.Count {
		t.Errorf("window agents = %d resting = %d, want %d total",
			windows[0].Agents, windows[0].Resting, cfg.Population.Count)
	}
}

func TestAgentAtAndInspect(t *testing.T) {
	g := newTestGame(t, 11, quiet)
	e := firstEntity(t, g)
	info, ok := g.Inspect(e)
	if !ok {
		t.Fatal("Inspect refused a live agent")
	}

	got, ok := g.AgentAt(info.X, info.Y, 0)
	if !ok {
		t.Fatal("AgentAt found nothing at an agent's position")
	}
	if got != e {
		other, _ := g.Inspect(got)
		if g.space.Dist(info.X, info.Y, other.X, other.Y) > 1e-9 {
			t.Errorf("AgentAt returned a different agent at distance %v", g.space.Dist(info.X, info.Y, other.X, other.Y))
		}
	}
	if info.MaxFatigue <= 0 {
		t.Errorf("MaxFatigue = %v", info.MaxFatigue)
	}

	g.world.RemoveEntity(e)
	if _, ok := g.Inspect(e); ok {
		t.Error("Inspect accepted a despawned agent")
	}
}
