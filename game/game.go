// Package game owns the flock world and runs the per-tick orchestration.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/systems"
	"github.com/pthm-cable/coop/telemetry"
	"github.com/pthm-cable/coop/torus"
)

// GridCellSize is the spatial grid cell size in world units.
const GridCellSize = 64.0

// pendingAgent is a resting agent waiting in the respawn queue.
type pendingAgent struct {
	agent systems.Agent
	timer float64
}

// Game holds the complete world state.
type Game struct {
	cfg *config.Config

	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Entity mappers over the agent components
	agentMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Body,
		components.Temperament,
		components.Mind,
		components.Vitals,
		components.Social,
	]
	agentFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Body,
		components.Temperament,
		components.Mind,
		components.Vitals,
		components.Social,
	]

	space    torus.Space
	coop     *systems.Coop
	seeds    *systems.SeedField
	feathers *systems.FeatherSystem
	pop      *systems.Population
	behavior *systems.BehaviorSystem
	physics  *systems.PhysicsSystem
	social   *systems.SocialForces
	grid     *systems.SpatialGrid

	respawns []pendingAgent
	events   []Event
	evac     evacuation

	// Per-tick scratch, reused between ticks
	agents    []systems.AgentRef
	slots     map[ecs.Entity]int
	gone      []bool
	points    []r2.Vec
	inputs    []systems.SocialInput
	accel     []r2.Vec
	neighbors []systems.Neighbor
	removals  []removal

	// State
	tick    int32
	simTime float64
	paused  bool
	speed   int

	// Telemetry
	runID            string
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	store            *telemetry.SQLiteStore
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// NewGame creates a world with default options.
func NewGame(cfg *config.Config) *Game {
	g, err := NewGameWithOptions(cfg, DefaultOptions())
	if err != nil {
		// Default options open no files.
		panic(err)
	}
	return g
}

// NewGameWithOptions creates a world, opening any telemetry sinks named in opts.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()

	seed := opts.Seed
	rng := rand.New(rand.NewSource(seed))

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	speed := opts.StepsPerUpdate
	if speed < 1 {
		speed = 1
	}

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rng,
		seed:  seed,
		agentMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Body,
			components.Temperament,
			components.Mind,
			components.Vitals,
			components.Social,
		](world),
		agentFilter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Body,
			components.Temperament,
			components.Mind,
			components.Vitals,
			components.Social,
		](world),
		slots:            make(map[ecs.Entity]int),
		speed:            speed,
		runID:            runID,
		collector:        telemetry.NewCollector(statsWindow, runID),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	g.buildWorld(torus.New(cfg.Derived.WorldW, cfg.Derived.WorldH))

	if err := g.openSinks(opts); err != nil {
		g.Close()
		return nil, err
	}

	g.spawnInitialPopulation()

	slog.Debug("world created",
		"run_id", runID,
		"seed", seed,
		"agents", cfg.Population.Count,
		"width", g.space.W,
		"height", g.space.H,
	)
	return g, nil
}

// buildWorld creates the geometry-bound systems for a world size.
func (g *Game) buildWorld(space torus.Space) {
	cfg := g.cfg
	g.space = space
	g.coop = systems.NewCoop(space, cfg.Coop)
	g.seeds = systems.NewSeedField(space, g.coop, cfg.Seeds, cfg.Scatter)
	g.feathers = systems.NewFeatherSystem(space, cfg.Feathers)
	g.pop = systems.NewPopulation(cfg, space, g.coop, g.feathers, g.rng)
	g.behavior = systems.NewBehaviorSystem(cfg, space, g.coop, g.seeds, g.pop, g.rng)
	g.physics = systems.NewPhysicsSystem(cfg, space, g.coop, g.seeds, g.rng)
	g.social = systems.NewSocialForces(cfg.Social, space, g.rng)
	g.grid = systems.NewSpatialGrid(space, GridCellSize)
}

// openSinks opens the CSV and SQLite outputs requested in opts.
func (g *Game) openSinks(opts Options) error {
	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("opening output dir: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(g.cfg); err != nil {
		return fmt.Errorf("writing config snapshot: %w", err)
	}

	if opts.SQLitePath != "" {
		store := telemetry.NewSQLiteStore(opts.SQLitePath)
		if err := store.Init(context.Background()); err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		g.store = store
	}
	return nil
}

// Close flushes and closes telemetry sinks.
func (g *Game) Close() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			slog.Error("failed to close sqlite store", "error", err)
		}
		g.store = nil
	}
}

// Update runs one or more simulation steps based on the speed setting.
func (g *Game) Update(dt float64) {
	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.Step(dt)
	}
}

// Tick returns the number of steps simulated.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns simulated seconds.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// RunID returns the telemetry run identifier.
func (g *Game) RunID() string {
	return g.runID
}

// Seed returns the RNG seed the world was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// Speed returns the steps run per Update.
func (g *Game) Speed() int {
	return g.speed
}

// SetSpeed sets the steps run per Update, clamped to [1, MaxSpeed].
func (g *Game) SetSpeed(s int) {
	g.speed = min(max(s, 1), MaxSpeed)
}

// Space returns the world torus.
func (g *Game) Space() torus.Space {
	return g.space
}

// Config returns the session configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Perf returns the tick phase timer.
func (g *Game) Perf() *telemetry.PerfCollector {
	return g.perfCollector
}
