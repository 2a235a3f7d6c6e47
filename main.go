package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/coop/audio"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
)

// flags holds the parsed command line.
type flags struct {
	configPath     string
	headless       bool
	term           bool
	seed           int64
	maxTicks       int
	outputDir      string
	sqlitePath     string
	logStats       bool
	statsWindow    float64
	stepsPerUpdate int
	mute           bool
	debug          bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.BoolVar(&f.headless, "headless", false, "Run without graphics")
	flag.BoolVar(&f.term, "term", false, "Run in the terminal instead of a window")
	flag.Int64Var(&f.seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.IntVar(&f.maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.StringVar(&f.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.StringVar(&f.sqlitePath, "sqlite", "", "SQLite database for telemetry windows and bookmarks")
	flag.BoolVar(&f.logStats, "log-stats", false, "Output stats via slog")
	flag.Float64Var(&f.statsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	flag.IntVar(&f.stepsPerUpdate, "steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")
	flag.BoolVar(&f.mute, "mute", false, "Disable sound cues")
	flag.BoolVar(&f.debug, "debug", false, "Log lifecycle events at debug level")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	logOut, closeLog, err := logWriter(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "opening log file:", err)
		os.Exit(1)
	}
	defer closeLog()
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(f.configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if f.mute {
		cfg.Audio.Enabled = false
	}

	rngSeed := f.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		StatsWindowSec: f.statsWindow,
		StepsPerUpdate: f.stepsPerUpdate,
		LogStats:       f.logStats,
		OutputDir:      f.outputDir,
		SQLitePath:     f.sqlitePath,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case f.headless:
		err = runHeadless(ctx, cfg, opts, f.maxTicks)
	case f.term:
		err = runTerminal(ctx, cfg, opts, f.maxTicks)
	default:
		err = runGraphical(cfg, opts, f.maxTicks)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// logWriter picks the log destination. The terminal front-end owns stdout,
// so there logs go to coop.log in the output dir, or nowhere.
func logWriter(f flags) (io.Writer, func(), error) {
	if !f.term {
		return os.Stdout, func() {}, nil
	}
	if f.outputDir == "" {
		return io.Discard, func() {}, nil
	}
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(filepath.Join(f.outputDir, "coop.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}

// runHeadless steps the simulation at a fixed dt as fast as possible.
func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int) error {
	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	dt := 1.0 / float64(max(cfg.Screen.TargetFPS, 1))
	slog.Info("starting headless simulation",
		"run_id", g.RunID(),
		"seed", opts.Seed,
		"agents", cfg.Population.Count,
		"max_ticks", maxTicks,
		"steps_per_update", g.Speed(),
	)

	start := time.Now()
	defer func() { logSummary(g, start) }()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		g.Update(dt)
		g.DrainEvents()
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
}

// newAudio opens the cue player. Audio failures are logged and the run
// continues silently.
func newAudio(cfg *config.Config, seed int64) *audio.Player {
	p := audio.NewPlayer(cfg.Audio, cfg.Derived.WorldW, seed)
	if err := p.Init(); err != nil {
		slog.Warn("audio unavailable", "error", err)
	}
	return p
}

// logSummary logs a human-readable run summary.
func logSummary(g *game.Game, start time.Time) {
	elapsed := time.Since(start)
	tps := 0.0
	if elapsed > 0 {
		tps = float64(g.Tick()) / elapsed.Seconds()
	}
	slog.Info("run finished",
		"run_id", g.RunID(),
		"ticks", humanize.Comma(int64(g.Tick())),
		"sim_time", humanize.FtoaWithDigits(g.SimTime(), 1)+"s",
		"wall_time", elapsed.Round(time.Millisecond).String(),
		"ticks_per_sec", humanize.Comma(int64(tps)),
		"agents", g.AgentCount(),
		"resting", g.Resting(),
	)
}
