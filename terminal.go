package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
	"github.com/pthm-cable/coop/termview"
)

// runTerminal shows the flock in the terminal with tcell.
func runTerminal(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer screen.Fini()

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	player := newAudio(cfg, opts.Seed)
	defer player.Close()

	start := time.Now()
	defer func() { logSummary(g, start) }()

	v := termview.New(screen, g)
	return v.Run(ctx, termview.RunOptions{
		MaxTicks: int32(maxTicks),
		OnEvents: player.Play,
	})
}
