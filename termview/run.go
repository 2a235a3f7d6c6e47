package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/coop/game"
)

// RunOptions controls the terminal loop.
type RunOptions struct {
	MaxTicks int32              // Stop after this many ticks (0 = unlimited)
	OnEvents func([]game.Event) // Receives the game events drained each frame
}

// Run drives the game at the configured frame rate until the user quits,
// ctx is cancelled or MaxTicks is reached. The caller owns the screen.
func (v *View) Run(ctx context.Context, opts RunOptions) error {
	cfg := v.game.Config()
	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.screen.EnableMouse()
	v.Draw()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if v.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), cfg.Screen.MaxDT)
			last = now
			v.game.Update(dt)
			v.game.Perf().RecordFrame()
			if opts.OnEvents != nil {
				opts.OnEvents(v.game.DrainEvents())
			} else {
				v.game.DrainEvents()
			}
			if opts.MaxTicks > 0 && v.game.Tick() >= opts.MaxTicks {
				return nil
			}
			v.Draw()
		}
	}
}
