package game

import "github.com/pthm-cable/coop/telemetry"

// MaxSpeed is the highest steps-per-update multiplier.
const MaxSpeed = 8

// Options holds configuration for game initialization.
type Options struct {
	Seed           int64
	RunID          string  // Empty = fresh uuid
	StatsWindowSec float64 // 0 = use config
	StepsPerUpdate int
	LogStats       bool
	OutputDir      string // CSV logs and config snapshot, empty = disabled
	SQLitePath     string // Empty = disabled
	StatsCallback  func(telemetry.WindowStats)
}

// DefaultOptions returns the default game options.
func DefaultOptions() Options {
	return Options{
		Seed:           42,
		StepsPerUpdate: 1,
	}
}
