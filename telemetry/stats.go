package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Agents      int `csv:"agents"`
	Resting     int `csv:"resting"`
	Seeds       int `csv:"seeds"`
	Wandering   int `csv:"wandering"`
	Chasing     int `csv:"chasing"`
	Panicking   int `csv:"panicking"`
	Fleeing     int `csv:"fleeing"`
	GoingToCoop int `csv:"going_to_coop"`

	// Events during window
	Startles       int `csv:"startles"`
	Panics         int `csv:"panics"`
	Flees          int `csv:"flees"`
	Mutations      int `csv:"mutations"`
	Flips          int `csv:"flips"`
	SeedsDropped   int `csv:"seeds_dropped"`
	SeedsEaten     int `csv:"seeds_eaten"`
	SeedsLost      int `csv:"seeds_lost"`
	ScatterKicks   int `csv:"scatter_kicks"`
	CoopArrivals   int `csv:"coop_arrivals"`
	DespawnExits   int `csv:"despawn_exits"`
	SafetyDespawns int `csv:"safety_despawns"`
	Respawns       int `csv:"respawns"`
	Evacuations    int `csv:"evacuations"`

	// Distributions (sampled at window end)
	SpeedMean      float64 `csv:"speed_mean"`
	SpeedP50       float64 `csv:"speed_p50"`
	SpeedP90       float64 `csv:"speed_p90"`
	FatigueMean    float64 `csv:"fatigue_mean"`
	SocialnessMean float64 `csv:"socialness_mean"`
	SocialnessStd  float64 `csv:"socialness_std"`
}

// Distribution summarises a sample.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, population std, and percentiles.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, variance := stat.PopMeanVariance(sorted, nil)
	return Distribution{
		Mean: mean,
		Std:  sqrt(variance),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("resting", s.Resting),
		slog.Int("seeds", s.Seeds),
		slog.Int("panicking", s.Panicking),
		slog.Int("fleeing", s.Fleeing),
		slog.Int("seeds_eaten", s.SeedsEaten),
		slog.Int("safety_despawns", s.SafetyDespawns),
		slog.Float64("speed_mean", s.SpeedMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", humanize.Comma(int64(s.WindowEndTick)),
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"resting", s.Resting,
		"seeds", s.Seeds,
		"wandering", s.Wandering,
		"chasing", s.Chasing,
		"panicking", s.Panicking,
		"fleeing", s.Fleeing,
		"going_to_coop", s.GoingToCoop,
		"startles", s.Startles,
		"panics", s.Panics,
		"flees", s.Flees,
		"flips", s.Flips,
		"seeds_eaten", s.SeedsEaten,
		"seeds_lost", s.SeedsLost,
		"scatter_kicks", s.ScatterKicks,
		"coop_arrivals", s.CoopArrivals,
		"respawns", s.Respawns,
		"safety_despawns", s.SafetyDespawns,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"fatigue_mean", s.FatigueMean,
		"socialness_mean", s.SocialnessMean,
		"socialness_std", s.SocialnessStd,
	)
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
