package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
)

const (
	warmupSec    = 5.0 // Let the flock spread before sampling
	sampleEvery  = 30  // Ticks between spacing samples
	minIdlePairs = 2   // Samples with fewer idle agents are skipped
)

// FitnessEvaluator runs headless games and scores idle-flock spacing.
type FitnessEvaluator struct {
	params   *ParamVector
	base     *config.Config
	maxTicks int32
	seeds    []int64
	target   float64

	mu          sync.Mutex
	lastSpacing float64 // Mean spacing from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, base *config.Config, maxTicks int32, seeds []int64, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		base:     base,
		maxTicks: maxTicks,
		seeds:    seeds,
		target:   target,
	}
}

// LastSpacing returns the mean spacing measured by the most recent evaluation.
func (fe *FitnessEvaluator) LastSpacing() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSpacing
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the squared relative gap between measured and target spacing,
// averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	spacings := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			spacings[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, s := range spacings {
		total += spacingError(s, fe.target)
	}

	fe.mu.Lock()
	fe.lastSpacing = stat.Mean(spacings, nil)
	fe.mu.Unlock()

	return total / float64(len(spacings))
}

// runSimulation runs one headless game and returns the mean idle spacing.
// It returns NaN if no sample had enough idle agents.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) float64 {
	cfg := *fe.base
	fe.params.ApplyToConfig(&cfg, x)

	opts := game.DefaultOptions()
	opts.Seed = seed
	g, err := game.NewGameWithOptions(&cfg, opts)
	if err != nil {
		return math.NaN()
	}
	defer g.Close()

	dt := 1.0 / float64(max(cfg.Screen.TargetFPS, 1))
	warmupTicks := int32(warmupSec / dt)
	space := g.Space()

	var (
		agents  []game.AgentView
		samples []float64
	)
	for g.Tick() < fe.maxTicks {
		g.Step(dt)
		g.DrainEvents()
		if g.Tick() < warmupTicks || g.Tick()%sampleEvery != 0 {
			continue
		}
		agents = g.Agents(agents[:0])
		if s, ok := idleSpacing(agents, space.DistSq); ok {
			samples = append(samples, s)
		}
	}
	if len(samples) == 0 {
		return math.NaN()
	}
	return stat.Mean(samples, nil)
}

// idleSpacing returns the mean nearest-neighbour distance of wandering
// agents. Neighbours may be in any state.
func idleSpacing(agents []game.AgentView, distSq func(ax, ay, bx, by float64) float64) (float64, bool) {
	var sum float64
	n := 0
	for i := range agents {
		a := &agents[i]
		if a.Kind != components.KindWandering {
			continue
		}
		best := math.Inf(1)
		for j := range agents {
			if i == j {
				continue
			}
			best = min(best, distSq(a.X, a.Y, agents[j].X, agents[j].Y))
		}
		if math.IsInf(best, 1) {
			continue
		}
		sum += math.Sqrt(best)
		n++
	}
	if n < minIdlePairs {
		return 0, false
	}
	return sum / float64(n), true
}

// spacingError is the squared relative gap to target. Runs without any
// usable sample score as badly as a flock collapsed to a point.
func spacingError(spacing, target float64) float64 {
	if math.IsNaN(spacing) {
		return 1
	}
	d := (spacing - target) / target
	return d * d
}
