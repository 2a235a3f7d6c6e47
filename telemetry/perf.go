package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of a simulation step.
type Phase uint8

// Step stages in execution order.
const (
	PhaseSeeds Phase = iota
	PhaseRespawn
	PhaseDecide
	PhaseFlee
	PhaseTemperament
	PhaseSocial
	PhaseMovement
	PhaseScatter
	PhaseStartle
	PhaseFeathers
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"seeds", "respawn", "decide", "flee", "temperament",
	"social", "movement", "scatter", "startle", "feathers", "telemetry",
}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// stepSample is the timing of one step.
type stepSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
	agents int
}

// PerfCollector times simulation steps over a ring of recent samples.
// It is owned by the simulation goroutine.
type PerfCollector struct {
	ring   []stepSample
	next   int
	filled int

	cur     stepSample
	begun   time.Time
	entered time.Time
	phase   Phase
	open    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector returns a collector averaging over the last window steps.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]stepSample, window)}
}

// Begin starts timing a step.
func (p *PerfCollector) Begin() {
	p.cur = stepSample{}
	p.begun = time.Now()
	p.open = false
}

// Enter closes the running phase, if any, and starts timing ph.
// Entering the same phase twice in one step accumulates.
func (p *PerfCollector) Enter(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.entered = now
	p.open = true
}

// End finishes the step. agents is the flock size the step processed.
func (p *PerfCollector) End(agents int) {
	now := time.Now()
	p.closePhase(now)
	p.open = false
	p.cur.total = now.Sub(p.begun)
	p.cur.agents = agents

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.open && p.phase < NumPhases {
		p.cur.phases[p.phase] += now.Sub(p.entered)
	}
}

// RecordFrame marks a rendered frame. Call once per frame in windowed modes.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the collector's window.
type PerfStats struct {
	Steps int

	AvgStep time.Duration
	MinStep time.Duration
	MaxStep time.Duration

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64
	Slowest  Phase

	// Mean flock size and step cost per agent.
	AvgAgents float64
	PerAgent  time.Duration

	StepsPerSecond float64

	Frame time.Duration
	FPS   float64
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Steps: p.filled, Frame: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [NumPhases]time.Duration
	agents := 0
	for i, smp := range p.ring[:p.filled] {
		total += smp.total
		agents += smp.agents
		if i == 0 || smp.total < s.MinStep {
			s.MinStep = smp.total
		}
		s.MaxStep = max(s.MaxStep, smp.total)
		for ph, d := range smp.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.filled)
	s.AvgStep = total / n
	s.AvgAgents = float64(agents) / float64(p.filled)
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgStep > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgStep) * 100
		}
		if s.PhaseAvg[ph] > s.PhaseAvg[s.Slowest] {
			s.Slowest = Phase(ph)
		}
	}
	if s.AvgStep > 0 {
		s.StepsPerSecond = float64(time.Second) / float64(s.AvgStep)
	}
	if agents > 0 {
		s.PerAgent = time.Duration(float64(s.AvgStep) / s.AvgAgents)
	}
	return s
}

// LogStats writes the summary at info level, listing only phases above 1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgStep.Microseconds(),
		"max_step_us", s.MaxStep.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
		"agents", int(s.AvgAgents),
		"ns_per_agent", s.PerAgent.Nanoseconds(),
		"slowest", s.Slowest.String(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("min_step_us", s.MinStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Float64("agents", s.AvgAgents),
		slog.Duration("per_agent", s.PerAgent),
		slog.String("slowest", s.Slowest.String()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	return slog.GroupValue(attrs...)
}

// PerfRow is one perf.csv line.
type PerfRow struct {
	RunID          string  `csv:"run_id"`
	WindowEnd      int32   `csv:"window_end"`
	AvgStepUS      int64   `csv:"avg_step_us"`
	MaxStepUS      int64   `csv:"max_step_us"`
	StepsPerSec    float64 `csv:"steps_per_sec"`
	Agents         float64 `csv:"agents"`
	NsPerAgent     int64   `csv:"ns_per_agent"`
	Slowest        string  `csv:"slowest"`
	FPS            float64 `csv:"fps"`
	SeedsPct       float64 `csv:"seeds_pct"`
	RespawnPct     float64 `csv:"respawn_pct"`
	DecidePct      float64 `csv:"decide_pct"`
	FleePct        float64 `csv:"flee_pct"`
	TemperamentPct float64 `csv:"temperament_pct"`
	SocialPct      float64 `csv:"social_pct"`
	MovementPct    float64 `csv:"movement_pct"`
	ScatterPct     float64 `csv:"scatter_pct"`
	StartlePct     float64 `csv:"startle_pct"`
	FeathersPct    float64 `csv:"feathers_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// Row flattens the stats for the perf.csv sink.
func (s PerfStats) Row(runID string, windowEnd int32) PerfRow {
	pct := s.PhasePct
	return PerfRow{
		RunID:          runID,
		WindowEnd:      windowEnd,
		AvgStepUS:      s.AvgStep.Microseconds(),
		MaxStepUS:      s.MaxStep.Microseconds(),
		StepsPerSec:    s.StepsPerSecond,
		Agents:         s.AvgAgents,
		NsPerAgent:     s.PerAgent.Nanoseconds(),
		Slowest:        s.Slowest.String(),
		FPS:            s.FPS,
		SeedsPct:       pct[PhaseSeeds],
		RespawnPct:     pct[PhaseRespawn],
		DecidePct:      pct[PhaseDecide],
		FleePct:        pct[PhaseFlee],
		TemperamentPct: pct[PhaseTemperament],
		SocialPct:      pct[PhaseSocial],
		MovementPct:    pct[PhaseMovement],
		ScatterPct:     pct[PhaseScatter],
		StartlePct:     pct[PhaseStartle],
		FeathersPct:    pct[PhaseFeathers],
		TelemetryPct:   pct[PhaseTelemetry],
	}
}
