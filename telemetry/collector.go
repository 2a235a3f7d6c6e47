// Package telemetry provides flock health tracking, bookmarking, and CSV/SQLite output.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
// Windows are measured in simulated seconds because the tick step varies.
type Collector struct {
	windowDurationSec float64
	runID             string

	// Current window tracking
	windowStartTick int32
	windowStartTime float64

	// Event counters for current window
	startles       int
	panics         int
	flees          int
	mutations      int
	flips          int
	seedsDropped   int
	seedsEaten     int
	seedsLost      int
	scatterKicks   int
	coopArrivals   int
	despawnExits   int
	safetyDespawns int
	respawns       int
	evacuations    int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// runID: identifier stamped into every window row.
func NewCollector(windowDurationSec float64, runID string) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 10
	}
	return &Collector{
		windowDurationSec: windowDurationSec,
		runID:             runID,
	}
}

// RunID returns the run identifier.
func (c *Collector) RunID() string {
	return c.runID
}

// RecordStartle records a startle that fired.
func (c *Collector) RecordStartle() {
	c.startles++
}

// RecordPanic records a panic onset.
func (c *Collector) RecordPanic() {
	c.panics++
}

// RecordFlee records a flee reaction.
func (c *Collector) RecordFlee() {
	c.flees++
}

// RecordMutation records a temperament mutation.
func (c *Collector) RecordMutation() {
	c.mutations++
}

// RecordFlip records a temperament flip.
func (c *Collector) RecordFlip() {
	c.flips++
}

// RecordSeedsDropped records seeds created by a food drop.
func (c *Collector) RecordSeedsDropped(n int) {
	c.seedsDropped += n
}

// RecordSeedEaten records a seed eaten to depletion.
func (c *Collector) RecordSeedEaten() {
	c.seedsEaten++
}

// RecordSeedsLost records seeds that drifted into the coop buffer.
func (c *Collector) RecordSeedsLost(n int) {
	c.seedsLost += n
}

// RecordScatter records scatter kicks.
func (c *Collector) RecordScatter(n int) {
	c.scatterKicks += n
}

// RecordCoopArrival records an agent walking home to rest.
func (c *Collector) RecordCoopArrival() {
	c.coopArrivals++
}

// RecordDespawnExit records an agent leaving through the despawn zone.
func (c *Collector) RecordDespawnExit() {
	c.despawnExits++
}

// RecordSafetyDespawn records an agent removed from inside the coop body.
// This should stay zero in normal play.
func (c *Collector) RecordSafetyDespawn() {
	c.safetyDespawns++
}

// RecordRespawn records a rested agent re-entering the yard.
func (c *Collector) RecordRespawn() {
	c.respawns++
}

// RecordEvacuation records an evacuation window opening.
func (c *Collector) RecordEvacuation() {
	c.evacuations++
}

// ShouldFlush returns true if enough simulated time has passed to flush the window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDurationSec
}

// Snapshot holds the population state sampled at window end.
type Snapshot struct {
	Agents     int
	Resting    int
	Seeds      int
	Directives [5]int // Indexed by components.DirectiveKind

	Speeds     []float64
	Fatigue    []float64 // Fraction of each agent's max fatigue
	Socialness []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, simTime float64, snap Snapshot) WindowStats {
	speed := ComputeDistribution(snap.Speeds)
	fatigue := ComputeDistribution(snap.Fatigue)
	social := ComputeDistribution(snap.Socialness)

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,

		Agents:      snap.Agents,
		Resting:     snap.Resting,
		Seeds:       snap.Seeds,
		Wandering:   snap.Directives[0],
		Chasing:     snap.Directives[1],
		Panicking:   snap.Directives[2],
		Fleeing:     snap.Directives[3],
		GoingToCoop: snap.Directives[4],

		Startles:       c.startles,
		Panics:         c.panics,
		Flees:          c.flees,
		Mutations:      c.mutations,
		Flips:          c.flips,
		SeedsDropped:   c.seedsDropped,
		SeedsEaten:     c.seedsEaten,
		SeedsLost:      c.seedsLost,
		ScatterKicks:   c.scatterKicks,
		CoopArrivals:   c.coopArrivals,
		DespawnExits:   c.despawnExits,
		SafetyDespawns: c.safetyDespawns,
		Respawns:       c.respawns,
		Evacuations:    c.evacuations,

		SpeedMean:      speed.Mean,
		SpeedP50:       speed.P50,
		SpeedP90:       speed.P90,
		FatigueMean:    fatigue.Mean,
		SocialnessMean: social.Mean,
		SocialnessStd:  social.Std,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowStartTime = simTime
	c.startles = 0
	c.panics = 0
	c.flees = 0
	c.mutations = 0
	c.flips = 0
	c.seedsDropped = 0
	c.seedsEaten = 0
	c.seedsLost = 0
	c.scatterKicks = 0
	c.coopArrivals = 0
	c.despawnExits = 0
	c.safetyDespawns = 0
	c.respawns = 0
	c.evacuations = 0

	return stats
}

// WindowDuration returns the window length in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
