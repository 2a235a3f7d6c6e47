// Package components defines ECS components for the flock simulation.
package components

// Position represents an agent's world position.
type Position struct {
	X, Y float64
}

// Velocity represents an agent's velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Temperament holds the per-agent behavioral scalars.
// Rolled at creation, drifted by mutation and temperament flips.
type Temperament struct {
	Speediness    float64 // Role-biased speed multiplier, fixed for life
	Wander        float64 // Random accel jitter
	CenterPull    float64 // Homing bias toward the wander target
	Damping       float64 // Per-tick velocity multiplier
	MaxSpeed      float64
	ImpulseChance float64 // Impulse chance per 60 Hz frame
	ImpulseScale  float64
	TargetSpread  float64 // Wander targets fall within this fraction of the world
	TargetTempo   float64 // Retarget interval multiplier
	ChaseBoost    float64
	EatRate       float64
	Patience      float64
	NoticeDelay   float64 // Seconds before a fresh food drop is noticed
	Socialness    float64 // [-1, 1]; negative repels neighbours
	ZigzagFreq    float64
}

// RestPhase tracks the fatigue rest cycle.
type RestPhase uint8

const (
	RestNone   RestPhase = iota // Active in the yard
	RestGoing                   // Walking home to the coop
	RestInside                  // Resting; the agent lives in the respawn queue
)

// Vitals holds fatigue and short-lived interaction timers.
type Vitals struct {
	Fatigue         float64
	MaxFatigue      float64
	Rest            RestPhase
	NoticeTimer     float64 // Counts down before food is noticed
	PeckTimer       float64 // Positive while eating
	SkidTimer       float64 // Positive while overshooting a target
	StartleCooldown float64
	ZigzagPhase     float64
}

// Mood is the temperament label.
type Mood uint8

const (
	MoodCalm Mood = iota
	MoodNervous
)

// Social holds the temperament label and its drift accumulators.
type Social struct {
	Mood          Mood
	IsolatedTime  float64
	ClusteredTime float64
	Cooldown      float64 // Seconds until another flip is allowed
}
