package components

import "github.com/mlange-42/ark/ecs"

// DirectiveKind identifies the dominant behavior of an agent for one tick.
type DirectiveKind uint8

const (
	KindWandering DirectiveKind = iota
	KindChasing
	KindPanicking
	KindFleeing
	KindGoingToCoop
)

// Directive is the tagged union of agent behaviors.
// Exactly one directive is active per agent; each variant carries only its own fields.
type Directive interface {
	Kind() DirectiveKind
}

// Wandering is the default directive: periodic random targets near the yard centre.
type Wandering struct{}

// Chasing pursues a seed.
type Chasing struct {
	SeedID int
}

// PanicMode selects how a panicking agent moves.
type PanicMode uint8

const (
	PanicLinear   PanicMode = iota // Run to a far random point
	PanicCircular                  // Orbit the point where the panic began
	PanicWavy                      // Run with a sinusoidal lateral wobble
	PanicChase                     // Run at another agent
)

// Panicking runs in a mode-driven pattern until the timer expires.
// Point, circle and wave parameters are rolled regardless of mode.
type Panicking struct {
	Mode  PanicMode
	Timer float64
	Clock float64

	PointX, PointY float64 // Linear destination and chase fallback

	CircleX, CircleY float64
	Radius           float64
	Omega            float64 // Signed angular velocity
	Phase            float64

	WaveAmp    float64
	WaveFreq   float64
	DirX, DirY float64 // Unit heading for wavy runs

	Target    ecs.Entity // Resolved chase victim
	HasTarget bool
}

// Fleeing runs away from a pursuer toward a fixed flee point.
type Fleeing struct {
	Timer   float64
	From    ecs.Entity
	HasFrom bool
	X, Y    float64
}

// GoingToCoop walks home for rest. Arrival despawns the agent.
type GoingToCoop struct {
	DoorX, DoorY float64
}

func (*Wandering) Kind() DirectiveKind   { return KindWandering }
func (*Chasing) Kind() DirectiveKind     { return KindChasing }
func (*Panicking) Kind() DirectiveKind   { return KindPanicking }
func (*Fleeing) Kind() DirectiveKind     { return KindFleeing }
func (*GoingToCoop) Kind() DirectiveKind { return KindGoingToCoop }

// Mind holds the active directive and the current steering target.
type Mind struct {
	Directive    Directive
	TX, TY       float64
	NextTargetIn float64 // Countdown to the next wander retarget
}

// Kind returns the kind of the active directive, Wandering when unset.
func (m *Mind) Kind() DirectiveKind {
	if m.Directive == nil {
		return KindWandering
	}
	return m.Directive.Kind()
}

// Panic returns the panic state, or nil.
func (m *Mind) Panic() *Panicking {
	p, _ := m.Directive.(*Panicking)
	return p
}

// Flee returns the flee state, or nil.
func (m *Mind) Flee() *Fleeing {
	f, _ := m.Directive.(*Fleeing)
	return f
}

// Chase returns the seed chase state, or nil.
func (m *Mind) Chase() *Chasing {
	c, _ := m.Directive.(*Chasing)
	return c
}

// CoopBound returns the coop trip state, or nil.
func (m *Mind) CoopBound() *GoingToCoop {
	c, _ := m.Directive.(*GoingToCoop)
	return c
}

// Wander switches to the default directive.
func (m *Mind) Wander() {
	m.Directive = &Wandering{}
}

// Directed reports whether the agent is under directed movement:
// pursuing food, panicking, fleeing or returning to the coop.
func (m *Mind) Directed() bool {
	return m.Kind() != KindWandering
}
