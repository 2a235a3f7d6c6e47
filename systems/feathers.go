package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// FeatherKind identifies the type of puff particle.
type FeatherKind uint8

const (
	FeatherDown  FeatherKind = iota // Small fluff, no rotation
	FeatherQuill                    // Larger spinning feather
)

// Feather particle tuning not worth exposing.
const (
	downSizeMin    = 1.0
	downSizeMax    = 2.2
	quillSizeMin   = 3.5
	quillSizeMax   = 5.5
	quillSpinMax   = 10.0
	quillSpinDecay = 0.86
)

// Feather is a cosmetic particle emitted when an agent is startled.
type Feather struct {
	X, Y    float64
	VX, VY  float64
	Life    float64
	Life0   float64
	Angle   float64
	AngVel  float64
	Size    float64
	Kind    FeatherKind
	Settled bool
}

// LifeFrac returns the remaining life as a fraction in [0, 1].
func (p *Feather) LifeFrac() float64 {
	if p.Life0 <= 0 {
		return 0
	}
	return clampFloat(p.Life/p.Life0, 0, 1)
}

// FeatherSystem owns the feather puff particles.
type FeatherSystem struct {
	Particles []Feather

	cfg   config.FeathersConfig
	space torus.Space
}

// NewFeatherSystem creates an empty feather system.
func NewFeatherSystem(space torus.Space, cfg config.FeathersConfig) *FeatherSystem {
	return &FeatherSystem{
		Particles: make([]Feather, 0, cfg.MaxParticles),
		cfg:       cfg,
		space:     space,
	}
}

// Reset drops every particle and adopts a new world size.
func (s *FeatherSystem) Reset(space torus.Space) {
	s.space = space
	s.Particles = s.Particles[:0]
}

// Update processes all particles.
func (s *FeatherSystem) Update(dt float64) {
	drag := frameDecay(s.cfg.Drag, dt)
	spin := frameDecay(quillSpinDecay, dt)

	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		if p.Settled {
			p.Life -= dt / s.cfg.SettleLifeMult
		} else {
			p.Life -= dt
		}
		if p.Life <= 0 {
			continue
		}

		if !p.Settled {
			p.VY += s.cfg.Gravity * dt
			p.VX *= drag
			p.VY *= drag
			p.X, p.Y = s.space.WrapPos(p.X+p.VX*dt, p.Y+p.VY*dt)
			if p.VX*p.VX+p.VY*p.VY < s.cfg.SettleSpeed*s.cfg.SettleSpeed {
				p.Settled = true
				p.VX, p.VY = 0, 0
			}
		}

		if p.Kind == FeatherQuill {
			p.Angle += p.AngVel * dt
			p.AngVel *= spin
		}

		// Keep particle
		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
}

// Puff emits a burst at (x, y). With a source, particles are biased away from it.
func (s *FeatherSystem) Puff(x, y float64, src *r2.Vec, rng *rand.Rand) {
	var away r2.Vec
	if src != nil {
		away, _ = unitOr(rng, s.space.Vector(*src, r2.Vec{X: x, Y: y}))
	}

	downs := randIntRange(rng, s.cfg.DownCountMin, s.cfg.DownCountMax)
	for i := 0; i < downs; i++ {
		s.emit(x, y, away, src != nil, FeatherDown, rng)
	}
	quills := randIntRange(rng, s.cfg.FeatherCountMin, s.cfg.FeatherCountMax)
	for i := 0; i < quills; i++ {
		s.emit(x, y, away, src != nil, FeatherQuill, rng)
	}
}

func (s *FeatherSystem) emit(x, y float64, away r2.Vec, biased bool, kind FeatherKind, rng *rand.Rand) {
	if len(s.Particles) >= s.cfg.MaxParticles {
		return
	}

	dir := randUnit(rng)
	if biased {
		dir, _ = unitOr(rng, r2.Add(r2.Scale(s.cfg.Bias, away), r2.Scale(1-s.cfg.Bias, dir)))
	}

	p := Feather{Kind: kind}
	var speed float64
	switch kind {
	case FeatherDown:
		speed = randRange(rng, s.cfg.SpeedDownMin, s.cfg.SpeedDownMax)
		p.Life = randRange(rng, s.cfg.LifeDownMin, s.cfg.LifeDownMax)
		p.Size = randRange(rng, downSizeMin, downSizeMax)
	default:
		speed = randRange(rng, s.cfg.SpeedFeatherMin, s.cfg.SpeedFeatherMax)
		p.Life = randRange(rng, s.cfg.LifeFeatherMin, s.cfg.LifeFeatherMax)
		p.Size = randRange(rng, quillSizeMin, quillSizeMax)
		p.Angle = rng.Float64() * 2 * math.Pi
		p.AngVel = randRange(rng, -quillSpinMax, quillSpinMax)
	}
	p.Life0 = p.Life
	p.VX = dir.X * speed
	p.VY = dir.Y * speed
	p.X, p.Y = s.space.WrapPos(
		x+randRange(rng, -s.cfg.Spread, s.cfg.Spread),
		y+randRange(rng, -s.cfg.Spread, s.cfg.Spread),
	)

	s.Particles = append(s.Particles, p)
}

// Count returns the current number of active particles.
func (s *FeatherSystem) Count() int {
	return len(s.Particles)
}
