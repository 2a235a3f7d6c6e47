package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// SocialInput is the read-only state of one agent for the pairwise pass.
type SocialInput struct {
	Pos        r2.Vec
	Vel        r2.Vec
	Socialness float64
	Directed   bool
}

// SocialForces accumulates pairwise separation and flocking accelerations.
// Every pair is visited once and forces are applied symmetrically, so the
// result does not depend on iteration order.
type SocialForces struct {
	cfg   config.SocialConfig
	space torus.Space
	rng   *rand.Rand
}

// NewSocialForces creates the pairwise force pass.
func NewSocialForces(cfg config.SocialConfig, space torus.Space, rng *rand.Rand) *SocialForces {
	return &SocialForces{cfg: cfg, space: space, rng: rng}
}

// SetWorld rebinds the pass to a resized world.
func (f *SocialForces) SetWorld(space torus.Space) {
	f.space = space
}

// Accumulate adds the forces between every pair of agents into accel.
// accel must have the same length as in.
func (f *SocialForces) Accumulate(in []SocialInput, accel []r2.Vec) {
	cfg := f.cfg
	for i := 0; i < len(in); i++ {
		a := &in[i]
		for j := i + 1; j < len(in); j++ {
			b := &in[j]

			// u points from a to b
			u, dist := unitOr(f.rng, f.space.Vector(a.Pos, b.Pos))

			sepDist, sepStrength := cfg.SeparationDistWander, cfg.SeparationStrengthWander
			if a.Directed || b.Directed {
				sepDist, sepStrength = cfg.SeparationDistChase, cfg.SeparationStrengthChase
			}
			if dist < sepDist {
				push := r2.Scale(sepStrength*(sepDist-dist)/sepDist, u)
				accel[i] = r2.Sub(accel[i], push)
				accel[j] = r2.Add(accel[j], push)
				continue
			}
			if a.Directed || b.Directed {
				continue
			}

			var pull float64 // Positive draws the pair together
			if dist < cfg.PersonalSpace {
				pull -= cfg.PersonalSpaceStrength * (1 - dist/cfg.PersonalSpace)
			}
			if dist > cfg.SocialMin && dist < cfg.SocialRange {
				falloff := 1 - (dist-cfg.SocialMin)/(cfg.SocialRange-cfg.SocialMin)
				pull += cfg.SocialStrength * (a.Socialness + b.Socialness) / 2 * falloff
			}
			if dist < cfg.FlockRange {
				// Cohesion fades out toward the edge of the flock range
				pull += cfg.CohesionStrength * (1 - dist/cfg.FlockRange)

				align := r2.Scale(cfg.AlignStrength, r2.Sub(b.Vel, a.Vel))
				accel[i] = r2.Add(accel[i], align)
				accel[j] = r2.Sub(accel[j], align)
			}
			if pull != 0 {
				accel[i] = r2.Add(accel[i], r2.Scale(pull, u))
				accel[j] = r2.Sub(accel[j], r2.Scale(pull, u))
			}
		}
	}
}
