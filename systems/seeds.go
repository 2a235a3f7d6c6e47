package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// Drop relocation offsets for drops that land on the coop.
const (
	relocateJitterX = 18
	relocateMinY    = 18
	relocateMaxY    = 60
)

// Seed is a food item. It falls toward GroundY, lands, then slides to rest.
type Seed struct {
	ID      int
	X, Y    float64
	VX, VY  float64
	Landed  bool
	Amount  float64 // (0, 1]; consumed by eating
	GroundY float64 // Landing height, tracks Y once landed
}

// AimY returns where an agent should aim: the landing height while falling.
func (s *Seed) AimY() float64 {
	if s.Landed {
		return s.Y
	}
	return s.GroundY
}

// SeedField owns every seed in the world.
type SeedField struct {
	Seeds []Seed

	nextID  int
	cfg     config.SeedsConfig
	scatter config.ScatterConfig
	space   torus.Space
	coop    *Coop
}

// NewSeedField creates an empty seed field.
func NewSeedField(space torus.Space, coop *Coop, cfg config.SeedsConfig, scatter config.ScatterConfig) *SeedField {
	return &SeedField{
		Seeds:   make([]Seed, 0, cfg.Max),
		nextID:  1,
		cfg:     cfg,
		scatter: scatter,
		space:   space,
		coop:    coop,
	}
}

// Len returns the number of live seeds.
func (f *SeedField) Len() int {
	return len(f.Seeds)
}

// Resize moves the field onto a new torus and coop, wrapping every seed.
func (f *SeedField) Resize(space torus.Space, coop *Coop) {
	f.space = space
	f.coop = coop
	for i := range f.Seeds {
		s := &f.Seeds[i]
		fall := s.GroundY - s.Y
		s.X = torus.Wrap(s.X, space.W)
		s.GroundY = torus.Wrap(s.GroundY, space.H)
		s.Y = s.GroundY - fall
	}
}

// ByID returns the seed with the given id, or nil.
func (f *SeedField) ByID(id int) *Seed {
	for i := range f.Seeds {
		if f.Seeds[i].ID == id {
			return &f.Seeds[i]
		}
	}
	return nil
}

// PickNearest returns the seed nearest to (x, y), aiming at landing points.
func (f *SeedField) PickNearest(x, y float64) *Seed {
	var best *Seed
	bestD := math.Inf(1)
	for i := range f.Seeds {
		s := &f.Seeds[i]
		d := f.space.DistSq(x, y, s.X, s.AimY())
		if d < bestD {
			bestD = d
			best = s
		}
	}
	return best
}

// Spawn drops a clustered batch of seeds near (x, y). Returns the number created.
// Drops inside the coop body are moved outside the door; drops at the cap are ignored.
func (f *SeedField) Spawn(x, y float64, rng *rand.Rand) int {
	if len(f.Seeds) >= f.cfg.Max {
		return 0
	}

	if f.coop.BodyContains(x, y) {
		ox, oy := f.coop.DoorOutside()
		x = ox + randRange(rng, -relocateJitterX, relocateJitterX)
		y = oy + randRange(rng, relocateMinY, relocateMaxY)
	}

	size := f.cfg.Size
	snap := func(v float64) float64 { return math.Round(v/size) * size }

	centres := make([]r2.Vec, f.cfg.Clusters)
	for i := range centres {
		centres[i] = r2.Vec{
			X: snap(x + randRange(rng, -f.cfg.Spread, f.cfg.Spread)),
			Y: snap(y + randRange(rng, -f.cfg.Spread, f.cfg.Spread)),
		}
	}

	added := 0
	for i := 0; i < f.cfg.PerDrop && len(f.Seeds) < f.cfg.Max; i++ {
		c := centres[rng.Intn(len(centres))]
		ox := math.Round(triangular(rng)*f.cfg.ClusterRadius/size) * size
		oy := math.Round(triangular(rng)*f.cfg.ClusterRadius/size) * size
		sx, sy := f.space.WrapPos(c.X+ox, c.Y+oy)
		if f.coop.BodyContains(sx, sy) {
			continue
		}

		f.Seeds = append(f.Seeds, Seed{
			ID:      f.nextID,
			X:       sx,
			Y:       sy - randRange(rng, f.cfg.DropHeightMin, f.cfg.DropHeightMax),
			VX:      randRange(rng, -f.cfg.LaunchVX, f.cfg.LaunchVX),
			VY:      randRange(rng, -f.cfg.LaunchVY, f.cfg.LaunchVY),
			Amount:  1,
			GroundY: sy,
		})
		f.nextID++
		added++
	}
	return added
}

// Update integrates seed physics and removes depleted seeds and seeds that
// drifted into the coop buffer. Returns the number lost to the coop.
func (f *SeedField) Update(dt float64) (lost int) {
	drag := frameDecay(f.cfg.AirDrag, dt)
	friction := frameDecay(f.cfg.Friction, dt)

	alive := 0
	for i := range f.Seeds {
		s := &f.Seeds[i]

		if !s.Landed {
			s.VY += f.cfg.Gravity * dt
			s.X = torus.Wrap(s.X+s.VX*dt, f.space.W)
			s.Y += s.VY * dt
			s.VX *= drag
			s.VY *= drag
			if s.Y >= s.GroundY {
				s.Y = s.GroundY
				s.VX *= f.cfg.LandDamp
				s.VY = 0
				s.Landed = true
			}
		} else {
			s.X, s.Y = f.space.WrapPos(s.X+s.VX*dt, s.Y+s.VY*dt)
			s.GroundY = s.Y
			s.VX *= friction
			s.VY *= friction
		}

		if s.Amount <= 0 {
			continue
		}
		if s.Landed && f.coop.Contains(s.X, s.Y, f.cfg.CoopBuffer) {
			lost++
			continue
		}

		f.Seeds[alive] = f.Seeds[i]
		alive++
	}
	f.Seeds = f.Seeds[:alive]
	return lost
}

// Consume eats amount from a seed. Returns true when the seed was depleted and removed.
func (f *SeedField) Consume(id int, amount float64) bool {
	for i := range f.Seeds {
		if f.Seeds[i].ID != id {
			continue
		}
		f.Seeds[i].Amount -= amount
		if f.Seeds[i].Amount > 0 {
			return false
		}
		f.Seeds = append(f.Seeds[:i], f.Seeds[i+1:]...)
		return true
	}
	return false
}

// Clear removes every seed.
func (f *SeedField) Clear() {
	f.Seeds = f.Seeds[:0]
}

// Scatter kicks landed seeds away from crowds of agents. Returns the number of kicks.
func (f *SeedField) Scatter(dt float64, agents []r2.Vec, rng *rand.Rand) int {
	cfg := f.scatter
	r2max := cfg.Radius * cfg.Radius
	kicks := 0

	for i := range f.Seeds {
		s := &f.Seeds[i]
		if !s.Landed {
			continue
		}

		var sum r2.Vec
		count := 0
		for _, a := range agents {
			v := f.space.Vector(r2.Vec{X: s.X, Y: s.Y}, a)
			if r2.Norm2(v) <= r2max {
				sum = r2.Add(sum, v)
				count++
			}
		}
		if count < cfg.MinAgents || rng.Float64() >= cfg.ChancePerSec*dt {
			continue
		}

		dir, _ := unitOr(rng, r2.Scale(-1, sum))
		imp := randRange(rng, cfg.ImpulseMin, cfg.ImpulseMax) * (cfg.CrowdBase + cfg.CrowdGain*float64(count))
		s.VX += dir.X * imp
		s.VY += dir.Y * imp
		kicks++
	}
	return kicks
}
