package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

func testSocial(seed int64) (*SocialForces, config.SocialConfig) {
	cfg := config.Default().Social
	return NewSocialForces(cfg, torus.New(1280, 800), rand.New(rand.NewSource(seed))), cfg
}

func randomInputs(rng *rand.Rand, n int) []SocialInput {
	in := make([]SocialInput, n)
	for i := range in {
		in[i] = SocialInput{
			Pos:        r2.Vec{X: 500 + rng.Float64()*200, Y: 300 + rng.Float64()*200},
			Vel:        r2.Vec{X: rng.Float64()*80 - 40, Y: rng.Float64()*80 - 40},
			Socialness: rng.Float64()*2 - 1,
			Directed:   rng.Float64() < 0.3,
		}
	}
	return in
}

func TestSocialForcesConserveMomentum(t *testing.T) {
	sf, _ := testSocial(1)
	in := randomInputs(rand.New(rand.NewSource(2)), 40)
	accel := make([]r2.Vec, len(in))

	sf.Accumulate(in, accel)

	var sum r2.Vec
	var mag float64
	for _, a := range accel {
		sum = r2.Add(sum, a)
		mag += r2.Norm(a)
	}
	if mag == 0 {
		t.Fatal("no forces between 40 nearby agents")
	}
	if r2.Norm(sum) > 1e-6*mag {
		t.Errorf("net force %v, want ~0", sum)
	}
}

func TestSocialForcesOrderIndependent(t *testing.T) {
	in := randomInputs(rand.New(rand.NewSource(3)), 25)
	rev := make([]SocialInput, len(in))
	for i := range in {
		rev[len(in)-1-i] = in[i]
	}

	sf, _ := testSocial(4)
	fwd := make([]r2.Vec, len(in))
	sf.Accumulate(in, fwd)
	back := make([]r2.Vec, len(in))
	sf.Accumulate(rev, back)

	for i := range in {
		got := back[len(in)-1-i]
		if math.Abs(got.X-fwd[i].X) > 1e-9 || math.Abs(got.Y-fwd[i].Y) > 1e-9 {
			t.Fatalf("agent %d: forward %v, reversed %v", i, fwd[i], got)
		}
	}
}

func TestSocialForcesPairs(t *testing.T) {
	_, cfg := testSocial(0)

	tests := []struct {
		name   string
		a, b   SocialInput
		wantAX float64 // sign of agent a's x acceleration
	}{
		{
			name:   "hard separation",
			a:      SocialInput{Pos: r2.Vec{X: 100, Y: 100}},
			b:      SocialInput{Pos: r2.Vec{X: 105, Y: 100}},
			wantAX: -1,
		},
		{
			name:   "separation across the seam",
			a:      SocialInput{Pos: r2.Vec{X: 2, Y: 100}},
			b:      SocialInput{Pos: r2.Vec{X: 1278, Y: 100}},
			wantAX: 1,
		},
		{
			name:   "social attraction",
			a:      SocialInput{Pos: r2.Vec{X: 100, Y: 100}, Socialness: 1},
			b:      SocialInput{Pos: r2.Vec{X: 200, Y: 100}, Socialness: 1},
			wantAX: 1,
		},
		{
			name:   "social repulsion",
			a:      SocialInput{Pos: r2.Vec{X: 100, Y: 100}, Socialness: -1},
			b:      SocialInput{Pos: r2.Vec{X: 200, Y: 100}, Socialness: -1},
			wantAX: -1,
		},
		{
			name:   "directed pair skips soft forces",
			a:      SocialInput{Pos: r2.Vec{X: 100, Y: 100}, Socialness: 1, Directed: true},
			b:      SocialInput{Pos: r2.Vec{X: 200, Y: 100}, Socialness: 1},
			wantAX: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := NewSocialForces(cfg, torus.New(1280, 800), rand.New(rand.NewSource(1)))
			accel := make([]r2.Vec, 2)
			sf.Accumulate([]SocialInput{tt.a, tt.b}, accel)

			got := accel[0].X
			switch {
			case tt.wantAX == 0 && got != 0:
				t.Errorf("ax = %v, want 0", got)
			case tt.wantAX > 0 && got <= 0:
				t.Errorf("ax = %v, want > 0", got)
			case tt.wantAX < 0 && got >= 0:
				t.Errorf("ax = %v, want < 0", got)
			}
			if math.Abs(accel[0].X+accel[1].X) > 1e-9 {
				t.Errorf("forces not symmetric: %v vs %v", accel[0], accel[1])
			}
		})
	}
}

func BenchmarkSocialForces(b *testing.B) {
	sf, _ := testSocial(1)
	in := randomInputs(rand.New(rand.NewSource(2)), 64)
	accel := make([]r2.Vec, len(in))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range accel {
			accel[j] = r2.Vec{}
		}
		sf.Accumulate(in, accel)
	}
}

func TestCohesionFadesWithDistance(t *testing.T) {
	sf, cfg := testSocial(0)

	pull := func(dist float64) float64 {
		accel := make([]r2.Vec, 2)
		sf.Accumulate([]SocialInput{
			{Pos: r2.Vec{X: 100, Y: 100}},
			{Pos: r2.Vec{X: 100 + dist, Y: 100}},
		}, accel)
		return accel[0].X
	}

	near := (cfg.PersonalSpace + cfg.SocialMin) / 2
	far := cfg.FlockRange - 5

	want := cfg.CohesionStrength * (1 - near/cfg.FlockRange)
	if got := pull(near); math.Abs(got-want) > 1e-9 {
		t.Errorf("cohesion at %v = %v, want %v", near, got, want)
	}
	if pull(far) >= pull(near) {
		t.Errorf("cohesion at %v (%v) not weaker than at %v (%v)", far, pull(far), near, pull(near))
	}
	if got := pull(cfg.FlockRange + 1); got > 1e-9 && cfg.SocialRange <= cfg.FlockRange {
		t.Errorf("cohesion beyond flock range = %v", got)
	}
}
