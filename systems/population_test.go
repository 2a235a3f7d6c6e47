package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

func testPopulation(t *testing.T, seed int64) (*Population, *config.Config, *Coop) {
	t.Helper()
	cfg := config.Default()
	space := torus.New(1280, 800)
	coop := NewCoop(space, cfg.Coop)
	feathers := NewFeatherSystem(space, cfg.Feathers)
	return NewPopulation(cfg, space, coop, feathers, rand.New(rand.NewSource(seed))), cfg, coop
}

func TestCreateAgent(t *testing.T) {
	p, cfg, coop := testPopulation(t, 1)

	roles := make(map[components.Role]int)
	for i := 0; i < 500; i++ {
		a := p.CreateAgent()
		roles[a.Body.Role]++

		if a.Body.Size < cfg.Roles.MinSize || a.Body.Size > cfg.Roles.MaxSize {
			t.Fatalf("size %v outside [%v,%v]", a.Body.Size, cfg.Roles.MinSize, cfg.Roles.MaxSize)
		}
		if a.Temp.Damping < 0.84 || a.Temp.Damping > 0.95 {
			t.Fatalf("damping %v outside [0.84,0.95]", a.Temp.Damping)
		}
		if a.Temp.Socialness < -1 || a.Temp.Socialness > 1 {
			t.Fatalf("socialness %v outside [-1,1]", a.Temp.Socialness)
		}
		if coop.Contains(a.Pos.X, a.Pos.Y, a.Body.Radius()) {
			t.Fatalf("agent spawned inside coop at (%v,%v)", a.Pos.X, a.Pos.Y)
		}
		if a.Mind.Kind() != components.KindWandering {
			t.Fatalf("new agent directive = %v", a.Mind.Kind())
		}
		if a.Vitals.Fatigue != 0 || a.Vitals.MaxFatigue <= 0 {
			t.Fatalf("fatigue %v/%v", a.Vitals.Fatigue, a.Vitals.MaxFatigue)
		}
	}

	for _, role := range []components.Role{components.RoleHen, components.RoleChick, components.RoleRooster} {
		if roles[role] == 0 {
			t.Errorf("no %v drawn in 500 agents", role)
		}
	}
}

func TestRespawnResetsState(t *testing.T) {
	p, _, coop := testPopulation(t, 2)
	a := p.CreateAgent()
	a.Vitals.Fatigue = 40
	a.Vitals.Rest = components.RestInside
	a.Vitals.PeckTimer = 1
	a.Mind.Directive = &components.GoingToCoop{}

	p.Respawn(&a)

	if a.Vitals.Fatigue != 0 || a.Vitals.Rest != components.RestNone {
		t.Errorf("fatigue %v rest %v after respawn", a.Vitals.Fatigue, a.Vitals.Rest)
	}
	if a.Vitals.PeckTimer != 0 {
		t.Errorf("peck timer not cleared: %v", a.Vitals.PeckTimer)
	}
	if a.Mind.Kind() != components.KindWandering {
		t.Errorf("directive after respawn = %v", a.Mind.Kind())
	}
	if a.Vel.Y >= launchJitterDn {
		t.Errorf("launch vy = %v, want upward", a.Vel.Y)
	}
	if coop.BodyContains(a.Pos.X, a.Pos.Y) {
		t.Error("respawned inside coop body")
	}
}

func TestStartle(t *testing.T) {
	t.Run("cooldown", func(t *testing.T) {
		p, _, _ := testPopulation(t, 3)
		a := p.CreateAgent()
		a.Vitals.StartleCooldown = 0.5
		if p.Startle(a.Ref(), false, nil) {
			t.Error("startle fired during cooldown")
		}
		if p.feathers.Count() != 0 {
			t.Error("feathers emitted during cooldown")
		}
	})

	t.Run("no food panics briefly", func(t *testing.T) {
		p, cfg, _ := testPopulation(t, 4)
		a := p.CreateAgent()
		if !p.Startle(a.Ref(), false, nil) {
			t.Fatal("startle did not fire")
		}
		pn := a.Mind.Panic()
		if pn == nil {
			t.Fatalf("directive = %v, want panicking", a.Mind.Kind())
		}
		if pn.Timer > cfg.Startle.PanicCapMax {
			t.Errorf("startle panic timer %v exceeds cap %v", pn.Timer, cfg.Startle.PanicCapMax)
		}
		if a.Vitals.StartleCooldown != cfg.Startle.Cooldown {
			t.Errorf("cooldown = %v", a.Vitals.StartleCooldown)
		}
		if p.feathers.Count() == 0 {
			t.Error("no feathers emitted")
		}
	})

	t.Run("food keeps agent on task", func(t *testing.T) {
		p, cfg, _ := testPopulation(t, 5)
		a := p.CreateAgent()
		a.Mind.Directive = &components.Chasing{SeedID: 3}
		src := r2.Vec{X: a.Pos.X - 5, Y: a.Pos.Y}
		p.Startle(a.Ref(), true, &src)
		if a.Mind.Chase() == nil {
			t.Errorf("directive = %v, want chasing", a.Mind.Kind())
		}
		if a.Vitals.SkidTimer < cfg.Movement.SkidTimeMin {
			t.Errorf("skid timer %v, want >= %v", a.Vitals.SkidTimer, cfg.Movement.SkidTimeMin)
		}
	})
}

func TestTriggerPanicModes(t *testing.T) {
	p, _, _ := testPopulation(t, 6)
	modes := make(map[components.PanicMode]int)
	for i := 0; i < 400; i++ {
		a := p.CreateAgent()
		if !p.TriggerPanic(a.Ref()) {
			t.Fatal("panic refused for wandering agent")
		}
		pn := a.Mind.Panic()
		modes[pn.Mode]++
		if pn.Radius <= 0 || pn.WaveAmp <= 0 || pn.WaveFreq <= 0 {
			t.Fatalf("mode parameters not rolled: %+v", pn)
		}
		if math.Abs(math.Hypot(pn.DirX, pn.DirY)-1) > 1e-9 {
			t.Fatalf("wave direction not unit: (%v,%v)", pn.DirX, pn.DirY)
		}
	}
	for _, m := range []components.PanicMode{components.PanicLinear, components.PanicCircular, components.PanicWavy, components.PanicChase} {
		if modes[m] == 0 {
			t.Errorf("mode %v never drawn", m)
		}
	}
}

func TestTriggerPanicIgnoredWhenCoopBound(t *testing.T) {
	p, _, _ := testPopulation(t, 7)
	a := p.CreateAgent()
	a.Mind.Directive = &components.GoingToCoop{}
	if p.TriggerPanic(a.Ref()) {
		t.Error("coop-bound agent panicked")
	}
	if a.Mind.CoopBound() == nil {
		t.Error("coop trip cancelled")
	}
}

func TestTriggerFleeAway(t *testing.T) {
	p, cfg, _ := testPopulation(t, 8)
	space := torus.New(1280, 800)

	tests := []struct {
		name            string
		victim, pursuer r2.Vec
	}{
		{"interior", r2.Vec{X: 300, Y: 500}, r2.Vec{X: 260, Y: 500}},
		{"across seam", r2.Vec{X: 4, Y: 500}, r2.Vec{X: 1270, Y: 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := p.CreateAgent()
			v.Pos = components.Position{X: tt.victim.X, Y: tt.victim.Y}
			p.TriggerPanic(v.Ref())
			pu := p.CreateAgent()
			pu.Pos = components.Position{X: tt.pursuer.X, Y: tt.pursuer.Y}

			if !p.TriggerFlee(v.Ref(), pu.Ref()) {
				t.Fatal("flee refused")
			}
			f := v.Mind.Flee()
			if f == nil {
				t.Fatalf("directive = %v, want fleeing (panic cancelled)", v.Mind.Kind())
			}
			if !f.HasFrom {
				t.Error("pursuer handle not recorded")
			}
			away := space.Vector(tt.pursuer, tt.victim)
			to := space.Vector(tt.victim, r2.Vec{X: f.X, Y: f.Y})
			if r2.Dot(away, to) <= 0 {
				t.Errorf("flee point %v not away from pursuer", to)
			}
			if f.Timer < cfg.Flee.DurationMin || f.Timer > cfg.Flee.DurationMax {
				t.Errorf("flee timer %v outside range", f.Timer)
			}
			if v.Mind.TX != f.X || v.Mind.TY != f.Y {
				t.Error("steering target not set to flee point")
			}
		})
	}
}

func TestMutateTemperamentStaysInRange(t *testing.T) {
	p, cfg, _ := testPopulation(t, 9)
	cfg.Temperament.MutationScale = 0.9
	a := p.CreateAgent()

	for i := 0; i < 5000; i++ {
		p.MutateTemperament(a.Ref())
		tm := a.Temp
		checks := []struct {
			name     string
			v        float64
			min, max float64
		}{
			{"damping", tm.Damping, 0.82, 0.97},
			{"centerPull", tm.CenterPull, 0.02, 0.45},
			{"impulseChance", tm.ImpulseChance, 0.01, 0.35},
			{"targetSpread", tm.TargetSpread, 0.14, 0.65},
			{"targetTempo", tm.TargetTempo, 0.55, 2.4},
			{"patience", tm.Patience, 0.55, 2.4},
			{"socialness", tm.Socialness, -1, 1},
			{"zigzagFreq", tm.ZigzagFreq, 0.6, 6},
			{"noticeDelay", tm.NoticeDelay, 0, cfg.Movement.ReactionMax * noticeCapMult},
		}
		for _, c := range checks {
			if c.v < c.min-1e-9 || c.v > c.max+1e-9 {
				t.Fatalf("iteration %d: %s = %v outside [%v,%v]", i, c.name, c.v, c.min, c.max)
			}
		}
	}
}

func TestFlipTemperament(t *testing.T) {
	p, _, _ := testPopulation(t, 10)
	a := p.CreateAgent()
	a.Temp.Socialness = 0.6
	a.Temp.Patience = 0.8
	a.Social.IsolatedTime = 9
	a.Social.ClusteredTime = 2
	mood := a.Social.Mood
	wander := a.Temp.Wander

	p.FlipTemperament(a.Ref(), FlipIsolated)

	if a.Temp.Socialness != -0.6 {
		t.Errorf("socialness = %v, want -0.6", a.Temp.Socialness)
	}
	if math.Abs(a.Temp.Patience-0.8) > 1e-9 {
		t.Errorf("patience = %v, want 1.6-0.8", a.Temp.Patience)
	}
	if a.Social.Mood == mood {
		t.Error("mood label not flipped")
	}
	if a.Social.IsolatedTime != 0 || a.Social.ClusteredTime != 0 {
		t.Error("accumulators not reset")
	}
	if a.Social.Cooldown <= 0 {
		t.Error("cooldown not set")
	}
	if a.Temp.Wander < wander {
		t.Errorf("isolated flip reduced wander %v -> %v", wander, a.Temp.Wander)
	}
}
