package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

type behaviorFixture struct {
	cfg   *config.Config
	space torus.Space
	coop  *Coop
	seeds *SeedField
	pop   *Population
	beh   *BehaviorSystem
	rng   *rand.Rand
}

// newBehaviorFixture builds a quiet world: no spontaneous panic or mutation.
func newBehaviorFixture(t *testing.T, seed int64) *behaviorFixture {
	t.Helper()
	cfg := config.Default()
	cfg.Panic.ChancePerSec = 0
	cfg.Temperament.MutationChancePerSec = 0

	rng := rand.New(rand.NewSource(seed))
	space := torus.New(1280, 800)
	coop := NewCoop(space, cfg.Coop)
	seeds := NewSeedField(space, coop, cfg.Seeds, cfg.Scatter)
	feathers := NewFeatherSystem(space, cfg.Feathers)
	pop := NewPopulation(cfg, space, coop, feathers, rng)
	return &behaviorFixture{
		cfg:   cfg,
		space: space,
		coop:  coop,
		seeds: seeds,
		pop:   pop,
		beh:   NewBehaviorSystem(cfg, space, coop, seeds, pop, rng),
		rng:   rng,
	}
}

// yardAgent returns an agent away from the coop.
func (f *behaviorFixture) yardAgent() *Agent {
	a := f.pop.CreateAgent()
	a.Pos = components.Position{X: 200, Y: 600}
	return &a
}

func TestDecideFoodClearsFlee(t *testing.T) {
	f := newBehaviorFixture(t, 1)
	a := f.yardAgent()
	ref := a.Ref()

	f.pop.FleeFrom(ref, pos(ref))
	if a.Mind.Kind() != components.KindFleeing {
		t.Fatalf("setup: kind = %v, want fleeing", a.Mind.Kind())
	}

	f.beh.Decide(ref, true, 1.0/60)
	if a.Mind.Kind() == components.KindFleeing {
		t.Error("flee should be cleared while food exists")
	}
}

func TestDecidePanicExpires(t *testing.T) {
	f := newBehaviorFixture(t, 2)
	a := f.yardAgent()
	ref := a.Ref()

	if !f.pop.TriggerPanic(ref) {
		t.Fatal("TriggerPanic refused a wandering agent")
	}
	a.Mind.Panic().Timer = 0.05

	f.beh.Decide(ref, false, 0.1)
	if a.Mind.Kind() != components.KindWandering {
		t.Fatalf("kind after expiry = %v, want wandering", a.Mind.Kind())
	}
	if a.Mind.NextTargetIn <= 0 {
		t.Errorf("expired panic should retarget immediately, NextTargetIn = %v", a.Mind.NextTargetIn)
	}
}

func TestDecideSendsTiredAgentHome(t *testing.T) {
	f := newBehaviorFixture(t, 3)
	a := f.yardAgent()
	ref := a.Ref()
	a.Vitals.Fatigue = f.cfg.Fatigue.Threshold * a.Vitals.MaxFatigue

	d := f.beh.Decide(ref, false, 1.0/60)
	if !d.Has(DecisionHeadedHome) {
		t.Error("expected DecisionHeadedHome")
	}
	home := a.Mind.CoopBound()
	if home == nil {
		t.Fatalf("kind = %v, want going to coop", a.Mind.Kind())
	}
	if a.Vitals.Rest != components.RestGoing {
		t.Errorf("rest = %v, want RestGoing", a.Vitals.Rest)
	}

	// The yard agent is in front of the coop, so it aims straight at the door.
	if a.Mind.TX != home.DoorX || a.Mind.TY != home.DoorY {
		t.Errorf("target = (%v,%v), want door (%v,%v)", a.Mind.TX, a.Mind.TY, home.DoorX, home.DoorY)
	}

	// Coop-bound agents ignore panic.
	if f.pop.TriggerPanic(ref) {
		t.Error("TriggerPanic should refuse a coop-bound agent")
	}
}

func TestDecideBypassesCoopFromBehind(t *testing.T) {
	f := newBehaviorFixture(t, 4)
	a := f.yardAgent()
	ref := a.Ref()
	a.Pos = components.Position{X: f.coop.X + 5, Y: f.coop.Y - f.coop.Outer() - 40}
	a.Vitals.Fatigue = a.Vitals.MaxFatigue

	f.beh.Decide(ref, false, 1.0/60)
	if a.Mind.CoopBound() == nil {
		t.Fatal("tired agent not sent home")
	}
	if a.Mind.TY != f.coop.Y {
		t.Errorf("bypass waypoint y = %v, want coop centre %v", a.Mind.TY, f.coop.Y)
	}
	if math.Abs(a.Mind.TX-f.coop.X) <= f.coop.Outer() {
		t.Errorf("bypass waypoint x = %v should clear the coop side", a.Mind.TX)
	}
}

func TestDecidePanickingAgentNotSentHome(t *testing.T) {
	f := newBehaviorFixture(t, 5)
	a := f.yardAgent()
	ref := a.Ref()
	f.pop.TriggerPanic(ref)
	a.Mind.Panic().Timer = 10
	a.Vitals.Fatigue = a.Vitals.MaxFatigue

	f.beh.Decide(ref, false, 1.0/60)
	if a.Mind.Kind() != components.KindPanicking {
		t.Errorf("kind = %v, panic should finish before heading home", a.Mind.Kind())
	}
}

func TestDecideNoticeDelay(t *testing.T) {
	f := newBehaviorFixture(t, 6)
	a := f.yardAgent()
	ref := a.Ref()
	a.Vitals.NoticeTimer = 0.5

	f.seeds.Seeds = append(f.seeds.Seeds, Seed{ID: 7, X: 260, Y: 500, GroundY: 620, Amount: 1})

	dt := 0.1
	f.beh.Decide(ref, true, dt)
	if a.Mind.Chase() != nil {
		t.Fatal("agent noticed food before its notice delay")
	}
	for i := 0; i < 5; i++ {
		f.beh.Decide(ref, true, dt)
	}
	c := a.Mind.Chase()
	if c == nil || c.SeedID != 7 {
		t.Fatalf("kind = %v, want chasing seed 7", a.Mind.Kind())
	}
	// Falling seed: aim at the landing height.
	if a.Mind.TX != 260 || a.Mind.TY != 620 {
		t.Errorf("target = (%v,%v), want (260,620)", a.Mind.TX, a.Mind.TY)
	}

	// Seed gone: back to wandering.
	f.seeds.Clear()
	f.beh.Decide(ref, false, dt)
	if a.Mind.Kind() != components.KindWandering {
		t.Errorf("kind = %v after food vanished, want wandering", a.Mind.Kind())
	}
}

func TestRetargetStaysNearCentre(t *testing.T) {
	f := newBehaviorFixture(t, 7)
	a := f.yardAgent()
	ref := a.Ref()
	a.Temp.TargetSpread = 0.3

	for i := 0; i < 200; i++ {
		f.beh.retarget(ref)
		if math.Abs(a.Mind.TX-f.space.W/2) > 0.3*f.space.W+1e-9 {
			t.Fatalf("TX %v outside spread", a.Mind.TX)
		}
		if math.Abs(a.Mind.TY-f.space.H/2) > 0.3*f.space.H+1e-9 {
			t.Fatalf("TY %v outside spread", a.Mind.TY)
		}
		if a.Mind.NextTargetIn <= 0 {
			t.Fatalf("NextTargetIn = %v", a.Mind.NextTargetIn)
		}
	}
}

func TestSteerPanicCircular(t *testing.T) {
	f := newBehaviorFixture(t, 8)
	a := f.yardAgent()
	ref := a.Ref()
	f.pop.TriggerPanic(ref)
	pn := a.Mind.Panic()
	pn.Mode = components.PanicCircular
	pn.Clock = 0.7

	f.beh.steerPanic(ref)
	d := f.space.Dist(pn.CircleX, pn.CircleY, a.Mind.TX, a.Mind.TY)
	if math.Abs(d-pn.Radius) > 1e-6 {
		t.Errorf("orbit distance = %v, want radius %v", d, pn.Radius)
	}
}

func TestDriftTemperament(t *testing.T) {
	f := newBehaviorFixture(t, 9)
	dt := 0.5

	t.Run("isolated flips", func(t *testing.T) {
		a := f.yardAgent()
		ref := a.Ref()
		before := a.Temp.Socialness
		var flipped bool
		var reason FlipReason
		for i := 0; i < 40 && !flipped; i++ {
			reason, flipped = f.beh.DriftTemperament(ref, 0, 0, dt)
		}
		if !flipped || reason != FlipIsolated {
			t.Fatalf("flipped = %v reason = %v, want isolated flip", flipped, reason)
		}
		if a.Temp.Socialness != -before {
			t.Errorf("socialness = %v, want %v", a.Temp.Socialness, -before)
		}
		if a.Social.Cooldown != f.cfg.Temperament.Cooldown {
			t.Errorf("cooldown = %v", a.Social.Cooldown)
		}
	})

	t.Run("clustered flips", func(t *testing.T) {
		a := f.yardAgent()
		ref := a.Ref()
		var flipped bool
		var reason FlipReason
		for i := 0; i < 40 && !flipped; i++ {
			reason, flipped = f.beh.DriftTemperament(ref, 5, f.cfg.Temperament.ClusterNeighbors, dt)
		}
		if !flipped || reason != FlipClustered {
			t.Fatalf("flipped = %v reason = %v, want clustered flip", flipped, reason)
		}
	})

	t.Run("directed resets", func(t *testing.T) {
		a := f.yardAgent()
		ref := a.Ref()
		a.Social.IsolatedTime = 3
		a.Social.ClusteredTime = 3
		a.Mind.Directive = &components.Chasing{SeedID: 1}
		if _, flipped := f.beh.DriftTemperament(ref, 0, 0, dt); flipped {
			t.Error("directed agent flipped")
		}
		if a.Social.IsolatedTime != 0 || a.Social.ClusteredTime != 0 {
			t.Errorf("accumulators = (%v,%v), want zero", a.Social.IsolatedTime, a.Social.ClusteredTime)
		}
	})
}
