package systems

import (
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/components"
	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/torus"
)

// Agent roll ranges.
const (
	speedinessMin = 0.75
	speedinessMax = 1.25
	patienceMin   = 0.7
	patienceMax   = 1.8
	spawnJitterX  = 30.0
	spawnDropMin  = 10.0
	spawnDropMax  = 70.0
	initialReach  = 0.3 // First wander target, fraction of the world around its centre
	respawnReach  = 0.2 // First target after a rest, fraction of the world around the door
	noticeCapMult = 2.2
	fleeHoldTime  = 999.0
)

// Respawn launch: agents hop out of the door upward and sideways.
const (
	launchAngleMin = math.Pi / 4
	launchAngleMax = 3 * math.Pi / 4
	launchSpeedMin = 120.0
	launchSpeedMax = 260.0
	launchJitterX  = 40.0
	launchJitterUp = 30.0
	launchJitterDn = 10.0
	respawnJitterX = 10.0
	respawnJitterY = 6.0
)

// Population rolls new agents and applies state triggers to live ones.
type Population struct {
	cfg      *config.Config
	space    torus.Space
	coop     *Coop
	feathers *FeatherSystem
	rng      *rand.Rand
}

// NewPopulation creates a population helper bound to a world.
func NewPopulation(cfg *config.Config, space torus.Space, coop *Coop, feathers *FeatherSystem, rng *rand.Rand) *Population {
	return &Population{
		cfg:      cfg,
		space:    space,
		coop:     coop,
		feathers: feathers,
		rng:      rng,
	}
}

// SetWorld rebinds the population to a resized world.
func (p *Population) SetWorld(space torus.Space, coop *Coop) {
	p.space = space
	p.coop = coop
}

// chooseRole draws a role: chick, then rooster, else hen.
func (p *Population) chooseRole() components.Role {
	r := p.rng.Float64()
	switch {
	case r < p.cfg.Roles.ChickChance:
		return components.RoleChick
	case r < p.cfg.Roles.ChickChance+p.cfg.Roles.RoosterChance:
		return components.RoleRooster
	}
	return components.RoleHen
}

// CreateAgent rolls a fresh agent just outside the coop door.
func (p *Population) CreateAgent() Agent {
	rng := p.rng
	roles := p.cfg.Roles
	mv := p.cfg.Movement

	role := p.chooseRole()
	size := roles.BaseSize
	speediness := randRange(rng, speedinessMin, speedinessMax)
	eatRate := randRange(rng, 0.75, 1.5)
	switch role {
	case components.RoleChick:
		size += roles.ChickSizeDelta
		speediness *= roles.ChickSpeed
		eatRate *= roles.ChickEatBonus
	case components.RoleRooster:
		size += roles.RoosterSizeDelta
		speediness *= roles.RoosterSpeed
	}
	size = clampFloat(size, roles.MinSize, roles.MaxSize)

	patience := randRange(rng, patienceMin, patienceMax)
	temp := components.Temperament{
		Speediness:    speediness,
		Wander:        mv.Wander * randRange(rng, 0.6, 1.55) * randRange(rng, 0.75, 1.45),
		CenterPull:    mv.CenterPull * randRange(rng, 0.5, 1.35),
		Damping:       clampFloat(mv.Damping*randRange(rng, 0.93, 1.02), 0.84, 0.95),
		MaxSpeed:      mv.MaxSpeed * randRange(rng, 0.65, 1.2) * speediness,
		ImpulseChance: mv.ImpulseChance * randRange(rng, 0.45, 2.2),
		ImpulseScale:  mv.ImpulseScale * randRange(rng, 0.7, 1.9),
		TargetSpread:  randRange(rng, mv.RetargetSpreadMin, mv.RetargetSpreadMax),
		TargetTempo:   randRange(rng, 0.8, 1.75),
		ChaseBoost:    randRange(rng, 2.2, 4.2) * speediness,
		EatRate:       eatRate,
		Patience:      patience,
		NoticeDelay:   randRange(rng, 0, mv.ReactionMax) * patience,
		Socialness:    randRange(rng, -1, 1),
		ZigzagFreq:    randRange(rng, mv.ZigzagFreqMin, mv.ZigzagFreqMax),
	}

	social := components.Social{Mood: components.MoodCalm}
	if rng.Float64() < 0.5 {
		social.Mood = components.MoodNervous
	}

	ox, oy := p.coop.DoorOutside()
	x, y := p.space.WrapPos(
		ox+randRange(rng, -spawnJitterX, spawnJitterX),
		oy+randRange(rng, spawnDropMin, spawnDropMax),
	)
	tx, ty := p.space.WrapPos(
		p.space.W/2+randRange(rng, -initialReach, initialReach)*p.space.W,
		p.space.H/2+randRange(rng, -initialReach, initialReach)*p.space.H,
	)

	return Agent{
		Pos:  components.Position{X: x, Y: y},
		Body: components.Body{Size: size, Role: role},
		Temp: temp,
		Mind: components.Mind{
			Directive:    &components.Wandering{},
			TX:           tx,
			TY:           ty,
			NextTargetIn: randRange(rng, 0.15, 0.8) * temp.TargetTempo,
		},
		Vitals: components.Vitals{
			MaxFatigue:  randRange(rng, p.cfg.Fatigue.MaxMin, p.cfg.Fatigue.MaxMax),
			NoticeTimer: temp.NoticeDelay,
			ZigzagPhase: rng.Float64() * 2 * math.Pi,
		},
		Social: social,
	}
}

// Respawn resets a rested agent and places it outside the door with a hop.
func (p *Population) Respawn(a *Agent) {
	rng := p.rng

	ox, oy := p.coop.DoorOutside()
	a.Pos.X, a.Pos.Y = p.space.WrapPos(
		ox+randRange(rng, -respawnJitterX, respawnJitterX),
		oy+randRange(rng, -respawnJitterY, respawnJitterY),
	)

	ang := randRange(rng, launchAngleMin, launchAngleMax)
	sp := randRange(rng, launchSpeedMin, launchSpeedMax)
	a.Vel.X = math.Cos(ang)*sp + randRange(rng, -launchJitterX, launchJitterX)
	a.Vel.Y = -math.Abs(math.Sin(ang)*sp) + randRange(rng, -launchJitterUp, launchJitterDn)

	a.Mind.Directive = &components.Wandering{}
	a.Mind.TX, a.Mind.TY = p.space.WrapPos(
		a.Pos.X+randRange(rng, -respawnReach, respawnReach)*p.space.W,
		a.Pos.Y+randRange(rng, -respawnReach, respawnReach)*p.space.H,
	)
	a.Mind.NextTargetIn = randRange(rng, 0.25, 1.4) * a.Temp.TargetTempo

	a.Vitals = components.Vitals{
		MaxFatigue:  a.Vitals.MaxFatigue,
		NoticeTimer: a.Temp.NoticeDelay,
		ZigzagPhase: a.Vitals.ZigzagPhase,
		Rest:        components.RestNone,
	}
	a.Social.IsolatedTime = 0
	a.Social.ClusteredTime = 0
}

// Startle jolts an agent and puffs feathers. With food around the agent stays on
// task with a skid; otherwise it panics briefly. Returns false while on cooldown.
func (p *Population) Startle(a AgentRef, hasFood bool, src *r2.Vec) bool {
	if a.Vitals.StartleCooldown > 0 {
		return false
	}
	cfg := p.cfg.Startle
	a.Vitals.StartleCooldown = cfg.Cooldown
	p.feathers.Puff(a.Pos.X, a.Pos.Y, src, p.rng)

	if !hasFood && p.TriggerPanic(a) {
		pn := a.Mind.Panic()
		pn.Timer = math.Min(pn.Timer, randRange(p.rng, cfg.PanicCapMin, cfg.PanicCapMax))
		return true
	}

	a.Vel.X += randRange(p.rng, -cfg.Impulse, cfg.Impulse)
	a.Vel.Y += randRange(p.rng, -cfg.Impulse, cfg.Impulse)
	mv := p.cfg.Movement
	a.Vitals.SkidTimer = math.Max(a.Vitals.SkidTimer, randRange(p.rng, mv.SkidTimeMin, mv.SkidTimeMax))
	return true
}

// TriggerPanic puts an agent into panic with a random mode.
// Coop-bound agents keep walking home. Returns true when panic started.
func (p *Population) TriggerPanic(a AgentRef) bool {
	if a.Mind.CoopBound() != nil {
		return false
	}
	rng := p.rng
	cfg := p.cfg.Panic

	pn := &components.Panicking{
		Timer: randRange(rng, cfg.DurationMin, cfg.DurationMax),
	}

	r := rng.Float64()
	switch {
	case r < cfg.PLinear:
		pn.Mode = components.PanicLinear
	case r < cfg.PLinear+cfg.PCircular:
		pn.Mode = components.PanicCircular
	case r < cfg.PLinear+cfg.PCircular+cfg.PWavy:
		pn.Mode = components.PanicWavy
	default:
		pn.Mode = components.PanicChase
	}

	pn.PointX, pn.PointY = p.space.WrapPos(
		a.Pos.X+randRange(rng, -cfg.RunReach, cfg.RunReach)*p.space.W,
		a.Pos.Y+randRange(rng, -cfg.RunReach, cfg.RunReach)*p.space.H,
	)
	pn.CircleX, pn.CircleY = a.Pos.X, a.Pos.Y
	pn.Radius = randRange(rng, cfg.CircleRadiusMin, cfg.CircleRadiusMax)
	pn.Omega = randSign(rng) * randRange(rng, cfg.CircleOmegaMin, cfg.CircleOmegaMax)
	pn.Phase = rng.Float64() * 2 * math.Pi
	pn.WaveAmp = randRange(rng, cfg.WaveAmpMin, cfg.WaveAmpMax)
	pn.WaveFreq = randRange(rng, cfg.WaveFreqMin, cfg.WaveFreqMax)
	dir, _ := unitOr(rng, p.space.Vector(r2.Vec{X: a.Pos.X, Y: a.Pos.Y}, r2.Vec{X: pn.PointX, Y: pn.PointY}))
	pn.DirX, pn.DirY = dir.X, dir.Y

	a.Mind.Directive = pn
	a.Mind.TX, a.Mind.TY = pn.PointX, pn.PointY
	return true
}

// TriggerFlee sends victim running directly away from pursuer.
// Fleeing cancels the victim's own panic. Coop-bound agents ignore it.
func (p *Population) TriggerFlee(victim, pursuer AgentRef) bool {
	if victim.Mind.CoopBound() != nil {
		return false
	}
	from := r2.Vec{X: pursuer.Pos.X, Y: pursuer.Pos.Y}
	ok := p.FleeFrom(victim, from)
	if ok {
		f := victim.Mind.Flee()
		f.From = pursuer.Entity
		f.HasFrom = true
	}
	return ok
}

// FleeFrom sends an agent away from a point.
func (p *Population) FleeFrom(a AgentRef, from r2.Vec) bool {
	rng := p.rng
	cfg := p.cfg.Flee

	dir, _ := unitOr(rng, p.space.Vector(from, r2.Vec{X: a.Pos.X, Y: a.Pos.Y}))
	dist := randRange(rng, cfg.TargetDistMin, cfg.TargetDistMax)
	x, y := p.space.WrapPos(
		a.Pos.X+dir.X*dist+randRange(rng, -cfg.TargetJitter, cfg.TargetJitter),
		a.Pos.Y+dir.Y*dist+randRange(rng, -cfg.TargetJitter, cfg.TargetJitter),
	)

	a.Mind.Directive = &components.Fleeing{
		Timer: randRange(rng, cfg.DurationMin, cfg.DurationMax),
		X:     x,
		Y:     y,
	}
	a.Mind.TX, a.Mind.TY = x, y
	a.Mind.NextTargetIn = fleeHoldTime
	return true
}

// rerollNotice draws a fresh notice delay for the current patience.
func (p *Population) rerollNotice(t *components.Temperament) {
	rmax := p.cfg.Movement.ReactionMax
	t.NoticeDelay = clampFloat(randRange(p.rng, 0, rmax)*t.Patience, 0, rmax*noticeCapMult)
}

// mutation metrics
const (
	mutDamping = iota
	mutCenterPull
	mutWander
	mutMaxSpeed
	mutImpulseChance
	mutImpulseScale
	mutTargetSpread
	mutTargetTempo
	mutChaseBoost
	mutEatRate
	mutPatience
	mutSocialness
	mutZigzagFreq
	mutCount
)

// MutateTemperament nudges one to four behavioral scalars, each clamped to its valid range.
func (p *Population) MutateTemperament(a AgentRef) {
	rng := p.rng
	mv := p.cfg.Movement
	scale := p.cfg.Temperament.MutationScale
	t := a.Temp

	k := randIntRange(rng, 1, 4)
	for i := 0; i < k; i++ {
		r := (2*rng.Float64() - 1) * scale
		switch rng.Intn(mutCount) {
		case mutDamping:
			t.Damping = clampFloat(t.Damping+r*0.10, 0.82, 0.97)
		case mutCenterPull:
			t.CenterPull = clampFloat(t.CenterPull+r*0.35, 0.02, 0.45)
		case mutWander:
			t.Wander = clampFloat(t.Wander*(1+r), mv.Wander*0.3, mv.Wander*3)
		case mutMaxSpeed:
			t.MaxSpeed = clampFloat(t.MaxSpeed*(1+r), mv.MaxSpeed*0.5, mv.MaxSpeed*2.5)
		case mutImpulseChance:
			t.ImpulseChance = clampFloat(t.ImpulseChance*(1+r), 0.01, 0.35)
		case mutImpulseScale:
			t.ImpulseScale = clampFloat(t.ImpulseScale*(1+r), 0.4, 4)
		case mutTargetSpread:
			t.TargetSpread = clampFloat(t.TargetSpread*(1+r), 0.14, 0.65)
		case mutTargetTempo:
			t.TargetTempo = clampFloat(t.TargetTempo*(1+r), 0.55, 2.4)
		case mutChaseBoost:
			t.ChaseBoost = clampFloat(t.ChaseBoost*(1+r), 0.9, 7)
		case mutEatRate:
			t.EatRate = clampFloat(t.EatRate*(1+r), 0.35, 2.5)
		case mutPatience:
			t.Patience = clampFloat(t.Patience*(1+r), 0.55, 2.4)
			p.rerollNotice(t)
		case mutSocialness:
			t.Socialness = clampFloat(t.Socialness+r*1.6, -1, 1)
		case mutZigzagFreq:
			t.ZigzagFreq = clampFloat(t.ZigzagFreq*(1+r), 0.6, 6)
		}
	}

	if rng.Float64() < p.cfg.Temperament.RetargetChance {
		a.Mind.NextTargetIn = 0
	}
}

// FlipReason says why a temperament flipped.
type FlipReason uint8

const (
	FlipIsolated FlipReason = iota
	FlipClustered
)

// FlipTemperament inverts an agent's social leaning. Isolation makes it more
// exploratory; crowding makes it settle.
func (p *Population) FlipTemperament(a AgentRef, reason FlipReason) {
	t := a.Temp
	s := a.Social
	base := p.cfg.Movement.Wander

	t.Socialness = -t.Socialness
	t.Patience = clampFloat(1.6-t.Patience, patienceMin, patienceMax)
	p.rerollNotice(t)

	if reason == FlipIsolated {
		t.Wander = clampFloat(t.Wander*1.18, base*0.3, base*2.75)
		t.TargetSpread = clampFloat(t.TargetSpread*1.12, 0.18, 0.6)
		t.TargetTempo = clampFloat(t.TargetTempo*0.92, 0.6, 2.2)
	} else {
		t.Wander = clampFloat(t.Wander*0.92, base*0.3, base*2.75)
		t.TargetSpread = clampFloat(t.TargetSpread*0.92, 0.18, 0.6)
		t.TargetTempo = clampFloat(t.TargetTempo*1.06, 0.6, 2.2)
	}

	if s.Mood == components.MoodCalm {
		s.Mood = components.MoodNervous
	} else {
		s.Mood = components.MoodCalm
	}
	s.Cooldown = p.cfg.Temperament.Cooldown
	s.IsolatedTime = 0
	s.ClusteredTime = 0

	slog.Debug("temperament flip",
		"reason", reason.String(),
		"mood", s.Mood.String(),
		"socialness", t.Socialness,
	)
}

// String returns the flip reason name.
func (r FlipReason) String() string {
	if r == FlipClustered {
		return "clustered"
	}
	return "isolated"
}
