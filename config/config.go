// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
// Values are read once at startup and treated as immutable for the session.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Population  PopulationConfig  `yaml:"population"`
	Roles       RolesConfig       `yaml:"roles"`
	Movement    MovementConfig    `yaml:"movement"`
	Social      SocialConfig      `yaml:"social"`
	Panic       PanicConfig       `yaml:"panic"`
	Flee        FleeConfig        `yaml:"flee"`
	Startle     StartleConfig     `yaml:"startle"`
	Fatigue     FatigueConfig     `yaml:"fatigue"`
	Coop        CoopConfig        `yaml:"coop"`
	Seeds       SeedsConfig       `yaml:"seeds"`
	Scatter     ScatterConfig     `yaml:"scatter"`
	Temperament TemperamentConfig `yaml:"temperament"`
	Feathers    FeathersConfig    `yaml:"feathers"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Bookmarks   BookmarksConfig   `yaml:"bookmarks"`
	Audio       AudioConfig       `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	MaxDT     float64 `yaml:"max_dt"` // Front-ends clamp frame time to this before ticking
}

// WorldConfig holds the torus period on each axis.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// PopulationConfig holds flock size.
type PopulationConfig struct {
	Count int `yaml:"count"`
}

// RolesConfig holds role draw probabilities and body sizes.
type RolesConfig struct {
	ChickChance      float64 `yaml:"chick_chance"`
	RoosterChance    float64 `yaml:"rooster_chance"` // Remainder are hens
	BaseSize         float64 `yaml:"base_size"`
	ChickSizeDelta   float64 `yaml:"chick_size_delta"`
	RoosterSizeDelta float64 `yaml:"rooster_size_delta"`
	MinSize          float64 `yaml:"min_size"`
	MaxSize          float64 `yaml:"max_size"`
	ChickSpeed       float64 `yaml:"chick_speed"`   // Speediness multiplier bias
	RoosterSpeed     float64 `yaml:"rooster_speed"` // Speediness multiplier bias
	ChickEatBonus    float64 `yaml:"chick_eat_bonus"`
}

// MovementConfig holds per-agent motion baselines and steering gains.
type MovementConfig struct {
	Wander            float64 `yaml:"wander"`      // Random accel jitter (units/s^2)
	CenterPull        float64 `yaml:"center_pull"` // Homing bias toward the wander target
	CenterPullGain    float64 `yaml:"center_pull_gain"`
	Damping           float64 `yaml:"damping"` // Per-tick velocity multiplier
	MaxSpeed          float64 `yaml:"max_speed"`
	ImpulseChance     float64 `yaml:"impulse_chance"` // Impulse chance per 60 Hz frame
	ImpulseScale      float64 `yaml:"impulse_scale"`
	ImpulseAccel      float64 `yaml:"impulse_accel"`
	ReactionMax       float64 `yaml:"reaction_max"` // Upper bound of notice delay before patience scaling
	ChaseSpeedMult    float64 `yaml:"chase_speed_mult"`
	ChaseVelGain      float64 `yaml:"chase_vel_gain"`
	ChaseAccelDamp    float64 `yaml:"chase_accel_damp"`
	CoopWalkSpeedMult float64 `yaml:"coop_walk_speed_mult"`
	ZigzagFreqMin     float64 `yaml:"zigzag_freq_min"`
	ZigzagFreqMax     float64 `yaml:"zigzag_freq_max"`
	ZigzagAmpChase    float64 `yaml:"zigzag_amp_chase"`
	ZigzagAmpWander   float64 `yaml:"zigzag_amp_wander"`
	SkidTrigger       float64 `yaml:"skid_trigger"`    // Distance to target that can start a skid
	SkidSpeedFrac     float64 `yaml:"skid_speed_frac"` // Fraction of the speed cap needed to skid
	SkidTimeMin       float64 `yaml:"skid_time_min"`
	SkidTimeMax       float64 `yaml:"skid_time_max"`
	SkidDamping       float64 `yaml:"skid_damping"`
	SkidSteer         float64 `yaml:"skid_steer"` // Steering authority while skidding
	EatRadius         float64 `yaml:"eat_radius"`
	PeckTime          float64 `yaml:"peck_time"`
	PeckSlow          float64 `yaml:"peck_slow"`
	ArrivalRadius     float64 `yaml:"arrival_radius"` // Coop-bound arrival distance
	RetargetSpreadMin float64 `yaml:"retarget_spread_min"`
	RetargetSpreadMax float64 `yaml:"retarget_spread_max"`
}

// SocialConfig holds pairwise force parameters.
type SocialConfig struct {
	SeparationDistChase      float64 `yaml:"separation_dist_chase"`
	SeparationDistWander     float64 `yaml:"separation_dist_wander"`
	SeparationStrengthChase  float64 `yaml:"separation_strength_chase"`
	SeparationStrengthWander float64 `yaml:"separation_strength_wander"`
	PersonalSpace            float64 `yaml:"personal_space"`
	PersonalSpaceStrength    float64 `yaml:"personal_space_strength"`
	SocialMin                float64 `yaml:"social_min"`
	SocialRange              float64 `yaml:"social_range"`
	SocialStrength           float64 `yaml:"social_strength"`
	FlockRange               float64 `yaml:"flock_range"`
	AlignStrength            float64 `yaml:"align_strength"`
	CohesionStrength         float64 `yaml:"cohesion_strength"`
}

// PanicConfig holds spontaneous panic parameters.
type PanicConfig struct {
	ChancePerSec    float64 `yaml:"chance_per_sec"`
	DurationMin     float64 `yaml:"duration_min"`
	DurationMax     float64 `yaml:"duration_max"`
	PLinear         float64 `yaml:"p_linear"`
	PCircular       float64 `yaml:"p_circular"`
	PWavy           float64 `yaml:"p_wavy"`    // Remainder chases another agent
	RunReach        float64 `yaml:"run_reach"` // Linear target offset as a fraction of the world size
	CircleRadiusMin float64 `yaml:"circle_radius_min"`
	CircleRadiusMax float64 `yaml:"circle_radius_max"`
	CircleOmegaMin  float64 `yaml:"circle_omega_min"`
	CircleOmegaMax  float64 `yaml:"circle_omega_max"`
	WaveAmpMin      float64 `yaml:"wave_amp_min"`
	WaveAmpMax      float64 `yaml:"wave_amp_max"`
	WaveFreqMin     float64 `yaml:"wave_freq_min"`
	WaveFreqMax     float64 `yaml:"wave_freq_max"`
	WaveLookahead   float64 `yaml:"wave_lookahead"`
	SpeedMult       float64 `yaml:"speed_mult"`
}

// FleeConfig holds flee reaction parameters.
type FleeConfig struct {
	DetectRadius  float64 `yaml:"detect_radius"`
	DurationMin   float64 `yaml:"duration_min"`
	DurationMax   float64 `yaml:"duration_max"`
	TargetDistMin float64 `yaml:"target_dist_min"`
	TargetDistMax float64 `yaml:"target_dist_max"`
	TargetJitter  float64 `yaml:"target_jitter"`
	SpeedMult     float64 `yaml:"speed_mult"`
}

// StartleConfig holds startle and collision contagion parameters.
type StartleConfig struct {
	Cooldown      float64 `yaml:"cooldown"`
	Impulse       float64 `yaml:"impulse"`
	CollisionDist float64 `yaml:"collision_dist"`
	RunSpeed      float64 `yaml:"run_speed"`     // Speed at which an agent counts as running
	PanicCapMin   float64 `yaml:"panic_cap_min"` // Startle-induced panics are capped to a short burst
	PanicCapMax   float64 `yaml:"panic_cap_max"`
}

// FatigueConfig holds the fatigue and rest cycle.
type FatigueConfig struct {
	Rate         float64 `yaml:"rate"`          // Fatigue gained per active second
	RecoveryRate float64 `yaml:"recovery_rate"` // Fatigue drained per resting second
	MaxMin       float64 `yaml:"max_min"`
	MaxMax       float64 `yaml:"max_max"`
	Threshold    float64 `yaml:"threshold"` // Fraction of max fatigue that sends an agent home
	RestMin      float64 `yaml:"rest_min"`
	RestMax      float64 `yaml:"rest_max"`
	BypassMargin float64 `yaml:"bypass_margin"`
	DoorOffset   float64 `yaml:"door_offset"` // Distance below the door used as the walk-home target
}

// CoopConfig holds coop geometry.
type CoopConfig struct {
	Size          float64          `yaml:"size"`
	Wall          float64          `yaml:"wall"`
	DoorWidth     float64          `yaml:"door_width"`
	Pad           float64          `yaml:"pad"`
	DespawnRadius float64          `yaml:"despawn_radius"`
	SpawnRadius   float64          `yaml:"spawn_radius"`
	ZoneSpacing   float64          `yaml:"zone_spacing"`
	AvoidRadius   float64          `yaml:"avoid_radius"`
	AvoidStrength float64          `yaml:"avoid_strength"`
	CenterX       float64          `yaml:"center_x"` // Fraction of world width
	CenterY       float64          `yaml:"center_y"` // Fraction of world height
	Evacuation    EvacuationConfig `yaml:"evacuation"`
}

// EvacuationConfig holds the optional mass-panic evacuation window.
type EvacuationConfig struct {
	Enabled        bool    `yaml:"enabled"`
	PanicThreshold int     `yaml:"panic_threshold"`
	Duration       float64 `yaml:"duration"`
	Reach          float64 `yaml:"reach"` // Agents within outer radius + reach are evacuated
	FleeDistance   float64 `yaml:"flee_distance"`
	FleeTime       float64 `yaml:"flee_time"`
}

// SeedsConfig holds food item parameters.
type SeedsConfig struct {
	Max           int     `yaml:"max"`
	PerDrop       int     `yaml:"per_drop"`
	Clusters      int     `yaml:"clusters"`
	Spread        float64 `yaml:"spread"`
	Size          float64 `yaml:"size"` // Grid step for seed placement
	ClusterRadius float64 `yaml:"cluster_radius"`
	Gravity       float64 `yaml:"gravity"`
	AirDrag       float64 `yaml:"air_drag"`
	LandDamp      float64 `yaml:"land_damp"`
	Friction      float64 `yaml:"friction"` // Per 1/60 s
	CoopBuffer    float64 `yaml:"coop_buffer"`
	DropHeightMin float64 `yaml:"drop_height_min"`
	DropHeightMax float64 `yaml:"drop_height_max"`
	LaunchVX      float64 `yaml:"launch_vx"`
	LaunchVY      float64 `yaml:"launch_vy"`
	EatTime       float64 `yaml:"eat_time"`
}

// ScatterConfig holds crowd-kick parameters for landed seeds.
type ScatterConfig struct {
	Radius       float64 `yaml:"radius"`
	MinAgents    int     `yaml:"min_agents"`
	ChancePerSec float64 `yaml:"chance_per_sec"`
	ImpulseMin   float64 `yaml:"impulse_min"`
	ImpulseMax   float64 `yaml:"impulse_max"`
	CrowdBase    float64 `yaml:"crowd_base"`
	CrowdGain    float64 `yaml:"crowd_gain"`
}

// TemperamentConfig holds trait drift parameters.
type TemperamentConfig struct {
	MutationChancePerSec float64 `yaml:"mutation_chance_per_sec"`
	MutationScale        float64 `yaml:"mutation_scale"`
	RetargetChance       float64 `yaml:"retarget_chance"`
	Cooldown             float64 `yaml:"cooldown"`
	IsolatedRadius       float64 `yaml:"isolated_radius"`
	ClusterRadius        float64 `yaml:"cluster_radius"`
	ClusterNeighbors     int     `yaml:"cluster_neighbors"`
	IsolatedFor          float64 `yaml:"isolated_for"`
	ClusteredFor         float64 `yaml:"clustered_for"`
}

// FeathersConfig holds cosmetic feather puff parameters.
type FeathersConfig struct {
	MaxParticles    int     `yaml:"max_particles"`
	Bias            float64 `yaml:"bias"`
	Spread          float64 `yaml:"spread"`
	DownCountMin    int     `yaml:"down_count_min"`
	DownCountMax    int     `yaml:"down_count_max"`
	FeatherCountMin int     `yaml:"feather_count_min"`
	FeatherCountMax int     `yaml:"feather_count_max"`
	SpeedDownMin    float64 `yaml:"speed_down_min"`
	SpeedDownMax    float64 `yaml:"speed_down_max"`
	SpeedFeatherMin float64 `yaml:"speed_feather_min"`
	SpeedFeatherMax float64 `yaml:"speed_feather_max"`
	LifeDownMin     float64 `yaml:"life_down_min"`
	LifeDownMax     float64 `yaml:"life_down_max"`
	LifeFeatherMin  float64 `yaml:"life_feather_min"`
	LifeFeatherMax  float64 `yaml:"life_feather_max"`
	Drag            float64 `yaml:"drag"`
	Gravity         float64 `yaml:"gravity"`
	SettleSpeed     float64 `yaml:"settle_speed"`
	SettleLifeMult  float64 `yaml:"settle_life_mult"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	MassPanic        int     `yaml:"mass_panic"`        // Panicking agents at window end
	FrenzyMultiplier float64 `yaml:"frenzy_multiplier"` // Seeds eaten vs rolling mean
	FrenzyMinEaten   int     `yaml:"frenzy_min_eaten"`
	CoopRush         int     `yaml:"coop_rush"` // Coop arrivals within one window
}

// AudioConfig holds cue synthesis settings.
type AudioConfig struct {
	Enabled       bool    `yaml:"enabled"`
	SampleRate    int     `yaml:"sample_rate"`
	MasterVolume  float64 `yaml:"master_volume"`
	StartleVolume float64 `yaml:"startle_volume"`
	DropVolume    float64 `yaml:"drop_volume"`
	RespawnVolume float64 `yaml:"respawn_volume"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW float64 // Effective world width
	WorldH float64 // Effective world height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)
}

// SetWorldSize overrides the torus period, e.g. after a viewport resize.
func (c *Config) SetWorldSize(w, h float64) {
	c.Derived.WorldW = w
	c.Derived.WorldH = h
}

// Validate reports tunables that cannot produce a sane simulation.
func (c *Config) Validate() error {
	var errs []error

	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %vx%v", c.Derived.WorldW, c.Derived.WorldH))
	}
	if c.Population.Count < 0 {
		errs = append(errs, fmt.Errorf("population.count must not be negative, got %d", c.Population.Count))
	}
	if p := c.Roles.ChickChance + c.Roles.RoosterChance; p > 1 {
		errs = append(errs, fmt.Errorf("roles: chick_chance + rooster_chance = %v exceeds 1", p))
	}
	if p := c.Panic.PLinear + c.Panic.PCircular + c.Panic.PWavy; p > 1 {
		errs = append(errs, fmt.Errorf("panic: mode probabilities sum to %v, exceeds 1", p))
	}
	if c.Seeds.Size <= 0 {
		errs = append(errs, errors.New("seeds.size must be positive"))
	}
	if c.Seeds.EatTime <= 0 {
		errs = append(errs, fmt.Errorf("seeds.eat_time must be positive, got %v", c.Seeds.EatTime))
	}
	if c.Seeds.Clusters < 1 {
		errs = append(errs, errors.New("seeds.clusters must be at least 1"))
	}
	if c.Coop.Wall >= c.Coop.Size/2 {
		errs = append(errs, fmt.Errorf("coop.wall %v leaves no interior for size %v", c.Coop.Wall, c.Coop.Size))
	}

	ranges := []struct {
		name     string
		min, max float64
	}{
		{"panic.duration", c.Panic.DurationMin, c.Panic.DurationMax},
		{"flee.duration", c.Flee.DurationMin, c.Flee.DurationMax},
		{"flee.target_dist", c.Flee.TargetDistMin, c.Flee.TargetDistMax},
		{"fatigue.max", c.Fatigue.MaxMin, c.Fatigue.MaxMax},
		{"fatigue.rest", c.Fatigue.RestMin, c.Fatigue.RestMax},
		{"seeds.drop_height", c.Seeds.DropHeightMin, c.Seeds.DropHeightMax},
		{"scatter.impulse", c.Scatter.ImpulseMin, c.Scatter.ImpulseMax},
		{"movement.skid_time", c.Movement.SkidTimeMin, c.Movement.SkidTimeMax},
		{"movement.zigzag_freq", c.Movement.ZigzagFreqMin, c.Movement.ZigzagFreqMax},
	}
	for _, r := range ranges {
		if r.min > r.max {
			errs = append(errs, fmt.Errorf("%s: min %v > max %v", r.name, r.min, r.max))
		}
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
