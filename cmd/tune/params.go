package main

import (
	"github.com/pthm-cable/coop/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of tuned social parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the social parameter set, with defaults taken from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	s := cfg.Social
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "personal_space", Path: "social.personal_space", Min: 12, Max: 64, Default: s.PersonalSpace},
			{Name: "personal_space_strength", Path: "social.personal_space_strength", Min: 20, Max: 400, Default: s.PersonalSpaceStrength},
			{Name: "social_range", Path: "social.social_range", Min: 60, Max: 260, Default: s.SocialRange},
			{Name: "social_strength", Path: "social.social_strength", Min: 5, Max: 200, Default: s.SocialStrength},
			{Name: "cohesion_strength", Path: "social.cohesion_strength", Min: 0, Max: 120, Default: s.CohesionStrength},
			{Name: "align_strength", Path: "social.align_strength", Min: 0, Max: 2, Default: s.AlignStrength},
			{Name: "separation_dist_wander", Path: "social.separation_dist_wander", Min: 6, Max: 40, Default: s.SeparationDistWander},
			{Name: "separation_strength_wander", Path: "social.separation_strength_wander", Min: 100, Max: 2000, Default: s.SeparationStrengthWander},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to the [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	s := &cfg.Social
	s.PersonalSpace = c[0]
	s.PersonalSpaceStrength = c[1]
	s.SocialRange = c[2]
	s.SocialStrength = c[3]
	s.CohesionStrength = c[4]
	s.AlignStrength = c[5]
	s.SeparationDistWander = c[6]
	s.SeparationStrengthWander = c[7]

	// Social attraction band starts outside personal space.
	s.SocialMin = max(s.SocialMin, s.PersonalSpace)
	s.SocialRange = max(s.SocialRange, s.SocialMin+10)
}
