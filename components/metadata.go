package components

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID         string  // Unique identifier
	Label      string  // Display name
	Format     string  // Printf format (e.g., "%.2f")
	Min        float64 // Minimum value (for bars)
	Max        float64 // Maximum value (for bars)
	IsCentered bool    // True for centered bar display
	IsBar      bool    // True to render as progress bar
	Group      string  // Logical grouping
}

// String returns the display name for a Role.
func (r Role) String() string {
	names := RoleNames()
	if int(r) < len(names) {
		return names[r]
	}
	return "Unknown"
}

// RoleNames returns the display names for all roles.
// The order matches the Role constants.
func RoleNames() []string {
	return []string{"Hen", "Chick", "Rooster"}
}

// String returns the display name for a DirectiveKind.
func (k DirectiveKind) String() string {
	names := DirectiveNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// DirectiveNames returns the display names for all directive kinds.
func DirectiveNames() []string {
	return []string{"Wandering", "Chasing", "Panicking", "Fleeing", "GoingToCoop"}
}

// String returns the display name for a PanicMode.
func (m PanicMode) String() string {
	switch m {
	case PanicLinear:
		return "Linear"
	case PanicCircular:
		return "Circular"
	case PanicWavy:
		return "Wavy"
	case PanicChase:
		return "Chase"
	}
	return "Unknown"
}

// String returns the display name for a Mood.
func (m Mood) String() string {
	if m == MoodNervous {
		return "Nervous"
	}
	return "Calm"
}

// TemperamentFieldDescriptors returns metadata for Temperament fields.
// Field IDs must match cases in TemperamentValue().
func TemperamentFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "socialness", Label: "Social", Format: "%+.2f", Min: -1, Max: 1, IsCentered: true, IsBar: true, Group: "mood"},
		{ID: "patience", Label: "Patience", Format: "%.2f", Min: 0.55, Max: 2.4, IsBar: true, Group: "mood"},
		{ID: "wander", Label: "Wander", Format: "%.0f", Group: "motion"},
		{ID: "max_speed", Label: "Max Speed", Format: "%.0f", Min: 100, Max: 700, IsBar: true, Group: "motion"},
		{ID: "damping", Label: "Damping", Format: "%.3f", Min: 0.82, Max: 0.97, IsBar: true, Group: "motion"},
		{ID: "eat_rate", Label: "Eat Rate", Format: "%.2f", Min: 0.35, Max: 2.5, IsBar: true, Group: "food"},
	}
}

// TemperamentValue returns the value of a described Temperament field.
func TemperamentValue(t *Temperament, id string) float64 {
	switch id {
	case "socialness":
		return t.Socialness
	case "patience":
		return t.Patience
	case "wander":
		return t.Wander
	case "max_speed":
		return t.MaxSpeed
	case "damping":
		return t.Damping
	case "eat_rate":
		return t.EatRate
	}
	return 0
}
