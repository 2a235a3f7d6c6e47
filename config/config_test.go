package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero eat time", func(c *Config) { c.Seeds.EatTime = 0 }, "seeds.eat_time"},
		{"negative eat time", func(c *Config) { c.Seeds.EatTime = -1 }, "seeds.eat_time"},
		{"role chances over one", func(c *Config) { c.Roles.ChickChance, c.Roles.RoosterChance = 0.7, 0.5 }, "roles"},
		{"inverted panic duration", func(c *Config) { c.Panic.DurationMin, c.Panic.DurationMax = 3, 1 }, "panic.duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
