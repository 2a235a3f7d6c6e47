package ui

import "testing"

func TestRestSplit(t *testing.T) {
	tests := []struct {
		name  string
		data  FlockData
		width int32
		want  [3]int32
	}{
		{"empty flock", FlockData{}, 200, [3]int32{}},
		{"all roaming", FlockData{Roaming: 12}, 120, [3]int32{120, 0, 0}},
		{"even thirds", FlockData{Roaming: 4, Going: 4, Inside: 4}, 120, [3]int32{40, 40, 40}},
		{"slack goes inside", FlockData{Roaming: 1, Going: 1, Inside: 1}, 100, [3]int32{33, 33, 34}},
		{"zero width", FlockData{Roaming: 3}, 0, [3]int32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := restSplit(tt.data, tt.width)
			if got != tt.want {
				t.Errorf("restSplit = %v, want %v", got, tt.want)
			}
			if tt.data.Total() > 0 && tt.width > 0 && got[0]+got[1]+got[2] != tt.width {
				t.Errorf("segments sum to %d, want %d", got[0]+got[1]+got[2], tt.width)
			}
		})
	}
}

func TestFlockPanelToggleOverlays(t *testing.T) {
	p := NewFlockPanel(10, 170, 220)
	if !p.ToggleOverlays() {
		t.Error("first toggle should expand")
	}
	if p.ToggleOverlays() {
		t.Error("second toggle should collapse")
	}
}
