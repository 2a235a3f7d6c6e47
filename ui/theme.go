// Package ui draws the graphical HUD, overlay toggles and agent inspector.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillLow      rl.Color
	BarFillMedium   rl.Color
	BarFillHigh     rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 32, G: 28, B: 22, A: 235},
		PanelBorder:     rl.Color{R: 90, G: 78, B: 60, A: 255},
		SectionHeader:   rl.Color{R: 240, G: 200, B: 90, A: 255},
		LabelColor:      rl.LightGray,
		ValueColor:      rl.RayWhite,
		BarBg:           rl.Color{R: 50, G: 45, B: 40, A: 255},
		BarFill:         rl.Color{R: 120, G: 170, B: 210, A: 255},
		BarFillLow:      rl.Color{R: 110, G: 190, B: 110, A: 255},
		BarFillMedium:   rl.Color{R: 215, G: 185, B: 95, A: 255},
		BarFillHigh:     rl.Color{R: 210, G: 100, B: 90, A: 255},
		BarFillNegative: rl.Color{R: 200, G: 110, B: 100, A: 255},
		BarFillPositive: rl.Color{R: 110, G: 190, B: 120, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      76,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}
