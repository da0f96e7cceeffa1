// Package ui draws the debug overlay for the raylib window.
//
// Everything here runs inside the backend's overlay pass, after the scene and
// before EndDrawing. Nothing in the engine depends on it.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillWarn    rl.Color
	BarFillHot     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 8, G: 14, B: 24, A: 220},
		PanelBorder:    rl.Color{R: 40, G: 70, B: 100, A: 255},
		SectionHeader:  rl.Color{R: 56, G: 189, B: 248, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 30, G: 36, B: 44, A: 255},
		BarFill:        rl.Color{R: 56, G: 189, B: 248, A: 255},
		BarFillWarn:    rl.Color{R: 230, G: 180, B: 80, A: 255},
		BarFillHot:     rl.Color{R: 220, G: 90, B: 90, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// Anchor returns the top-left corner of a w x h panel placed at a, with the
// theme's padding as margin.
func (t Theme) Anchor(a PanelAnchor, w, h, screenW, screenH int32) (int32, int32) {
	switch a {
	case AnchorTopRight:
		return screenW - w - t.Padding, t.Padding
	case AnchorBottomLeft:
		return t.Padding, screenH - h - t.Padding
	case AnchorBottomRight:
		return screenW - w - t.Padding, screenH - h - t.Padding
	default:
		return t.Padding, t.Padding
	}
}
