package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 2
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawPctBar draws a share bar for a percentage in [0, 100]. The fill warms
// from the accent colour through amber to red as the share grows.
func (r *Renderer) DrawPctBar(x, y int32, label string, pct float64, width int32) int32 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	fill := int32(float64(barWidth) * pct / 100)
	rl.DrawRectangle(barX, y+2, fill, r.Theme.BarHeight, r.pctColor(pct))
	rl.DrawText(fmt.Sprintf("%4.1f%%", pct), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight
}

func (r *Renderer) pctColor(pct float64) rl.Color {
	switch {
	case pct > 50:
		return r.Theme.BarFillHot
	case pct > 25:
		return r.Theme.BarFillWarn
	default:
		return r.Theme.BarFill
	}
}

// DrawColorSwatches draws a row of small colour squares after a label.
func (r *Renderer) DrawColorSwatches(x, y int32, label string, colors []rl.Color) int32 {
	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	size := r.Theme.BarHeight + 2
	sx := x + r.Theme.LabelWidth
	for _, c := range colors {
		rl.DrawRectangle(sx, y, size, size, c)
		rl.DrawRectangleLines(sx, y, size, size, r.Theme.PanelBorder)
		sx += size + 4
	}
	return y + r.Theme.LineHeight
}
