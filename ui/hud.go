package ui

import (
	"fmt"
	"image/color"
	"sort"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/pointer"
	"github.com/pthm-cable/constellation/telemetry"
)

const hudWidth = 260

// HUDData holds everything the debug overlay shows for one frame.
type HUDData struct {
	Title     string
	Mode      string
	Tick      int64
	Particles int
	Edges     int
	Pointer   pointer.Snapshot
	Perf      telemetry.PerfStats
	Palette   []color.RGBA
}

// HUD renders the debug overlay. It starts hidden.
type HUD struct {
	renderer *Renderer
	anchor   PanelAnchor
	visible  bool
}

// NewHUD creates a hidden HUD anchored at a.
func NewHUD(a PanelAnchor) *HUD {
	return &HUD{renderer: NewRenderer(), anchor: a}
}

// Toggle switches visibility and returns the new state.
func (h *HUD) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// Visible reports whether the HUD is drawn.
func (h *HUD) Visible() bool {
	return h.visible
}

// Draw renders the HUD if visible.
func (h *HUD) Draw(data HUDData) {
	if !h.visible {
		return
	}

	r := h.renderer
	th := r.Theme
	rows := summaryRows(data)
	phases := phaseShares(data.Perf)

	lines := int32(len(rows) + len(phases) + 2)
	if len(data.Palette) > 0 {
		lines++
	}
	height := lines*th.LineHeight + th.Padding*3 + 24
	px, py := th.Anchor(h.anchor, hudWidth, height, int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	r.DrawPanel(px, py, hudWidth, height)

	x := px + th.Padding
	y := r.DrawSectionHeader(x, py+th.Padding, data.Title)
	for _, row := range rows {
		y = r.DrawLabelValue(x, y, row.label, row.value)
	}
	if len(data.Palette) > 0 {
		swatches := make([]rl.Color, len(data.Palette))
		for i, c := range data.Palette {
			swatches[i] = rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
		}
		y = r.DrawColorSwatches(x, y, "palette", swatches)
	}

	y = r.DrawSectionHeader(x, y+4, "Frame phases")
	for _, ph := range phases {
		y = r.DrawPctBar(x, y, ph.name, ph.pct, hudWidth-2*th.Padding)
	}

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y + 6), Width: 60, Height: 20}, "Hide") {
		h.visible = false
	}
}

type hudRow struct {
	label, value string
}

// summaryRows formats the scalar part of the HUD.
func summaryRows(data HUDData) []hudRow {
	ptr := "idle"
	if data.Pointer.Active {
		ptr = fmt.Sprintf("%+.2f, %+.2f", data.Pointer.X, data.Pointer.Y)
	}
	return []hudRow{
		{"mode", data.Mode},
		{"tick", fmt.Sprintf("%d", data.Tick)},
		{"fps", fmt.Sprintf("%.0f", data.Perf.FPS)},
		{"frame", data.Perf.AvgTickDuration.Round(time.Microsecond).String()},
		{"particles", fmt.Sprintf("%d", data.Particles)},
		{"links", fmt.Sprintf("%d", data.Edges)},
		{"pointer", ptr},
	}
}

type phaseShare struct {
	name string
	pct  float64
}

// phaseShares returns timed phases, largest share first.
func phaseShares(perf telemetry.PerfStats) []phaseShare {
	out := make([]phaseShare, 0, len(perf.PhasePct))
	for name, pct := range perf.PhasePct {
		out = append(out, phaseShare{name: name, pct: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].pct != out[j].pct {
			return out[i].pct > out[j].pct
		}
		return out[i].name < out[j].name
	})
	return out
}
