// Package terminal renders the scene into a tcell screen and feeds terminal
// mouse and resize events to the engine.
package terminal

import (
	"context"
	"errors"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/pointer"
	"github.com/pthm-cable/constellation/scene"
)

// Terminal cells are roughly twice as tall as wide, so the viewport counts
// two vertical subpixels per row.
const rowSubpixels = 2

const (
	pointRune = '●'
	lineRune  = '·'
)

// TerminalHost adapts a tcell screen to scene.Container and forwards its
// mouse and resize events to an input bus.
type TerminalHost struct {
	screen  tcell.Screen
	surface scene.Surface
}

// NewTerminalHost wraps an initialized screen.
func NewTerminalHost(screen tcell.Screen) *TerminalHost {
	return &TerminalHost{screen: screen}
}

// Viewport implements scene.Container.
func (h *TerminalHost) Viewport() (int, int) {
	w, rows := h.screen.Size()
	return w, rows * rowSubpixels
}

// AppendChild implements scene.Container.
func (h *TerminalHost) AppendChild(s scene.Surface) { h.surface = s }

// RemoveChild implements scene.Container.
func (h *TerminalHost) RemoveChild(s scene.Surface) {
	if h.surface == s {
		h.surface = nil
	}
}

// Contains implements scene.Container.
func (h *TerminalHost) Contains(s scene.Surface) bool { return s != nil && h.surface == s }

// Pump reads screen events until the screen is finalized or ctx is done.
// Escape, Ctrl-C and q call quit. Run it on its own goroutine.
func (h *TerminalHost) Pump(ctx context.Context, bus *input.Bus, quit func()) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}
		if !h.handle(ev, bus) {
			quit()
			return
		}
	}
}

// handle translates one event. It returns false when the user asked to quit.
func (h *TerminalHost) handle(ev tcell.Event, bus *input.Bus) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' {
			return false
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		cols, rows := h.screen.Size()
		nx, ny := pointer.Normalize(float32(x)+0.5, float32(y)+0.5, float32(cols), float32(rows))
		bus.PushPointer(nx, ny)
	case *tcell.EventResize:
		w, rows := ev.Size()
		bus.PushResize(w, rows*rowSubpixels)
	}
	return true
}

type terminalSurface struct {
	screen tcell.Screen
}

func (s *terminalSurface) Size() (int, int) {
	w, rows := s.screen.Size()
	return w, rows * rowSubpixels
}

// Terminal draws the scene as characters on a tcell screen.
type Terminal struct {
	screen   tcell.Screen
	flat     scene.Flat
	released bool
}

// NewTerminal creates a backend drawing to screen, which must already be initialized.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// CreateSurface implements scene.Backend.
func (t *Terminal) CreateSurface(w, h int) (scene.Surface, error) {
	if t.screen == nil {
		return nil, errors.New("no terminal screen")
	}
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.screen.HideCursor()
	return &terminalSurface{screen: t.screen}, nil
}

// Resize implements scene.Backend.
func (t *Terminal) Resize(w, h int) {
	if t.screen != nil && !t.released {
		t.screen.Sync()
	}
}

// Draw implements scene.Backend.
func (t *Terminal) Draw(dl *scene.DrawList) {
	if t.released {
		return
	}
	t.flat.Build(dl)

	bg := t.flat.Background
	base := tcell.StyleDefault.Background(tcellColor(bg))
	t.screen.Fill(' ', base)

	for _, l := range t.flat.Lines {
		style := base.Foreground(tcellColor(blendOver(l.Color, bg)))
		t.drawLine(l, style)
	}
	for _, p := range t.flat.Points {
		style := base.Foreground(tcellColor(blendOver(p.Color, bg)))
		t.screen.SetContent(int(p.X), int(p.Y)/rowSubpixels, pointRune, nil, style)
	}
	t.screen.Show()
}

// drawLine rasterizes l onto the cell grid with Bresenham.
func (t *Terminal) drawLine(l scene.FlatLine, style tcell.Style) {
	x0, y0 := int(l.X0), int(l.Y0)/rowSubpixels
	x1, y1 := int(l.X1), int(l.Y1)/rowSubpixels
	cols, rows := t.screen.Size()

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	// Bound the walk so a nearly degenerate projection cannot stall a frame
	limit := 2 * (cols + rows)
	err := dx + dy
	for i := 0; i <= limit; i++ {
		if x0 >= 0 && x0 < cols && y0 >= 0 && y0 < rows {
			t.screen.SetContent(x0, y0, lineRune, nil, style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Release implements scene.Backend.
func (t *Terminal) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.screen != nil {
		t.screen.Fini()
	}
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// blendOver composites a non-premultiplied colour over an opaque background.
func blendOver(fg, bg color.RGBA) color.RGBA {
	a := float64(fg.A) / 255
	back := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	front := colorful.Color{R: float64(fg.R) / 255, G: float64(fg.G) / 255, B: float64(fg.B) / 255}
	r, g, b := back.BlendRgb(front, a).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
