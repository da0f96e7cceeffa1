// Package canvas renders the scene with ebiten, which also targets the
// browser through GOOS=js GOARCH=wasm.
package canvas

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/pointer"
	"github.com/pthm-cable/constellation/scene"
)

const lineWidth = 1

// Host is the ebiten game: it owns the window, acts as the scene container
// and drives the engine from Update.
type Host struct {
	title         string
	width, height int
	bus           *input.Bus
	backend       *Backend
	surface       scene.Surface

	step         func() bool
	lastX, lastY int
	seenCursor   bool
}

// NewHost creates a host with the given initial window size.
func NewHost(title string, width, height int, bus *input.Bus) *Host {
	h := &Host{title: title, width: width, height: height, bus: bus}
	h.backend = &Backend{host: h}
	return h
}

// Backend returns the scene backend bound to this host.
func (h *Host) Backend() *Backend {
	return h.backend
}

// Viewport implements scene.Container.
func (h *Host) Viewport() (int, int) { return h.width, h.height }

// AppendChild implements scene.Container.
func (h *Host) AppendChild(s scene.Surface) { h.surface = s }

// RemoveChild implements scene.Container.
func (h *Host) RemoveChild(s scene.Surface) {
	if h.surface == s {
		h.surface = nil
	}
}

// Contains implements scene.Container.
func (h *Host) Contains(s scene.Surface) bool { return s != nil && h.surface == s }

// Run opens the window and calls step once per ebiten tick until step
// returns false or the window closes.
func (h *Host) Run(step func() bool, tps int) error {
	h.step = step
	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if tps > 0 {
		ebiten.SetTPS(tps)
	}
	err := ebiten.RunGame(h)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	x, y := ebiten.CursorPosition()
	h.pointerAt(x, y)
	if h.step == nil || !h.step() {
		return ebiten.Termination
	}
	return nil
}

// pointerAt queues a pointer move when the cursor changed cell.
func (h *Host) pointerAt(x, y int) {
	if h.seenCursor && x == h.lastX && y == h.lastY {
		return
	}
	h.seenCursor = true
	h.lastX, h.lastY = x, y
	h.bus.PushPointer(pointer.Normalize(float32(x), float32(y), float32(h.width), float32(h.height)))
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	h.backend.paint(screen)
}

// Layout implements ebiten.Game. A changed outside size becomes a resize event.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.width, h.height = outsideWidth, outsideHeight
		h.bus.PushResize(outsideWidth, outsideHeight)
	}
	return h.width, h.height
}

type canvasSurface struct {
	host *Host
}

func (s *canvasSurface) Size() (int, int) {
	return s.host.width, s.host.height
}

// Backend records each frame as projected 2D geometry; the host paints it
// during ebiten's Draw.
type Backend struct {
	host     *Host
	flat     scene.Flat
	released bool
}

// CreateSurface implements scene.Backend.
func (b *Backend) CreateSurface(w, h int) (scene.Surface, error) {
	if b.host == nil {
		return nil, errors.New("canvas backend has no host")
	}
	if w <= 0 || h <= 0 {
		return nil, errors.New("canvas has no size")
	}
	return &canvasSurface{host: b.host}, nil
}

// Resize implements scene.Backend. Ebiten resizes the screen image itself.
func (b *Backend) Resize(w, h int) {}

// Draw implements scene.Backend.
func (b *Backend) Draw(dl *scene.DrawList) {
	if b.released {
		return
	}
	b.flat.Build(dl)
}

// Release implements scene.Backend.
func (b *Backend) Release() {
	b.released = true
	b.flat = scene.Flat{}
}

// Frame returns the last recorded frame.
func (b *Backend) Frame() *scene.Flat {
	return &b.flat
}

// paint draws the last recorded frame onto screen.
func (b *Backend) paint(screen *ebiten.Image) {
	if b.released {
		return
	}
	screen.Fill(nrgba(b.flat.Background))
	for _, l := range b.flat.Lines {
		vector.StrokeLine(screen, l.X0, l.Y0, l.X1, l.Y1, lineWidth, nrgba(l.Color), true)
	}
	for _, p := range b.flat.Points {
		vector.DrawFilledCircle(screen, p.X, p.Y, p.Radius, nrgba(p.Color), true)
	}
}

// nrgba reinterprets a straight-alpha colour for APIs that read color.Color
// as premultiplied.
func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
