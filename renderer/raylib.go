package renderer

import (
	"context"
	"errors"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/pointer"
	"github.com/pthm-cable/constellation/scene"
)

// glowSize is the side of the point sprite texture in pixels.
const glowSize = 32

// RaylibHost is the desktop window as seen by the engine: a scene.Container
// before and after the window exists, and an engine.Clock that polls raylib
// input into the bus on every beat.
type RaylibHost struct {
	width, height int
	bus           *input.Bus
	surface       scene.Surface

	lastX, lastY float32
	// Key callbacks polled once per beat
	keys map[int32]func()
}

// NewRaylibHost creates a host for a window of the given initial size.
func NewRaylibHost(width, height int, bus *input.Bus) *RaylibHost {
	return &RaylibHost{width: width, height: height, bus: bus, lastX: -1, lastY: -1, keys: make(map[int32]func())}
}

// Viewport implements scene.Container.
func (h *RaylibHost) Viewport() (int, int) {
	if rl.IsWindowReady() {
		return rl.GetScreenWidth(), rl.GetScreenHeight()
	}
	return h.width, h.height
}

// AppendChild implements scene.Container.
func (h *RaylibHost) AppendChild(s scene.Surface) { h.surface = s }

// RemoveChild implements scene.Container.
func (h *RaylibHost) RemoveChild(s scene.Surface) {
	if h.surface == s {
		h.surface = nil
	}
}

// Contains implements scene.Container.
func (h *RaylibHost) Contains(s scene.Surface) bool { return s != nil && h.surface == s }

// OnKey registers fn to run when key is pressed.
func (h *RaylibHost) OnKey(key int32, fn func()) {
	h.keys[key] = fn
}

// Wait implements engine.Clock. Frame pacing comes from SetTargetFPS inside
// EndDrawing, so Wait only polls input and checks for window close.
func (h *RaylibHost) Wait(ctx context.Context) bool {
	if ctx.Err() != nil || h.surface == nil || rl.WindowShouldClose() {
		return false
	}
	h.poll()
	return true
}

// poll forwards pointer motion, window resizes and key presses.
func (h *RaylibHost) poll() {
	w, hgt := rl.GetScreenWidth(), rl.GetScreenHeight()
	if rl.IsWindowResized() {
		h.bus.PushResize(w, hgt)
	}

	mouse := rl.GetMousePosition()
	if mouse.X != h.lastX || mouse.Y != h.lastY {
		h.lastX, h.lastY = mouse.X, mouse.Y
		h.bus.PushPointer(pointer.Normalize(mouse.X, mouse.Y, float32(w), float32(hgt)))
	}

	for key, fn := range h.keys {
		if rl.IsKeyPressed(key) {
			fn()
		}
	}
}

type windowSurface struct{}

func (windowSurface) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// Raylib draws the scene in a raylib window: links and rings as 3D lines,
// points as additive glow billboards.
type Raylib struct {
	title     string
	targetFPS int

	glow       rl.Texture2D
	glowLoaded bool
	opened     bool

	cam3d   rl.Camera3D
	bg      BackgroundRenderer
	overlay func()
}

// NewRaylib creates a backend. The window opens in CreateSurface.
func NewRaylib(title string, targetFPS int) *Raylib {
	return &Raylib{title: title, targetFPS: targetFPS}
}

// SetOverlay registers a 2D pass drawn after the scene, before EndDrawing.
func (r *Raylib) SetOverlay(fn func()) {
	r.overlay = fn
}

// CreateSurface implements scene.Backend.
func (r *Raylib) CreateSurface(w, h int) (scene.Surface, error) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), r.title)
	if !rl.IsWindowReady() {
		return nil, errors.New("raylib window failed to open")
	}
	r.opened = true
	rl.SetTargetFPS(int32(r.targetFPS))

	// Soft radial sprite for points
	img := rl.GenImageGradientRadial(glowSize, glowSize, 0, rl.White, rl.Blank)
	r.glow = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(r.glow, rl.FilterBilinear)
	r.glowLoaded = true
	r.bg.Init()

	r.cam3d = rl.Camera3D{
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Projection: rl.CameraPerspective,
	}
	return windowSurface{}, nil
}

// Resize implements scene.Backend. The window already has its new size; the
// camera aspect follows GetScreenWidth/Height inside BeginMode3D.
func (r *Raylib) Resize(w, h int) {}

// Draw implements scene.Backend.
func (r *Raylib) Draw(dl *scene.DrawList) {
	if !r.opened {
		return
	}

	rl.BeginDrawing()
	rl.ClearBackground(dl.Style.Background)
	r.bg.Draw(rl.GetScreenWidth(), rl.GetScreenHeight(), dl.Style.Background, dl.Style.Point, dl.Pointer)

	if dl.Camera != nil {
		eye := dl.Camera.Position()
		r.cam3d.Position = rl.NewVector3(eye.X(), eye.Y(), eye.Z())
		r.cam3d.Fovy = dl.Camera.FOV

		rl.BeginMode3D(r.cam3d)
		rl.BeginBlendMode(rl.BlendAdditive)

		for k := 0; k+1 < len(dl.Lines)/3; k += 2 {
			a := dl.Transform(scene.Vertex(dl.Lines, k))
			b := dl.Transform(scene.Vertex(dl.Lines, k+1))
			rl.DrawLine3D(rl.NewVector3(a.X(), a.Y(), a.Z()), rl.NewVector3(b.X(), b.Y(), b.Z()), dl.Style.Line)
		}

		for _, ring := range dl.Rings {
			n := len(ring.Vertices) / 3
			for k := 0; k < n; k++ {
				a := dl.Transform(scene.Vertex(ring.Vertices, k))
				b := dl.Transform(scene.Vertex(ring.Vertices, (k+1)%n))
				rl.DrawLine3D(rl.NewVector3(a.X(), a.Y(), a.Z()), rl.NewVector3(b.X(), b.Y(), b.Z()), ring.Color)
			}
		}

		for k := 0; k < len(dl.Points)/3; k++ {
			p := dl.Transform(scene.Vertex(dl.Points, k))
			rl.DrawBillboard(r.cam3d, r.glow, rl.NewVector3(p.X(), p.Y(), p.Z()), dl.Style.PointSize, dl.Style.Point)
		}

		rl.EndBlendMode()
		rl.EndMode3D()
	}

	if r.overlay != nil {
		r.overlay()
	}
	rl.EndDrawing()
}

// Release implements scene.Backend.
func (r *Raylib) Release() {
	if r.glowLoaded {
		rl.UnloadTexture(r.glow)
		r.glowLoaded = false
	}
	r.bg.Unload()
	if r.opened {
		rl.CloseWindow()
		r.opened = false
	}
}
