// Interactive tuner: live preview of the background with sliders for the
// field, link and pointer parameters.
//
// Usage: go run ./cmd/tuner [-config path] [-out tuned.yaml]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/pointer"
	"github.com/pthm-cable/constellation/scene"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 700
	panelX       = previewSize + 20
	panelWidth   = windowWidth - panelX - 10
)

// slider binds one config value to a raygui slider bar.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(*config.Config) float32
	set      func(*config.Config, float32)
}

var sliders = []slider{
	{"Particles", 0, 600, "%.0f",
		func(c *config.Config) float32 { return float32(c.Field.Count) },
		func(c *config.Config, v float32) { c.Field.Count = int(v) }},
	{"Max speed", 0, 0.05, "%.4f",
		func(c *config.Config) float32 { return float32(c.Field.MaxSpeed) },
		func(c *config.Config, v float32) { c.Field.MaxSpeed = float64(v) }},
	{"Link radius", 0, 6, "%.2f",
		func(c *config.Config) float32 { return float32(c.Links.Radius) },
		func(c *config.Config, v float32) { c.Links.Radius = float64(v) }},
	{"Influence radius", 0, 6, "%.2f",
		func(c *config.Config) float32 { return float32(c.Pointer.InfluenceRadius) },
		func(c *config.Config, v float32) { c.Pointer.InfluenceRadius = float64(v) }},
	{"Push", 0, 0.1, "%.3f",
		func(c *config.Config) float32 { return float32(c.Pointer.Push) },
		func(c *config.Config, v float32) { c.Pointer.Push = float64(v) }},
	{"Smoothing", 0.01, 1, "%.2f",
		func(c *config.Config) float32 { return float32(c.Pointer.Smoothing) },
		func(c *config.Config, v float32) { c.Pointer.Smoothing = float64(v) }},
	{"Parallax", 0, 0.5, "%.2f",
		func(c *config.Config) float32 { return float32(c.Parallax.Strength) },
		func(c *config.Config, v float32) { c.Parallax.Strength = float64(v) }},
	{"Camera distance", 0, 30, "%.1f",
		func(c *config.Config) float32 { return float32(c.Camera.Distance) },
		func(c *config.Config, v float32) { c.Camera.Distance = float64(v) }},
	{"Point size", 0.02, 0.5, "%.2f",
		func(c *config.Config) float32 { return float32(c.Style.PointSize) },
		func(c *config.Config, v float32) { c.Style.PointSize = float64(v) }},
	{"Line opacity", 0, 1, "%.2f",
		func(c *config.Config) float32 { return float32(c.Style.LineOpacity) },
		func(c *config.Config, v float32) { c.Style.LineOpacity = float64(v) }},
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "tuned.yaml", "Where S writes the tuned config")
	seed := flag.Int64("seed", 12345, "RNG seed; fixed so rebuilds are comparable")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Constellation Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	p := &preview{bus: input.NewBus()}
	e := p.build(cfg, *seed)
	needsRebuild := false
	status := ""

	for !rl.WindowShouldClose() {
		if needsRebuild {
			if err := cfg.Refresh(); err != nil {
				status = err.Error()
			} else {
				e.Dispose()
				e = p.build(cfg, *seed)
				status = ""
			}
			needsRebuild = false
		}

		p.pollPointer()
		e.Step()
		e.RecordFrame()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		p.paint()

		y := float32(10)
		rl.DrawText("Constellation Parameters", panelX, int32(y), 20, rl.RayWhite)
		y += 35

		for _, s := range sliders {
			rl.DrawText(s.label, panelX, int32(y), 14, rl.LightGray)
			y += 18
			cur := s.get(cfg)
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: y, Width: panelWidth - 80, Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+panelWidth-70), int32(y+2), 16, rl.RayWhite)
			if next != cur {
				s.set(cfg, next)
				needsRebuild = true
			}
			y += 30
		}

		y += 10
		modeLabel := "Mode: " + string(cfg.Mode)
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 160, Height: 30}, modeLabel) {
			cfg.Mode = nextMode(cfg.Mode)
			needsRebuild = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 170, Y: y, Width: 120, Height: 30}, "Reset") {
			if fresh, err := config.Load(*configPath); err == nil {
				cfg = fresh
				needsRebuild = true
			}
		}
		y += 45

		rl.DrawText(fmt.Sprintf("Tick %d  Links %d  FPS %d", e.Tick(), len(e.Edges()), rl.GetFPS()),
			panelX, int32(y), 14, rl.Gray)
		y += 20
		if status != "" {
			rl.DrawText(status, panelX, int32(y), 12, rl.Red)
		}

		rl.DrawText("C copies YAML, S saves to "+*outPath, panelX, windowHeight-30, 12, rl.Gray)

		if rl.IsKeyPressed(rl.KeyC) {
			if data, err := yaml.Marshal(cfg); err == nil {
				rl.SetClipboardText(string(data))
			}
		}
		if rl.IsKeyPressed(rl.KeyS) {
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = err.Error()
			} else {
				status = "saved " + *outPath
				slog.Info("config saved", "path", *outPath)
			}
		}

		rl.EndDrawing()
	}
	e.Dispose()
}

func nextMode(m config.Mode) config.Mode {
	if m == config.ModeRings {
		return config.ModeConstellation
	}
	return config.ModeRings
}

// preview is the tuner's container and backend in one: the engine draws into
// a scene.Flat that the tuner paints into the left of its own window, so
// rebuilding the engine never touches the window.
type preview struct {
	bus          *input.Bus
	flat         scene.Flat
	surface      scene.Surface
	lastX, lastY float32
}

func (p *preview) build(cfg *config.Config, seed int64) *engine.Engine {
	return engine.New(cfg, engine.Options{
		Backend:   p,
		Container: p,
		Bus:       p.bus,
		Rand:      rand.New(rand.NewSource(seed)),
	})
}

type previewSurface struct{}

func (previewSurface) Size() (int, int) { return previewSize, previewSize }

func (p *preview) Viewport() (int, int)          { return previewSize, previewSize }
func (p *preview) AppendChild(s scene.Surface)   { p.surface = s }
func (p *preview) Contains(s scene.Surface) bool { return s != nil && p.surface == s }
func (p *preview) RemoveChild(s scene.Surface) {
	if p.surface == s {
		p.surface = nil
	}
}

func (p *preview) CreateSurface(w, h int) (scene.Surface, error) { return previewSurface{}, nil }
func (p *preview) Resize(w, h int)                               {}
func (p *preview) Draw(dl *scene.DrawList)                       { p.flat.Build(dl) }
func (p *preview) Release()                                      {}

// pollPointer forwards mouse motion inside the preview square.
func (p *preview) pollPointer() {
	m := rl.GetMousePosition()
	if m.X < 0 || m.X >= previewSize || m.Y < 0 || m.Y >= previewSize {
		return
	}
	if m.X == p.lastX && m.Y == p.lastY {
		return
	}
	p.lastX, p.lastY = m.X, m.Y
	p.bus.PushPointer(pointer.Normalize(m.X, m.Y, previewSize, previewSize))
}

func (p *preview) paint() {
	f := &p.flat
	bg := f.Background
	rl.DrawRectangle(0, 0, previewSize, previewSize, rl.Color{R: bg.R, G: bg.G, B: bg.B, A: 255})
	for _, l := range f.Lines {
		c := rl.Color{R: l.Color.R, G: l.Color.G, B: l.Color.B, A: l.Color.A}
		rl.DrawLineV(rl.Vector2{X: l.X0, Y: l.Y0}, rl.Vector2{X: l.X1, Y: l.Y1}, c)
	}
	for _, pt := range f.Points {
		c := rl.Color{R: pt.Color.R, G: pt.Color.G, B: pt.Color.B, A: pt.Color.A}
		rl.DrawCircleV(rl.Vector2{X: pt.X, Y: pt.Y}, pt.Radius, c)
	}
	rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)
}
