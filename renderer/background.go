package renderer

import (
	_ "embed"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/pointer"
)

//go:embed shaders/background.fs
var backgroundFS string

// BackgroundRenderer fills the window with a vignetted background and a faint
// halo that follows the damped pointer.
type BackgroundRenderer struct {
	shader        rl.Shader
	resolutionLoc int32
	baseColorLoc  int32
	glowColorLoc  int32
	focusLoc      int32

	initialized bool
}

// Init compiles the shader. Must be called after the window is created.
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")
	b.glowColorLoc = rl.GetShaderLocation(b.shader, "glowColor")
	b.focusLoc = rl.GetShaderLocation(b.shader, "focus")

	b.initialized = true
}

// Draw renders the background over the whole w x h window.
func (b *BackgroundRenderer) Draw(w, h int, base, glow color.RGBA, ptr pointer.Snapshot) {
	if !b.initialized {
		b.Init()
	}

	fx, fy := focus(ptr)

	rl.BeginShaderMode(b.shader)
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{float32(w), float32(h)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.baseColorLoc, unitRGB(base), rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.glowColorLoc, unitRGB(glow), rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.focusLoc, []float32{fx, fy}, rl.ShaderUniformVec2)

	// Draw fullscreen quad
	rl.DrawRectangle(0, 0, int32(w), int32(h), rl.White)

	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}

// focus maps the pointer to [0, 1] window coordinates with y up, the
// convention of gl_FragCoord. An idle pointer centres the halo.
func focus(ptr pointer.Snapshot) (float32, float32) {
	if !ptr.Active {
		return 0.5, 0.5
	}
	return (ptr.X + 1) / 2, (ptr.Y + 1) / 2
}

func unitRGB(c color.RGBA) []float32 {
	return []float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}
