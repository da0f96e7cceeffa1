// Package config provides configuration loading and access for the background engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Mode selects which visual the engine runs. Fixed at construction.
type Mode string

const (
	ModeConstellation Mode = "constellation"
	ModeRings         Mode = "rings"
)

// Config holds all tuning parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Mode      Mode            `yaml:"mode"`
	Seed      int64           `yaml:"seed"`
	Field     FieldConfig     `yaml:"field"`
	Links     LinksConfig     `yaml:"links"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Camera    CameraConfig    `yaml:"camera"`
	Parallax  ParallaxConfig  `yaml:"parallax"`
	Rings     RingsConfig     `yaml:"rings"`
	Style     StyleConfig     `yaml:"style"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for windowed hosts.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// FieldConfig holds particle field parameters.
type FieldConfig struct {
	Count    int     `yaml:"count"`
	Range    float64 `yaml:"range"`     // Side of the bounding cube centred at origin
	MaxSpeed float64 `yaml:"max_speed"` // Width of the per-axis initial velocity interval
}

// LinksConfig holds proximity graph parameters.
type LinksConfig struct {
	Radius float64 `yaml:"radius"` // Connection threshold (strict)
}

// PointerConfig holds pointer tracking and repulsion parameters.
type PointerConfig struct {
	InfluenceRadius float64 `yaml:"influence_radius"`
	Push            float64 `yaml:"push"`        // Force per unit of penetration into the influence radius
	WorldScale      float64 `yaml:"world_scale"` // NDC -> world scale for the push point
	Smoothing       float64 `yaml:"smoothing"`   // Exponential smoothing factor, (0, 1]
	Epsilon         float64 `yaml:"epsilon"`     // Distances at or below this skip the push
}

// CameraConfig holds perspective camera parameters.
type CameraConfig struct {
	FOV      float64 `yaml:"fov"`      // Vertical field of view in degrees
	Distance float64 `yaml:"distance"` // 0 = fit to field
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	Fill     float64 `yaml:"fill"`
}

// ParallaxConfig holds scene root rotation parameters.
type ParallaxConfig struct {
	Strength float64 `yaml:"strength"` // Radians per unit of damped pointer offset
}

// RingsConfig holds parameters for the rings mode.
type RingsConfig struct {
	Count        int     `yaml:"count"`
	BaseRadius   float64 `yaml:"base_radius"`
	Spacing      float64 `yaml:"spacing"`
	Spin         float64 `yaml:"spin"` // Base angular velocity, radians per tick
	AmbientCount int     `yaml:"ambient_count"`
	Drift        float64 `yaml:"drift"` // Noise drift amplitude per tick
}

// StyleConfig holds colours as hex strings plus sizes and opacities.
type StyleConfig struct {
	Background   string   `yaml:"background"`
	Point        string   `yaml:"point"`
	Line         string   `yaml:"line"`
	PointSize    float64  `yaml:"point_size"`
	PointOpacity float64  `yaml:"point_opacity"`
	LineOpacity  float64  `yaml:"line_opacity"`
	RingPalette  []string `yaml:"ring_palette"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Window     int    `yaml:"window"`      // Ticks per graph stats window
	PerfWindow int    `yaml:"perf_window"` // Ticks averaged by the perf collector
	OutputDir  string `yaml:"output_dir"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HalfRange    float32
	LinkRadiusSq float32
	Background   color.RGBA
	Point        color.RGBA // Alpha from point_opacity
	Line         color.RGBA // Alpha from line_opacity
	RingPalette  []color.RGBA
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. Panics if they do not parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Refresh(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Refresh validates c and recomputes derived values. Call it after editing
// fields in place.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Validate checks ranges that the engine relies on.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeConstellation, ModeRings:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Mode)
	}
	if c.Field.Count < 0 {
		return fmt.Errorf("%w: field.count must be >= 0, got %d", ErrInvalid, c.Field.Count)
	}
	if c.Field.Range <= 0 {
		return fmt.Errorf("%w: field.range must be > 0, got %g", ErrInvalid, c.Field.Range)
	}
	if c.Field.MaxSpeed < 0 {
		return fmt.Errorf("%w: field.max_speed must be >= 0, got %g", ErrInvalid, c.Field.MaxSpeed)
	}
	if c.Links.Radius < 0 {
		return fmt.Errorf("%w: links.radius must be >= 0, got %g", ErrInvalid, c.Links.Radius)
	}
	if c.Pointer.Smoothing <= 0 || c.Pointer.Smoothing > 1 {
		return fmt.Errorf("%w: pointer.smoothing must be in (0, 1], got %g", ErrInvalid, c.Pointer.Smoothing)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera.fov must be in (0, 180), got %g", ErrInvalid, c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera near/far must satisfy 0 < near < far", ErrInvalid)
	}
	if c.Rings.Count < 0 || c.Rings.AmbientCount < 0 {
		return fmt.Errorf("%w: rings counts must be >= 0", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.HalfRange = float32(c.Field.Range / 2)
	c.Derived.LinkRadiusSq = float32(c.Links.Radius * c.Links.Radius)

	var err error
	if c.Derived.Background, err = parseColor(c.Style.Background, 1); err != nil {
		return err
	}
	if c.Derived.Point, err = parseColor(c.Style.Point, c.Style.PointOpacity); err != nil {
		return err
	}
	if c.Derived.Line, err = parseColor(c.Style.Line, c.Style.LineOpacity); err != nil {
		return err
	}

	c.Derived.RingPalette = c.Derived.RingPalette[:0]
	for _, hex := range c.Style.RingPalette {
		rgba, err := parseColor(hex, 1)
		if err != nil {
			return err
		}
		c.Derived.RingPalette = append(c.Derived.RingPalette, rgba)
	}
	if len(c.Derived.RingPalette) == 0 {
		c.Derived.RingPalette = append(c.Derived.RingPalette, c.Derived.Point)
	}
	return nil
}

func parseColor(hex string, opacity float64) (color.RGBA, error) {
	col, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: colour %q: %v", ErrInvalid, hex, err)
	}
	r, g, b := col.RGB255()
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	return color.RGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
