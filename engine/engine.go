// Package engine runs the per-frame pipeline: pointer smoothing, field
// integration, proximity graph rebuild and rendering, in that order.
package engine

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/graph"
	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/pointer"
	"github.com/pthm-cable/constellation/scene"
	"github.com/pthm-cable/constellation/telemetry"
)

// Options holds host collaborators for engine construction.
type Options struct {
	// Backend and Container are handed to the scene bridge. Either may be nil,
	// in which case the engine simulates without drawing.
	Backend   scene.Backend
	Container scene.Container

	// Headless skips mounting entirely.
	Headless bool

	// Bus delivers host events. A private bus is created when nil.
	Bus *input.Bus

	// Rand overrides the seed from config. Seed is recorded in snapshots
	// when Rand is set.
	Rand *rand.Rand
	Seed int64

	// Restore starts a constellation field from saved particle state.
	Restore *telemetry.Snapshot

	// SnapshotDir receives a field snapshot whenever a bookmark fires.
	SnapshotDir string

	OutputManager *telemetry.OutputManager
	LogStats      bool
	StatsCallback func(telemetry.WindowStats)
}

// Engine holds the complete background state. All methods belong to the
// frame goroutine except where noted.
type Engine struct {
	cfg  *config.Config
	mode config.Mode

	tracker *pointer.Tracker
	field   *field.Field
	builder *graph.Builder
	rings   *field.RingField
	bridge  *scene.Bridge

	bus      *input.Bus
	removers []func()

	// Per-frame buffers reused across ticks
	positions  []float32
	ringStates []field.RingState
	edges      []graph.Edge
	lastSnap   pointer.Snapshot

	seed     int64
	tick     int64
	stopped  bool
	disposed bool

	perfCollector  *telemetry.PerfCollector
	graphCollector *telemetry.GraphCollector
	bookmarks      *telemetry.BookmarkDetector
	snapshotDir    string
	outputManager  *telemetry.OutputManager
	logStats       bool
	statsCallback  func(telemetry.WindowStats)
}

// New creates an engine for cfg and mounts it into opts.Container. A failed
// mount is logged and leaves the engine running without a renderer.
func New(cfg *config.Config, opts Options) *Engine {
	rng, seed := opts.Rand, opts.Seed
	if rng == nil {
		seed = cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	bus := opts.Bus
	if bus == nil {
		bus = input.NewBus()
	}

	e := &Engine{
		cfg:            cfg,
		mode:           cfg.Mode,
		tracker:        pointer.NewTracker(float32(cfg.Pointer.Smoothing)),
		bus:            bus,
		lastSnap:       pointer.Idle,
		seed:           seed,
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		graphCollector: telemetry.NewGraphCollector(cfg.Telemetry.Window),
		bookmarks:      telemetry.NewBookmarkDetector(8),
		snapshotDir:    opts.SnapshotDir,
		outputManager:  opts.OutputManager,
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
	}

	switch e.mode {
	case config.ModeRings:
		e.rings = field.NewRings(field.RingParamsFromConfig(cfg), cfg.Derived.RingPalette, rng)
	default:
		e.field = e.newField(cfg, rng, opts.Restore)
		e.builder = graph.NewBuilder(float32(cfg.Links.Radius))
	}

	e.bridge = scene.NewBridge(opts.Backend, scene.OptionsFromConfig(cfg))
	if !opts.Headless {
		if err := e.bridge.Mount(opts.Container); err != nil {
			slog.Warn("renderer unavailable, continuing without output", "error", err)
		}
	}

	e.removers = append(e.removers,
		bus.OnPointerMove(e.tracker.OnPointerMove),
		bus.OnResize(e.bridge.Resize),
	)

	slog.Info("engine started",
		"mode", e.mode,
		"particles", e.ParticleCount(),
		"mounted", e.bridge.Mounted(),
	)
	return e
}

// Step runs one frame. It returns false, doing nothing, once the engine is
// stopped or disposed.
func (e *Engine) Step() bool {
	if e.stopped || e.disposed {
		return false
	}

	e.perfCollector.StartTick()

	// Events that arrived since the last frame
	e.perfCollector.StartPhase(telemetry.PhaseInput)
	e.bus.Flush()
	if e.stopped || e.disposed {
		return false
	}

	e.perfCollector.StartPhase(telemetry.PhasePointer)
	snap := e.tracker.Tick()
	e.lastSnap = snap

	e.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	if e.rings != nil {
		e.rings.Integrate(snap)
	} else {
		e.field.Integrate(snap)
	}

	e.perfCollector.StartPhase(telemetry.PhaseEdges)
	if e.builder != nil {
		e.edges = e.builder.Build(e.field.Particles())
	}

	e.perfCollector.StartPhase(telemetry.PhaseRender)
	e.bridge.RenderFrame(e.frame(snap))

	e.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	e.tick++
	if e.builder != nil {
		e.graphCollector.Record(e.ParticleCount(), e.edges)
	}
	e.flushTelemetry()

	e.perfCollector.EndTick()
	return true
}

// frame packs the current state for the bridge.
func (e *Engine) frame(snap pointer.Snapshot) scene.Frame {
	if e.rings != nil {
		e.positions = e.rings.Positions(e.positions)
		e.ringStates = e.rings.Rings(e.ringStates)
		return scene.Frame{Positions: e.positions, Rings: e.ringStates, Pointer: snap}
	}
	e.positions = e.field.Positions(e.positions)
	return scene.Frame{Positions: e.positions, Edges: e.edges, Pointer: snap}
}

// Stop ends the loop without releasing resources. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.stopped = true
}

// Dispose stops the loop, removes event listeners, then releases the
// renderer. It is idempotent.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.stopped = true
	for _, remove := range e.removers {
		remove()
	}
	e.removers = nil
	e.bridge.Dispose()
	e.disposed = true

	slog.Info("engine disposed", "ticks", e.tick)
}

// Bus returns the event bus. Hosts may push to it from any goroutine.
func (e *Engine) Bus() *input.Bus {
	return e.bus
}

// Bridge returns the scene bridge.
func (e *Engine) Bridge() *scene.Bridge {
	return e.bridge
}

// Mode returns the construction-time mode.
func (e *Engine) Mode() config.Mode {
	return e.mode
}

// Tick returns the number of completed frames.
func (e *Engine) Tick() int64 {
	return e.tick
}

// Disposed reports whether Dispose has run.
func (e *Engine) Disposed() bool {
	return e.disposed
}

// Pointer returns the snapshot used by the last frame.
func (e *Engine) Pointer() pointer.Snapshot {
	return e.lastSnap
}

// Edges returns the edge list of the last frame. Empty in rings mode.
func (e *Engine) Edges() []graph.Edge {
	return e.edges
}

// Field returns the constellation field, or nil in rings mode.
func (e *Engine) Field() *field.Field {
	return e.field
}

// Rings returns the ring field, or nil in constellation mode.
func (e *Engine) Rings() *field.RingField {
	return e.rings
}

// ParticleCount returns the number of drawn points.
func (e *Engine) ParticleCount() int {
	if e.rings != nil {
		return e.cfg.Rings.AmbientCount
	}
	return e.field.Len()
}

// PerfStats returns timing over the perf window.
func (e *Engine) PerfStats() telemetry.PerfStats {
	return e.perfCollector.Stats()
}

// RecordFrame marks a presented frame for FPS accounting.
func (e *Engine) RecordFrame() {
	e.perfCollector.RecordFrame()
}
