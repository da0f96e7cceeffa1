package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/telemetry"
	"github.com/pthm-cable/constellation/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	mode := flag.String("mode", "", "Override mode: constellation | rings")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	restore := flag.String("restore", "", "Start from a saved snapshot")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *mode != "" {
		cfg.Mode = config.Mode(*mode)
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid mode", "error", err)
			os.Exit(1)
		}
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	dir := *outputDir
	if dir == "" {
		dir = cfg.Telemetry.OutputDir
	}
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	opts := engine.Options{
		Headless:      *headless,
		Rand:          rand.New(rand.NewSource(rngSeed)),
		Seed:          rngSeed,
		OutputManager: out,
		LogStats:      *logStats,
		SnapshotDir:   *snapshotDir,
	}
	if *restore != "" {
		snap, err := telemetry.LoadSnapshot(*restore)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		opts.Restore = snap
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		runHeadless(ctx, cfg, opts, rngSeed, *maxTicks)
		return
	}
	runWindow(ctx, cfg, opts, *maxTicks)
}

// runHeadless steps the simulation as fast as possible with no renderer.
func runHeadless(ctx context.Context, cfg *config.Config, opts engine.Options, seed int64, maxTicks int) {
	e := engine.New(cfg, opts)
	defer e.Dispose()
	if opts.SnapshotDir != "" {
		defer func() {
			if _, err := e.SaveSnapshot(opts.SnapshotDir, nil); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			}
		}()
	}

	slog.Info("starting headless simulation",
		"seed", seed,
		"mode", cfg.Mode,
		"max_ticks", maxTicks,
	)

	for ctx.Err() == nil && e.Step() {
		e.RecordFrame()
		if maxTicks > 0 && int(e.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", e.Tick())
			return
		}
	}
}

// runWindow opens a raylib window and runs until it is closed.
func runWindow(ctx context.Context, cfg *config.Config, opts engine.Options, maxTicks int) {
	bus := input.NewBus()
	host := renderer.NewRaylibHost(cfg.Screen.Width, cfg.Screen.Height, bus)
	backend := renderer.NewRaylib(cfg.Screen.Title, cfg.Screen.TargetFPS)

	opts.Bus = bus
	opts.Backend = backend
	opts.Container = host

	var e *engine.Engine
	hud := ui.NewHUD(ui.AnchorTopLeft)
	backend.SetOverlay(func() {
		if e == nil {
			return
		}
		hud.Draw(ui.HUDData{
			Title:     cfg.Screen.Title,
			Mode:      string(e.Mode()),
			Tick:      e.Tick(),
			Particles: e.ParticleCount(),
			Edges:     len(e.Edges()),
			Pointer:   e.Pointer(),
			Perf:      e.PerfStats(),
			Palette:   cfg.Derived.RingPalette,
		})
	})

	e = engine.New(cfg, opts)
	defer e.Dispose()

	host.OnKey(rl.KeyF1, func() { hud.Toggle() })
	host.OnKey(rl.KeyQ, e.Stop)
	if opts.SnapshotDir != "" {
		host.OnKey(rl.KeyF5, func() {
			if _, err := e.SaveSnapshot(opts.SnapshotDir, nil); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			}
		})
	}

	var clock engine.Clock = host
	if maxTicks > 0 {
		clock = tickLimit{clock: host, e: e, max: int64(maxTicks)}
	}

	if err := e.Run(ctx, clock); err != nil {
		slog.Info("run cancelled", "reason", err)
	}
}

// tickLimit ends a run once the engine reaches max ticks.
type tickLimit struct {
	clock engine.Clock
	e     *engine.Engine
	max   int64
}

func (t tickLimit) Wait(ctx context.Context) bool {
	if t.e.Tick() >= t.max {
		slog.Info("max ticks reached", "tick", t.e.Tick())
		return false
	}
	return t.clock.Wait(ctx)
}
