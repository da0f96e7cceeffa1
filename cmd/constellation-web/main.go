// Browser and desktop host built on ebiten. Builds for js/wasm:
//
//	GOOS=js GOARCH=wasm go build -o constellation.wasm ./cmd/constellation-web
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/constellation/canvas"
	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/input"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "", "Override mode: constellation | rings")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

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

	bus := input.NewBus()
	host := canvas.NewHost(cfg.Screen.Title, cfg.Screen.Width, cfg.Screen.Height, bus)
	e := engine.New(cfg, engine.Options{
		Backend:   host.Backend(),
		Container: host,
		Bus:       bus,
	})
	defer e.Dispose()

	step := func() bool {
		if !e.Step() {
			return false
		}
		e.RecordFrame()
		return true
	}
	if err := host.Run(step, cfg.Screen.TargetFPS); err != nil {
		slog.Error("host stopped", "error", err)
	}
}
