// Terminal host: renders the background into the current terminal with tcell.
//
// Usage: go run ./cmd/constellation-term [-config path] [-mode rings]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/input"
	"github.com/pthm-cable/constellation/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "", "Override mode: constellation | rings")
	fps := flag.Int("fps", 30, "Frames per second")
	logFile := flag.String("log", "", "Write JSON logs to this file (default: discard)")
	flag.Parse()

	// stdout belongs to the screen; logs go to a file or nowhere
	logOut := os.Stderr
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else if devNull, err := os.Open(os.DevNull); err == nil {
		logOut = devNull
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

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

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to create screen", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to init screen", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	bus := input.NewBus()
	host := terminal.NewTerminalHost(screen)
	e := engine.New(cfg, engine.Options{
		Backend:   terminal.NewTerminal(screen),
		Container: host,
		Bus:       bus,
	})

	go host.Pump(ctx, bus, cancel)

	clock := engine.NewTickerClock(*fps)
	defer clock.Stop()

	if err := e.Run(ctx, clock); err != nil && err != context.Canceled {
		slog.Error("engine stopped", "error", err)
	}
	// Dispose releases the screen, which also unblocks Pump
	e.Dispose()
	slog.Info("terminal host exited", "ticks", e.Tick())
}
