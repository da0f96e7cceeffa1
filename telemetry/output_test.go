package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/constellation/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Every method is nil-safe
	if err := om.WriteGraph(WindowStats{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("expected empty dir, got %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output: %v", err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	for i := int64(1); i <= 3; i++ {
		if err := om.WriteGraph(WindowStats{WindowEndTick: i * 10, Particles: 200, EdgesMean: 12}); err != nil {
			t.Fatalf("writing graph: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 30); err != nil {
		t.Fatalf("writing perf: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkLinkSurge, Tick: 30, Description: "surge"}); err != nil {
		t.Fatalf("writing bookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "graph.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,ticks,particles,edges_mean") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "30,0,200,12") {
		t.Errorf("unexpected last row %q", lines[3])
	}

	bm, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(bm)); got != "type,tick,description\nlink_surge,30,surge" {
		t.Errorf("unexpected bookmarks.csv %q", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); err != nil {
		t.Errorf("expected perf.csv: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected written config to reload: %v", err)
	}
}
