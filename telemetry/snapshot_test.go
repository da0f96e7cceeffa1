package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/field"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	particles := []field.Particle{
		{Position: mgl32.Vec3{1, -2, 3}, Velocity: mgl32.Vec3{0.001, 0.002, -0.003}},
		{Position: mgl32.Vec3{-5.5, 0, 4}, Velocity: mgl32.Vec3{0, -0.004, 0}},
	}
	snapshot := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   42,
		Mode:      "constellation",
		Tick:      1000,
		Range:     12,
		Particles: CaptureParticles(particles),
		Bookmark: &Bookmark{
			Type:        BookmarkLinkSurge,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_1000_link_surge.json") {
		t.Errorf("unexpected snapshot name %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.RNGSeed != 42 || loaded.Tick != 1000 || loaded.Mode != "constellation" {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkLinkSurge {
		t.Errorf("expected bookmark to survive, got %+v", loaded.Bookmark)
	}

	restored := loaded.FieldParticles()
	if len(restored) != len(particles) {
		t.Fatalf("expected %d particles, got %d", len(particles), len(restored))
	}
	for i := range particles {
		if restored[i] != particles[i] {
			t.Errorf("particle %d: expected %+v, got %+v", i, particles[i], restored[i])
		}
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown version")
	}
}

func TestSaveSnapshotPlainName(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 7}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "snapshot_7.json" {
		t.Errorf("expected snapshot_7.json, got %s", filepath.Base(path))
	}
}
