package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/scene"
	"github.com/pthm-cable/constellation/telemetry"
)

type fakeSurface struct{}

func (fakeSurface) Size() (int, int) { return 640, 480 }

type fakeContainer struct {
	children []scene.Surface
}

func (c *fakeContainer) Viewport() (int, int)        { return 640, 480 }
func (c *fakeContainer) AppendChild(s scene.Surface) { c.children = append(c.children, s) }
func (c *fakeContainer) RemoveChild(s scene.Surface) { c.children = c.children[:0] }
func (c *fakeContainer) Contains(s scene.Surface) bool {
	return len(c.children) > 0
}

type countingBackend struct {
	fail     bool
	draws    int
	resizes  int
	released int
	points   int
	lines    int
	rings    int
}

func (b *countingBackend) CreateSurface(w, h int) (scene.Surface, error) {
	if b.fail {
		return nil, errors.New("no context")
	}
	return fakeSurface{}, nil
}
func (b *countingBackend) Resize(w, h int) { b.resizes++ }
func (b *countingBackend) Draw(dl *scene.DrawList) {
	b.draws++
	b.points = len(dl.Points) / 3
	b.lines = len(dl.Lines) / 6
	b.rings = len(dl.Rings)
}
func (b *countingBackend) Release() { b.released++ }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Field.Count = 40
	cfg.Rings.AmbientCount = 20
	cfg.Telemetry.Window = 5
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, backend *countingBackend) (*Engine, *fakeContainer) {
	t.Helper()
	c := &fakeContainer{}
	e := New(cfg, Options{
		Backend:   backend,
		Container: c,
		Rand:      rand.New(rand.NewSource(1)),
	})
	return e, c
}

func TestStepDrawsEveryFrame(t *testing.T) {
	backend := &countingBackend{}
	e, _ := newTestEngine(t, testConfig(t), backend)

	for i := 0; i < 3; i++ {
		if !e.Step() {
			t.Fatalf("step %d returned false", i)
		}
	}
	if backend.draws != 3 {
		t.Errorf("expected 3 draws, got %d", backend.draws)
	}
	if backend.points != 40 {
		t.Errorf("expected 40 points drawn, got %d", backend.points)
	}
	if backend.lines != len(e.Edges()) {
		t.Errorf("expected %d lines, got %d", len(e.Edges()), backend.lines)
	}
	if e.Tick() != 3 {
		t.Errorf("expected tick 3, got %d", e.Tick())
	}
}

func TestPointerEventVisibleNextFrame(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(t), &countingBackend{})

	e.Step()
	if e.Pointer().Active {
		t.Fatal("expected idle pointer before any event")
	}

	// Arrives mid-frame from the host
	e.Bus().PushPointer(0.5, -0.5)
	if e.Pointer().Active {
		t.Error("expected event not applied until the next frame")
	}

	e.Step()
	snap := e.Pointer()
	if !snap.Active {
		t.Fatal("expected pointer active on the next frame")
	}
	if snap.X != 0.5 || snap.Y != -0.5 {
		t.Errorf("expected first move seeded at (0.5, -0.5), got (%f, %f)", snap.X, snap.Y)
	}
}

func TestResizeEventReachesBackend(t *testing.T) {
	backend := &countingBackend{}
	e, _ := newTestEngine(t, testConfig(t), backend)

	e.Bus().PushResize(1024, 768)
	e.Bus().PushResize(1024, 768)
	e.Step()

	if backend.resizes != 1 {
		t.Errorf("expected one backend resize for repeated size, got %d", backend.resizes)
	}
	if w := e.Bridge().Camera().ViewportW; w != 1024 {
		t.Errorf("expected camera width 1024, got %f", w)
	}
}

func TestDisposeTeardown(t *testing.T) {
	backend := &countingBackend{}
	e, c := newTestEngine(t, testConfig(t), backend)
	e.Step()

	e.Dispose()
	e.Dispose()

	if backend.released != 1 {
		t.Errorf("expected one release, got %d", backend.released)
	}
	if len(c.children) != 0 {
		t.Errorf("expected surface removed, got %d children", len(c.children))
	}
	if e.Bus().Listeners() != 0 {
		t.Errorf("expected listeners removed, got %d", e.Bus().Listeners())
	}

	// A late frame callback does nothing
	draws := backend.draws
	if e.Step() {
		t.Error("expected Step to report stopped after Dispose")
	}
	if backend.draws != draws {
		t.Errorf("expected no draw after dispose, got %d more", backend.draws-draws)
	}
}

func TestDisposeFromListener(t *testing.T) {
	backend := &countingBackend{}
	e, _ := newTestEngine(t, testConfig(t), backend)
	e.Bus().OnResize(func(w, h int) { e.Dispose() })

	e.Bus().PushResize(10, 10)
	if e.Step() {
		t.Error("expected frame abandoned once disposed during event delivery")
	}
	if backend.draws != 0 {
		t.Errorf("expected no draw, got %d", backend.draws)
	}
}

func TestMountFailureKeepsSimulating(t *testing.T) {
	backend := &countingBackend{fail: true}
	e, c := newTestEngine(t, testConfig(t), backend)

	if e.Bridge().Mounted() {
		t.Fatal("expected bridge unmounted")
	}
	if len(c.children) != 0 {
		t.Errorf("expected nothing attached, got %d", len(c.children))
	}
	before := e.Field().Particles()[0].Position
	if !e.Step() {
		t.Fatal("expected step to run without a renderer")
	}
	if backend.draws != 0 {
		t.Errorf("expected no draws, got %d", backend.draws)
	}
	if e.Field().Particles()[0].Position == before {
		t.Error("expected particles to move")
	}
	e.Dispose()
	if backend.released != 1 {
		t.Errorf("expected partial mount released once, got %d", backend.released)
	}
}

func TestNoContainerIsNoOp(t *testing.T) {
	backend := &countingBackend{}
	e := New(testConfig(t), Options{Backend: backend, Rand: rand.New(rand.NewSource(1))})

	e.Step()
	e.Dispose()
	if backend.draws != 0 || backend.released != 0 {
		t.Errorf("expected backend untouched, got draws=%d released=%d", backend.draws, backend.released)
	}
}

func TestRingsMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeRings
	backend := &countingBackend{}
	e, _ := newTestEngine(t, cfg, backend)

	if e.Field() != nil || e.Rings() == nil {
		t.Fatal("expected ring field only")
	}
	e.Bus().PushPointer(0.2, 0.2)
	e.Step()

	if backend.rings != cfg.Rings.Count {
		t.Errorf("expected %d rings drawn, got %d", cfg.Rings.Count, backend.rings)
	}
	if backend.points != 20 {
		t.Errorf("expected 20 ambient points, got %d", backend.points)
	}
	if backend.lines != 0 {
		t.Errorf("expected no links in rings mode, got %d", backend.lines)
	}
}

func TestStatsCallback(t *testing.T) {
	var windows []telemetry.WindowStats
	e := New(testConfig(t), Options{
		Headless:      true,
		Rand:          rand.New(rand.NewSource(2)),
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for i := 0; i < 12; i++ {
		e.Step()
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows in 12 ticks, got %d", len(windows))
	}
	if windows[0].Ticks != 5 || windows[0].Particles != 40 {
		t.Errorf("unexpected first window %+v", windows[0])
	}
	if windows[1].WindowStartTick != 5 || windows[1].WindowEndTick != 10 {
		t.Errorf("expected second window [5, 10], got [%d, %d]", windows[1].WindowStartTick, windows[1].WindowEndTick)
	}
}

func TestRingsModeSkipsGraphStats(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeRings
	var windows []telemetry.WindowStats
	e := New(cfg, Options{
		Headless:      true,
		Rand:          rand.New(rand.NewSource(2)),
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for i := 0; i < 12; i++ {
		if !e.Step() {
			t.Fatalf("step %d stopped early", i)
		}
	}
	if len(windows) != 0 {
		t.Errorf("expected no graph windows in rings mode, got %d", len(windows))
	}
}

type countdownClock struct{ beats int }

func (c *countdownClock) Wait(ctx context.Context) bool {
	if ctx.Err() != nil || c.beats == 0 {
		return false
	}
	c.beats--
	return true
}

func TestRunUntilHostGone(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(t), &countingBackend{})

	if err := e.Run(context.Background(), &countdownClock{beats: 4}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if e.Tick() != 4 {
		t.Errorf("expected 4 ticks, got %d", e.Tick())
	}
}

func TestRunCancelled(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(t), &countingBackend{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.Run(ctx, FreeClock{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if e.Tick() != 0 {
		t.Errorf("expected no ticks, got %d", e.Tick())
	}
}

func TestRunStopsAfterDispose(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(t), &countingBackend{})
	e.Bus().OnPointerMove(func(x, y float32) { e.Dispose() })
	e.Bus().PushPointer(0, 0)

	if err := e.Run(context.Background(), FreeClock{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if !e.Disposed() {
		t.Error("expected engine disposed")
	}
}

func TestTickerClockCancel(t *testing.T) {
	c := NewTickerClock(1000)
	defer c.Stop()

	if !c.Wait(context.Background()) {
		t.Error("expected a beat")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if c.Wait(ctx) {
		t.Error("expected cancelled wait to return false")
	}
}

func TestSnapshotRestore(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, Options{Headless: true, Rand: rand.New(rand.NewSource(3)), Seed: 3})
	for i := 0; i < 10; i++ {
		a.Step()
	}

	path, err := a.SaveSnapshot(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("saving snapshot: %v", err)
	}
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap.RNGSeed != 3 || snap.Tick != 10 {
		t.Errorf("expected seed 3 at tick 10, got seed %d at tick %d", snap.RNGSeed, snap.Tick)
	}

	b := New(cfg, Options{Headless: true, Rand: rand.New(rand.NewSource(99)), Restore: snap})
	if b.Tick() != 10 {
		t.Errorf("expected restored tick 10, got %d", b.Tick())
	}

	// Integration is deterministic, so both fields stay in lockstep
	a.Step()
	b.Step()
	pa, pb := a.Field().Particles(), b.Field().Particles()
	if len(pa) != len(pb) {
		t.Fatalf("expected %d particles, got %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d diverged: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}

func TestRingsSnapshotHasNoParticles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mode = config.ModeRings
	e := New(cfg, Options{Headless: true, Rand: rand.New(rand.NewSource(4))})
	e.Step()

	s := e.Snapshot(nil)
	if s.Mode != "rings" || len(s.Particles) != 0 {
		t.Errorf("expected empty rings snapshot, got mode %s with %d particles", s.Mode, len(s.Particles))
	}
}
