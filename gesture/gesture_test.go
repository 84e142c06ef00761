package gesture

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/spruce"
)

func assertNear(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}

// --- Measure ---

func TestMeasureSyntheticOpenness(t *testing.T) {
	for _, want := range []float64{0, 0.25, 0.5, 0.9, 1} {
		h := syntheticHand(0.4, 0.6, want)
		r := Measure(&h)
		assertNear(t, "openness", float64(r.Openness), want, 1e-5)
		assertNear(t, "x", float64(r.Position[0]), 0.4, 1e-6)
		assertNear(t, "y", float64(r.Position[1]), 0.6, 1e-6)
	}
}

func TestMeasureDepthFromHandSize(t *testing.T) {
	var h Hand
	h[Wrist] = Landmark{X: 0.5, Y: 0.9}
	h[MiddleTip] = Landmark{X: 0.5, Y: 0.6} // 0.3 away
	r := Measure(&h)
	assertNear(t, "z", float64(r.Position[2]), 0.5, 1e-6)

	h[MiddleTip] = Landmark{X: 0.5, Y: 0.85}
	if z := Measure(&h).Position[2]; z != 0 {
		t.Errorf("small hand z = %v, want 0", z)
	}
}

func TestMeasureRotation(t *testing.T) {
	var h Hand
	h[IndexMCP] = Landmark{X: 0.4, Y: 0.5, Z: 0.1}
	h[PinkyMCP] = Landmark{X: 0.5, Y: 0.6, Z: 0.2}
	h[Wrist] = Landmark{Z: 0}
	h[MiddleMCP] = Landmark{X: 0.1, Z: -0.1}
	r := Measure(&h)
	assertNear(t, "pitch", float64(r.Rotation[0]), -0.3, 1e-6)
	assertNear(t, "yaw", float64(r.Rotation[1]), 0.3, 1e-6)
	assertNear(t, "roll", float64(r.Rotation[2]), -math.Pi/4, 1e-6)
}

func TestMeasureDegenerateHand(t *testing.T) {
	var h Hand
	r := Measure(&h)
	if r.Openness != 0 || r.Gesture != spruce.GestureClosedFist {
		t.Errorf("degenerate reading = %+v", r)
	}
	nan := float32(math.NaN())
	h[MiddleMCP] = Landmark{X: nan, Y: nan, Z: nan}
	r = Measure(&h)
	for _, v := range []float32{r.Openness, r.Position[0], r.Rotation[0], r.Rotation[1], r.Rotation[2]} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite reading %+v", r)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		openness float32
		want     spruce.Gesture
	}{
		{0, spruce.GestureClosedFist},
		{0.19, spruce.GestureClosedFist},
		{0.2, spruce.GestureNone},
		{0.5, spruce.GestureNone},
		{0.8, spruce.GestureNone},
		{0.81, spruce.GestureOpenPalm},
	}
	for _, tc := range tests {
		if got := Classify(tc.openness); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.openness, got, tc.want)
		}
	}
}

func TestPointerSourceMirrorsCursor(t *testing.T) {
	p := NewPointerSource()
	p.SetCursor(0.2, 0.3)
	p.SetOpenness(2)
	h, ok, err := p.Detect(context.Background())
	if err != nil || !ok {
		t.Fatalf("Detect = %v, %v", ok, err)
	}
	r := Measure(&h)
	assertNear(t, "x", float64(r.Position[0]), 0.8, 1e-6)
	assertNear(t, "openness", float64(r.Openness), 1, 1e-5)
	if r.Gesture != spruce.GestureOpenPalm {
		t.Errorf("gesture = %v", r.Gesture)
	}

	p.SetVisible(false)
	if _, ok, _ := p.Detect(context.Background()); ok {
		t.Error("hidden pointer reported a hand")
	}
}

// --- Tracker ---

type scriptedSource struct {
	mu      sync.Mutex
	hand    Hand
	ok      bool
	err     error
	openErr error
	opened  int
	closed  int
	detects int
}

func (s *scriptedSource) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened++
	return nil
}

func (s *scriptedSource) Detect(context.Context) (Hand, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detects++
	return s.hand, s.ok, s.err
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *scriptedSource) set(h Hand, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hand, s.ok, s.err = h, ok, err
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTrackerPublishesReadings(t *testing.T) {
	sig := spruce.NewSignals()
	src := &scriptedSource{}
	src.set(syntheticHand(0.3, 0.4, 1), true, nil)
	tr := NewTracker(sig, src, time.Millisecond)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer tr.Stop()
	if !sig.CameraActive() {
		t.Error("camera flag not set")
	}
	waitFor(t, "open palm", func() bool { return sig.Gesture() == spruce.GestureOpenPalm })
	assertNear(t, "openness", float64(sig.Openness()), 1, 1e-5)
	assertNear(t, "x", float64(sig.HandPosition()[0]), 0.3, 1e-6)
	if h, ok := tr.LastHand(); !ok || h[Wrist] != src.hand[Wrist] {
		t.Errorf("LastHand = %v, %v", h[Wrist], ok)
	}

	// Losing the hand drops the gesture but keeps the last position.
	src.set(Hand{}, false, nil)
	waitFor(t, "no gesture", func() bool { return sig.Gesture() == spruce.GestureNone })
	assertNear(t, "x after loss", float64(sig.HandPosition()[0]), 0.3, 1e-6)
	waitFor(t, "hand cleared", func() bool { _, ok := tr.LastHand(); return !ok })
}

func TestTrackerStopResetsSignals(t *testing.T) {
	sig := spruce.NewSignals()
	src := &scriptedSource{}
	src.set(syntheticHand(0.5, 0.5, 1), true, nil)
	tr := NewTracker(sig, src, time.Millisecond)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "reading", func() bool { return sig.Openness() > 0.9 })

	tr.Stop()
	snap := sig.Snapshot()
	if snap.CameraActive || snap.Openness != 0 || snap.Gesture != spruce.GestureNone || snap.Rotation != (mgl32.Vec3{}) {
		t.Errorf("signals not neutral after Stop: %+v", snap)
	}
	if tr.Running() {
		t.Error("tracker still running")
	}
	if src.closed != 1 {
		t.Errorf("source closed %d times, want 1", src.closed)
	}
	tr.Stop() // no-op
}

func TestTrackerStartTwice(t *testing.T) {
	tr := NewTracker(spruce.NewSignals(), &scriptedSource{}, time.Millisecond)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer tr.Stop()
	if err := tr.Start(context.Background()); !errors.Is(err, ErrTrackerRunning) {
		t.Errorf("err = %v, want ErrTrackerRunning", err)
	}
}

func TestTrackerOpenFailure(t *testing.T) {
	sig := spruce.NewSignals()
	boom := errors.New("no camera")
	tr := NewTracker(sig, &scriptedSource{openErr: boom}, 0)
	err := tr.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
	if sig.CameraActive() || tr.Running() {
		t.Error("tracker active after failed open")
	}
}

func TestTrackerDetectErrorDegrades(t *testing.T) {
	sig := spruce.NewSignals()
	cfg := spruce.DefaultConfig()
	cfg.Counts = spruce.Counts{Orb: 40, Star: 10, Gift: 5, Candy: 5, Ornament: 4, Ribbon: 8}
	s, err := spruce.NewSculpture(cfg, sig, nil)
	if err != nil {
		t.Fatal(err)
	}
	frame := 0
	run := func(n int) {
		for range n {
			s.Update(float64(frame)/60, mgl32.Vec2{})
			frame++
		}
	}

	hand := syntheticHand(0.5, 0.5, 1)
	hand[PinkyMCP].Z = 0.1 // yaw 0.3
	src := &scriptedSource{}
	src.set(hand, true, nil)
	tr := NewTracker(sig, src, time.Millisecond)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer tr.Stop()
	waitFor(t, "open palm", func() bool {
		return sig.Gesture() == spruce.GestureOpenPalm && sig.HandRotation()[1] != 0
	})
	run(300)
	if s.Phase() != spruce.PhaseNebula {
		t.Fatalf("phase = %v with an open hand, want nebula", s.Phase())
	}

	src.set(Hand{}, false, errors.New("model crashed"))
	waitFor(t, "neutral signals", func() bool {
		return sig.Gesture() == spruce.GestureNone && sig.Openness() == 0 &&
			sig.HandRotation() == (mgl32.Vec3{})
	})
	if !tr.Running() || !sig.CameraActive() {
		t.Error("detect errors should not stop the loop")
	}
	if _, ok := tr.LastHand(); ok {
		t.Error("LastHand still reported after detect failure")
	}

	run(300)
	if s.Phase() != spruce.PhaseTree {
		t.Errorf("phase = %v, t = %v after detect failure, want tree", s.Phase(), s.T())
	}
}

func TestTrackerContextCancel(t *testing.T) {
	sig := spruce.NewSignals()
	tr := NewTracker(sig, &scriptedSource{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	if err := tr.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	waitFor(t, "loop exit", func() bool { return !tr.Running() })
	if sig.CameraActive() {
		t.Error("camera flag still set after cancel")
	}
	// Restart after a cancelled run.
	if err := tr.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !tr.Running() {
		t.Error("Toggle did not start")
	}
	if err := tr.Toggle(context.Background()); err != nil || tr.Running() {
		t.Errorf("Toggle did not stop: %v", err)
	}
}
