package spruce

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSignalsDefaults(t *testing.T) {
	s := NewSignals()
	snap := s.Snapshot()
	if snap.Hand != NeutralHand {
		t.Errorf("hand = %v, want %v", snap.Hand, NeutralHand)
	}
	if snap.Openness != 0 || snap.Gesture != GestureNone || snap.CameraActive {
		t.Errorf("unexpected defaults: %+v", snap)
	}
	if s.Phase() != PhaseTree {
		t.Errorf("phase = %v, want tree", s.Phase())
	}
}

func TestSignalsClampAtBoundary(t *testing.T) {
	s := NewSignals()

	s.SetOpenness(float32(math.NaN()))
	if s.Openness() != 0 {
		t.Errorf("NaN openness stored as %v", s.Openness())
	}
	s.SetOpenness(2)
	if s.Openness() != 1 {
		t.Errorf("openness = %v, want 1", s.Openness())
	}

	s.SetHandPosition(mgl32.Vec3{-1, float32(math.Inf(1)), float32(math.NaN())})
	if got := s.HandPosition(); got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("hand = %v, want (0, 1, 0)", got)
	}

	s.SetHandRotation(mgl32.Vec3{float32(math.Inf(-1)), 0.5, float32(math.NaN())})
	if got := s.HandRotation(); got != (mgl32.Vec3{0, 0.5, 0}) {
		t.Errorf("rotation = %v, want (0, 0.5, 0)", got)
	}
}

func TestSignalsResetGesture(t *testing.T) {
	s := NewSignals()
	s.SetGesture(GestureOpenPalm)
	s.SetOpenness(0.9)
	s.SetHandRotation(mgl32.Vec3{1, 2, 3})
	s.SetHandPosition(mgl32.Vec3{0.1, 0.2, 0.3})

	s.ResetGesture()
	snap := s.Snapshot()
	if snap.Gesture != GestureNone || snap.Openness != 0 || snap.Rotation != (mgl32.Vec3{}) {
		t.Errorf("not reset: %+v", snap)
	}
	if snap.Hand != (mgl32.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("hand = %v, want last value kept", snap.Hand)
	}
}

func TestSignalsConcurrentAccess(t *testing.T) {
	s := NewSignals()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			v := float32(i%100) / 100
			s.SetOpenness(v)
			s.SetHandPosition(mgl32.Vec3{v, v, v})
			s.SetGesture(Gesture(i % 3))
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			snap := s.Snapshot()
			if snap.Openness < 0 || snap.Openness > 1 {
				t.Errorf("torn openness %v", snap.Openness)
				return
			}
		}
	}()
	wg.Wait()
}

func TestPhaseAndGestureStrings(t *testing.T) {
	if PhaseCollapsing.String() != "collapsing" || Phase(9).String() != "unknown" {
		t.Error("phase strings")
	}
	if GestureOpenPalm.String() != "Open_Palm" || GestureClosedFist.String() != "Closed_Fist" {
		t.Error("gesture strings")
	}
	if CategoryOrnament.String() != "ornament" || categoryCount.String() != "unknown" {
		t.Error("category strings")
	}
}

func TestColorHelpers(t *testing.T) {
	c := colorFromHex("#FF8000")
	assertNear(t, "R", float64(c.R), 1, 1e-6)
	assertNear(t, "G", float64(c.G), 128.0/255, 1e-6)
	assertNear(t, "B", float64(c.B), 0, 1e-6)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("malformed hex did not panic")
			}
		}()
		colorFromHex("#GG0000")
	}()

	// Hue wraps: 1.3 turns is 0.3 turns.
	a, b := colorFromHSL(1.3, 0.8, 0.5), colorFromHSL(0.3, 0.8, 0.5)
	assertNear(t, "wrapped hue", float64(a.G), float64(b.G), 1e-5)

	mid := Color{0, 0, 0}.Lerp(Color{2, 4, 6}, 0.5)
	if mid != (Color{1, 2, 3}) {
		t.Errorf("Lerp = %v", mid)
	}
	if ColorWhite.Scale(3) != (Color{3, 3, 3}) {
		t.Error("Scale")
	}
}

func TestRangeRandom(t *testing.T) {
	rng := testRNG()
	r := Range{2, 4}
	for range 1000 {
		v := r.Random(rng)
		if v < 2 || v > 4 {
			t.Fatalf("Random = %v outside [2, 4]", v)
		}
	}
	if (Range{3, 3}).Random(rng) != 3 {
		t.Error("degenerate range")
	}
	assertNear(t, "Lerp", float64(r.Lerp(0.25)), 2.5, 1e-6)
}
