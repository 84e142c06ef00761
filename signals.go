package spruce

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Signal is one sampled view of the interaction input.
type Signal struct {
	// Openness is 0 for a closed fist and 1 for an open palm.
	Openness float32
	// Hand is the normalized hand position; z is a depth proxy. All in [0, 1].
	Hand mgl32.Vec3
	// Rotation is the hand orientation as (pitch, yaw, roll) in radians.
	Rotation mgl32.Vec3
	Gesture  Gesture
	// CameraActive reports whether live tracking is feeding the signal.
	CameraActive bool
}

// NeutralHand is the resting hand position published before any detection.
var NeutralHand = mgl32.Vec3{0.5, 0.5, 0.2}

// Signals is the process-wide shared state between the input adapter, the
// UI and the morph engine. Every field is individually atomic with
// last-writer-wins semantics; there is no cross-field transaction, so a
// reader may observe a position from one sample and a rotation from the next.
type Signals struct {
	phase        atomic.Uint32
	gesture      atomic.Uint32
	cameraActive atomic.Bool
	openness     atomic.Uint32
	hand         [3]atomic.Uint32
	rotation     [3]atomic.Uint32
}

// NewSignals returns a store holding the neutral defaults.
func NewSignals() *Signals {
	s := &Signals{}
	s.SetHandPosition(NeutralHand)
	return s
}

func storeFloat(dst *atomic.Uint32, v float32) { dst.Store(math.Float32bits(v)) }
func loadFloat(src *atomic.Uint32) float32     { return math.Float32frombits(src.Load()) }

// Phase returns the last published phase label.
func (s *Signals) Phase() Phase { return Phase(s.phase.Load()) }

// SetPhase publishes the phase label.
func (s *Signals) SetPhase(p Phase) { s.phase.Store(uint32(p)) }

// Gesture returns the last discrete gesture.
func (s *Signals) Gesture() Gesture { return Gesture(s.gesture.Load()) }

// SetGesture publishes a discrete gesture.
func (s *Signals) SetGesture(g Gesture) { s.gesture.Store(uint32(g)) }

// CameraActive reports whether live tracking is running.
func (s *Signals) CameraActive() bool { return s.cameraActive.Load() }

// SetCameraActive publishes the tracking flag.
func (s *Signals) SetCameraActive(active bool) { s.cameraActive.Store(active) }

// Openness returns the last openness sample.
func (s *Signals) Openness() float32 { return loadFloat(&s.openness) }

// SetOpenness publishes an openness sample, clamped to [0, 1]. NaN is
// published as 0.
func (s *Signals) SetOpenness(v float32) {
	storeFloat(&s.openness, sanitizeUnit(v))
}

// HandPosition returns the last normalized hand position.
func (s *Signals) HandPosition() mgl32.Vec3 {
	return mgl32.Vec3{loadFloat(&s.hand[0]), loadFloat(&s.hand[1]), loadFloat(&s.hand[2])}
}

// SetHandPosition publishes a normalized hand position. Each axis is
// clamped to [0, 1].
func (s *Signals) SetHandPosition(p mgl32.Vec3) {
	for i := range s.hand {
		storeFloat(&s.hand[i], sanitizeUnit(p[i]))
	}
}

// HandRotation returns the last (pitch, yaw, roll).
func (s *Signals) HandRotation() mgl32.Vec3 {
	return mgl32.Vec3{loadFloat(&s.rotation[0]), loadFloat(&s.rotation[1]), loadFloat(&s.rotation[2])}
}

// SetHandRotation publishes (pitch, yaw, roll). Non-finite angles are
// published as 0.
func (s *Signals) SetHandRotation(r mgl32.Vec3) {
	for i := range s.rotation {
		v := r[i]
		if isNaN32(v) || math.IsInf(float64(v), 0) {
			v = 0
		}
		storeFloat(&s.rotation[i], v)
	}
}

// ResetGesture returns the gesture-derived signals to neutral: zero
// openness, identity rotation and no gesture. The hand position keeps its
// last value; it only matters while tracking is active.
func (s *Signals) ResetGesture() {
	s.SetGesture(GestureNone)
	s.SetOpenness(0)
	s.SetHandRotation(mgl32.Vec3{})
}

// Snapshot samples every field. The read is not atomic across fields.
func (s *Signals) Snapshot() Signal {
	return Signal{
		Openness:     s.Openness(),
		Hand:         s.HandPosition(),
		Rotation:     s.HandRotation(),
		Gesture:      s.Gesture(),
		CameraActive: s.CameraActive(),
	}
}

func isNaN32(v float32) bool { return v != v }

func sanitizeUnit(v float32) float32 {
	if isNaN32(v) {
		return 0
	}
	return clamp01(v)
}
