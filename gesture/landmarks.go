// Package gesture turns hand landmarks into the interaction signals that
// drive a spruce.Sculpture: openness, position, rotation and a discrete
// gesture. A Tracker polls any LandmarkSource on its own goroutine; a
// PointerSource stands in for a camera by synthesizing a hand from the
// cursor.
package gesture

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/spruce"
)

// Landmark indices of the 21-point hand model.
const (
	Wrist       = 0
	ThumbTip    = 4
	IndexMCP    = 5
	IndexTip    = 8
	MiddleMCP   = 9
	MiddleTip   = 12
	RingTip     = 16
	PinkyMCP    = 17
	PinkyTip    = 20
	NumLandmark = 21
)

// Landmark is one detected keypoint. X and Y are normalized image
// coordinates in [0, 1] (y down); Z is the model's relative depth.
type Landmark struct {
	X, Y, Z float32
}

// Hand is one set of landmarks in model order.
type Hand [NumLandmark]Landmark

// Connections lists the bone segments of the hand skeleton, for overlays.
var Connections = [...][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{0, 9}, {9, 10}, {10, 11}, {11, 12},
	{0, 13}, {13, 14}, {14, 15}, {15, 16},
	{0, 17}, {17, 18}, {18, 19}, {19, 20},
}

var tips = [...]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Gesture thresholds on openness.
const (
	OpenAbove   = 0.8
	ClosedBelow = 0.2
)

// Reading is the signal set derived from one hand.
type Reading struct {
	Position mgl32.Vec3 // centroid x, y and depth proxy z, all in [0, 1]
	Openness float32
	Rotation mgl32.Vec3 // (pitch, yaw, roll) in radians
	Gesture  spruce.Gesture
}

func planar(a, b Landmark) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func clampUnit(v float64) float32 {
	if v != v {
		return 0
	}
	return float32(math.Min(math.Max(v, 0), 1))
}

func finiteOrZero(v float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return float32(v)
}

// Measure derives position, openness, rotation and gesture from a hand.
// A degenerate hand (wrist and middle knuckle coincide) reads as fully
// closed. Every output is finite.
func Measure(h *Hand) Reading {
	p0, p5, p9, p17 := h[Wrist], h[IndexMCP], h[MiddleMCP], h[PinkyMCP]

	var r Reading
	r.Position = mgl32.Vec3{
		clampUnit(float64(p0.X+p5.X+p17.X) / 3),
		clampUnit(float64(p0.Y+p5.Y+p17.Y) / 3),
		clampUnit((planar(h[MiddleTip], p0) - 0.1) / 0.4),
	}

	if scale := planar(p9, p0); scale > 1e-6 {
		var sum float64
		for _, i := range tips {
			sum += planar(h[i], p0)
		}
		r.Openness = clampUnit((sum/float64(len(tips))/scale - 1) / 1.2)
	}

	roll := math.Atan2(float64(p17.Y-p5.Y), float64(p17.X-p5.X))
	r.Rotation = mgl32.Vec3{
		finiteOrZero(float64(p9.Z-p0.Z) * 3),
		finiteOrZero(float64(p17.Z-p5.Z) * 3),
		finiteOrZero(-roll),
	}
	r.Gesture = Classify(r.Openness)
	return r
}

// Classify maps openness to the discrete gesture vocabulary.
func Classify(openness float32) spruce.Gesture {
	switch {
	case openness > OpenAbove:
		return spruce.GestureOpenPalm
	case openness < ClosedBelow:
		return spruce.GestureClosedFist
	default:
		return spruce.GestureNone
	}
}

// Publish writes the reading to the shared signals.
func (r *Reading) Publish(s *spruce.Signals) {
	s.SetHandPosition(r.Position)
	s.SetOpenness(r.Openness)
	s.SetHandRotation(r.Rotation)
	s.SetGesture(r.Gesture)
}
