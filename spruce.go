package spruce

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB color handed to the renderer. Components are not
// clamped: values above 1 are emissive (HDR) and expected to bloom.
type Color struct {
	R, G, B float32
}

// ColorWhite is the neutral tint.
var ColorWhite = Color{1, 1, 1}

// colorFromHex parses a "#RRGGBB" literal. Palettes are compile-time
// constants, so a malformed literal is a programming error.
func colorFromHex(hex string) Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

// colorFromHSL mirrors the renderer convention of hue in turns [0, 1).
func colorFromHSL(h, s, l float64) Color {
	h -= float64(int(h))
	if h < 0 {
		h++
	}
	c := colorful.Hsl(h*360, s, l)
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

// Scale multiplies every component by k.
func (c Color) Scale(k float32) Color {
	return Color{c.R * k, c.G * k, c.B * k}
}

// Lerp linearly interpolates from c toward to by t.
func (c Color) Lerp(to Color, t float32) Color {
	return Color{
		R: lerp32(c.R, to.R, t),
		G: lerp32(c.G, to.G, t),
		B: lerp32(c.B, to.B, t),
	}
}

// Range is a general-purpose min/max range. The morph engine uses it for
// tree-form (Min) to cloud-form (Max) scale bounds.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// Lerp returns the value at t between Min and Max.
func (r Range) Lerp(t float32) float32 {
	return lerp32(r.Min, r.Max, t)
}

// Random returns a random value in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float32 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float32()*(r.Max-r.Min)
}

// Phase is the coarse morph label derived from the interpolation parameter.
type Phase uint8

const (
	PhaseTree       Phase = iota // t below the tree threshold
	PhaseBlooming                // transitional, t last increased
	PhaseNebula                  // t above the nebula threshold
	PhaseCollapsing              // transitional, t last decreased
)

func (p Phase) String() string {
	switch p {
	case PhaseTree:
		return "tree"
	case PhaseBlooming:
		return "blooming"
	case PhaseNebula:
		return "nebula"
	case PhaseCollapsing:
		return "collapsing"
	default:
		return "unknown"
	}
}

// Gesture is the discrete hand classification published by the input adapter.
type Gesture uint8

const (
	GestureNone       Gesture = iota // no hand, or openness between thresholds
	GestureOpenPalm                  // openness above the open threshold
	GestureClosedFist                // openness below the closed threshold
	GesturePointingUp                // reserved by the adapter vocabulary
)

func (g Gesture) String() string {
	switch g {
	case GestureNone:
		return "None"
	case GestureOpenPalm:
		return "Open_Palm"
	case GestureClosedFist:
		return "Closed_Fist"
	case GesturePointingUp:
		return "Pointing_Up"
	default:
		return "unknown"
	}
}

// lerp32 linearly interpolates between a and b by t.
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// clamp01 restricts v to [0, 1]. NaN maps to 0.
func clamp01(v float32) float32 {
	if !(v >= 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
