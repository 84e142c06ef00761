package gesture

import (
	"context"
	"math"
	"sync/atomic"
)

// pointerUnit is a third of the synthetic hand's wrist-to-knuckle length.
const pointerUnit = 0.05

var fingerFan = [5]float64{-0.6, -0.3, 0, 0.3, 0.6}

// PointerSource synthesizes landmarks from a cursor position and an
// openness value, so hosts without a camera can drive the tracker with a
// mouse. Setters may be called from any goroutine.
type PointerSource struct {
	x, y     atomic.Uint64
	openness atomic.Uint64
	visible  atomic.Bool
}

// NewPointerSource returns a visible, closed hand at the image center.
func NewPointerSource() *PointerSource {
	p := &PointerSource{}
	p.SetCursor(0.5, 0.5)
	p.visible.Store(true)
	return p
}

// SetCursor places the hand. x and y are screen-normalized in [0, 1] with
// y down; x is mirrored like a selfie camera image.
func (p *PointerSource) SetCursor(x, y float64) {
	p.x.Store(math.Float64bits(1 - x))
	p.y.Store(math.Float64bits(y))
}

// SetOpenness sets how far the synthetic fingers are extended, in [0, 1].
func (p *PointerSource) SetOpenness(v float64) {
	p.openness.Store(math.Float64bits(math.Min(math.Max(v, 0), 1)))
}

// Openness returns the current finger extension.
func (p *PointerSource) Openness() float64 {
	return math.Float64frombits(p.openness.Load())
}

// SetVisible toggles whether Detect reports a hand.
func (p *PointerSource) SetVisible(v bool) { p.visible.Store(v) }

func (p *PointerSource) Open(context.Context) error { return nil }

func (p *PointerSource) Close() error { return nil }

// Detect builds a flat hand whose wrist, index and pinky knuckles are
// centered on the cursor and whose fingertips sit at the distance that
// Measure reads back as the configured openness.
func (p *PointerSource) Detect(ctx context.Context) (Hand, bool, error) {
	if err := ctx.Err(); err != nil {
		return Hand{}, false, err
	}
	if !p.visible.Load() {
		return Hand{}, false, nil
	}
	return syntheticHand(
		math.Float64frombits(p.x.Load()),
		math.Float64frombits(p.y.Load()),
		p.Openness(),
	), true, nil
}

func syntheticHand(x, y, openness float64) Hand {
	const u = pointerUnit
	at := func(px, py float64) Landmark { return Landmark{X: float32(px), Y: float32(py)} }
	mid := func(a, b Landmark, t float32) Landmark {
		return Landmark{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
	}

	var h Hand
	h[Wrist] = at(x, y+2*u)
	h[IndexMCP] = at(x-u, y-u)
	h[MiddleMCP] = at(x, y-u)
	h[PinkyMCP] = at(x+u, y-u)
	h[1] = mid(h[Wrist], h[IndexMCP], 0.5)
	h[13] = mid(h[MiddleMCP], h[PinkyMCP], 0.5)

	reach := (1 + 1.2*openness) * 3 * u
	for f, tip := range tips {
		a := fingerFan[f]
		h[tip] = at(x+reach*math.Sin(a), y+2*u-reach*math.Cos(a))
		base := h[tip-3]
		h[tip-2] = mid(base, h[tip], 1.0/3)
		h[tip-1] = mid(base, h[tip], 2.0/3)
	}
	return h
}
