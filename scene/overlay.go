package scene

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/spruce"
	"github.com/phanxgames/spruce/gesture"
)

// overlayRefresh is how often the status text is redrawn, in seconds.
const overlayRefresh = 0.5

// Status is the information shown by the overlay.
type Status struct {
	Phase        spruce.Phase
	Gesture      spruce.Gesture
	CameraActive bool
	T            float32
}

// hint returns the instruction line for a phase.
func hint(p spruce.Phase) string {
	switch p {
	case spruce.PhaseTree:
		return "Show an open palm (or hold Space) to bloom."
	case spruce.PhaseNebula:
		return "Close your fist to reset."
	default:
		return "Transitioning..."
	}
}

// statusText formats the overlay body.
func statusText(s Status, fps, tps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f  TPS: %.1f\n", fps, tps)
	fmt.Fprintf(&b, "Gesture: %s\n", strings.ReplaceAll(s.Gesture.String(), "_", " "))
	fmt.Fprintf(&b, "Phase: %s (t=%.2f)\n", s.Phase, s.T)
	vision := "off"
	if s.CameraActive {
		vision = "on"
	}
	fmt.Fprintf(&b, "Vision: %s [C]\n", vision)
	b.WriteString(hint(s.Phase))
	return b.String()
}

// Overlay draws the status panel and, while tracking, a mirrored preview
// of the hand skeleton. The panel text is only re-rendered every half
// second.
type Overlay struct {
	panel   *ebiten.Image
	preview *ebiten.Image
	elapsed float64
	dirty   bool
}

// NewOverlay creates the overlay. Images are allocated on first draw.
func NewOverlay() *Overlay {
	return &Overlay{dirty: true}
}

// Update advances the refresh timer.
func (o *Overlay) Update(dt float64) {
	o.elapsed += dt
	if o.elapsed >= overlayRefresh {
		o.elapsed = 0
		o.dirty = true
	}
}

// Draw renders the panel at the top left and the hand preview at the top
// right when hand is non-nil.
func (o *Overlay) Draw(screen *ebiten.Image, s Status, hand *gesture.Hand) {
	if o.panel == nil {
		o.panel = ebiten.NewImage(260, 80)
	}
	if o.dirty {
		o.dirty = false
		o.panel.Clear()
		o.panel.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.panel, statusText(s, ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(16, 16)
	screen.DrawImage(o.panel, &op)

	if hand == nil {
		return
	}
	const pw, ph = 192, 144
	if o.preview == nil {
		o.preview = ebiten.NewImage(pw, ph)
	}
	o.preview.Fill(color.RGBA{0, 0, 0, 96})
	green := color.RGBA{0, 255, 0, 128}
	for _, bone := range gesture.Connections {
		a, b := hand[bone[0]], hand[bone[1]]
		// Mirrored like the camera preview.
		vector.StrokeLine(o.preview,
			(1-a.X)*pw, a.Y*ph, (1-b.X)*pw, b.Y*ph,
			2, green, true)
	}
	op.GeoM.Reset()
	op.GeoM.Translate(float64(screen.Bounds().Dx()-pw-16), 16)
	screen.DrawImage(o.preview, &op)
}
