package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/spruce"
)

// Camera rest positions for the two stable phases.
var (
	TreeView   = mgl32.Vec3{0, 5, 25}
	NebulaView = mgl32.Vec3{0, 0, 50}
)

// Dolly durations in seconds.
const (
	treeDolly   = 3
	nebulaDolly = 4
)

// dollyAnim holds the active dolly tweens, one per axis.
type dollyAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a perspective orbit camera looking at Target. Position is the
// eye before the auto-rotate orbit is applied.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	// FOV is the vertical field of view in degrees.
	FOV       float32
	Near, Far float32

	// AutoRotate orbits the eye about the target's y axis. The speed uses
	// orbit-control units: 2.0 is one revolution per 30 seconds.
	AutoRotate      bool
	AutoRotateSpeed float32

	// Width and Height are the viewport size in pixels.
	Width, Height float64

	orbit float32

	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
	dirty    bool

	dolly *dollyAnim
}

// NewCamera returns a camera at TreeView with a slow orbit.
func NewCamera(width, height float64) *Camera {
	return &Camera{
		Position:        TreeView,
		FOV:             50,
		Near:            0.1,
		Far:             200,
		AutoRotate:      true,
		AutoRotateSpeed: 0.5,
		Width:           width,
		Height:          height,
		dirty:           true,
	}
}

// SetViewport resizes the projection.
func (c *Camera) SetViewport(width, height float64) {
	if c.Width != width || c.Height != height {
		c.Width, c.Height = width, height
		c.dirty = true
	}
}

// DollyTo animates Position to pos over duration seconds.
func (c *Camera) DollyTo(pos mgl32.Vec3, duration float32, easeFn ease.TweenFunc) {
	d := &dollyAnim{}
	for i := range d.tweens {
		d.tweens[i] = gween.New(c.Position[i], pos[i], duration, easeFn)
	}
	c.dolly = d
}

// Dollying reports whether a dolly animation is in progress.
func (c *Camera) Dollying() bool { return c.dolly != nil }

// EmitEvent moves the camera out for the nebula and back in for the tree.
// Transitional phases leave any running dolly alone.
func (c *Camera) EmitEvent(e spruce.Event) {
	if e.Type != spruce.EventPhaseChanged {
		return
	}
	switch e.Phase {
	case spruce.PhaseNebula:
		c.DollyTo(NebulaView, nebulaDolly, ease.InOutQuad)
	case spruce.PhaseTree:
		c.DollyTo(TreeView, treeDolly, ease.InOutQuad)
	}
}

// Update advances the dolly and the orbit by dt seconds.
func (c *Camera) Update(dt float32) {
	if d := c.dolly; d != nil {
		for i, tw := range d.tweens {
			if d.done[i] {
				continue
			}
			c.Position[i], d.done[i] = tw.Update(dt)
		}
		if d.done[0] && d.done[1] && d.done[2] {
			c.dolly = nil
		}
		c.dirty = true
	}
	if c.AutoRotate && c.AutoRotateSpeed != 0 {
		c.orbit += dt * c.AutoRotateSpeed * 2 * math.Pi / 60
		c.dirty = true
	}
}

// Eye returns the world-space eye position after the orbit.
func (c *Camera) Eye() mgl32.Vec3 {
	return mgl32.Rotate3DY(c.orbit).Mul3x1(c.Position.Sub(c.Target)).Add(c.Target)
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	c.dirty = false
	aspect := float32(1)
	if c.Height > 0 {
		aspect = float32(c.Width / c.Height)
	}
	c.view = mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
	c.viewProj = c.proj.Mul4(c.view)
}

// ViewProjection returns the combined clip-space matrix.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.update()
	return c.viewProj
}

// Project maps a world point to screen pixels. depth is the distance
// along the view axis. ok is false for points behind the near plane.
func (c *Camera) Project(p mgl32.Vec3) (x, y, depth float32, ok bool) {
	c.update()
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w < c.Near {
		return 0, 0, w, false
	}
	x = (clip[0]/w + 1) / 2 * float32(c.Width)
	y = (1 - clip[1]/w) / 2 * float32(c.Height)
	return x, y, w, true
}

// PixelsPerUnit returns how many pixels one world unit spans at depth.
func (c *Camera) PixelsPerUnit(depth float32) float32 {
	if depth <= 0 {
		return 0
	}
	half := float32(math.Tan(float64(mgl32.DegToRad(c.FOV)) / 2))
	return float32(c.Height) / 2 / half / depth
}

// PointerNDC converts a cursor position in pixels to normalized device
// coordinates in [-1, 1] with y up.
func (c *Camera) PointerNDC(x, y int) mgl32.Vec2 {
	if c.Width <= 0 || c.Height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(float64(x)/c.Width*2 - 1),
		float32(-(float64(y)/c.Height*2 - 1)),
	}
}
