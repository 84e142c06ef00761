// Package term renders a spruce.Sculpture into a terminal with tcell. Each
// cell keeps the nearest particle that projects into it.
package term

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/spruce"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2

// glyphs per category, indexed by spruce.Category.
var glyphs = [...]rune{
	spruce.CategoryOrb:      '•',
	spruce.CategoryStar:     '*',
	spruce.CategoryGift:     '■',
	spruce.CategoryCandy:    '|',
	spruce.CategoryOrnament: 'o',
	spruce.CategoryRibbon:   '.',
}

var background = tcell.NewRGBColor(5, 2, 0)

type cell struct {
	r     rune
	color tcell.Color
	depth float32
}

// Renderer projects instance buffers onto a tcell screen.
type Renderer struct {
	screen  tcell.Screen
	buffers []*spruce.Instances

	// Eye orbits Target about y at Orbit radians per second.
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	FOV    float32 // vertical, degrees
	Orbit  float32
	// TopStar is the crowning star's rest position, before TopStarScale.
	TopStar mgl32.Vec3

	w, h  int
	cells []cell
}

// NewRenderer creates a renderer for screen. treeHeight places the top star.
func NewRenderer(screen tcell.Screen, buffers []*spruce.Instances, treeHeight float32) *Renderer {
	return &Renderer{
		screen:  screen,
		buffers: buffers,
		Eye:     mgl32.Vec3{0, 2, 32},
		FOV:     50,
		Orbit:   0.1,
		TopStar: mgl32.Vec3{0, treeHeight/2 + 0.8, 0},
	}
}

func (r *Renderer) resize() {
	w, h := r.screen.Size()
	if w == r.w && h == r.h && r.cells != nil {
		return
	}
	r.w, r.h = w, h
	r.cells = make([]cell, w*h)
}

func (r *Renderer) viewProj(now float64) mgl32.Mat4 {
	eye := mgl32.Rotate3DY(float32(now)*r.Orbit).Mul3x1(r.Eye.Sub(r.Target)).Add(r.Target)
	view := mgl32.LookAtV(eye, r.Target, mgl32.Vec3{0, 1, 0})
	aspect := float32(1)
	if r.h > 0 {
		aspect = float32(r.w) / float32(r.h*cellAspect)
	}
	proj := mgl32.Perspective(mgl32.DegToRad(r.FOV), aspect, 0.1, 200)
	return proj.Mul4(view)
}

// project maps a world point to a cell. ok is false off screen or behind
// the eye.
func (r *Renderer) project(vp mgl32.Mat4, p mgl32.Vec3) (x, y int, depth float32, ok bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w < 0.1 {
		return 0, 0, 0, false
	}
	fx := (clip[0]/w + 1) / 2 * float32(r.w)
	fy := (1 - clip[1]/w) / 2 * float32(r.h)
	x, y = int(math.Floor(float64(fx))), int(math.Floor(float64(fy)))
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return 0, 0, 0, false
	}
	return x, y, w, true
}

// toRGB tone maps an HDR color to a terminal color.
func toRGB(c spruce.Color) tcell.Color {
	m := func(v float32) int32 {
		if v <= 0 {
			return 0
		}
		v *= 1.5
		return int32(v / (1 + v) * 255)
	}
	return tcell.NewRGBColor(m(c.R), m(c.G), m(c.B))
}

// raster fills the cell buffer from the instance buffers and the top star.
func (r *Renderer) raster(frame *spruce.Frame) {
	r.resize()
	for i := range r.cells {
		r.cells[i] = cell{depth: float32(math.Inf(1))}
	}
	var now float64
	if frame != nil {
		now = frame.Time
	}
	vp := r.viewProj(now)

	for _, buf := range r.buffers {
		if buf == nil {
			continue
		}
		g := glyphs[buf.Category]
		for i := range buf.Transforms {
			x, y, d, ok := r.project(vp, buf.Transforms[i].Position)
			if !ok {
				continue
			}
			c := &r.cells[y*r.w+x]
			if d < c.depth {
				*c = cell{r: g, color: toRGB(buf.Colors[i]), depth: d}
			}
		}
	}

	if frame != nil && frame.TopStarScale > 0.05 {
		if x, y, d, ok := r.project(vp, r.TopStar.Mul(frame.TopStarScale)); ok {
			c := &r.cells[y*r.w+x]
			if d <= c.depth {
				*c = cell{r: '★', color: tcell.NewRGBColor(255, 215, 0), depth: d}
			}
		}
	}
}

// Draw rasterizes the frame and shows it.
func (r *Renderer) Draw(frame *spruce.Frame) {
	r.raster(frame)
	bg := tcell.StyleDefault.Background(background)
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			c := r.cells[y*r.w+x]
			if c.r == 0 {
				r.screen.SetContent(x, y, ' ', nil, bg)
				continue
			}
			r.screen.SetContent(x, y, c.r, nil, bg.Foreground(c.color))
		}
	}
	r.screen.Show()
}
