package scene

import (
	"cmp"
	"image/color"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/spruce"
)

// Background is the scene clear color.
var Background = color.RGBA{0x05, 0x02, 0x00, 0xff}

// glowSize is the side of the generated particle texture in pixels.
const glowSize = 32

// sprite is one projected particle, ready to be turned into a quad.
type sprite struct {
	x, y    float32
	radius  float32
	depth   float32
	r, g, b float32
}

// Renderer draws sculpture instance buffers as depth-sorted, additively
// blended glow sprites in a single DrawTriangles32 call.
type Renderer struct {
	Camera *Camera
	// FogNear and FogFar fade particles linearly toward the background
	// between the two view depths.
	FogNear, FogFar float32
	// Exposure feeds the Reinhard tone map applied to HDR colors.
	Exposure float32
	// Glow scales a particle's world size into its halo radius.
	Glow float32

	// TopStar is the crowning star's rest position, before TopStarScale.
	TopStar mgl32.Vec3

	buffers []*spruce.Instances

	sprites []sprite
	verts   []ebiten.Vertex
	inds    []uint32

	glow  *ebiten.Image
	white *ebiten.Image
}

// NewRenderer creates a renderer for the given buffers. treeHeight places
// the top star above the tree.
func NewRenderer(cam *Camera, buffers []*spruce.Instances, treeHeight float32) *Renderer {
	total := 0
	for _, b := range buffers {
		if b != nil {
			total += b.Len()
		}
	}
	return &Renderer{
		Camera:   cam,
		FogNear:  10,
		FogFar:   80,
		Exposure: 1.5,
		Glow:     2,
		TopStar:  mgl32.Vec3{0, treeHeight/2 + 0.8, 0},
		buffers:  buffers,
		sprites:  make([]sprite, 0, total),
		verts:    make([]ebiten.Vertex, 0, total*4),
		inds:     make([]uint32, 0, total*6),
	}
}

// tonemap compresses an HDR component into [0, 1).
func tonemap(v, exposure float32) float32 {
	if v <= 0 {
		return 0
	}
	v *= exposure
	return v / (1 + v)
}

func (r *Renderer) fog(depth float32) float32 {
	if r.FogFar <= r.FogNear {
		return 1
	}
	f := (r.FogFar - depth) / (r.FogFar - r.FogNear)
	return min(max(f, 0), 1)
}

// collect projects every visible instance and sorts the result back to
// front.
func (r *Renderer) collect() {
	cam := r.Camera
	r.sprites = r.sprites[:0]
	for _, buf := range r.buffers {
		if buf == nil {
			continue
		}
		for i := range buf.Transforms {
			tr := &buf.Transforms[i]
			x, y, depth, ok := cam.Project(tr.Position)
			if !ok || depth > cam.Far {
				continue
			}
			size := (tr.Scale[0] + tr.Scale[1] + tr.Scale[2]) / 3
			radius := size * r.Glow * cam.PixelsPerUnit(depth)
			if radius < 0.75 {
				radius = 0.75
			}
			f := r.fog(depth)
			c := buf.Colors[i]
			r.sprites = append(r.sprites, sprite{
				x: x, y: y, radius: radius, depth: depth,
				r: tonemap(c.R, r.Exposure) * f,
				g: tonemap(c.G, r.Exposure) * f,
				b: tonemap(c.B, r.Exposure) * f,
			})
		}
	}
	slices.SortFunc(r.sprites, func(a, b sprite) int {
		return cmp.Compare(b.depth, a.depth)
	})
}

// Draw clears screen and renders the particles and the top star.
func (r *Renderer) Draw(screen *ebiten.Image, frame *spruce.Frame) {
	screen.Fill(Background)
	r.ensureTextures()
	r.collect()

	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	for i := range r.sprites {
		s := &r.sprites[i]
		r.appendQuad(s.x-s.radius, s.y-s.radius, s.x+s.radius, s.y+s.radius, s.r, s.g, s.b)
	}
	if len(r.verts) > 0 {
		var op ebiten.DrawTrianglesOptions
		op.Blend = ebiten.BlendLighter
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		screen.DrawTriangles32(r.verts, r.inds, r.glow, &op)
	}

	r.drawTopStar(screen, frame)
}

func (r *Renderer) appendQuad(x0, y0, x1, y1, cr, cg, cb float32) {
	base := uint32(len(r.verts))
	xs := [4]float32{x0, x1, x0, x1}
	ys := [4]float32{y0, y0, y1, y1}
	us := [4]float32{0, glowSize, 0, glowSize}
	vs := [4]float32{0, 0, glowSize, glowSize}
	for j := 0; j < 4; j++ {
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: xs[j], DstY: ys[j],
			SrcX: us[j], SrcY: vs[j],
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		})
	}
	r.inds = append(r.inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// starOutline returns the ten outline points of the five-pointed top star
// in world space, spun about y and scaled toward the origin.
func starOutline(center mgl32.Vec3, spin, scale float32) [10]mgl32.Vec3 {
	const outer, inner = 0.8, 0.4
	rot := mgl32.Rotate3DY(spin)
	var pts [10]mgl32.Vec3
	for i := range pts {
		rad := float32(outer)
		if i%2 == 1 {
			rad = inner
		}
		a := float64(i)/10*2*math.Pi + math.Pi/2
		local := mgl32.Vec3{float32(math.Cos(a)) * rad, float32(math.Sin(a)) * rad, 0}
		pts[i] = rot.Mul3x1(local).Add(center).Mul(scale)
	}
	return pts
}

var starGold = spruce.Color{R: 1, G: 0.843, B: 0}

func (r *Renderer) drawTopStar(screen *ebiten.Image, frame *spruce.Frame) {
	if frame == nil || frame.TopStarScale <= 0 {
		return
	}
	cam := r.Camera
	cx, cy, depth, ok := cam.Project(r.TopStar.Mul(frame.TopStarScale))
	if !ok {
		return
	}

	// Halo first, sized by the light intensity.
	glow := starGold.Scale(frame.TopStarLight / 3)
	rad := 2.5 * frame.TopStarScale * cam.PixelsPerUnit(depth)
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	r.appendQuad(cx-rad, cy-rad, cx+rad, cy+rad, glow.R, glow.G, glow.B)
	var op ebiten.DrawTrianglesOptions
	op.Blend = ebiten.BlendLighter
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	screen.DrawTriangles32(r.verts, r.inds, r.glow, &op)

	// Solid body as a triangle fan.
	pts := starOutline(r.TopStar, frame.TopStarSpin, frame.TopStarScale)
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	r.verts = append(r.verts, ebiten.Vertex{DstX: cx, DstY: cy, SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 0.843, ColorB: 0, ColorA: 1})
	for _, p := range pts {
		x, y, _, ok := cam.Project(p)
		if !ok {
			return
		}
		r.verts = append(r.verts, ebiten.Vertex{DstX: x, DstY: y, SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 0.843, ColorB: 0, ColorA: 1})
	}
	for i := uint32(1); i <= 10; i++ {
		next := i%10 + 1
		r.inds = append(r.inds, 0, i, next)
	}
	screen.DrawTriangles32(r.verts, r.inds, r.white, &ebiten.DrawTrianglesOptions{})
}

// ensureTextures builds the glow falloff and the solid fill images on
// first use.
func (r *Renderer) ensureTextures() {
	if r.glow == nil {
		r.glow = ebiten.NewImage(glowSize, glowSize)
		r.glow.WritePixels(glowPixels(glowSize))
	}
	if r.white == nil {
		r.white = ebiten.NewImage(1, 1)
		r.white.Fill(color.White)
	}
}

// glowPixels renders a premultiplied white disc with a quadratic falloff.
func glowPixels(size int) []byte {
	pix := make([]byte, size*size*4)
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - c) / c
			dy := (float64(y) + 0.5 - c) / c
			a := 1 - math.Sqrt(dx*dx+dy*dy)
			if a < 0 {
				a = 0
			}
			v := byte(a * a * 255)
			o := (y*size + x) * 4
			pix[o], pix[o+1], pix[o+2], pix[o+3] = v, v, v, v
		}
	}
	return pix
}
