package spruce

import "github.com/go-gl/mathgl/mgl32"

// Transform is one renderer instance: translation, Euler rotation in XYZ
// order (radians) and non-uniform scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// Matrix composes T * Rx * Ry * Rz * S as a column-major model matrix.
func (t *Transform) Matrix() mgl32.Mat4 {
	r := mgl32.HomogRotate3DX(t.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(r).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Instances is the renderer-facing buffer of one category. Transforms and
// Colors are index-aligned with the category's particles and rewritten in
// place every frame; renderers read them between updates.
type Instances struct {
	Category   Category
	Transforms []Transform
	Colors     []Color
}

// NewInstances allocates a buffer for count particles of category c.
func NewInstances(c Category, count int) *Instances {
	return &Instances{
		Category:   c,
		Transforms: make([]Transform, count),
		Colors:     make([]Color, count),
	}
}

// Len returns the number of instances.
func (b *Instances) Len() int {
	return len(b.Transforms)
}

// AppendMatrices appends every instance's model matrix (16 floats each,
// column-major) to dst and returns the extended slice. Passing dst[:0] with
// enough capacity makes the call allocation-free.
func (b *Instances) AppendMatrices(dst []float32) []float32 {
	for i := range b.Transforms {
		m := b.Transforms[i].Matrix()
		dst = append(dst, m[:]...)
	}
	return dst
}
