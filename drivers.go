package spruce

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// drive evaluates every particle of the arena and writes its transform and
// color into the attached buffer. Repulsion only touches the written
// position; the persisted one stays on its eased path.
func (s *Sculpture) drive(a *arena) {
	f := &s.frame
	spec := a.spec
	out := a.out
	now := float32(f.time)
	repelOn := spec.repel && f.repel

	for i := range a.current {
		pos := s.evaluate(a, i)
		if repelOn {
			pos = repel(pos, f.pointer, s.cfg.RepelRadius, s.cfg.RepelStrength)
		}

		tr := &out.Transforms[i]
		tr.Position = pos

		var twinkle float32
		switch spec.scaling {
		case scalePulse:
			tr.Scale = spec.extent.Mul(spec.scale.Lerp(f.t) * pulse(f.time, a.seeds[i]))
		case scaleSteady:
			tr.Scale = spec.extent.Mul(spec.scale.Lerp(f.t))
		case scaleTwinkle:
			speed := 3 + s.rng.Float64()*2
			twinkle = float32((math.Sin(f.time*speed+float64(i)) + 1) / 2)
			tr.Scale = spec.extent.Mul(spec.scale.Lerp(twinkle))
		}

		switch spec.spin {
		case spinRandom:
			r := now * a.spin[i]
			tr.Rotation = mgl32.Vec3{r, r * 0.5, 0}
		case spinFixed:
			r := now * a.spin[i]
			tr.Rotation = mgl32.Vec3{r, r, 0}
		case spinNone:
			tr.Rotation = mgl32.Vec3{}
		}

		switch spec.color {
		case colorStatic:
			out.Colors[i] = a.base[i]
		case colorBlend:
			out.Colors[i] = a.base[i].Lerp(a.accent[i], f.t)
		case colorTwinkle:
			out.Colors[i] = ribbonWarm[0].Lerp(ribbonWarm[1], s.rng.Float32()).Scale(1 + 4*twinkle)
		}
	}
}

// pulse is the per-particle breathing factor in [0.6, 1].
func pulse(now float64, seed float32) float32 {
	return float32(math.Sin(now*2+float64(seed)))*0.2 + 0.8
}

// repel pushes pos away from the pointer when it lies inside radius. The
// push fades linearly from strength at the pointer to zero at the edge. A
// particle sitting exactly on the pointer has no direction and is left
// alone, as is any non-finite distance.
func repel(pos, pointer mgl32.Vec3, radius, strength float32) mgl32.Vec3 {
	d := pos.Sub(pointer)
	dist := d.Len()
	if !(dist > 0 && dist < radius) {
		return pos
	}
	force := (radius - dist) / radius * strength
	return pos.Add(d.Mul(force / dist))
}
