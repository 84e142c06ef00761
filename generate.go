package spruce

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// GenerateConicalFill scatters count points inside a cone of the given base
// radius and height, centered vertically on the origin with the apex up.
// Planar offsets use a square-root scaled radius, so density is uniform per
// unit area at every height. Placement is stochastic; only the distribution
// is deterministic.
func GenerateConicalFill(rng *rand.Rand, count int, radius, height float32) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, count)
	h := float64(height)
	for i := range pts {
		y := rng.Float64() * h
		local := float64(radius) * (h - y) / h
		theta := rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(rng.Float64()) * local

		pts[i] = mgl32.Vec3{
			float32(math.Cos(theta) * dist),
			float32(y - h/2),
			float32(math.Sin(theta) * dist),
		}
	}
	return pts
}

// GenerateGaussianCloud draws count points from an isotropic normal
// distribution with standard deviation radius/2 per axis. Samples are not
// clipped, so tails reach beyond radius.
func GenerateGaussianCloud(rng *rand.Rand, count int, radius float32) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, count)
	sigma := float64(radius) * 0.5
	for i := range pts {
		x, y := boxMuller(rng)
		z, _ := boxMuller(rng)
		pts[i] = mgl32.Vec3{
			float32(x * sigma),
			float32(y * sigma),
			float32(z * sigma),
		}
	}
	return pts
}

// boxMuller converts two uniform draws into two independent standard normal
// deviates. u1 is taken from (0, 1] so the logarithm stays finite.
func boxMuller(rng *rand.Rand) (float64, float64) {
	u1 := 1 - rng.Float64()
	u2 := rng.Float64()
	mag := math.Sqrt(-2 * math.Log(u1))
	return mag * math.Cos(2*math.Pi*u2), mag * math.Sin(2*math.Pi*u2)
}

// GenerateSpiralCurve lays count points along a helix that climbs from
// -height/2 to +height/2 while its radius shrinks linearly from
// radius+offset to offset. Adjacent indices are adjacent on the curve.
func GenerateSpiralCurve(count int, radius, height, turns, offset float32) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, count)
	if count == 0 {
		return pts
	}
	for i := range pts {
		s := float64(i) / float64(count)
		angle := s * 2 * math.Pi * float64(turns)
		r := float64(radius)*(1-s) + float64(offset)

		pts[i] = mgl32.Vec3{
			float32(math.Cos(angle) * r),
			float32((s - 0.5) * float64(height)),
			float32(math.Sin(angle) * r),
		}
	}
	return pts
}
