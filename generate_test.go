package spruce

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func assertNear(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// --- GenerateConicalFill ---

func TestConicalFillBounds(t *testing.T) {
	const radius, height = 6.0, 15.0
	pts := GenerateConicalFill(testRNG(), 5000, radius, height)
	if len(pts) != 5000 {
		t.Fatalf("len = %d, want 5000", len(pts))
	}
	for i, p := range pts {
		if p[1] < -height/2 || p[1] > height/2 {
			t.Fatalf("point %d y = %v, outside [%v, %v]", i, p[1], -height/2, height/2)
		}
		local := radius * (height/2 - p[1]) / height
		planar := math.Hypot(float64(p[0]), float64(p[2]))
		if planar > float64(local)+1e-4 {
			t.Fatalf("point %d planar distance %v exceeds local radius %v", i, planar, local)
		}
	}
}

func TestConicalFillWidensTowardBase(t *testing.T) {
	pts := GenerateConicalFill(testRNG(), 20000, 6, 15)
	var lowMax, highMax float64
	for _, p := range pts {
		planar := math.Hypot(float64(p[0]), float64(p[2]))
		if p[1] < -5 {
			lowMax = math.Max(lowMax, planar)
		} else if p[1] > 5 {
			highMax = math.Max(highMax, planar)
		}
	}
	if lowMax <= highMax {
		t.Errorf("base spread %v should exceed apex spread %v", lowMax, highMax)
	}
}

func TestConicalFillZeroCount(t *testing.T) {
	if pts := GenerateConicalFill(testRNG(), 0, 6, 15); len(pts) != 0 {
		t.Errorf("len = %d, want 0", len(pts))
	}
}

// --- GenerateGaussianCloud ---

func TestGaussianCloudMoments(t *testing.T) {
	const n = 40000
	const radius = 30.0
	pts := GenerateGaussianCloud(testRNG(), n, radius)

	var sum, sumSq [3]float64
	for _, p := range pts {
		for a := 0; a < 3; a++ {
			v := float64(p[a])
			sum[a] += v
			sumSq[a] += v * v
		}
	}
	sigma := radius * 0.5
	for a, name := range []string{"x", "y", "z"} {
		mean := sum[a] / n
		sd := math.Sqrt(sumSq[a]/n - mean*mean)
		assertNear(t, "mean "+name, mean, 0, 0.3)
		assertNear(t, "sd "+name, sd, sigma, 0.3)
	}
}

func TestGaussianCloudAxesUncorrelated(t *testing.T) {
	const n = 40000
	pts := GenerateGaussianCloud(testRNG(), n, 2)
	var xz, yz float64
	for _, p := range pts {
		xz += float64(p[0] * p[2])
		yz += float64(p[1] * p[2])
	}
	// sigma is 1, so the sample covariance is the correlation.
	assertNear(t, "corr(x,z)", xz/n, 0, 0.03)
	assertNear(t, "corr(y,z)", yz/n, 0, 0.03)
}

func TestGaussianCloudFinite(t *testing.T) {
	for i, p := range GenerateGaussianCloud(testRNG(), 10000, 30) {
		for _, v := range p {
			if !finite32(v) {
				t.Fatalf("point %d not finite: %v", i, p)
			}
		}
	}
}

// --- GenerateSpiralCurve ---

func TestSpiralCurveMonotonic(t *testing.T) {
	const radius, height, offset = 6.0, 15.0, 0.2
	pts := GenerateSpiralCurve(600, radius, height, 8, offset)
	if len(pts) != 600 {
		t.Fatalf("len = %d, want 600", len(pts))
	}
	prevY := float32(math.Inf(-1))
	prevR := math.Inf(1)
	for i, p := range pts {
		if p[1] <= prevY {
			t.Fatalf("y not increasing at %d: %v <= %v", i, p[1], prevY)
		}
		r := math.Hypot(float64(p[0]), float64(p[2]))
		if r >= prevR {
			t.Fatalf("radius not decreasing at %d: %v >= %v", i, r, prevR)
		}
		prevY, prevR = p[1], r
	}
	assertNear(t, "first y", float64(pts[0][1]), -height/2, 1e-5)
	assertNear(t, "first r", math.Hypot(float64(pts[0][0]), float64(pts[0][2])), radius+offset, 1e-5)
}

func TestSpiralCurveAngleStep(t *testing.T) {
	const count, turns = 600, 8
	pts := GenerateSpiralCurve(count, 6, 15, turns, 0.2)
	step := 2 * math.Pi * turns / count
	for i := 1; i < len(pts); i++ {
		a0 := math.Atan2(float64(pts[i-1][2]), float64(pts[i-1][0]))
		a1 := math.Atan2(float64(pts[i][2]), float64(pts[i][0]))
		d := math.Mod(a1-a0+2*math.Pi, 2*math.Pi)
		if math.Abs(d-step) > 1e-4 {
			t.Fatalf("angle step at %d = %v, want %v", i, d, step)
		}
	}
}

func TestSpiralCurveBoundedStep(t *testing.T) {
	const count, turns, radius, height, offset = 600, 8, 6.0, 15.0, 0.2
	pts := GenerateSpiralCurve(count, radius, height, turns, offset)
	// Arc at the widest radius plus the radial and vertical drift per step.
	limit := (radius+offset)*2*math.Pi*turns/count + radius/count + height/count
	for i := 1; i < len(pts); i++ {
		if d := float64(pts[i].Sub(pts[i-1]).Len()); d > limit+1e-4 {
			t.Fatalf("step %d length %v exceeds %v", i, d, limit)
		}
	}
}

func TestSpiralCurveDeterministic(t *testing.T) {
	a := GenerateSpiralCurve(120, 6, 15, 6, 0)
	b := GenerateSpiralCurve(120, 6, 15, 6, 0)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSpiralCurveZeroCount(t *testing.T) {
	pts := GenerateSpiralCurve(0, 6, 15, 8, 0.2)
	if pts == nil || len(pts) != 0 {
		t.Errorf("want empty non-nil slice, got %v", pts)
	}
}

func BenchmarkGenerateConicalFill(b *testing.B) {
	rng := testRNG()
	var pts []mgl32.Vec3
	for b.Loop() {
		pts = GenerateConicalFill(rng, 4000, 6, 15)
	}
	_ = pts
}
