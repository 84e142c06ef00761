package spruce

import "github.com/go-gl/mathgl/mgl32"

// morphSnap is the distance at which t lands exactly on its target. Without
// it float32 easing stalls one ulp short of the bounds.
const morphSnap = 1e-4

// Morph is the global morph state: the interpolation parameter t, the cloud
// center and the cloud orientation. All three are eased every frame and
// never jump, however irregular the input signal is.
type Morph struct {
	t float32
	// dir is the sign of the last non-zero change of t.
	dir         float32
	phase       Phase
	center      mgl32.Vec3
	orientation mgl32.Vec3

	ease         float32
	centerEase   float32
	rotationEase float32
	followAbove  float32
	returnBelow  float32
	treeBelow    float32
	nebulaAbove  float32
	spanX, spanY float32
	depth        Range
}

func newMorph(cfg *Config) Morph {
	return Morph{
		phase:        PhaseTree,
		ease:         cfg.MorphEase,
		centerEase:   cfg.CenterEase,
		rotationEase: cfg.RotationEase,
		followAbove:  cfg.FollowAbove,
		returnBelow:  cfg.ReturnBelow,
		treeBelow:    cfg.TreeBelow,
		nebulaAbove:  cfg.NebulaAbove,
		spanX:        cfg.CloudSpanX,
		spanY:        cfg.CloudSpanY,
		depth:        cfg.CloudDepth,
	}
}

// T returns the interpolation parameter in [0, 1].
func (m *Morph) T() float32 { return m.t }

// Phase returns the current phase label.
func (m *Morph) Phase() Phase { return m.phase }

// CloudCenter returns the eased cloud translation.
func (m *Morph) CloudCenter() mgl32.Vec3 { return m.center }

// Orientation returns the eased cloud orientation as (pitch, yaw, roll).
func (m *Morph) Orientation() mgl32.Vec3 { return m.orientation }

// targetT picks the value t chases: the continuous openness while tracking
// is live, otherwise the binary reading of the discrete gesture.
func targetT(in *Signal) float32 {
	if in.CameraActive {
		return sanitizeUnit(in.Openness)
	}
	if in.Gesture == GestureOpenPalm {
		return 1
	}
	return 0
}

// cloudGoal maps a normalized, mirrored hand position to world space.
func (m *Morph) cloudGoal(hand mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		(1 - hand[0] - 0.5) * m.spanX,
		-(hand[1] - 0.5) * m.spanY,
		m.depth.Lerp(hand[2]),
	}
}

// advance steps the global state once. It must run before any particle of
// the frame is evaluated. It returns the previous phase and whether the
// phase label changed.
func (m *Morph) advance(in *Signal) (Phase, bool) {
	goal := targetT(in)
	prev := m.t
	t := lerp32(m.t, goal, m.ease)
	if d := goal - t; d < morphSnap && d > -morphSnap {
		t = goal
	}
	m.t = clamp01(t)
	if d := m.t - prev; d > 0 {
		m.dir = 1
	} else if d < 0 {
		m.dir = -1
	}

	// Between returnBelow and followAbove (or with tracking off above
	// returnBelow) the center holds where it is.
	if m.t > m.followAbove && in.CameraActive {
		m.center = lerpVec3(m.center, m.cloudGoal(in.Hand), m.centerEase)
	} else if m.t < m.returnBelow {
		m.center = lerpVec3(m.center, mgl32.Vec3{}, m.centerEase)
	}

	var rot mgl32.Vec3
	if in.CameraActive {
		rot = in.Rotation
	}
	m.orientation = lerpVec3(m.orientation, rot, m.rotationEase)

	old := m.phase
	m.phase = m.classify()
	return old, m.phase != old
}

// classify derives the phase label. The transitional direction comes from
// the sign of the last change of t, since t alone cannot tell blooming from
// collapsing.
func (m *Morph) classify() Phase {
	switch {
	case m.t < m.treeBelow:
		return PhaseTree
	case m.t > m.nebulaAbove:
		return PhaseNebula
	case m.dir > 0:
		return PhaseBlooming
	case m.dir < 0:
		return PhaseCollapsing
	case m.phase == PhaseNebula || m.phase == PhaseCollapsing:
		return PhaseCollapsing
	default:
		return PhaseBlooming
	}
}

func lerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		lerp32(a[0], b[0], t),
		lerp32(a[1], b[1], t),
		lerp32(a[2], b[2], t),
	}
}
