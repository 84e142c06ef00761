package spruce

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrBufferSize is returned by Attach when a buffer does not match the
// category's particle count.
var ErrBufferSize = errors.New("instance buffer size mismatch")

// arena is the owned per-category state. Target sets and the per-particle
// attributes are written once in NewSculpture; only current changes after.
type arena struct {
	cat  Category
	spec *categorySpec

	tree  []mgl32.Vec3 // tree-form targets, immutable
	cloud []mgl32.Vec3 // cloud-form targets, immutable
	// current is the inertia memory. The zero vector marks a particle that
	// has not been touched yet.
	current []mgl32.Vec3

	seeds   []float32    // phase seed (global index)
	chaos   []mgl32.Vec3 // excursion direction derived from the seed
	inertia []float32
	spin    []float32
	base    []Color
	accent  []Color

	out *Instances
}

// frameScratch holds the per-frame values shared by every particle. It is
// rebuilt by prepare and never escapes the sculpture.
type frameScratch struct {
	time    float64
	t       float32
	chaos   float32
	rot     mgl32.Mat3
	center  mgl32.Vec3
	cursor  mgl32.Vec2
	pointer mgl32.Vec3
	repel   bool
}

// Frame summarizes one update for the host.
type Frame struct {
	// Time is the frame time passed to Update, in seconds.
	Time  float64
	T     float32
	Phase Phase
	// CloudCenter and Orientation are the eased global cloud transform.
	CloudCenter mgl32.Vec3
	Orientation mgl32.Vec3
	// TopStarScale (1 - t) scales the crowning star; TopStarLight is the
	// intensity of its glow light; TopStarSpin its rotation about y.
	TopStarScale float32
	TopStarLight float32
	TopStarSpin  float32
}

// Sculpture is the particle morph engine. It owns every category's target
// sets and inertia memory and rewrites the attached Instances buffers once
// per Update. A Sculpture is not safe for concurrent use; only the Signals
// store it reads from is.
type Sculpture struct {
	cfg     Config
	rng     *rand.Rand
	signals *Signals
	sink    EventSink

	morph  Morph
	arenas [categoryCount]arena
	frame  frameScratch

	lastGesture Gesture

	debug bool
	stats debugStats
}

// NewSculpture validates cfg, runs the target generators once and returns a
// sculpture in tree form. signals may be nil, in which case a private store
// with neutral defaults is used. rng may be nil for a randomly seeded source.
func NewSculpture(cfg Config, signals *Signals, rng *rand.Rand) (*Sculpture, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if signals == nil {
		signals = NewSignals()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Sculpture{
		cfg:     cfg,
		rng:     rng,
		signals: signals,
		morph:   newMorph(&cfg),
	}
	s.signals.SetPhase(PhaseTree)

	mainSeed := 0
	for _, c := range Categories {
		spec := &categorySpecs[c]
		base := spec.seedBase
		if base == 0 {
			base = mainSeed
			mainSeed += cfg.Counts.Of(c)
		}
		s.arenas[c] = s.newArena(c, base)
	}
	s.frame.rot = mgl32.Ident3()
	return s, nil
}

func (s *Sculpture) newArena(c Category, seedBase int) arena {
	cfg := &s.cfg
	spec := &categorySpecs[c]
	n := cfg.Counts.Of(c)

	a := arena{
		cat:     c,
		spec:    spec,
		current: make([]mgl32.Vec3, n),
		seeds:   make([]float32, n),
		chaos:   make([]mgl32.Vec3, n),
		inertia: make([]float32, n),
		spin:    make([]float32, n),
		base:    make([]Color, n),
	}

	switch spec.shape {
	case shapeCone:
		a.tree = GenerateConicalFill(s.rng, n, cfg.TreeRadius, cfg.TreeHeight)
	case shapeOrnamentSpiral:
		a.tree = GenerateSpiralCurve(n, cfg.TreeRadius, cfg.TreeHeight, cfg.OrnamentTurns, 0)
	case shapeRibbonSpiral:
		a.tree = GenerateSpiralCurve(n, cfg.TreeRadius, cfg.TreeHeight, cfg.RibbonTurns, cfg.RibbonOffset)
	}
	cloudRadius := cfg.NebulaRadius
	if c == CategoryRibbon {
		cloudRadius *= cfg.RibbonCloudScale
	}
	a.cloud = GenerateGaussianCloud(s.rng, n, cloudRadius)

	if spec.color == colorBlend {
		a.accent = make([]Color, n)
	}

	for i := 0; i < n; i++ {
		seed := seedBase + i
		fs := float64(seed)
		a.seeds[i] = float32(seed)
		a.chaos[i] = mgl32.Vec3{
			float32(math.Sin(fs) - 0.5),
			float32(math.Cos(fs) - 0.5),
			float32(math.Sin(fs*2) - 0.5),
		}

		if spec.fast {
			a.inertia[i] = cfg.FastInertia
		} else {
			a.inertia[i] = cfg.SlowInertia + float32(seed%50)*cfg.SlowInertiaStep
		}

		switch spec.spin {
		case spinRandom:
			a.spin[i] = (s.rng.Float32() - 0.5) * 2
		case spinFixed:
			a.spin[i] = spec.spinRate
		}

		switch spec.color {
		case colorStatic:
			// Categories with their own seed range cycle by local index.
			k := seed
			if spec.seedBase != 0 {
				k = i
			}
			a.base[i] = spec.palette[k%len(spec.palette)]
		case colorBlend:
			a.base[i] = colorFromHSL(0.3+fs*0.0001, 0.8, 0.5)
			a.accent[i] = starPalette[s.rng.IntN(len(starPalette))].Scale(1.5)
		}
	}
	return a
}

// Config returns the configuration the sculpture was built with.
func (s *Sculpture) Config() Config { return s.cfg }

// Signals returns the shared input store the sculpture samples.
func (s *Sculpture) Signals() *Signals { return s.signals }

// SetEventSink sets the optional receiver of phase and gesture events.
func (s *Sculpture) SetEventSink(sink EventSink) { s.sink = sink }

// T returns the interpolation parameter.
func (s *Sculpture) T() float32 { return s.morph.t }

// Phase returns the current phase label.
func (s *Sculpture) Phase() Phase { return s.morph.phase }

// Morph returns a copy of the global morph state.
func (s *Sculpture) Morph() Morph { return s.morph }

// Count returns the particle count of c.
func (s *Sculpture) Count(c Category) int { return len(s.arenas[c].tree) }

// TreeTargets returns the tree-form targets of c. The slice MUST NOT be mutated.
func (s *Sculpture) TreeTargets(c Category) []mgl32.Vec3 { return s.arenas[c].tree }

// CloudTargets returns the cloud-form targets of c. The slice MUST NOT be mutated.
func (s *Sculpture) CloudTargets(c Category) []mgl32.Vec3 { return s.arenas[c].cloud }

// Current returns the persisted positions of c. The slice MUST NOT be mutated.
func (s *Sculpture) Current(c Category) []mgl32.Vec3 { return s.arenas[c].current }

// Attach binds a renderer buffer to its category. Until a category has a
// buffer, Update skips it entirely.
func (s *Sculpture) Attach(buf *Instances) error {
	if buf == nil {
		return fmt.Errorf("attach: %w: nil buffer", ErrBufferSize)
	}
	if buf.Category >= categoryCount {
		return fmt.Errorf("attach: unknown category %d", buf.Category)
	}
	a := &s.arenas[buf.Category]
	n := len(a.current)
	if len(buf.Transforms) != n || len(buf.Colors) != n {
		return fmt.Errorf("attach %s: %w: %d particles, buffer holds %d transforms and %d colors",
			buf.Category, ErrBufferSize, n, len(buf.Transforms), len(buf.Colors))
	}
	a.out = buf
	return nil
}

// Detach unbinds the buffer of c.
func (s *Sculpture) Detach(c Category) {
	s.arenas[c].out = nil
}

// NewBuffers allocates and attaches a buffer for every category, indexed by
// Category.
func (s *Sculpture) NewBuffers() []*Instances {
	bufs := make([]*Instances, categoryCount)
	for _, c := range Categories {
		bufs[c] = NewInstances(c, s.Count(c))
		s.arenas[c].out = bufs[c]
	}
	return bufs
}

// Update advances the sculpture by one frame. now is the elapsed time in
// seconds; pointer is the cursor in normalized device coordinates ([-1, 1],
// y up). The global morph state advances first, then every category with
// an attached buffer is evaluated and written. Update does not allocate.
func (s *Sculpture) Update(now float64, pointer mgl32.Vec2) Frame {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	in := s.signals.Snapshot()
	if in.Gesture != s.lastGesture {
		s.emit(Event{Type: EventGestureChanged, Gesture: in.Gesture, PrevGesture: s.lastGesture, T: s.morph.t})
		s.lastGesture = in.Gesture
	}
	if prev, changed := s.morph.advance(&in); changed {
		s.signals.SetPhase(s.morph.phase)
		s.emit(Event{Type: EventPhaseChanged, Phase: s.morph.phase, PrevPhase: prev, T: s.morph.t})
	}
	s.prepare(now, pointer)

	var t1 time.Time
	if s.debug {
		t1 = time.Now()
		s.stats.morphTime += t1.Sub(t0)
	}

	for c := range s.arenas {
		a := &s.arenas[c]
		if a.out == nil {
			continue
		}
		s.drive(a)
		if s.debug {
			s.stats.particles += len(a.current)
		}
	}

	if s.debug {
		s.stats.driveTime += time.Since(t1)
		s.stats.frames++
		if s.stats.frames >= debugLogInterval {
			s.debugLog()
		}
	}

	t := s.morph.t
	return Frame{
		Time:         now,
		T:            t,
		Phase:        s.morph.phase,
		CloudCenter:  s.morph.center,
		Orientation:  s.morph.orientation,
		TopStarScale: 1 - t,
		TopStarLight: 3 * (1 - t),
		TopStarSpin:  float32(now * 0.5),
	}
}

// AdvanceParticle evaluates and persists one particle against the current
// global morph state, as Update does for every attached particle. Used by
// hosts that drive particles individually; Update already covers the rest.
func (s *Sculpture) AdvanceParticle(c Category, i int, frameTime float64) mgl32.Vec3 {
	if s.frame.time != frameTime {
		s.prepare(frameTime, s.frame.cursor)
	}
	return s.evaluate(&s.arenas[c], i)
}

func (s *Sculpture) emit(e Event) {
	if s.sink != nil {
		s.sink.EmitEvent(e)
	}
}

// prepare rebuilds the frame scratch from the morph state.
func (s *Sculpture) prepare(now float64, pointer mgl32.Vec2) {
	f := &s.frame
	m := &s.morph
	f.time = now
	f.t = m.t
	f.chaos = float32(math.Sin(float64(m.t)*math.Pi)) * s.cfg.ChaosAmplitude
	f.center = m.center

	yaw := m.orientation[1] + float32(now)*s.cfg.AutoRotate
	f.rot = mgl32.Rotate3DX(m.orientation[0]).
		Mul3(mgl32.Rotate3DY(yaw)).
		Mul3(mgl32.Rotate3DZ(m.orientation[2]))

	f.cursor = pointer
	f.pointer = mgl32.Vec3{
		pointer[0] * s.cfg.PointerScale,
		pointer[1] * s.cfg.PointerScale,
		s.cfg.PointerDepth,
	}
	f.repel = m.t < s.cfg.RepelBelow
}

// evaluate computes particle i's blended target for this frame, eases the
// persisted position toward it and returns the result.
func (s *Sculpture) evaluate(a *arena, i int) mgl32.Vec3 {
	f := &s.frame
	tree := a.tree[i]
	cur := &a.current[i]
	if cur[0] == 0 && cur[1] == 0 && cur[2] == 0 {
		*cur = tree
	}

	anchor := f.rot.Mul3x1(a.cloud[i]).Add(f.center)
	target := lerpVec3(tree, anchor, f.t).Add(a.chaos[i].Mul(f.chaos))

	*cur = lerpVec3(*cur, target, a.inertia[i])
	return *cur
}
