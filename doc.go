// Package spruce is a gesture-driven particle sculpture: a few thousand
// particles that hold the shape of a decorated Christmas tree and bloom into
// a drifting nebula when a hand opens.
//
// The package owns the simulation only. Rendering hosts live in
// spruce/scene ([Ebitengine]) and spruce/term ([tcell]); hand tracking lives
// in spruce/gesture.
//
// # Quick start
//
//	signals := spruce.NewSignals()
//	s, err := spruce.NewSculpture(spruce.DefaultConfig(), signals, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	bufs := s.NewBuffers()
//
//	// every frame:
//	frame := s.Update(elapsed, pointerNDC)
//	// draw bufs[i].Transforms and bufs[i].Colors
//
// # Morph
//
// A single interpolation parameter t runs from 0 (tree) to 1 (nebula). Each
// frame it eases toward a target read from [Signals]: the openness of a
// tracked hand, or 1 for an open palm and 0 otherwise. Every particle has a
// tree target and a cloud target generated once at construction; its
// position is a blend of the two plus a chaos offset that peaks mid
// transition, smoothed by a per-particle inertia.
//
// [Phase] labels the morph (tree, blooming, nebula, collapsing) and is
// published back to Signals and to an optional [EventSink] whenever it
// changes.
//
// # Categories
//
// Particles are split into six [Category] groups, each with its own
// geometry, inertia, scale, spin and color behavior. A category is only
// simulated while a buffer is attached to it with [Sculpture.Attach].
//
// # Configuration
//
// [Config] holds every tunable with YAML tags. [LoadConfig] and
// [ParseConfig] overlay a file onto [DefaultConfig] and validate the result.
//
// [Ebitengine]: https://ebitengine.org
// [tcell]: https://github.com/gdamore/tcell
package spruce
