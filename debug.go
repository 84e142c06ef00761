package spruce

import (
	"fmt"
	"math"
	"os"
	"time"
)

// debugLogInterval is the number of frames aggregated per stats line.
const debugLogInterval = 60

// debugStats accumulates frame timing between two log lines.
// Only populated when Sculpture.debug is true.
type debugStats struct {
	morphTime time.Duration
	driveTime time.Duration
	particles int
	frames    int
}

// SetDebugMode enables timing stats on stderr. Each line averages
// debugLogInterval frames.
func (s *Sculpture) SetDebugMode(enabled bool) {
	s.debug = enabled
	s.stats = debugStats{}
}

// debugLog prints the averaged stats to stderr and resets them.
func (s *Sculpture) debugLog() {
	st := s.stats
	s.stats = debugStats{}
	if !s.debug || st.frames == 0 {
		return
	}
	n := time.Duration(st.frames)
	_, _ = fmt.Fprintf(os.Stderr,
		"[spruce] morph: %v | drive: %v | total: %v | particles: %d | t: %.3f | phase: %s\n",
		st.morphTime/n, st.driveTime/n, (st.morphTime+st.driveTime)/n,
		st.particles/st.frames, s.morph.t, s.morph.phase)
	debugCheckFinite(s)
}

// debugCheckFinite warns on stderr when any persisted position has gone
// non-finite. Non-finite input is clamped at the adapter, so this firing
// means a bad Config slipped past validation.
func debugCheckFinite(s *Sculpture) {
	for c := range s.arenas {
		a := &s.arenas[c]
		for i, p := range a.current {
			if !finite32(p[0]) || !finite32(p[1]) || !finite32(p[2]) {
				_, _ = fmt.Fprintf(os.Stderr, "[spruce] warning: %s particle %d is not finite: %v\n",
					a.cat, i, p)
				break
			}
		}
	}
}

func finite32(v float32) bool {
	return !isNaN32(v) && v <= math.MaxFloat32 && v >= -math.MaxFloat32
}
