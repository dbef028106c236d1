package system

import (
	"fmt"
	"time"
)

// Runner holds one bucket of systems per phase. A frame walks the buckets
// in phase order; systems sharing a phase run in registration order.
type Runner struct {
	phases [phaseCount][]System
	timing [phaseCount]time.Duration
	count  int
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to the bucket of its phase. A phase outside the known
// range is a wiring bug and panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: register %T with unknown phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
	r.count++
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return r.count }

// Tick runs every phase once and records how long each took.
func (r *Runner) Tick(dt time.Duration) {
	for p := range r.phases {
		r.runPhase(Phase(p), dt)
	}
}

// TickPhase runs only the systems registered for phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || phase >= phaseCount {
		return
	}
	r.runPhase(phase, dt)
}

func (r *Runner) runPhase(p Phase, dt time.Duration) {
	bucket := r.phases[p]
	if len(bucket) == 0 {
		r.timing[p] = 0
		return
	}
	start := time.Now()
	for _, s := range bucket {
		s.Update(dt)
	}
	r.timing[p] = time.Since(start)
}

// Elapsed reports the wall time phase took the last time it ran.
func (r *Runner) Elapsed(phase Phase) time.Duration {
	if phase < 0 || phase >= phaseCount {
		return 0
	}
	return r.timing[phase]
}

// Slowest returns the phase that took longest in the last frame.
func (r *Runner) Slowest() (Phase, time.Duration) {
	var worst Phase
	for p, d := range r.timing {
		if d > r.timing[worst] {
			worst = Phase(p)
		}
	}
	return worst, r.timing[worst]
}
