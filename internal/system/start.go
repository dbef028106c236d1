package system

import (
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/world"
)

// StartSystem delivers OnStart to components added at runtime during the
// previous frame. Phase 0 (Start).
type StartSystem struct {
	world *world.State
}

func NewStartSystem(ws *world.State) *StartSystem {
	return &StartSystem{world: ws}
}

func (s *StartSystem) Phase() coresys.Phase { return coresys.PhaseStart }

func (s *StartSystem) Update(_ time.Duration) {
	s.world.RunStartQueue()
}

// AdmitSystem moves staged actors into the live list and runs their OnStart
// hooks, in staging order. Phase 1 (Admit).
type AdmitSystem struct {
	world *world.State
}

func NewAdmitSystem(ws *world.State) *AdmitSystem {
	return &AdmitSystem{world: ws}
}

func (s *AdmitSystem) Phase() coresys.Phase { return coresys.PhaseAdmit }

func (s *AdmitSystem) Update(_ time.Duration) {
	for _, a := range s.world.Actors.Admit() {
		a.Start()
	}
}

// ReadySystem runs Ready on queued native components, creating physics
// bodies. Phase 2 (Ready).
type ReadySystem struct {
	world *world.State
}

func NewReadySystem(ws *world.State) *ReadySystem {
	return &ReadySystem{world: ws}
}

func (s *ReadySystem) Phase() coresys.Phase { return coresys.PhaseReady }

func (s *ReadySystem) Update(_ time.Duration) {
	for _, a := range s.world.Actors.Live() {
		a.RunReady()
	}
}

// MergeSystem moves components staged during the previous frame into their
// actor's live map. Phase 3 (Merge).
type MergeSystem struct {
	world *world.State
}

func NewMergeSystem(ws *world.State) *MergeSystem {
	return &MergeSystem{world: ws}
}

func (s *MergeSystem) Phase() coresys.Phase { return coresys.PhaseMerge }

func (s *MergeSystem) Update(_ time.Duration) {
	refresh := s.world.Options().RefreshHookCaches
	for _, a := range s.world.Actors.Live() {
		if a.MergePending() > 0 && refresh {
			a.InvalidateCaches()
		}
	}
}
