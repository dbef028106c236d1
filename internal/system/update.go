package system

import (
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/world"
)

// UpdateSystem runs OnUpdate on every live actor. Phase 4 (Update).
type UpdateSystem struct {
	world *world.State
}

func NewUpdateSystem(ws *world.State) *UpdateSystem {
	return &UpdateSystem{world: ws}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(_ time.Duration) {
	for _, a := range s.world.Actors.Live() {
		a.Update()
	}
}

// LateUpdateSystem runs OnLateUpdate, then OnDestroy for components removed
// this frame. Phase 5 (LateUpdate).
type LateUpdateSystem struct {
	world *world.State
}

func NewLateUpdateSystem(ws *world.State) *LateUpdateSystem {
	return &LateUpdateSystem{world: ws}
}

func (s *LateUpdateSystem) Phase() coresys.Phase { return coresys.PhaseLateUpdate }

func (s *LateUpdateSystem) Update(_ time.Duration) {
	for _, a := range s.world.Actors.Live() {
		a.LateUpdate()
	}
}
