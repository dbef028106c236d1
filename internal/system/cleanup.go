package system

import (
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/world"
)

// ComponentCleanupSystem erases component keys removed during the frame and
// releases what the dropped components still hold. Phase 6 (ComponentCleanup).
type ComponentCleanupSystem struct {
	world *world.State
}

func NewComponentCleanupSystem(ws *world.State) *ComponentCleanupSystem {
	return &ComponentCleanupSystem{world: ws}
}

func (s *ComponentCleanupSystem) Phase() coresys.Phase { return coresys.PhaseComponentCleanup }

func (s *ComponentCleanupSystem) Update(_ time.Duration) {
	refresh := s.world.Options().RefreshHookCaches
	for _, a := range s.world.Actors.Live() {
		erased := a.EraseRemoved()
		for _, c := range erased {
			s.world.Release(c)
		}
		if refresh && len(erased) > 0 {
			a.InvalidateCaches()
		}
	}
}

// ActorCleanupSystem flushes the deferred actor destruction queue.
// Phase 7 (ActorCleanup).
type ActorCleanupSystem struct {
	world *world.State
}

func NewActorCleanupSystem(ws *world.State) *ActorCleanupSystem {
	return &ActorCleanupSystem{world: ws}
}

func (s *ActorCleanupSystem) Phase() coresys.Phase { return coresys.PhaseActorCleanup }

func (s *ActorCleanupSystem) Update(_ time.Duration) {
	s.world.Actors.FlushDestroyed(s.world.Release)
}
