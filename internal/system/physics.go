package system

import (
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/world"
)

// PhysicsSystem advances the physics world one fixed step. Contact hooks
// run from inside the step. Phase 9 (Physics).
type PhysicsSystem struct {
	world *world.State
	steps int
}

func NewPhysicsSystem(ws *world.State) *PhysicsSystem {
	return &PhysicsSystem{world: ws}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(_ time.Duration) {
	if s.world.StepPhysics() {
		s.steps++
	}
}

// Steps returns how many steps have run.
func (s *PhysicsSystem) Steps() int { return s.steps }
