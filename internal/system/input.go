package system

import (
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/input"
)

// InputSystem clears the per-frame key and button edges once scripts have
// seen them. Registered after LateUpdateSystem in Phase 5 (LateUpdate).
type InputSystem struct {
	input *input.State
}

func NewInputSystem(in *input.State) *InputSystem {
	return &InputSystem{input: in}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseLateUpdate }

func (s *InputSystem) Update(_ time.Duration) {
	s.input.LateUpdate()
}
