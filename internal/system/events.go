package system

import (
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/core/event"
)

// EventSystem applies the (un)subscriptions queued during the frame.
// Phase 8 (Events).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.Flush()
}
