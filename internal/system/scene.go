package system

import (
	"fmt"
	"time"

	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/world"
)

// SceneSystem performs a transition requested through Scene.Load. A scene
// that fails to load stops the game loop. Phase 11 (Scene).
type SceneSystem struct {
	world *world.State
}

func NewSceneSystem(ws *world.State) *SceneSystem {
	return &SceneSystem{world: ws}
}

func (s *SceneSystem) Phase() coresys.Phase { return coresys.PhaseScene }

func (s *SceneSystem) Update(_ time.Duration) {
	if err := s.world.ApplySceneChange(); err != nil {
		s.world.Fail(fmt.Errorf("scene transition: %w", err))
	}
}
