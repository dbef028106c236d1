package system

import (
	"time"

	"github.com/lumen2d/lumen/internal/audio"
	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/render"
	"go.uber.org/zap"
)

// RenderSystem presents the frame's draw requests, clears the queues and
// applies queued audio requests. Phase 10 (Render).
type RenderSystem struct {
	queues    *render.Queues
	camera    *render.Camera
	presenter render.Presenter
	audio     *audio.Manager
	log       *zap.Logger
}

func NewRenderSystem(q *render.Queues, cam *render.Camera, p render.Presenter, am *audio.Manager, log *zap.Logger) *RenderSystem {
	return &RenderSystem{queues: q, camera: cam, presenter: p, audio: am, log: log}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	s.queues.Sort()
	if err := s.presenter.Present(s.queues, s.camera); err != nil {
		s.log.Error("present failed", zap.Error(err))
	}
	s.queues.Reset()
	if s.audio != nil {
		s.audio.Flush()
	}
}
