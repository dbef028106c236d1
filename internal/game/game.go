// Package game wires the frame-phase systems around the engine state and
// drives them at a fixed frame rate.
package game

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lumen2d/lumen/internal/audio"
	coresys "github.com/lumen2d/lumen/internal/core/system"
	"github.com/lumen2d/lumen/internal/input"
	"github.com/lumen2d/lumen/internal/render"
	"github.com/lumen2d/lumen/internal/system"
	"github.com/lumen2d/lumen/internal/world"
	"go.uber.org/zap"
)

// Deps are the collaborators of one game. Events may be nil when no terminal
// is attached.
type Deps struct {
	State     *world.State
	Input     *input.State
	Queues    *render.Queues
	Camera    *render.Camera
	Presenter render.Presenter
	Audio     *audio.Manager
	Events    <-chan tcell.Event
	Log       *zap.Logger
}

// Game owns the system runner and the frame loop.
type Game struct {
	runner    *coresys.Runner
	state     *world.State
	input     *input.State
	events    <-chan tcell.Event
	interval  time.Duration
	maxFrames int
	log       *zap.Logger
}

// New registers one system per phase. interval is the frame period handed
// to systems; maxFrames of 0 means no limit.
func New(deps Deps, interval time.Duration, maxFrames int) *Game {
	if interval <= 0 {
		interval = time.Second / 60
	}
	runner := coresys.NewRunner()
	ws := deps.State
	runner.Register(system.NewStartSystem(ws))
	runner.Register(system.NewAdmitSystem(ws))
	runner.Register(system.NewReadySystem(ws))
	runner.Register(system.NewMergeSystem(ws))
	runner.Register(system.NewUpdateSystem(ws))
	runner.Register(system.NewLateUpdateSystem(ws))
	runner.Register(system.NewInputSystem(deps.Input))
	runner.Register(system.NewComponentCleanupSystem(ws))
	runner.Register(system.NewActorCleanupSystem(ws))
	runner.Register(system.NewEventSystem(ws.Bus))
	runner.Register(system.NewPhysicsSystem(ws))
	runner.Register(system.NewRenderSystem(deps.Queues, deps.Camera, deps.Presenter, deps.Audio, deps.Log))
	runner.Register(system.NewSceneSystem(ws))

	return &Game{
		runner:    runner,
		state:     ws,
		input:     deps.Input,
		events:    deps.Events,
		interval:  interval,
		maxFrames: maxFrames,
		log:       deps.Log,
	}
}

// Frame feeds pending terminal events to input, runs every phase once and
// advances the frame counter.
func (g *Game) Frame() {
	g.drainEvents()
	start := time.Now()
	g.runner.Tick(g.interval)
	if took := time.Since(start); took > g.interval {
		phase, d := g.runner.Slowest()
		g.log.Debug("slow frame",
			zap.Int("frame", g.state.Frame()),
			zap.Duration("took", took),
			zap.Stringer("phase", phase),
			zap.Duration("phase_took", d),
		)
	}
	g.state.AdvanceFrame()
}

func (g *Game) drainEvents() {
	if g.events == nil {
		return
	}
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				g.events = nil
				return
			}
			if k, isKey := ev.(*tcell.EventKey); isKey && isInterrupt(k) {
				g.state.Quit()
			}
			g.input.HandleEvent(ev)
		default:
			return
		}
	}
}

// isInterrupt matches Ctrl+C whether the terminal reports it as a control
// key or as a rune with the Ctrl modifier.
func isInterrupt(k *tcell.EventKey) bool {
	if k.Key() == tcell.KeyCtrlC {
		return true
	}
	return k.Key() == tcell.KeyRune && k.Modifiers()&tcell.ModCtrl != 0 && (k.Rune() == 'c' || k.Rune() == 'C')
}

// Done reports whether the loop should stop after the current frame.
func (g *Game) Done() bool {
	return g.state.Quitting() || (g.maxFrames > 0 && g.state.Frame() >= g.maxFrames)
}

// Run ticks frames until Application.Quit, a failed scene transition, the
// frame limit or ctx cancellation. It returns the error recorded by a failed
// transition, if any.
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.log.Info("game loop started", zap.Duration("frame", g.interval))
	for {
		g.Frame()
		if g.Done() {
			g.log.Info("game loop stopped", zap.Int("frames", g.state.Frame()))
			return g.state.Err()
		}
		select {
		case <-ctx.Done():
			g.log.Info("game loop cancelled", zap.Int("frames", g.state.Frame()))
			return nil
		case <-ticker.C:
		}
	}
}

// Runner exposes the system runner, e.g. to step a single phase in tests.
func (g *Game) Runner() *coresys.Runner { return g.runner }
