package world

import (
	"fmt"

	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/component"
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/core/event"
	"github.com/lumen2d/lumen/internal/data"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/physics/box2dworld"
	"github.com/lumen2d/lumen/internal/vmath"
	"go.uber.org/zap"
)

// ComponentFactory builds scripted components and frees their script state
// once the engine has dropped them.
type ComponentFactory interface {
	Build(owner *actor.Actor, typ, key string) (actor.Component, error)
	Release(c actor.Component)
}

// EventDeliverer calls a bus subscriber. The scripting layer implements it
// next to ComponentFactory.
type EventDeliverer interface {
	Deliver(sub event.Subscriber, payload any) error
}

// PropertySetter is implemented by components that accept scene and
// template overrides.
type PropertySetter interface {
	SetProperty(name string, value any) error
}

// BodyOwner is implemented by components that own a physics body.
type BodyOwner interface {
	DestroyBody()
}

// Options are the engine knobs taken from config.
type Options struct {
	Gravity            vmath.Vec2
	TimeStep           float64
	VelocityIterations int
	PositionIterations int
	// RefreshHookCaches drops an actor's hook caches whenever new components
	// are merged into it, so late additions join OnUpdate and friends.
	RefreshHookCaches bool
}

// DefaultOptions matches the fixed physics step of the frame loop.
func DefaultOptions() Options {
	return Options{
		Gravity:            vmath.V(0, 9.8),
		TimeStep:           physics.TimeStep,
		VelocityIterations: physics.VelocityIterations,
		PositionIterations: physics.PositionIterations,
	}
}

// State is the engine context: the actor registry, the runtime key counter,
// the global OnStart queue, the event bus and the lazily created physics
// world. One per process. Game-loop goroutine only, no locks.
type State struct {
	Actors  *actor.Registry
	Keys    *ecs.KeyAllocator
	Bus     *event.Bus
	Catalog *data.Catalog

	factory  ComponentFactory
	starts   []actor.Component // components added at runtime awaiting OnStart
	world    physics.World
	newWorld func(gravity vmath.Vec2) physics.World
	opts     Options

	scene     string
	nextScene string
	sceneReq  bool
	frame     int
	quit      bool
	err       error

	log *zap.Logger
}

func NewState(catalog *data.Catalog, opts Options, log *zap.Logger) *State {
	s := &State{
		Actors:   actor.NewRegistry(log),
		Keys:     ecs.NewKeyAllocator(),
		Catalog:  catalog,
		opts:     opts,
		newWorld: newBox2DWorld,
		log:      log,
	}
	s.Bus = event.NewBus(s.deliver, log)
	return s
}

func newBox2DWorld(gravity vmath.Vec2) physics.World {
	return box2dworld.New(gravity)
}

// SetFactory installs the scripted component factory. If it also implements
// EventDeliverer it receives bus deliveries.
func (s *State) SetFactory(f ComponentFactory) { s.factory = f }

// SetWorldBuilder replaces the physics world constructor. Must be called
// before the first rigidbody becomes ready.
func (s *State) SetWorldBuilder(fn func(gravity vmath.Vec2) physics.World) { s.newWorld = fn }

func (s *State) Options() Options { return s.opts }

func (s *State) deliver(sub event.Subscriber, payload any) error {
	if d, ok := s.factory.(EventDeliverer); ok {
		return d.Deliver(sub, payload)
	}
	return nil
}

// PhysicsWorld returns the physics world, creating it and installing the
// contact translator on first use.
func (s *State) PhysicsWorld() physics.World {
	if s.world == nil {
		s.world = s.newWorld(s.opts.Gravity)
		s.world.SetContactListener(physics.NewContactTranslator(s.Actors))
		s.log.Debug("physics world created",
			zap.Float64("gravity_x", s.opts.Gravity.X),
			zap.Float64("gravity_y", s.opts.Gravity.Y),
		)
	}
	return s.world
}

// Physics returns the physics world if one exists, without creating it.
func (s *State) Physics() physics.World { return s.world }

// StepPhysics advances the world by one fixed step. No-op until a rigidbody
// has created the world.
func (s *State) StepPhysics() bool {
	if s.world == nil {
		return false
	}
	s.world.Step(s.opts.TimeStep, s.opts.VelocityIterations, s.opts.PositionIterations)
	return true
}

// --- structural mutation ---

// AddComponent builds a component of typ under the next runtime key and
// stages it on a. The component is usable at once; it joins a's live map
// at the next merge phase and receives OnStart at the next start phase.
func (s *State) AddComponent(a *actor.Actor, typ string) (actor.Component, error) {
	key := s.Keys.Next()
	c, err := s.build(a, typ, key)
	if err != nil {
		return nil, err
	}
	a.Stage(c)
	if c.HasHook(actor.HookStart) {
		s.starts = append(s.starts, c)
	}
	if c.HasHook(actor.HookReady) {
		a.QueueReady(c)
	}
	return c, nil
}

// RemoveComponent disables c and flags it removed. An owned physics body is
// destroyed now; the key is erased from a after late update. A component
// owned by another actor is left alone.
func (s *State) RemoveComponent(a *actor.Actor, c actor.Component) {
	if c == nil {
		return
	}
	if c.Owner() != a.Handle() {
		s.log.Warn("remove component from wrong actor",
			zap.String("actor", a.Name()),
			zap.String("component", c.Key()),
		)
		return
	}
	c.SetEnabled(false)
	c.MarkRemoved()
	if b, ok := c.(BodyOwner); ok {
		b.DestroyBody()
	}
	a.StageRemoval(c.Key())
}

// DestroyActor stages a for removal. None of its hooks run afterwards.
func (s *State) DestroyActor(a *actor.Actor) {
	s.Actors.Destroy(a)
}

// DontDestroy keeps a alive across scene transitions.
func (s *State) DontDestroy(a *actor.Actor) {
	s.Actors.Keep(a)
}

// Instantiate builds an actor from the named template and stages it for
// admission. Find sees it immediately. Its start and update caches are
// filled now, so components added before its first update never join them.
// Scene actors fill theirs lazily at first dispatch.
func (s *State) Instantiate(templateName string) (*actor.Actor, error) {
	tpl, err := s.Catalog.Template(templateName)
	if err != nil {
		return nil, err
	}
	a, err := s.spawn(data.ActorDef{Template: templateName}, tpl)
	if err != nil {
		return nil, err
	}
	a.PrimeCaches()
	return a, nil
}

// Release frees whatever an engine-dropped component still holds.
func (s *State) Release(c actor.Component) {
	if b, ok := c.(BodyOwner); ok {
		b.DestroyBody()
	}
	if s.factory != nil {
		s.factory.Release(c)
	}
}

func (s *State) build(owner *actor.Actor, typ, key string) (actor.Component, error) {
	if typ == component.RigidbodyType {
		return component.NewRigidbody(key, owner.Handle(), s), nil
	}
	if s.factory == nil {
		return nil, fmt.Errorf("component %q: %w %q", key, data.ErrUnknownComponentType, typ)
	}
	return s.factory.Build(owner, typ, key)
}

func (s *State) spawn(def data.ActorDef, tpl *data.Template) (*actor.Actor, error) {
	a := s.Actors.Create(def.DisplayName(tpl))
	for _, cd := range def.Resolve(tpl) {
		c, err := s.build(a, cd.Type, cd.Key)
		if err != nil {
			s.Actors.Destroy(a)
			return nil, fmt.Errorf("actor %q: %w", a.Name(), err)
		}
		s.applyProperties(c, cd)
		a.Attach(c)
		if c.HasHook(actor.HookReady) {
			a.QueueReady(c)
		}
	}
	s.Actors.Stage(a)
	return a, nil
}

func (s *State) applyProperties(c actor.Component, cd data.ComponentDef) {
	ps, ok := c.(PropertySetter)
	if !ok {
		return
	}
	for _, name := range cd.PropertyNames() {
		if err := ps.SetProperty(name, cd.Properties[name]); err != nil {
			s.log.Warn("property override ignored",
				zap.String("component", cd.Key),
				zap.String("property", name),
				zap.Error(err),
			)
		}
	}
}

// RunStartQueue delivers OnStart to components added at runtime since the
// last call. Components added meanwhile wait for the next call.
func (s *State) RunStartQueue() int {
	queue := s.starts
	s.starts = nil
	for _, c := range queue {
		owner, ok := s.Actors.Resolve(c.Owner())
		if !ok || owner.FromAnotherScene {
			continue
		}
		owner.Run(c, actor.HookStart)
	}
	return len(queue)
}

// StartQueueLen returns how many components wait for the global OnStart.
func (s *State) StartQueueLen() int { return len(s.starts) }

// --- scenes ---

// LoadScene instantiates every actor of the named scene. They are staged
// and join the live list at the next admit phase.
func (s *State) LoadScene(name string) error {
	scene, err := s.Catalog.LoadScene(name)
	if err != nil {
		return err
	}
	for _, def := range scene.Actors {
		var tpl *data.Template
		if def.Template != "" {
			if tpl, err = s.Catalog.Template(def.Template); err != nil {
				return fmt.Errorf("load scene %s: %w", name, err)
			}
		}
		if _, err := s.spawn(def, tpl); err != nil {
			return fmt.Errorf("load scene %s: %w", name, err)
		}
	}
	s.scene = name
	s.log.Info("scene loaded",
		zap.String("scene", name),
		zap.Int("actors", len(scene.Actors)),
	)
	return nil
}

// RequestScene asks for a transition at the end of the current frame.
func (s *State) RequestScene(name string) {
	s.nextScene = name
	s.sceneReq = true
}

// CurrentScene returns the name of the last loaded scene.
func (s *State) CurrentScene() string { return s.scene }

// ApplySceneChange performs a requested transition: actors not kept are
// dropped, kept ones are flagged FromAnotherScene, then the next scene loads.
func (s *State) ApplySceneChange() error {
	if !s.sceneReq {
		return nil
	}
	s.sceneReq = false
	s.Actors.EndScene(s.Release)
	return s.LoadScene(s.nextScene)
}

// --- application ---

func (s *State) Frame() int     { return s.frame }
func (s *State) AdvanceFrame()  { s.frame++ }
func (s *State) Quit()          { s.quit = true }
func (s *State) Quitting() bool { return s.quit }

// Fail records an error that stops the game loop after the current frame.
func (s *State) Fail(err error) {
	if s.err == nil {
		s.err = err
	}
	s.quit = true
}

// Err returns the error recorded by Fail.
func (s *State) Err() error { return s.err }

func (s *State) Log() *zap.Logger { return s.log }
