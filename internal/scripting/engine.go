package scripting

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/audio"
	"github.com/lumen2d/lumen/internal/component"
	"github.com/lumen2d/lumen/internal/core/event"
	"github.com/lumen2d/lumen/internal/data"
	"github.com/lumen2d/lumen/internal/input"
	"github.com/lumen2d/lumen/internal/render"
	"github.com/lumen2d/lumen/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Deps are the engine services scripts reach through the Lua API. Nil
// services are replaced by inert defaults.
type Deps struct {
	World  *world.State
	Render *render.Queues
	Camera *render.Camera
	Input  *input.State
	Audio  *audio.Manager
	Log    *zap.Logger
}

// Engine wraps a single gopher-lua VM. It builds scripted components, hands
// bus events to Lua handlers and exposes the engine API as Lua globals.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	world  *world.State
	queues *render.Queues
	camera *render.Camera
	input  *input.State
	audio  *audio.Manager

	// types caches the metatable of each loaded component type; its __index
	// is the type's base table.
	types     map[string]*lua.LTable
	instances map[*lua.LTable]*LuaComponent
	bodies    map[*component.Rigidbody]*lua.LUserData

	sleep   func(time.Duration)
	openURL func(string) error
}

// NewEngine creates the VM, registers the API and installs itself as the
// component factory of deps.World.
func NewEngine(deps Deps) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:        vm,
		log:       deps.Log,
		world:     deps.World,
		queues:    deps.Render,
		camera:    deps.Camera,
		input:     deps.Input,
		audio:     deps.Audio,
		types:     make(map[string]*lua.LTable),
		instances: make(map[*lua.LTable]*LuaComponent),
		bodies:    make(map[*component.Rigidbody]*lua.LUserData),
		sleep:     time.Sleep,
		openURL:   openURL,
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.queues == nil {
		e.queues = render.NewQueues()
	}
	if e.camera == nil {
		e.camera = render.NewCamera()
	}
	if e.input == nil {
		e.input = input.New()
	}
	if e.audio == nil {
		e.audio = audio.New("", false, 44100, e.log)
	}

	e.registerMath()
	e.registerActor()
	e.registerPhysics()
	e.registerApplication()
	e.registerIO()
	e.registerScene()
	e.registerEvent()

	if e.world != nil {
		e.world.SetFactory(e)
	}
	return e
}

// typeMeta loads resources/component_types/<typ>.lua on first use. The file
// must define a global table named typ.
func (e *Engine) typeMeta(typ string) (*lua.LTable, error) {
	if mt, ok := e.types[typ]; ok {
		return mt, nil
	}
	path := e.world.Catalog.ScriptPath(typ)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w %q", data.ErrUnknownComponentType, typ)
	}
	if err := e.vm.DoFile(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	base, ok := e.vm.GetGlobal(typ).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("load %s: no global table %s", path, typ)
	}
	mt := e.vm.NewTable()
	mt.RawSetString("__index", base)
	e.types[typ] = mt
	e.log.Debug("loaded component type", zap.String("type", typ), zap.String("file", path))
	return mt, nil
}

// Build creates a fresh instance table of typ that delegates to the type's
// base table.
func (e *Engine) Build(owner *actor.Actor, typ, key string) (actor.Component, error) {
	mt, err := e.typeMeta(typ)
	if err != nil {
		return nil, err
	}
	inst := e.vm.NewTable()
	inst.RawSetString("key", lua.LString(key))
	inst.RawSetString("type", lua.LString(typ))
	inst.RawSetString("enabled", lua.LTrue)
	inst.RawSetString("removed", lua.LFalse)
	inst.RawSetString("actor", e.actorValue(owner))
	e.vm.SetMetatable(inst, mt)

	c := &LuaComponent{engine: e, table: inst, key: key, typ: typ, owner: owner.Handle()}
	e.instances[inst] = c
	return c, nil
}

// Release forgets the Go side of a dropped component.
func (e *Engine) Release(c actor.Component) {
	switch c := c.(type) {
	case *LuaComponent:
		delete(e.instances, c.table)
	case *component.Rigidbody:
		delete(e.bodies, c)
	}
}

// Deliver calls a Lua event handler as fn(self, payload).
func (e *Engine) Deliver(sub event.Subscriber, payload any) error {
	fn, ok := sub.Fn.(*lua.LFunction)
	if !ok {
		return fmt.Errorf("subscriber is %T, not a Lua function", sub.Fn)
	}
	self, _ := sub.Self.(lua.LValue)
	if self == nil {
		self = lua.LNil
	}
	arg, _ := payload.(lua.LValue)
	if arg == nil {
		arg = lua.LNil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, self, arg); err != nil {
		return errors.New(luaMessage(err))
	}
	return nil
}

// componentValue returns what scripts see for c: the instance table of a
// scripted component, a userdata for a native one.
func (e *Engine) componentValue(c actor.Component) lua.LValue {
	switch c := c.(type) {
	case *LuaComponent:
		return c.table
	case *component.Rigidbody:
		return e.rigidbodyValue(c)
	}
	return lua.LNil
}

// componentFrom maps a script value back to its component.
func (e *Engine) componentFrom(v lua.LValue) actor.Component {
	switch v := v.(type) {
	case *lua.LTable:
		if c, ok := e.instances[v]; ok {
			return c
		}
	case *lua.LUserData:
		if rb, ok := v.Value.(*component.Rigidbody); ok {
			return rb
		}
	}
	return nil
}

// DoString runs a chunk in the VM. Used for tools and tests.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Global returns a global value.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

// SetSleeper replaces the function behind Application.Sleep.
func (e *Engine) SetSleeper(fn func(time.Duration)) { e.sleep = fn }

// SetURLOpener replaces the function behind Application.OpenURL.
func (e *Engine) SetURLOpener(fn func(string) error) { e.openURL = fn }

// TypeCount returns how many component types have been loaded.
func (e *Engine) TypeCount() int { return len(e.types) }

// luaMessage strips the traceback gopher-lua appends to API errors.
func luaMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
