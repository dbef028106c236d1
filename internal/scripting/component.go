package scripting

import (
	"fmt"

	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
)

// LuaComponent is a component whose state and hooks live in a Lua table.
// enabled is an ordinary field so scripts can toggle self.enabled. removed
// is mirrored into the table for reading; the Go flag is authoritative and
// never clears.
type LuaComponent struct {
	engine  *Engine
	table   *lua.LTable
	key     string
	typ     string
	owner   ecs.Handle
	removed bool
}

func (c *LuaComponent) Key() string        { return c.key }
func (c *LuaComponent) Type() string       { return c.typ }
func (c *LuaComponent) Owner() ecs.Handle  { return c.owner }
func (c *LuaComponent) Table() *lua.LTable { return c.table }

func (c *LuaComponent) Enabled() bool {
	return lua.LVAsBool(c.table.RawGetString("enabled"))
}

func (c *LuaComponent) SetEnabled(v bool) {
	c.table.RawSetString("enabled", lua.LBool(v))
}

func (c *LuaComponent) Removed() bool { return c.removed }

func (c *LuaComponent) MarkRemoved() {
	c.removed = true
	c.table.RawSetString("removed", lua.LTrue)
}

// HasHook reports whether the instance or its type defines the callback.
func (c *LuaComponent) HasHook(h actor.Hook) bool {
	_, ok := c.engine.vm.GetField(c.table, h.String()).(*lua.LFunction)
	return ok
}

// Invoke calls the hook as a method. A Lua error comes back as
// *actor.ScriptError.
func (c *LuaComponent) Invoke(h actor.Hook, col *actor.Collision) error {
	fn, ok := c.engine.vm.GetField(c.table, h.String()).(*lua.LFunction)
	if !ok {
		return nil
	}
	args := []lua.LValue{c.table}
	if col != nil {
		args = append(args, c.engine.collisionValue(col))
	}
	if err := c.engine.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return &actor.ScriptError{ComponentKey: c.key, Hook: h, Message: luaMessage(err)}
	}
	return nil
}

// SetProperty stores a scene or template override on the instance.
func (c *LuaComponent) SetProperty(name string, value any) error {
	v, err := toLValue(value)
	if err != nil {
		return err
	}
	c.table.RawSetString(name, v)
	return nil
}

// Get reads a field through the instance's metatable.
func (c *LuaComponent) Get(name string) lua.LValue {
	return c.engine.vm.GetField(c.table, name)
}

func toLValue(v any) (lua.LValue, error) {
	switch v := v.(type) {
	case bool:
		return lua.LBool(v), nil
	case int:
		return lua.LNumber(v), nil
	case int64:
		return lua.LNumber(v), nil
	case float64:
		return lua.LNumber(v), nil
	case string:
		return lua.LString(v), nil
	}
	return lua.LNil, fmt.Errorf("unsupported override type %T", v)
}

// fromLValue converts a script value into the Go kinds property setters take.
func fromLValue(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	}
	return nil
}
