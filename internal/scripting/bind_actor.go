package scripting

import (
	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const actorTypeName = "Actor"

// registerActor installs the Actor namespace and the methods of actor
// references. A reference holds the actor's handle; once the actor is freed
// its methods return nil.
func (e *Engine) registerActor() {
	L := e.vm
	mt := L.NewTypeMetatable(actorTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"GetName":           e.actorGetName,
		"GetID":             e.actorGetID,
		"GetComponentByKey": e.actorGetComponentByKey,
		"GetComponent":      e.actorGetComponent,
		"GetComponents":     e.actorGetComponents,
		"AddComponent":      e.actorAddComponent,
		"RemoveComponent":   e.actorRemoveComponent,
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkHandle(L, 1) == checkHandle(L, 2)))
		return 1
	}))

	ns := L.NewTable()
	L.SetFuncs(ns, map[string]lua.LGFunction{
		"Find":        e.actorFind,
		"FindAll":     e.actorFindAll,
		"Instantiate": e.actorInstantiate,
		"Destroy":     e.actorDestroy,
	})
	L.SetGlobal(actorTypeName, ns)
}

func (e *Engine) actorValue(a *actor.Actor) lua.LValue {
	if a == nil {
		return lua.LNil
	}
	ud := e.vm.NewUserData()
	ud.Value = a.Handle()
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(actorTypeName))
	return ud
}

func checkHandle(L *lua.LState, n int) ecs.Handle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(ecs.Handle)
	if !ok {
		L.ArgError(n, "actor expected")
	}
	return h
}

// checkActor resolves argument n; ok is false for a freed actor.
func (e *Engine) checkActor(L *lua.LState, n int) (*actor.Actor, bool) {
	return e.world.Actors.Resolve(checkHandle(L, n))
}

func (e *Engine) actorGetName(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(a.Name()))
	return 1
}

func (e *Engine) actorGetID(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(a.ID()))
	return 1
}

func (e *Engine) actorGetComponentByKey(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	key := L.CheckString(2)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	if c := a.Component(key); c != nil {
		L.Push(e.componentValue(c))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (e *Engine) actorGetComponent(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	typ := L.CheckString(2)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	if c := a.ComponentByType(typ); c != nil {
		L.Push(e.componentValue(c))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

// actorGetComponents returns a sequence table, empty when nothing matches.
func (e *Engine) actorGetComponents(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	typ := L.CheckString(2)
	t := L.NewTable()
	if ok {
		for _, c := range a.ComponentsByType(typ) {
			t.Append(e.componentValue(c))
		}
	}
	L.Push(t)
	return 1
}

func (e *Engine) actorAddComponent(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	typ := L.CheckString(2)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	c, err := e.world.AddComponent(a, typ)
	if err != nil {
		L.RaiseError("AddComponent(%q): %v", typ, err)
		return 0
	}
	L.Push(e.componentValue(c))
	return 1
}

func (e *Engine) actorRemoveComponent(L *lua.LState) int {
	a, ok := e.checkActor(L, 1)
	c := e.componentFrom(L.Get(2))
	if !ok || c == nil {
		return 0
	}
	e.world.RemoveComponent(a, c)
	return 0
}

func (e *Engine) actorFind(L *lua.LState) int {
	L.Push(e.actorValue(e.world.Actors.Find(L.CheckString(1))))
	return 1
}

func (e *Engine) actorFindAll(L *lua.LState) int {
	t := L.NewTable()
	for _, a := range e.world.Actors.FindAll(L.CheckString(1)) {
		t.Append(e.actorValue(a))
	}
	L.Push(t)
	return 1
}

func (e *Engine) actorInstantiate(L *lua.LState) int {
	name := L.CheckString(1)
	a, err := e.world.Instantiate(name)
	if err != nil {
		e.log.Error("instantiate failed", zap.String("template", name), zap.Error(err))
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.actorValue(a))
	return 1
}

func (e *Engine) actorDestroy(L *lua.LState) int {
	if a, ok := e.checkActor(L, 1); ok {
		e.world.DestroyActor(a)
	}
	return 0
}
