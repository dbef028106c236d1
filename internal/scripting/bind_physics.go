package scripting

import (
	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/component"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/vmath"
	lua "github.com/yuin/gopher-lua"
)

const rigidbodyTypeName = "Rigidbody"

// registerPhysics installs the Rigidbody userdata type and the Physics
// namespace.
func (e *Engine) registerPhysics() {
	L := e.vm
	methods := make(map[string]lua.LValue)
	for name, fn := range map[string]func(*lua.LState, *component.Rigidbody) int{
		"GetPosition": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(e.vectorValue(r.Position()))
			return 1
		},
		"GetRotation": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(lua.LNumber(r.RotationDegrees()))
			return 1
		},
		"GetVelocity": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(e.vectorValue(r.Velocity()))
			return 1
		},
		"GetAngularVelocity": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(lua.LNumber(r.AngularVelocity()))
			return 1
		},
		"GetGravityScale": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(lua.LNumber(r.CurrentGravityScale()))
			return 1
		},
		"GetUpDirection": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(e.vectorValue(r.UpDirection()))
			return 1
		},
		"GetRightDirection": func(L *lua.LState, r *component.Rigidbody) int {
			L.Push(e.vectorValue(r.RightDirection()))
			return 1
		},
		"Ready": func(L *lua.LState, r *component.Rigidbody) int {
			r.Ready()
			return 0
		},
		"AddForce": func(L *lua.LState, r *component.Rigidbody) int {
			r.AddForce(checkVector(L, 2))
			return 0
		},
		"SetVelocity": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetVelocity(checkVector(L, 2))
			return 0
		},
		"SetPosition": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetPosition(checkVector(L, 2))
			return 0
		},
		"SetRotation": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetRotation(float64(L.CheckNumber(2)))
			return 0
		},
		"SetAngularVelocity": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetAngularVelocity(float64(L.CheckNumber(2)))
			return 0
		},
		"SetGravityScale": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetGravityScale(float64(L.CheckNumber(2)))
			return 0
		},
		"SetUpDirection": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetUpDirection(checkVector(L, 2))
			return 0
		},
		"SetRightDirection": func(L *lua.LState, r *component.Rigidbody) int {
			r.SetRightDirection(checkVector(L, 2))
			return 0
		},
	} {
		fn := fn
		methods[name] = L.NewFunction(func(L *lua.LState) int {
			return fn(L, checkRigidbody(L, 1))
		})
	}

	mt := L.NewTypeMetatable(rigidbodyTypeName)
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		r := checkRigidbody(L, 1)
		key := L.CheckString(2)
		if m, ok := methods[key]; ok {
			L.Push(m)
			return 1
		}
		if key == "actor" {
			a, _ := e.world.Actors.Resolve(r.Owner())
			L.Push(e.actorValue(a))
			return 1
		}
		v, ok := r.Property(key)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(mustLValue(v))
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		r := checkRigidbody(L, 1)
		key := L.CheckString(2)
		if err := r.SetProperty(key, fromLValue(L.Get(3))); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}))

	ns := L.NewTable()
	L.SetFuncs(ns, map[string]lua.LGFunction{
		"Raycast":    e.physicsRaycast,
		"RaycastAll": e.physicsRaycastAll,
	})
	L.SetGlobal("Physics", ns)
}

func (e *Engine) rigidbodyValue(r *component.Rigidbody) *lua.LUserData {
	if ud, ok := e.bodies[r]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = r
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(rigidbodyTypeName))
	e.bodies[r] = ud
	return ud
}

func checkRigidbody(L *lua.LState, n int) *component.Rigidbody {
	ud := L.CheckUserData(n)
	r, ok := ud.Value.(*component.Rigidbody)
	if !ok {
		L.ArgError(n, "Rigidbody expected")
	}
	return r
}

func mustLValue(v any) lua.LValue {
	lv, err := toLValue(v)
	if err != nil {
		return lua.LNil
	}
	return lv
}

// collisionValue builds the table handed to trigger and collision hooks.
func (e *Engine) collisionValue(col *actor.Collision) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("other", e.actorValue(col.Other))
	t.RawSetString("point", e.vectorValue(col.Point))
	t.RawSetString("relative_velocity", e.vectorValue(col.RelativeVelocity))
	t.RawSetString("normal", e.vectorValue(col.Normal))
	return t
}

func (e *Engine) hitValue(h physics.Hit) lua.LValue {
	a, ok := e.world.Actors.Resolve(h.Owner)
	if !ok {
		return lua.LNil
	}
	t := e.vm.NewTable()
	t.RawSetString("actor", e.actorValue(a))
	t.RawSetString("point", e.vectorValue(h.Point))
	t.RawSetString("normal", e.vectorValue(h.Normal))
	t.RawSetString("is_trigger", lua.LBool(h.Sensor))
	t.RawSetString("fraction", lua.LNumber(h.Fraction))
	return t
}

// physicsRaycast returns the nearest hit, or nil when nothing is struck or
// no physics world exists yet.
func (e *Engine) physicsRaycast(L *lua.LState) int {
	pos, dir, dist := rayArgs(L)
	hit, ok := physics.Raycast(e.world.Physics(), pos, dir, dist)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.hitValue(hit))
	return 1
}

// physicsRaycastAll returns every hit along the ray, nearest first.
func (e *Engine) physicsRaycastAll(L *lua.LState) int {
	pos, dir, dist := rayArgs(L)
	t := L.NewTable()
	for _, h := range physics.RaycastAll(e.world.Physics(), pos, dir, dist) {
		if v := e.hitValue(h); v != lua.LNil {
			t.Append(v)
		}
	}
	L.Push(t)
	return 1
}

func rayArgs(L *lua.LState) (pos, dir vmath.Vec2, dist float64) {
	return checkVector(L, 1), checkVector(L, 2), float64(L.CheckNumber(3))
}
