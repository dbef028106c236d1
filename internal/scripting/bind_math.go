package scripting

import (
	"fmt"

	"github.com/lumen2d/lumen/internal/vmath"
	lua "github.com/yuin/gopher-lua"
)

const vectorTypeName = "Vector2"

// registerMath installs the Vector2 class: Vector2(x, y) constructs,
// Vector2.Distance and Vector2.Dot are static helpers.
func (e *Engine) registerMath() {
	L := e.vm
	mt := L.NewTypeMetatable(vectorTypeName)
	methods := map[string]lua.LValue{
		"Normalize": L.NewFunction(vectorNormalize),
		"Length":    L.NewFunction(vectorLength),
	}
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		v := checkVectorPtr(L, 1)
		switch key := L.CheckString(2); key {
		case "x":
			L.Push(lua.LNumber(v.X))
		case "y":
			L.Push(lua.LNumber(v.Y))
		default:
			if m, ok := methods[key]; ok {
				L.Push(m)
			} else {
				L.Push(lua.LNil)
			}
		}
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(vectorNewIndex))
	L.SetField(mt, "__add", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.vectorValue(checkVector(L, 1).Add(checkVector(L, 2))))
		return 1
	}))
	L.SetField(mt, "__sub", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.vectorValue(checkVector(L, 1).Sub(checkVector(L, 2))))
		return 1
	}))
	L.SetField(mt, "__mul", L.NewFunction(func(L *lua.LState) int {
		// vector * number or number * vector
		if n, ok := L.Get(1).(lua.LNumber); ok {
			L.Push(e.vectorValue(checkVector(L, 2).Scale(float64(n))))
			return 1
		}
		L.Push(e.vectorValue(checkVector(L, 1).Scale(float64(L.CheckNumber(2)))))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkVector(L, 1) == checkVector(L, 2)))
		return 1
	}))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		v := checkVector(L, 1)
		L.Push(lua.LString(fmt.Sprintf("(%g, %g)", v.X, v.Y)))
		return 1
	}))

	class := L.NewTable()
	L.SetFuncs(class, map[string]lua.LGFunction{
		"Distance": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkVector(L, 1).Distance(checkVector(L, 2))))
			return 1
		},
		"Dot": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkVector(L, 1).Dot(checkVector(L, 2))))
			return 1
		},
	})
	classMeta := L.NewTable()
	L.SetField(classMeta, "__call", L.NewFunction(func(L *lua.LState) int {
		// argument 1 is the class table itself
		x := float64(L.OptNumber(2, 0))
		y := float64(L.OptNumber(3, 0))
		L.Push(e.vectorValue(vmath.V(x, y)))
		return 1
	}))
	L.SetMetatable(class, classMeta)
	L.SetGlobal(vectorTypeName, class)
}

func (e *Engine) vectorValue(v vmath.Vec2) *lua.LUserData {
	ud := e.vm.NewUserData()
	ud.Value = &v
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(vectorTypeName))
	return ud
}

func checkVector(L *lua.LState, n int) vmath.Vec2 {
	return *checkVectorPtr(L, n)
}

func checkVectorPtr(L *lua.LState, n int) *vmath.Vec2 {
	ud := L.CheckUserData(n)
	v, ok := ud.Value.(*vmath.Vec2)
	if !ok {
		L.ArgError(n, "Vector2 expected")
		return nil
	}
	return v
}

// vectorNormalize scales the vector in place and returns its old length.
func vectorNormalize(L *lua.LState) int {
	p := checkVectorPtr(L, 1)
	n, length := p.Normalize()
	*p = n
	L.Push(lua.LNumber(length))
	return 1
}

func vectorLength(L *lua.LState) int {
	L.Push(lua.LNumber(checkVector(L, 1).Length()))
	return 1
}

func vectorNewIndex(L *lua.LState) int {
	v := checkVectorPtr(L, 1)
	switch key := L.CheckString(2); key {
	case "x":
		v.X = float64(L.CheckNumber(3))
	case "y":
		v.Y = float64(L.CheckNumber(3))
	default:
		L.RaiseError("Vector2 has no field %q", key)
	}
	return 0
}
