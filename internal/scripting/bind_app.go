package scripting

import (
	"math"
	"os/exec"
	"runtime"
	"time"

	"github.com/lumen2d/lumen/internal/core/event"
	"github.com/lumen2d/lumen/internal/render"
	"github.com/lumen2d/lumen/internal/vmath"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerApplication installs Debug and Application.
func (e *Engine) registerApplication() {
	L := e.vm
	debug := L.NewTable()
	L.SetFuncs(debug, map[string]lua.LGFunction{
		"Log": func(L *lua.LState) int {
			e.log.Info(L.CheckString(1), zap.String("source", "lua"))
			return 0
		},
		"LogError": func(L *lua.LState) int {
			e.log.Error(L.CheckString(1), zap.String("source", "lua"))
			return 0
		},
	})
	L.SetGlobal("Debug", debug)

	app := L.NewTable()
	L.SetFuncs(app, map[string]lua.LGFunction{
		"Quit": func(L *lua.LState) int {
			e.world.Quit()
			return 0
		},
		"Sleep": func(L *lua.LState) int {
			if ms := L.CheckInt(1); ms > 0 {
				e.sleep(time.Duration(ms) * time.Millisecond)
			}
			return 0
		},
		"GetFrame": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.world.Frame()))
			return 1
		},
		"OpenURL": func(L *lua.LState) int {
			url := L.CheckString(1)
			if err := e.openURL(url); err != nil {
				e.log.Warn("open url failed", zap.String("url", url), zap.Error(err))
			}
			return 0
		},
	})
	L.SetGlobal("Application", app)
}

// openURL hands url to the platform's opener without waiting for it.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// registerIO installs Input, Text, Image, Camera and Audio.
func (e *Engine) registerIO() {
	L := e.vm
	in := L.NewTable()
	L.SetFuncs(in, map[string]lua.LGFunction{
		"GetKey": func(L *lua.LState) int {
			L.Push(lua.LBool(e.input.GetKey(L.CheckString(1))))
			return 1
		},
		"GetKeyDown": func(L *lua.LState) int {
			L.Push(lua.LBool(e.input.GetKeyDown(L.CheckString(1))))
			return 1
		},
		"GetKeyUp": func(L *lua.LState) int {
			L.Push(lua.LBool(e.input.GetKeyUp(L.CheckString(1))))
			return 1
		},
		"GetMousePosition": func(L *lua.LState) int {
			L.Push(e.vectorValue(e.input.MousePosition()))
			return 1
		},
		"GetMouseButton": func(L *lua.LState) int {
			L.Push(lua.LBool(e.input.GetMouseButton(L.CheckInt(1))))
			return 1
		},
		"GetMouseButtonDown": func(L *lua.LState) int {
			L.Push(lua.LBool(e.input.GetMouseButtonDown(L.CheckInt(1))))
			return 1
		},
		"GetMouseButtonUp": func(L *lua.LState) int {
			L.Push(lua.LBool(e.input.GetMouseButtonUp(L.CheckInt(1))))
			return 1
		},
		"GetMouseScrollDelta": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.input.MouseScrollDelta()))
			return 1
		},
	})
	L.SetGlobal("Input", in)

	text := L.NewTable()
	L.SetFuncs(text, map[string]lua.LGFunction{
		// Draw(text, x, y, font, size, r, g, b, a)
		"Draw": func(L *lua.LState) int {
			e.queues.DrawText(render.TextRequest{
				Text:  L.CheckString(1),
				X:     checkCoord(L, 2),
				Y:     checkCoord(L, 3),
				Font:  L.OptString(4, ""),
				Size:  L.OptInt(5, 16),
				Color: optColor(L, 6),
			})
			return 0
		},
	})
	L.SetGlobal("Text", text)

	image := L.NewTable()
	L.SetFuncs(image, map[string]lua.LGFunction{
		"Draw": func(L *lua.LState) int {
			e.queues.DrawImage(render.ImageRequest{
				Image:  L.CheckString(1),
				X:      float64(L.CheckNumber(2)),
				Y:      float64(L.CheckNumber(3)),
				ScaleX: 1,
				ScaleY: 1,
				PivotX: 0.5,
				PivotY: 0.5,
				Tint:   render.White,
			})
			return 0
		},
		// DrawEx(image, x, y, rotation, scale_x, scale_y, pivot_x, pivot_y, r, g, b, a, sorting_order)
		"DrawEx": func(L *lua.LState) int {
			e.queues.DrawImage(render.ImageRequest{
				Image:        L.CheckString(1),
				X:            float64(L.CheckNumber(2)),
				Y:            float64(L.CheckNumber(3)),
				Rotation:     float64(L.OptNumber(4, 0)),
				ScaleX:       float64(L.OptNumber(5, 1)),
				ScaleY:       float64(L.OptNumber(6, 1)),
				PivotX:       float64(L.OptNumber(7, 0.5)),
				PivotY:       float64(L.OptNumber(8, 0.5)),
				Tint:         optColor(L, 9),
				SortingOrder: optCoord(L, 13),
			})
			return 0
		},
		"DrawUI": func(L *lua.LState) int {
			e.queues.DrawUI(render.UIRequest{
				Image: L.CheckString(1),
				X:     checkCoord(L, 2),
				Y:     checkCoord(L, 3),
				Tint:  render.White,
			})
			return 0
		},
		// DrawUIEx(image, x, y, r, g, b, a, sorting_order)
		"DrawUIEx": func(L *lua.LState) int {
			e.queues.DrawUI(render.UIRequest{
				Image:        L.CheckString(1),
				X:            checkCoord(L, 2),
				Y:            checkCoord(L, 3),
				Tint:         optColor(L, 4),
				SortingOrder: optCoord(L, 8),
			})
			return 0
		},
		// DrawPixel(x, y, r, g, b, a)
		"DrawPixel": func(L *lua.LState) int {
			e.queues.DrawPixel(render.PixelRequest{
				X:     checkCoord(L, 1),
				Y:     checkCoord(L, 2),
				Color: optColor(L, 3),
			})
			return 0
		},
	})
	L.SetGlobal("Image", image)

	cam := L.NewTable()
	L.SetFuncs(cam, map[string]lua.LGFunction{
		"SetPosition": func(L *lua.LState) int {
			e.camera.Position = vmath.V(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))
			return 0
		},
		"GetPositionX": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.camera.Position.X))
			return 1
		},
		"GetPositionY": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.camera.Position.Y))
			return 1
		},
		"SetZoom": func(L *lua.LState) int {
			e.camera.SetZoom(float64(L.CheckNumber(1)))
			return 0
		},
		"GetZoom": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.camera.Zoom))
			return 1
		},
	})
	L.SetGlobal("Camera", cam)

	audio := L.NewTable()
	L.SetFuncs(audio, map[string]lua.LGFunction{
		// Play(channel, clip, loop)
		"Play": func(L *lua.LState) int {
			e.audio.Play(L.CheckInt(1), L.CheckString(2), L.OptBool(3, false))
			return 0
		},
		"Halt": func(L *lua.LState) int {
			e.audio.Halt(L.OptInt(1, 0))
			return 0
		},
		"SetVolume": func(L *lua.LState) int {
			e.audio.SetVolume(L.CheckInt(1), float64(L.CheckNumber(2)))
			return 0
		},
	})
	L.SetGlobal("Audio", audio)
}

func checkCoord(L *lua.LState, n int) int {
	return int(math.Round(float64(L.CheckNumber(n))))
}

func optCoord(L *lua.LState, n int) int {
	return int(math.Round(float64(L.OptNumber(n, 0))))
}

// optColor reads four channels starting at argument n; missing ones are 255.
func optColor(L *lua.LState, n int) render.Color {
	ch := func(i int) int { return int(math.Round(float64(L.OptNumber(n+i, 255)))) }
	return render.RGBA(ch(0), ch(1), ch(2), ch(3))
}

// registerScene installs Scene.
func (e *Engine) registerScene() {
	L := e.vm
	scene := L.NewTable()
	L.SetFuncs(scene, map[string]lua.LGFunction{
		"Load": func(L *lua.LState) int {
			e.world.RequestScene(L.CheckString(1))
			return 0
		},
		"GetCurrent": func(L *lua.LState) int {
			L.Push(lua.LString(e.world.CurrentScene()))
			return 1
		},
		"DontDestroy": func(L *lua.LState) int {
			if a, ok := e.checkActor(L, 1); ok {
				e.world.DontDestroy(a)
			}
			return 0
		},
	})
	L.SetGlobal("Scene", scene)
}

// registerEvent installs Event. Subscribe(type, self, fn) and
// Unsubscribe(type, self, fn) take effect at the end of the frame;
// Publish(type, payload) delivers at once.
func (e *Engine) registerEvent() {
	L := e.vm
	ev := L.NewTable()
	L.SetFuncs(ev, map[string]lua.LGFunction{
		"Subscribe": func(L *lua.LState) int {
			e.world.Bus.Subscribe(L.CheckString(1), subscriber(L))
			return 0
		},
		"Unsubscribe": func(L *lua.LState) int {
			e.world.Bus.Unsubscribe(L.CheckString(1), subscriber(L))
			return 0
		},
		"Publish": func(L *lua.LState) int {
			e.world.Bus.Publish(L.CheckString(1), L.Get(2))
			return 0
		},
	})
	L.SetGlobal("Event", ev)
}

func subscriber(L *lua.LState) event.Subscriber {
	return event.Subscriber{Self: L.Get(2), Fn: L.CheckFunction(3)}
}
