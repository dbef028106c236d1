// Package input tracks keyboard and mouse state per frame from tcell events.
//
// Terminals report key presses but not releases, so a key counts as held
// until it has gone HoldFrames frames without a press or repeat.
package input

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lumen2d/lumen/internal/vmath"
)

// HoldFrames is how long a key stays held after its last press event.
const HoldFrames = 6

// Mouse buttons as scripts number them.
const (
	ButtonLeft   = 1
	ButtonMiddle = 2
	ButtonRight  = 3
)

// State is the input snapshot scripts query. Game-loop goroutine only.
type State struct {
	held map[string]int // key -> frames since last press
	down map[string]bool
	up   map[string]bool

	mouse      vmath.Vec2
	buttons    [4]bool
	buttonDown [4]bool
	buttonUp   [4]bool
	scroll     float64
}

func New() *State {
	return &State{
		held: make(map[string]int),
		down: make(map[string]bool),
		up:   make(map[string]bool),
	}
}

// HandleEvent folds one tcell event into the state.
func (s *State) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		for _, name := range KeyNames(ev) {
			s.press(name)
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		s.mouse = vmath.V(float64(x), float64(y))
		s.setButtons(ev.Buttons())
	}
}

func (s *State) press(name string) {
	if _, ok := s.held[name]; !ok {
		s.down[name] = true
	}
	s.held[name] = 0
}

func (s *State) setButtons(mask tcell.ButtonMask) {
	pressed := [4]bool{
		ButtonLeft:   mask&tcell.Button1 != 0,
		ButtonMiddle: mask&tcell.Button3 != 0,
		ButtonRight:  mask&tcell.Button2 != 0,
	}
	for b := ButtonLeft; b <= ButtonRight; b++ {
		switch {
		case pressed[b] && !s.buttons[b]:
			s.buttonDown[b] = true
		case !pressed[b] && s.buttons[b]:
			s.buttonUp[b] = true
		}
		s.buttons[b] = pressed[b]
	}
	if mask&tcell.WheelUp != 0 {
		s.scroll++
	}
	if mask&tcell.WheelDown != 0 {
		s.scroll--
	}
}

// LateUpdate ends the frame: edge flags are cleared and keys without a
// recent press are released, showing up in GetKeyUp next frame.
func (s *State) LateUpdate() {
	clear(s.down)
	clear(s.up)
	for name, idle := range s.held {
		if idle+1 >= HoldFrames {
			delete(s.held, name)
			s.up[name] = true
			continue
		}
		s.held[name] = idle + 1
	}
	s.buttonDown = [4]bool{}
	s.buttonUp = [4]bool{}
	s.scroll = 0
}

func (s *State) GetKey(name string) bool {
	_, ok := s.held[strings.ToLower(name)]
	return ok
}

func (s *State) GetKeyDown(name string) bool { return s.down[strings.ToLower(name)] }
func (s *State) GetKeyUp(name string) bool   { return s.up[strings.ToLower(name)] }

func (s *State) MousePosition() vmath.Vec2 { return s.mouse }
func (s *State) MouseScrollDelta() float64 { return s.scroll }

func (s *State) GetMouseButton(b int) bool     { return validButton(b) && s.buttons[b] }
func (s *State) GetMouseButtonDown(b int) bool { return validButton(b) && s.buttonDown[b] }
func (s *State) GetMouseButtonUp(b int) bool   { return validButton(b) && s.buttonUp[b] }

func validButton(b int) bool { return b >= ButtonLeft && b <= ButtonRight }

// KeyNames maps a key event to the names scripts use. Enter answers to both
// "enter" and "return".
func KeyNames(ev *tcell.EventKey) []string {
	switch ev.Key() {
	case tcell.KeyUp:
		return []string{"up"}
	case tcell.KeyDown:
		return []string{"down"}
	case tcell.KeyLeft:
		return []string{"left"}
	case tcell.KeyRight:
		return []string{"right"}
	case tcell.KeyEscape:
		return []string{"escape"}
	case tcell.KeyEnter:
		return []string{"enter", "return"}
	case tcell.KeyTab:
		return []string{"tab"}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []string{"backspace"}
	case tcell.KeyDelete:
		return []string{"delete"}
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return []string{"space"}
		}
		return []string{strings.ToLower(string(r))}
	}
	return nil
}
