package actor

import (
	"fmt"

	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/vmath"
)

// Hook names one optional lifecycle callback a component may expose.
type Hook int

const (
	HookStart Hook = iota
	HookUpdate
	HookLateUpdate
	HookDestroy
	HookReady
	HookTriggerEnter
	HookTriggerExit
	HookCollisionEnter
	HookCollisionExit
)

var hookNames = [...]string{
	"OnStart", "OnUpdate", "OnLateUpdate", "OnDestroy", "Ready",
	"OnTriggerEnter", "OnTriggerExit", "OnCollisionEnter", "OnCollisionExit",
}

// String returns the callback name scripts define, e.g. "OnUpdate".
func (h Hook) String() string {
	if h < 0 || int(h) >= len(hookNames) {
		return "Unknown"
	}
	return hookNames[h]
}

// Component is a behavior unit attached to an actor. Scripted and native
// components both implement it.
//
// Removed is one-way: once MarkRemoved has been called the component never
// runs another hook except its single OnDestroy notification.
type Component interface {
	Key() string
	Type() string
	Enabled() bool
	SetEnabled(bool)
	Removed() bool
	MarkRemoved()
	// Owner is the handle of the owning actor; it never keeps the actor alive.
	Owner() ecs.Handle
	HasHook(Hook) bool
	// Invoke runs hook. col is non-nil only for trigger and collision hooks.
	// Errors raised inside the hook body come back as *ScriptError.
	Invoke(hook Hook, col *Collision) error
}

// Collision is handed to trigger and collision hooks.
type Collision struct {
	Other            *Actor
	Point            vmath.Vec2
	RelativeVelocity vmath.Vec2
	Normal           vmath.Vec2
}

// ScriptError reports a failure inside one hook invocation.
type ScriptError struct {
	ComponentKey string
	Hook         Hook
	Message      string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.ComponentKey, e.Hook, e.Message)
}
