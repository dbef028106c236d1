package actor

import "github.com/lumen2d/lumen/internal/core/ecs"

// fakeComponent records hook invocations as "key:Hook".
type fakeComponent struct {
	key     string
	typ     string
	enabled bool
	removed bool
	owner   ecs.Handle
	hooks   map[Hook]bool
	calls   *[]string
	fail    Hook // hook that returns an error; -1 for none
	onCall  func(Hook)
}

func newFake(key string, calls *[]string, hooks ...Hook) *fakeComponent {
	c := &fakeComponent{key: key, typ: "Fake", enabled: true, hooks: make(map[Hook]bool), calls: calls, fail: -1}
	for _, h := range hooks {
		c.hooks[h] = true
	}
	return c
}

func (c *fakeComponent) Key() string         { return c.key }
func (c *fakeComponent) Type() string        { return c.typ }
func (c *fakeComponent) Enabled() bool       { return c.enabled }
func (c *fakeComponent) SetEnabled(v bool)   { c.enabled = v }
func (c *fakeComponent) Removed() bool       { return c.removed }
func (c *fakeComponent) MarkRemoved()        { c.removed = true }
func (c *fakeComponent) Owner() ecs.Handle   { return c.owner }
func (c *fakeComponent) HasHook(h Hook) bool { return c.hooks[h] }

func (c *fakeComponent) Invoke(h Hook, _ *Collision) error {
	*c.calls = append(*c.calls, c.key+":"+h.String())
	if c.onCall != nil {
		c.onCall(h)
	}
	if h == c.fail {
		return &ScriptError{ComponentKey: c.key, Hook: h, Message: "boom"}
	}
	return nil
}
