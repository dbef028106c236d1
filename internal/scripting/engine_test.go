package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/component"
	"github.com/lumen2d/lumen/internal/core/event"
	"github.com/lumen2d/lumen/internal/data"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/physics/physicstest"
	"github.com/lumen2d/lumen/internal/render"
	"github.com/lumen2d/lumen/internal/vmath"
	"github.com/lumen2d/lumen/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var scripts = map[string]string{
	"component_types/Counter.lua": `
Counter = { speed = 1 }
function Counter:OnStart() self.started = true end
function Counter:OnUpdate() self.ticks = (self.ticks or 0) + self.speed end
`,
	"component_types/Bad.lua": `
Bad = {}
function Bad:OnUpdate() error("boom") end
`,
	"component_types/Probe.lua": `
Probe = {}
function Probe:OnCollisionEnter(col)
  self.other = col.other:GetName()
  self.px = col.point.x
  self.rvx = col.relative_velocity.x
end
`,
	"component_types/Mortal.lua": `
CALLS = {}
Mortal = {}
function Mortal:OnUpdate() table.insert(CALLS, "update") end
function Mortal:OnLateUpdate() table.insert(CALLS, "late") end
function Mortal:OnDestroy() table.insert(CALLS, "destroy") end
`,
	"component_types/NoTable.lua": `x = 1`,
	"actor_templates/Crate.yaml": `
components:
  c:
    type: Counter
    speed: 5
`,
	"scenes/start.yaml": `
actors:
  - name: Crate
    template: Crate
`,
}

type harness struct {
	engine  *Engine
	state   *world.State
	queues  *render.Queues
	camera  *render.Camera
	logs    *observer.ObservedLogs
	physics *physicstest.World
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	for rel, body := range scripts {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	h := &harness{
		queues: render.NewQueues(),
		camera: render.NewCamera(),
		logs:   logs,
	}
	h.state = world.NewState(data.NewCatalog(root, component.RigidbodyType), world.DefaultOptions(), log)
	h.state.SetWorldBuilder(func(g vmath.Vec2) physics.World {
		h.physics = physicstest.NewWorld(g)
		return h.physics
	})
	h.engine = NewEngine(Deps{World: h.state, Render: h.queues, Camera: h.camera, Log: log})
	t.Cleanup(h.engine.Close)
	return h
}

// liveActor creates and admits an actor.
func (h *harness) liveActor(name string) *actor.Actor {
	a := h.state.Actors.Create(name)
	h.state.Actors.Stage(a)
	h.state.Actors.Admit()
	return a
}

func (h *harness) run(t *testing.T, src string) {
	t.Helper()
	if err := h.engine.DoString(src); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) global(name string) lua.LValue { return h.engine.Global(name) }

func TestBuildInstancesShareBase(t *testing.T) {
	h := newHarness(t)
	a := h.liveActor("hero")

	c1, err := h.engine.Build(a, "Counter", "one")
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := h.engine.Build(a, "Counter", "two")
	if h.engine.TypeCount() != 1 {
		t.Errorf("TypeCount = %d", h.engine.TypeCount())
	}
	if !c1.HasHook(actor.HookStart) || !c1.HasHook(actor.HookUpdate) || c1.HasHook(actor.HookDestroy) {
		t.Error("hook detection")
	}

	lc := c1.(*LuaComponent)
	if err := lc.SetProperty("speed", 3); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := c1.Invoke(actor.HookUpdate, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := c2.Invoke(actor.HookUpdate, nil); err != nil {
		t.Fatal(err)
	}
	if got := lc.Get("ticks"); got != lua.LNumber(6) {
		t.Errorf("one ticks = %v", got)
	}
	if got := c2.(*LuaComponent).Get("ticks"); got != lua.LNumber(1) {
		t.Errorf("two ticks = %v", got)
	}
	if lc.Get("key") != lua.LString("one") || lc.Get("type") != lua.LString("Counter") {
		t.Error("identity fields")
	}
	if err := lc.SetProperty("nested", []int{1}); err == nil {
		t.Error("slice override accepted")
	}
}

func TestEnabledFlagIsAField(t *testing.T) {
	h := newHarness(t)
	c, _ := h.engine.Build(h.liveActor("a"), "Counter", "c")
	lc := c.(*LuaComponent)
	lc.Table().RawSetString("enabled", lua.LFalse)
	if c.Enabled() {
		t.Error("script toggle not seen")
	}
	c.MarkRemoved()
	if lc.Get("removed") != lua.LTrue {
		t.Error("removed flag not mirrored")
	}
}

func TestRemovedFlagCannotBeCleared(t *testing.T) {
	h := newHarness(t)
	hero := h.liveActor("hero")
	c, err := h.engine.Build(hero, "Mortal", "m")
	if err != nil {
		t.Fatal(err)
	}
	hero.Attach(c)

	h.run(t, `
hero = Actor.Find("hero")
m = hero:GetComponentByKey("m")
hero:RemoveComponent(m)
m.removed = false
m.enabled = true
`)
	if !c.Removed() {
		t.Fatal("script cleared the removed flag")
	}
	hero.Update()
	hero.LateUpdate()
	hero.LateUpdate()
	calls := h.global("CALLS").(*lua.LTable)
	if calls.Len() != 1 || calls.RawGetInt(1) != lua.LString("destroy") {
		t.Errorf("CALLS has %d entries, want only destroy", calls.Len())
	}
}

func TestScriptError(t *testing.T) {
	h := newHarness(t)
	c, err := h.engine.Build(h.liveActor("a"), "Bad", "b")
	if err != nil {
		t.Fatal(err)
	}
	err = c.Invoke(actor.HookUpdate, nil)
	var se *actor.ScriptError
	if !errors.As(err, &se) || se.ComponentKey != "b" || se.Hook != actor.HookUpdate {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(se.Message, "boom") {
		t.Errorf("message = %q", se.Message)
	}
	if err := c.Invoke(actor.HookStart, nil); err != nil {
		t.Error("missing hook reported an error")
	}
}

func TestBuildErrors(t *testing.T) {
	h := newHarness(t)
	a := h.liveActor("a")
	if _, err := h.engine.Build(a, "Missing", "m"); !errors.Is(err, data.ErrUnknownComponentType) {
		t.Errorf("Missing: %v", err)
	}
	if _, err := h.engine.Build(a, "NoTable", "n"); err == nil {
		t.Error("script without a table accepted")
	}
}

func TestCollisionTable(t *testing.T) {
	h := newHarness(t)
	a := h.liveActor("a")
	b := h.liveActor("wall")
	c, _ := h.engine.Build(a, "Probe", "p")
	col := &actor.Collision{Other: b, Point: vmath.V(1.5, 2), RelativeVelocity: vmath.V(-3, 0)}
	if err := c.Invoke(actor.HookCollisionEnter, col); err != nil {
		t.Fatal(err)
	}
	lc := c.(*LuaComponent)
	if lc.Get("other") != lua.LString("wall") || lc.Get("px") != lua.LNumber(1.5) || lc.Get("rvx") != lua.LNumber(-3) {
		t.Errorf("other=%v px=%v rvx=%v", lc.Get("other"), lc.Get("px"), lc.Get("rvx"))
	}
}

func TestActorAPI(t *testing.T) {
	h := newHarness(t)
	hero := h.liveActor("hero")
	c, _ := h.engine.Build(hero, "Counter", "c")
	hero.Attach(c)

	h.run(t, `
hero = Actor.Find("hero")
name = hero:GetName()
id = hero:GetID()
same = hero == Actor.Find("hero")
missing = Actor.Find("nobody")
counter = hero:GetComponent("Counter")
byKey = hero:GetComponentByKey("c")
none = hero:GetComponents("Nothing")
added = hero:AddComponent("Counter")
addedKey = added.key
visible = hero:GetComponentByKey(addedKey)
`)
	if h.global("name") != lua.LString("hero") || h.global("id") != lua.LNumber(1) {
		t.Errorf("name=%v id=%v", h.global("name"), h.global("id"))
	}
	if h.global("same") != lua.LTrue || h.global("missing") != lua.LNil {
		t.Error("actor identity")
	}
	table := c.(*LuaComponent).Table()
	if h.global("counter") != table || h.global("byKey") != table {
		t.Error("component lookup")
	}
	if n := h.global("none").(*lua.LTable).Len(); n != 0 {
		t.Errorf("GetComponents = %d entries", n)
	}
	if h.global("addedKey") != lua.LString("r0") || h.global("visible") != lua.LNil {
		t.Error("AddComponent staging")
	}

	h.run(t, `hero:RemoveComponent(counter)`)
	if !c.Removed() || c.Enabled() {
		t.Error("RemoveComponent")
	}

	h.run(t, `Actor.Destroy(hero)`)
	h.state.Actors.FlushDestroyed(h.state.Release)
	h.run(t, `gone = hero:GetName()`)
	if h.global("gone") != lua.LNil {
		t.Error("freed actor still resolves")
	}
}

func TestInstantiateFromScript(t *testing.T) {
	h := newHarness(t)
	h.run(t, `
crate = Actor.Instantiate("Crate")
crateName = crate:GetName()
ghost = Actor.Instantiate("Ghost")
found = #Actor.FindAll("Crate")
`)
	if h.global("crateName") != lua.LString("Crate") || h.global("ghost") != lua.LNil {
		t.Error("Instantiate")
	}
	if h.global("found") != lua.LNumber(1) {
		t.Errorf("FindAll = %v", h.global("found"))
	}
	if h.logs.FilterMessage("instantiate failed").Len() != 1 {
		t.Error("failed instantiate not logged")
	}
	a := h.state.Actors.Find("Crate")
	if got := a.Component("c").(*LuaComponent).Get("speed"); got != lua.LNumber(5) {
		t.Errorf("override speed = %v", got)
	}
}

func TestVector2(t *testing.T) {
	h := newHarness(t)
	h.run(t, `
local v = Vector2(3, 4)
len = v:Length()
old = v:Normalize()
vx = v.x
local s = Vector2(1, 2) + Vector2(3, 4)
sx, sy = s.x, s.y
scaled = (2 * Vector2(1, 1)).x
d = Vector2.Distance(Vector2(0, 0), Vector2(0, 2))
dot = Vector2.Dot(Vector2(1, 0), Vector2(0, 1))
eq = Vector2(1, 1) == Vector2(1, 1)
local w = Vector2()
w.y = 7
wy = w.y
str = tostring(Vector2(1, 2))
ok = pcall(function() w.z = 1 end)
`)
	want := map[string]lua.LValue{
		"len": lua.LNumber(5), "old": lua.LNumber(5), "vx": lua.LNumber(0.6),
		"sx": lua.LNumber(4), "sy": lua.LNumber(6), "scaled": lua.LNumber(2),
		"d": lua.LNumber(2), "dot": lua.LNumber(0), "eq": lua.LTrue,
		"wy": lua.LNumber(7), "str": lua.LString("(1, 2)"), "ok": lua.LFalse,
	}
	for name, w := range want {
		if got := h.global(name); got != w {
			t.Errorf("%s = %v, want %v", name, got, w)
		}
	}
}

func TestEventBus(t *testing.T) {
	h := newHarness(t)
	h.run(t, `
H = { name = "h" }
function H.on(self, payload) got = payload; who = self.name end
Event.Subscribe("hit", H, H.on)
Event.Publish("hit", 1)
`)
	if h.global("got") != lua.LNil {
		t.Fatal("subscription applied before flush")
	}
	h.state.Bus.Flush()
	h.run(t, `Event.Publish("hit", 7)`)
	if h.global("got") != lua.LNumber(7) || h.global("who") != lua.LString("h") {
		t.Fatalf("got=%v who=%v", h.global("got"), h.global("who"))
	}
	h.run(t, `Event.Unsubscribe("hit", H, H.on)`)
	h.state.Bus.Flush()
	h.run(t, `Event.Publish("hit", 9)`)
	if h.global("got") != lua.LNumber(7) {
		t.Error("delivered after unsubscribe")
	}

	if err := h.engine.Deliver(event.Subscriber{Fn: "nope"}, nil); err == nil {
		t.Error("non-function subscriber delivered")
	}
}

func TestApplicationAndDebug(t *testing.T) {
	h := newHarness(t)
	var slept time.Duration
	var opened string
	h.engine.SetSleeper(func(d time.Duration) { slept += d })
	h.engine.SetURLOpener(func(u string) error {
		opened = u
		return errors.New("no browser")
	})
	h.state.AdvanceFrame()

	h.run(t, `
Debug.Log("hello")
Debug.LogError("bad thing")
Application.Sleep(5)
Application.Sleep(-1)
Application.OpenURL("https://example.com")
frame = Application.GetFrame()
Application.Quit()
`)
	if h.logs.FilterMessage("hello").FilterField(zap.String("source", "lua")).Len() != 1 {
		t.Error("Debug.Log not logged")
	}
	if h.logs.FilterMessage("bad thing").Len() != 1 {
		t.Error("Debug.LogError not logged")
	}
	if slept != 5*time.Millisecond || opened != "https://example.com" {
		t.Errorf("slept=%v opened=%q", slept, opened)
	}
	if h.logs.FilterMessage("open url failed").Len() != 1 {
		t.Error("OpenURL failure not logged")
	}
	if h.global("frame") != lua.LNumber(1) || !h.state.Quitting() {
		t.Error("Application state")
	}
}

func TestDrawAndCamera(t *testing.T) {
	h := newHarness(t)
	h.run(t, `
Text.Draw("hi", 1.4, 2)
Image.Draw("ball", 0.5, 1)
Image.DrawEx("ball", 1, 2, 90, 2, 2, 0, 0, 255, 0, 0, 128, 5)
Image.DrawUI("icon", 3, 4)
Image.DrawUIEx("icon", 3, 4, 0, 0, 0, 300, -1)
Image.DrawPixel(7, 8, 10, 20, 30)
Camera.SetPosition(2, 3)
Camera.SetZoom(2)
Camera.SetZoom(0)
zoom = Camera.GetZoom()
cx = Camera.GetPositionX()
`)
	q := h.queues
	if len(q.Text) != 1 || q.Text[0] != (render.TextRequest{Text: "hi", X: 1, Y: 2, Size: 16, Color: render.White}) {
		t.Errorf("text = %+v", q.Text)
	}
	if len(q.Images) != 2 {
		t.Fatalf("images = %d", len(q.Images))
	}
	if q.Images[0].ScaleX != 1 || q.Images[0].PivotX != 0.5 || q.Images[0].Tint != render.White {
		t.Errorf("Draw = %+v", q.Images[0])
	}
	ex := q.Images[1]
	if ex.Rotation != 90 || ex.ScaleY != 2 || ex.PivotY != 0 || ex.Tint != (render.Color{R: 255, A: 128}) || ex.SortingOrder != 5 {
		t.Errorf("DrawEx = %+v", ex)
	}
	if len(q.UI) != 2 || q.UI[1].Tint != (render.Color{A: 255}) || q.UI[1].SortingOrder != -1 {
		t.Errorf("ui = %+v", q.UI)
	}
	if len(q.Pixels) != 1 || q.Pixels[0].Color != (render.Color{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixels = %+v", q.Pixels)
	}
	if h.global("zoom") != lua.LNumber(2) || h.global("cx") != lua.LNumber(2) || h.camera.Position != vmath.V(2, 3) {
		t.Error("camera")
	}
}

func TestSceneAPI(t *testing.T) {
	h := newHarness(t)
	if err := h.state.LoadScene("start"); err != nil {
		t.Fatal(err)
	}
	h.state.Actors.Admit()
	h.run(t, `
current = Scene.GetCurrent()
Scene.DontDestroy(Actor.Find("Crate"))
Scene.Load("start")
`)
	if h.global("current") != lua.LString("start") {
		t.Errorf("current = %v", h.global("current"))
	}
	crate := h.state.Actors.Find("Crate")
	if !crate.DontDestroyOnLoad {
		t.Error("DontDestroy")
	}
	if err := h.state.ApplySceneChange(); err != nil {
		t.Fatal(err)
	}
	if !crate.FromAnotherScene || len(h.state.Actors.FindAll("Crate")) != 2 {
		t.Error("scene reload")
	}
}

func TestRigidbodyUserdata(t *testing.T) {
	h := newHarness(t)
	hero := h.liveActor("hero")
	if _, err := h.state.AddComponent(hero, component.RigidbodyType); err != nil {
		t.Fatal(err)
	}
	hero.MergePending()

	h.run(t, `
local hero = Actor.Find("hero")
rb = hero:GetComponent("Rigidbody")
rb.radius = 2
radius = rb.radius
kind = rb.body_type
rb:Ready()
rb:SetVelocity(Vector2(1, 0))
vx = rb:GetVelocity().x
owner = rb.actor:GetName()
same = rawequal(rb, hero:GetComponent("Rigidbody"))
ok = pcall(function() rb.colour = 1 end)
unknown = rb.colour
`)
	want := map[string]lua.LValue{
		"radius": lua.LNumber(2), "kind": lua.LString("dynamic"), "vx": lua.LNumber(1),
		"owner": lua.LString("hero"), "same": lua.LTrue, "ok": lua.LFalse, "unknown": lua.LNil,
	}
	for name, w := range want {
		if got := h.global(name); got != w {
			t.Errorf("%s = %v, want %v", name, got, w)
		}
	}
	if h.physics == nil || len(h.physics.Bodies) != 1 {
		t.Fatal("body not created")
	}
}

func TestPhysicsRaycast(t *testing.T) {
	h := newHarness(t)
	h.run(t, `before = Physics.Raycast(Vector2(0, 0), Vector2(1, 0), 10)`)
	if h.global("before") != lua.LNil {
		t.Error("hit without a world")
	}

	hero := h.liveActor("hero")
	h.state.PhysicsWorld()
	h.physics.Hits = []physics.Hit{
		{Owner: hero.Handle(), Point: vmath.V(4, 0), Fraction: 0.4},
		{Point: vmath.V(1, 0), Fraction: 0.1}, // phantom
		{Owner: hero.Handle(), Point: vmath.V(2, 0), Fraction: 0.2, Sensor: true},
	}
	h.run(t, `
local hit = Physics.Raycast(Vector2(0, 0), Vector2(5, 0), 10)
first = hit.point.x
trigger = hit.is_trigger
who = hit.actor:GetName()
all = #Physics.RaycastAll(Vector2(0, 0), Vector2(1, 0), 10)
`)
	if h.global("first") != lua.LNumber(2) || h.global("trigger") != lua.LTrue || h.global("who") != lua.LString("hero") {
		t.Errorf("first=%v trigger=%v who=%v", h.global("first"), h.global("trigger"), h.global("who"))
	}
	if h.global("all") != lua.LNumber(2) {
		t.Errorf("all = %v", h.global("all"))
	}
	if ray := h.physics.Rays[0]; ray[1] != vmath.V(10, 0) {
		t.Errorf("ray = %v", ray)
	}
}

func TestReleaseForgetsInstances(t *testing.T) {
	h := newHarness(t)
	c, _ := h.engine.Build(h.liveActor("a"), "Counter", "c")
	lc := c.(*LuaComponent)
	if h.engine.componentFrom(lc.Table()) != c {
		t.Fatal("instance not tracked")
	}
	h.engine.Release(c)
	if h.engine.componentFrom(lc.Table()) != nil {
		t.Error("released instance still tracked")
	}
}
