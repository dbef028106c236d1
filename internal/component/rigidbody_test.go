package component

import (
	"math"
	"testing"

	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/physics/physicstest"
	"github.com/lumen2d/lumen/internal/vmath"
)

// lazyWorld creates its world on first request, like the engine state.
type lazyWorld struct {
	world   *physicstest.World
	created int
}

func (l *lazyWorld) PhysicsWorld() physics.World {
	if l.world == nil {
		l.world = physicstest.NewWorld(vmath.V(0, 9.8))
		l.created++
	}
	return l.world
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDefaults(t *testing.T) {
	r := NewRigidbody("body", ecs.NewHandle(1, 1), nil)
	if r.Type() != RigidbodyType || !r.Enabled() || r.Removed() {
		t.Fatal("bad identity flags")
	}
	if r.Width != 1 || r.Height != 1 || r.Radius != 0.5 || r.Friction != 0.3 ||
		r.Bounciness != 0.3 || r.BodyType != "dynamic" || !r.Precise ||
		r.GravityScale != 1 || r.Density != 1 || r.AngularFriction != 0.3 ||
		!r.HasCollider || !r.HasTrigger || r.ColliderType != "box" || r.TriggerType != "box" {
		t.Errorf("defaults = %+v", r)
	}
	if !r.HasHook(actor.HookReady) || r.HasHook(actor.HookUpdate) {
		t.Error("rigidbody hooks")
	}
}

func TestReadyCreatesBodyWithFixtures(t *testing.T) {
	src := &lazyWorld{}
	owner := ecs.NewHandle(4, 2)
	r := NewRigidbody("body", owner, src)
	r.X, r.Y, r.Rotation = 2, 3, 90
	r.ColliderType = "circle"

	if err := r.Invoke(actor.HookReady, nil); err != nil {
		t.Fatal(err)
	}
	r.Ready() // second call keeps the body
	if src.created != 1 || len(src.world.Bodies) != 1 {
		t.Fatalf("created=%d bodies=%d", src.created, len(src.world.Bodies))
	}
	def := src.world.Bodies[0].Def
	if def.Position != vmath.V(2, 3) || !near(def.Angle, math.Pi/2) || !def.Bullet {
		t.Errorf("body def = %+v", def)
	}
	if len(def.Fixtures) != 2 {
		t.Fatalf("fixtures = %d", len(def.Fixtures))
	}
	collider, trigger := def.Fixtures[0], def.Fixtures[1]
	if collider.Shape != physics.ShapeCircle || collider.Sensor || collider.Owner != owner {
		t.Errorf("collider = %+v", collider)
	}
	if trigger.Shape != physics.ShapeBox || !trigger.Sensor || trigger.Owner != owner {
		t.Errorf("trigger = %+v", trigger)
	}
	if collider.Mask&physics.CategorySensor != 0 || trigger.Mask&physics.CategoryCollider != 0 {
		t.Error("colliders and sensors can touch")
	}
}

func TestPhantomFixtureWithoutShapes(t *testing.T) {
	src := &lazyWorld{}
	r := NewRigidbody("body", ecs.NewHandle(1, 1), src)
	r.HasCollider, r.HasTrigger = false, false
	r.Ready()
	fx := src.world.Bodies[0].Def.Fixtures
	if len(fx) != 1 || !fx[0].Owner.IsZero() || !fx[0].Sensor {
		t.Errorf("fixtures = %+v", fx)
	}
}

func TestDestroyBody(t *testing.T) {
	src := &lazyWorld{}
	r := NewRigidbody("body", ecs.NewHandle(1, 1), src)
	r.DestroyBody() // no body yet
	r.Ready()
	r.DestroyBody()
	if len(src.world.Destroyed) != 1 || r.Body() != nil {
		t.Errorf("destroyed=%d body=%v", len(src.world.Destroyed), r.Body())
	}
	r.DestroyBody()
	if len(src.world.Destroyed) != 1 {
		t.Error("destroyed twice")
	}
}

func TestAccessorsBeforeReady(t *testing.T) {
	r := NewRigidbody("body", ecs.NewHandle(1, 1), nil)
	r.SetPosition(vmath.V(5, 6))
	r.SetRotation(30)
	r.SetGravityScale(0.5)
	r.AddForce(vmath.V(1, 1))
	r.SetVelocity(vmath.V(1, 1))
	if r.Position() != vmath.V(5, 6) || r.RotationDegrees() != 30 || r.CurrentGravityScale() != 0.5 {
		t.Errorf("pre-ready state = %v %v %v", r.Position(), r.RotationDegrees(), r.CurrentGravityScale())
	}
	if r.Velocity() != (vmath.Vec2{}) || r.AngularVelocity() != 0 {
		t.Error("velocity without a body")
	}
}

func TestAccessorsAfterReady(t *testing.T) {
	src := &lazyWorld{}
	r := NewRigidbody("body", ecs.NewHandle(1, 1), src)
	r.Ready()
	b := src.world.Bodies[0]

	r.SetPosition(vmath.V(1, 2))
	r.SetRotation(180)
	r.SetVelocity(vmath.V(3, 0))
	r.SetAngularVelocity(90)
	r.SetGravityScale(0)
	r.AddForce(vmath.V(0, -10))

	if b.Position() != vmath.V(1, 2) || !near(b.Angle(), math.Pi) {
		t.Errorf("transform = %v %v", b.Position(), b.Angle())
	}
	if r.Velocity() != vmath.V(3, 0) || !near(r.AngularVelocity(), 90) || r.CurrentGravityScale() != 0 {
		t.Errorf("velocity=%v angular=%v gravity=%v", r.Velocity(), r.AngularVelocity(), r.CurrentGravityScale())
	}
	if len(b.Forces) != 1 || b.Forces[0] != vmath.V(0, -10) {
		t.Errorf("forces = %v", b.Forces)
	}
	if !near(r.RotationDegrees(), 180) {
		t.Errorf("RotationDegrees = %v", r.RotationDegrees())
	}
}

func TestDirections(t *testing.T) {
	src := &lazyWorld{}
	r := NewRigidbody("body", ecs.NewHandle(1, 1), src)
	if up := r.UpDirection(); !near(up.X, 0) || !near(up.Y, -1) {
		t.Errorf("default up = %v", up)
	}
	r.Ready()

	r.SetUpDirection(vmath.V(1, 0))
	if up := r.UpDirection(); !near(up.X, 1) || !near(up.Y, 0) {
		t.Errorf("up = %v", up)
	}
	if right := r.RightDirection(); !near(right.X, 0) || !near(right.Y, 1) {
		t.Errorf("right = %v", right)
	}

	r.SetRightDirection(vmath.V(1, 0))
	if right := r.RightDirection(); !near(right.X, 1) || !near(right.Y, 0) {
		t.Errorf("right after SetRightDirection = %v", right)
	}
	if !near(r.RotationDegrees(), 0) {
		t.Errorf("rotation = %v", r.RotationDegrees())
	}
}

func TestSetProperty(t *testing.T) {
	r := NewRigidbody("body", ecs.NewHandle(1, 1), nil)
	overrides := map[string]any{
		"x":             3,
		"y":             -2.5,
		"body_type":     "static",
		"has_trigger":   false,
		"gravity_scale": int64(2),
	}
	for name, v := range overrides {
		if err := r.SetProperty(name, v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if r.X != 3 || r.Y != -2.5 || r.BodyType != "static" || r.HasTrigger || r.GravityScale != 2 {
		t.Errorf("after overrides: %+v", r)
	}
	if err := r.SetProperty("width", "wide"); err == nil {
		t.Error("string accepted for width")
	}
	if err := r.SetProperty("colour", "red"); err == nil {
		t.Error("unknown property accepted")
	}
}

func TestProperty(t *testing.T) {
	r := NewRigidbody("body", ecs.NewHandle(1, 1), nil)
	r.X = 7
	cases := map[string]any{
		"key":       "body",
		"type":      RigidbodyType,
		"x":         7.0,
		"removed":   false,
		"body_type": "dynamic",
	}
	for name, want := range cases {
		got, ok := r.Property(name)
		if !ok || got != want {
			t.Errorf("Property(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := r.Property("nope"); ok {
		t.Error("unknown property found")
	}
}
