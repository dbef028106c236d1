package component

import (
	"math"

	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/vmath"
)

// RigidbodyType is the component type name that selects the native body.
const RigidbodyType = "Rigidbody"

// WorldSource hands out the shared physics world, creating it on first use.
type WorldSource interface {
	PhysicsWorld() physics.World
}

// Rigidbody is the native physics component. Until Ready runs, X/Y and
// Rotation describe where the body will be created; afterwards the body is
// the source of truth. Rotation is clockwise degrees.
type Rigidbody struct {
	key     string
	owner   ecs.Handle
	enabled bool
	removed bool

	X               float64
	Y               float64
	Width           float64
	Height          float64
	Radius          float64
	Friction        float64
	Bounciness      float64
	BodyType        string
	Precise         bool
	GravityScale    float64
	Density         float64
	AngularFriction float64
	Rotation        float64

	HasCollider   bool
	ColliderType  string
	HasTrigger    bool
	TriggerType   string
	TriggerWidth  float64
	TriggerHeight float64
	TriggerRadius float64

	worlds WorldSource
	world  physics.World
	body   physics.Body
}

// NewRigidbody returns a rigidbody with the engine defaults.
func NewRigidbody(key string, owner ecs.Handle, worlds WorldSource) *Rigidbody {
	return &Rigidbody{
		key:             key,
		owner:           owner,
		enabled:         true,
		Width:           1,
		Height:          1,
		Radius:          0.5,
		Friction:        0.3,
		Bounciness:      0.3,
		BodyType:        "dynamic",
		Precise:         true,
		GravityScale:    1,
		Density:         1,
		AngularFriction: 0.3,
		HasCollider:     true,
		ColliderType:    "box",
		HasTrigger:      true,
		TriggerType:     "box",
		TriggerWidth:    1,
		TriggerHeight:   1,
		TriggerRadius:   0.5,
		worlds:          worlds,
	}
}

func (r *Rigidbody) Key() string        { return r.key }
func (r *Rigidbody) Type() string       { return RigidbodyType }
func (r *Rigidbody) Enabled() bool      { return r.enabled }
func (r *Rigidbody) SetEnabled(v bool)  { r.enabled = v }
func (r *Rigidbody) Removed() bool      { return r.removed }
func (r *Rigidbody) MarkRemoved()       { r.removed = true }
func (r *Rigidbody) Owner() ecs.Handle  { return r.owner }
func (r *Rigidbody) Body() physics.Body { return r.body }

func (r *Rigidbody) HasHook(h actor.Hook) bool { return h == actor.HookReady }

func (r *Rigidbody) Invoke(h actor.Hook, _ *actor.Collision) error {
	if h == actor.HookReady {
		r.Ready()
	}
	return nil
}

// Ready creates the body and its fixtures. The first call anywhere in the
// process also creates the physics world.
func (r *Rigidbody) Ready() {
	if r.body != nil || r.worlds == nil {
		return
	}
	r.world = r.worlds.PhysicsWorld()
	if r.world == nil {
		return
	}
	def := physics.BodyDef{
		Type:           physics.ParseBodyType(r.BodyType),
		Position:       vmath.V(r.X, r.Y),
		Angle:          vmath.DegToRad(r.Rotation),
		Bullet:         r.Precise,
		AngularDamping: r.AngularFriction,
		GravityScale:   r.GravityScale,
	}
	if r.HasCollider {
		def.Fixtures = append(def.Fixtures, physics.FixtureDef{
			Shape:       physics.ParseShape(r.ColliderType),
			Width:       r.Width,
			Height:      r.Height,
			Radius:      r.Radius,
			Density:     r.Density,
			Friction:    r.Friction,
			Restitution: r.Bounciness,
			Category:    physics.CategoryCollider,
			Mask:        ^physics.CategorySensor,
			Owner:       r.owner,
		})
	}
	if r.HasTrigger {
		def.Fixtures = append(def.Fixtures, physics.FixtureDef{
			Shape:       physics.ParseShape(r.TriggerType),
			Width:       r.TriggerWidth,
			Height:      r.TriggerHeight,
			Radius:      r.TriggerRadius,
			Density:     r.Density,
			Friction:    r.Friction,
			Restitution: r.Bounciness,
			Sensor:      true,
			Category:    physics.CategorySensor,
			Mask:        ^physics.CategoryCollider,
			Owner:       r.owner,
		})
	}
	if !r.HasCollider && !r.HasTrigger {
		// phantom sensor so the body still has mass; it never reports contacts
		def.Fixtures = append(def.Fixtures, physics.FixtureDef{
			Shape:    physics.ShapeBox,
			Width:    r.Width,
			Height:   r.Height,
			Density:  r.Density,
			Friction: r.AngularFriction,
			Sensor:   true,
		})
	}
	r.body = r.world.CreateBody(def)
}

// DestroyBody removes the body from the world at once. Safe to call when no
// body exists.
func (r *Rigidbody) DestroyBody() {
	if r.body == nil || r.world == nil {
		return
	}
	r.world.DestroyBody(r.body)
	r.body = nil
}

// --- body accessors used by scripts ---

func (r *Rigidbody) Position() vmath.Vec2 {
	if r.body == nil {
		return vmath.V(r.X, r.Y)
	}
	return r.body.Position()
}

// RotationDegrees returns the current clockwise rotation in degrees.
func (r *Rigidbody) RotationDegrees() float64 {
	if r.body == nil {
		return r.Rotation
	}
	return vmath.RadToDeg(r.body.Angle())
}

func (r *Rigidbody) SetPosition(p vmath.Vec2) {
	if r.body == nil {
		r.X, r.Y = p.X, p.Y
		return
	}
	r.body.SetTransform(p, r.body.Angle())
}

func (r *Rigidbody) SetRotation(degrees float64) {
	if r.body == nil {
		r.Rotation = degrees
		return
	}
	r.body.SetTransform(r.body.Position(), vmath.DegToRad(degrees))
}

func (r *Rigidbody) AddForce(f vmath.Vec2) {
	if r.body != nil {
		r.body.ApplyForceToCenter(f)
	}
}

func (r *Rigidbody) Velocity() vmath.Vec2 {
	if r.body == nil {
		return vmath.Vec2{}
	}
	return r.body.LinearVelocity()
}

func (r *Rigidbody) SetVelocity(v vmath.Vec2) {
	if r.body != nil {
		r.body.SetLinearVelocity(v)
	}
}

// AngularVelocity returns clockwise degrees per second.
func (r *Rigidbody) AngularVelocity() float64 {
	if r.body == nil {
		return 0
	}
	return vmath.RadToDeg(r.body.AngularVelocity())
}

func (r *Rigidbody) SetAngularVelocity(degrees float64) {
	if r.body != nil {
		r.body.SetAngularVelocity(vmath.DegToRad(degrees))
	}
}

func (r *Rigidbody) CurrentGravityScale() float64 {
	if r.body == nil {
		return r.GravityScale
	}
	return r.body.GravityScale()
}

func (r *Rigidbody) SetGravityScale(s float64) {
	if r.body == nil {
		r.GravityScale = s
		return
	}
	r.body.SetGravityScale(s)
}

// SetUpDirection rotates the body so its local up vector points along dir.
func (r *Rigidbody) SetUpDirection(dir vmath.Vec2) {
	if r.body == nil {
		return
	}
	n, _ := dir.Normalize()
	r.body.SetTransform(r.body.Position(), math.Atan2(n.X, -n.Y))
}

// SetRightDirection rotates the body so its local right vector points along dir.
func (r *Rigidbody) SetRightDirection(dir vmath.Vec2) {
	if r.body == nil {
		return
	}
	n, _ := dir.Normalize()
	r.body.SetTransform(r.body.Position(), math.Atan2(n.X, -n.Y)-math.Pi/2)
}

func (r *Rigidbody) UpDirection() vmath.Vec2 {
	a := r.angle()
	n, _ := vmath.V(math.Sin(a), -math.Cos(a)).Normalize()
	return n
}

func (r *Rigidbody) RightDirection() vmath.Vec2 {
	a := r.angle()
	n, _ := vmath.V(math.Cos(a), math.Sin(a)).Normalize()
	return n
}

func (r *Rigidbody) angle() float64 {
	if r.body == nil {
		return vmath.DegToRad(r.Rotation)
	}
	return r.body.Angle()
}
