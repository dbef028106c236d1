// Package physics is the boundary between the engine and the rigid-body
// simulation. The engine only talks to World, Body and Fixture; the Box2D
// adapter in box2dworld is the production implementation.
package physics

import (
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/vmath"
)

// Fixed step parameters used by the physics phase.
const (
	TimeStep           = 1.0 / 60.0
	VelocityIterations = 8
	PositionIterations = 3
)

// Collision filter categories. Colliders never touch sensors, so a
// collider/sensor pair produces no contact at all.
const (
	CategoryCollider uint16 = 0x0001
	CategorySensor   uint16 = 0x0002
)

type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyStatic
	BodyKinematic
)

// ParseBodyType maps the script-facing names; unknown names are dynamic.
func ParseBodyType(s string) BodyType {
	switch s {
	case "static":
		return BodyStatic
	case "kinematic":
		return BodyKinematic
	}
	return BodyDynamic
}

type Shape int

const (
	ShapeBox Shape = iota
	ShapeCircle
)

// ParseShape maps "box"/"circle"; unknown names are boxes.
func ParseShape(s string) Shape {
	if s == "circle" {
		return ShapeCircle
	}
	return ShapeBox
}

// FixtureDef describes one fixture. Width and Height are full extents.
// A zero Owner marks a phantom fixture that raises no events.
type FixtureDef struct {
	Shape       Shape
	Width       float64
	Height      float64
	Radius      float64
	Density     float64
	Friction    float64
	Restitution float64
	Sensor      bool
	Category    uint16
	Mask        uint16
	Owner       ecs.Handle
}

// BodyDef describes a body and its fixtures. Angle is in radians.
type BodyDef struct {
	Type           BodyType
	Position       vmath.Vec2
	Angle          float64
	Bullet         bool
	AngularDamping float64
	GravityScale   float64
	Fixtures       []FixtureDef
}

// Body is a simulated rigid body. Angles are radians.
type Body interface {
	Position() vmath.Vec2
	Angle() float64
	SetTransform(pos vmath.Vec2, angle float64)
	LinearVelocity() vmath.Vec2
	SetLinearVelocity(v vmath.Vec2)
	AngularVelocity() float64
	SetAngularVelocity(w float64)
	GravityScale() float64
	SetGravityScale(s float64)
	ApplyForceToCenter(f vmath.Vec2)
}

// Fixture is one shape attached to a body.
type Fixture interface {
	Sensor() bool
	Owner() ecs.Handle
	Body() Body
}

// Contact is a begin/end notification for a fixture pair. Point and Normal
// come from the world manifold and are only meaningful on begin.
type Contact struct {
	A      Fixture
	B      Fixture
	Point  vmath.Vec2
	Normal vmath.Vec2
}

// ContactListener receives contact notifications during World.Step.
type ContactListener interface {
	BeginContact(c Contact)
	EndContact(c Contact)
}

// Hit is one fixture crossed by a ray.
type Hit struct {
	Owner    ecs.Handle
	Point    vmath.Vec2
	Normal   vmath.Vec2
	Sensor   bool
	Fraction float64
}

// World is the simulation collaborator.
type World interface {
	CreateBody(def BodyDef) Body
	DestroyBody(b Body)
	Step(dt float64, velocityIterations, positionIterations int)
	// RayCast reports every fixture between from and to, in no particular order.
	RayCast(from, to vmath.Vec2) []Hit
	SetContactListener(l ContactListener)
}
