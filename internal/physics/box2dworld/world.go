// Package box2dworld implements physics.World on top of the Box2D port.
package box2dworld

import (
	"github.com/ByteArena/box2d"
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/vmath"
)

// World wraps a b2World. Fixture user data holds the owning actor handle.
type World struct {
	w box2d.B2World
	// bodies destroyed from inside a contact callback, freed after the step
	doomed []*box2d.B2Body
}

// New creates a world with the given gravity (y grows downward).
func New(gravity vmath.Vec2) *World {
	return &World{w: box2d.MakeB2World(vec(gravity))}
}

func (w *World) SetContactListener(l physics.ContactListener) {
	w.w.SetContactListener(&contactAdapter{l: l})
}

func (w *World) Step(dt float64, velocityIterations, positionIterations int) {
	w.w.Step(dt, velocityIterations, positionIterations)
	for _, b := range w.doomed {
		w.w.DestroyBody(b)
	}
	w.doomed = w.doomed[:0]
}

func (w *World) CreateBody(def physics.BodyDef) physics.Body {
	bd := box2d.MakeB2BodyDef()
	switch def.Type {
	case physics.BodyStatic:
		bd.Type = box2d.B2BodyType.B2_staticBody
	case physics.BodyKinematic:
		bd.Type = box2d.B2BodyType.B2_kinematicBody
	default:
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	}
	bd.Position = vec(def.Position)
	bd.Angle = def.Angle
	bd.Bullet = def.Bullet
	bd.AngularDamping = def.AngularDamping
	bd.GravityScale = def.GravityScale

	b := w.w.CreateBody(&bd)
	for _, fd := range def.Fixtures {
		w.addFixture(b, fd)
	}
	return &body{b: b}
}

func (w *World) addFixture(b *box2d.B2Body, fd physics.FixtureDef) {
	def := box2d.MakeB2FixtureDef()
	switch fd.Shape {
	case physics.ShapeCircle:
		shape := box2d.MakeB2CircleShape()
		shape.M_radius = fd.Radius
		def.Shape = &shape
	default:
		shape := box2d.MakeB2PolygonShape()
		shape.SetAsBox(fd.Width*0.5, fd.Height*0.5)
		def.Shape = &shape
	}
	def.IsSensor = fd.Sensor
	def.Density = fd.Density
	def.Friction = fd.Friction
	def.Restitution = fd.Restitution
	if fd.Category != 0 {
		def.Filter.CategoryBits = fd.Category
		def.Filter.MaskBits = fd.Mask
	}
	if !fd.Owner.IsZero() {
		def.UserData = fd.Owner
	}
	b.CreateFixtureFromDef(&def)
}

func (w *World) DestroyBody(pb physics.Body) {
	bb, ok := pb.(*body)
	if !ok || bb.b == nil {
		return
	}
	if w.w.IsLocked() {
		w.doomed = append(w.doomed, bb.b)
	} else {
		w.w.DestroyBody(bb.b)
	}
	bb.b = nil
}

func (w *World) RayCast(from, to vmath.Vec2) []physics.Hit {
	var hits []physics.Hit
	w.w.RayCast(func(f *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		owner := ownerOf(f)
		if owner.IsZero() {
			// phantom fixture: filter it out and keep going
			return -1
		}
		hits = append(hits, physics.Hit{
			Owner:    owner,
			Point:    fromVec(point),
			Normal:   fromVec(normal),
			Sensor:   f.IsSensor(),
			Fraction: fraction,
		})
		return 1
	}, vec(from), vec(to))
	return hits
}

type body struct {
	b *box2d.B2Body
}

func (b *body) Position() vmath.Vec2 { return fromVec(b.b.GetPosition()) }
func (b *body) Angle() float64       { return b.b.GetAngle() }

func (b *body) SetTransform(pos vmath.Vec2, angle float64) {
	b.b.SetTransform(vec(pos), angle)
}

func (b *body) LinearVelocity() vmath.Vec2 { return fromVec(b.b.GetLinearVelocity()) }

func (b *body) SetLinearVelocity(v vmath.Vec2) { b.b.SetLinearVelocity(vec(v)) }

func (b *body) AngularVelocity() float64 { return b.b.GetAngularVelocity() }

func (b *body) SetAngularVelocity(w float64) { b.b.SetAngularVelocity(w) }

func (b *body) GravityScale() float64 { return b.b.GetGravityScale() }

func (b *body) SetGravityScale(s float64) { b.b.SetGravityScale(s) }

func (b *body) ApplyForceToCenter(f vmath.Vec2) { b.b.ApplyForceToCenter(vec(f), true) }

type fixture struct {
	f *box2d.B2Fixture
}

func (f fixture) Sensor() bool      { return f.f.IsSensor() }
func (f fixture) Owner() ecs.Handle { return ownerOf(f.f) }
func (f fixture) Body() physics.Body {
	return &body{b: f.f.GetBody()}
}

// contactAdapter forwards Box2D callbacks to the engine listener.
type contactAdapter struct {
	l physics.ContactListener
}

func (c *contactAdapter) BeginContact(contact box2d.B2ContactInterface) {
	var wm box2d.B2WorldManifold
	contact.GetWorldManifold(&wm)
	c.l.BeginContact(physics.Contact{
		A:      fixture{f: contact.GetFixtureA()},
		B:      fixture{f: contact.GetFixtureB()},
		Point:  fromVec(wm.Points[0]),
		Normal: fromVec(wm.Normal),
	})
}

func (c *contactAdapter) EndContact(contact box2d.B2ContactInterface) {
	c.l.EndContact(physics.Contact{
		A: fixture{f: contact.GetFixtureA()},
		B: fixture{f: contact.GetFixtureB()},
	})
}

func (c *contactAdapter) PreSolve(box2d.B2ContactInterface, box2d.B2Manifold) {}

func (c *contactAdapter) PostSolve(box2d.B2ContactInterface, *box2d.B2ContactImpulse) {}

func ownerOf(f *box2d.B2Fixture) ecs.Handle {
	if h, ok := f.GetUserData().(ecs.Handle); ok {
		return h
	}
	return 0
}

func vec(v vmath.Vec2) box2d.B2Vec2     { return box2d.MakeB2Vec2(v.X, v.Y) }
func fromVec(v box2d.B2Vec2) vmath.Vec2 { return vmath.Vec2{X: v.X, Y: v.Y} }
