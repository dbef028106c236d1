// Package physicstest provides an in-memory physics.World for tests. Bodies
// integrate velocity on Step; contacts are raised by hand.
package physicstest

import (
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/physics"
	"github.com/lumen2d/lumen/internal/vmath"
)

// World records every call made to it.
type World struct {
	Gravity   vmath.Vec2
	Bodies    []*Body
	Destroyed []*Body
	Steps     int
	Listener  physics.ContactListener
	Hits      []physics.Hit // returned by RayCast
	Rays      [][2]vmath.Vec2
}

func NewWorld(gravity vmath.Vec2) *World {
	return &World{Gravity: gravity}
}

func (w *World) CreateBody(def physics.BodyDef) physics.Body {
	b := &Body{
		Def:     def,
		pos:     def.Position,
		angle:   def.Angle,
		gravity: def.GravityScale,
	}
	w.Bodies = append(w.Bodies, b)
	return b
}

func (w *World) DestroyBody(pb physics.Body) {
	b, ok := pb.(*Body)
	if !ok {
		return
	}
	for i, x := range w.Bodies {
		if x == b {
			w.Bodies = append(w.Bodies[:i], w.Bodies[i+1:]...)
			break
		}
	}
	b.Destroyed = true
	w.Destroyed = append(w.Destroyed, b)
}

// Step integrates dynamic bodies with gravity and their velocity.
func (w *World) Step(dt float64, _, _ int) {
	w.Steps++
	for _, b := range w.Bodies {
		if b.Def.Type != physics.BodyDynamic {
			continue
		}
		b.vel = b.vel.Add(w.Gravity.Scale(b.gravity * dt))
		b.pos = b.pos.Add(b.vel.Scale(dt))
		b.angle += b.angVel * dt
	}
}

func (w *World) RayCast(from, to vmath.Vec2) []physics.Hit {
	w.Rays = append(w.Rays, [2]vmath.Vec2{from, to})
	out := make([]physics.Hit, len(w.Hits))
	copy(out, w.Hits)
	return out
}

func (w *World) SetContactListener(l physics.ContactListener) { w.Listener = l }

// Begin raises a begin-contact for the pair.
func (w *World) Begin(a, b *Fixture, point, normal vmath.Vec2) {
	w.Listener.BeginContact(physics.Contact{A: a, B: b, Point: point, Normal: normal})
}

// End raises an end-contact for the pair.
func (w *World) End(a, b *Fixture) {
	w.Listener.EndContact(physics.Contact{A: a, B: b})
}

// Body is a point mass.
type Body struct {
	Def       physics.BodyDef
	Forces    []vmath.Vec2
	Destroyed bool

	pos     vmath.Vec2
	vel     vmath.Vec2
	angle   float64
	angVel  float64
	gravity float64
}

func (b *Body) Position() vmath.Vec2 { return b.pos }
func (b *Body) Angle() float64       { return b.angle }

func (b *Body) SetTransform(pos vmath.Vec2, angle float64) {
	b.pos = pos
	b.angle = angle
}

func (b *Body) LinearVelocity() vmath.Vec2      { return b.vel }
func (b *Body) SetLinearVelocity(v vmath.Vec2)  { b.vel = v }
func (b *Body) AngularVelocity() float64        { return b.angVel }
func (b *Body) SetAngularVelocity(w float64)    { b.angVel = w }
func (b *Body) GravityScale() float64           { return b.gravity }
func (b *Body) SetGravityScale(s float64)       { b.gravity = s }
func (b *Body) ApplyForceToCenter(f vmath.Vec2) { b.Forces = append(b.Forces, f) }

// Fixture is a hand-built fixture for contact tests.
type Fixture struct {
	IsSensor bool
	Handle   ecs.Handle
	B        physics.Body
}

func (f *Fixture) Sensor() bool       { return f.IsSensor }
func (f *Fixture) Owner() ecs.Handle  { return f.Handle }
func (f *Fixture) Body() physics.Body { return f.B }
