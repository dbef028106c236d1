package physics

import (
	"github.com/lumen2d/lumen/internal/actor"
	"github.com/lumen2d/lumen/internal/core/ecs"
	"github.com/lumen2d/lumen/internal/vmath"
)

// ActorResolver maps fixture owner handles to actors.
type ActorResolver interface {
	Resolve(h ecs.Handle) (*actor.Actor, bool)
}

// ContactTranslator turns fixture contacts into actor callbacks.
//
//	both sensors   -> OnTriggerEnter / OnTriggerExit
//	neither sensor -> OnCollisionEnter / OnCollisionExit
//	mixed pair     -> nothing
//
// Both actors are notified, A first, each seeing the other as Other.
type ContactTranslator struct {
	actors ActorResolver
}

func NewContactTranslator(actors ActorResolver) *ContactTranslator {
	return &ContactTranslator{actors: actors}
}

func (t *ContactTranslator) BeginContact(c Contact) {
	a, b, ok := t.pair(c)
	if !ok {
		return
	}
	col := actor.Collision{
		Other:            b,
		Point:            c.Point,
		RelativeVelocity: relativeVelocity(c),
		Normal:           c.Normal,
	}
	switch classify(c) {
	case kindTrigger:
		col.Point = vmath.NoContact
		col.Normal = vmath.NoContact
		a.OnTriggerEnter(&col)
		col.Other = a
		b.OnTriggerEnter(&col)
	case kindCollision:
		a.OnCollisionEnter(&col)
		col.Other = a
		b.OnCollisionEnter(&col)
	}
}

func (t *ContactTranslator) EndContact(c Contact) {
	a, b, ok := t.pair(c)
	if !ok {
		return
	}
	col := actor.Collision{
		Other:            b,
		Point:            vmath.NoContact,
		RelativeVelocity: relativeVelocity(c),
		Normal:           vmath.NoContact,
	}
	switch classify(c) {
	case kindTrigger:
		a.OnTriggerExit(&col)
		col.Other = a
		b.OnTriggerExit(&col)
	case kindCollision:
		a.OnCollisionExit(&col)
		col.Other = a
		b.OnCollisionExit(&col)
	}
}

// pair resolves both owners; phantom fixtures and freed actors drop the event.
func (t *ContactTranslator) pair(c Contact) (*actor.Actor, *actor.Actor, bool) {
	if c.A == nil || c.B == nil {
		return nil, nil, false
	}
	a, ok := t.actors.Resolve(c.A.Owner())
	if !ok {
		return nil, nil, false
	}
	b, ok := t.actors.Resolve(c.B.Owner())
	if !ok {
		return nil, nil, false
	}
	return a, b, true
}

type contactKind int

const (
	kindNone contactKind = iota
	kindTrigger
	kindCollision
)

func classify(c Contact) contactKind {
	sa, sb := c.A.Sensor(), c.B.Sensor()
	switch {
	case sa && sb:
		return kindTrigger
	case !sa && !sb:
		return kindCollision
	}
	return kindNone
}

func relativeVelocity(c Contact) vmath.Vec2 {
	var va, vb vmath.Vec2
	if body := c.A.Body(); body != nil {
		va = body.LinearVelocity()
	}
	if body := c.B.Body(); body != nil {
		vb = body.LinearVelocity()
	}
	return va.Sub(vb)
}
