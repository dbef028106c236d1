package vmath

import "math"

// Vec2 is a 2D vector in world units (1 unit = 100 pixels at zoom 1).
type Vec2 struct {
	X float64
	Y float64
}

// NoContact marks collision data that carries no geometric contact point.
var NoContact = Vec2{X: -999, Y: -999}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2    { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Length() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Length() }

// Normalize returns the unit vector and the original length.
// A zero vector is returned unchanged with length 0.
func (v Vec2) Normalize() (Vec2, float64) {
	l := v.Length()
	if l < 1e-9 {
		return v, 0
	}
	return Vec2{v.X / l, v.Y / l}, l
}

// DegToRad converts clockwise degrees to radians.
func DegToRad(deg float64) float64 { return deg * (math.Pi / 180) }

// RadToDeg converts radians to clockwise degrees.
func RadToDeg(rad float64) float64 { return rad * (180 / math.Pi) }
