package render

import "github.com/lumen2d/lumen/internal/vmath"

// Camera is the world-space view scripts steer through the Camera API.
type Camera struct {
	Position vmath.Vec2
	Zoom     float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// SetZoom ignores non-positive factors.
func (c *Camera) SetZoom(z float64) {
	if z > 0 {
		c.Zoom = z
	}
}

// WorldToScreen maps a world point to a terminal cell. One world unit spans
// unitCols columns and unitRows rows at zoom 1; the camera position sits in
// the middle of a wxh screen.
func (c *Camera) WorldToScreen(p vmath.Vec2, w, h, unitCols, unitRows int) (sx, sy int, visible bool) {
	d := p.Sub(c.Position).Scale(c.Zoom)
	sx = w/2 + round(d.X*float64(unitCols))
	sy = h/2 + round(d.Y*float64(unitRows))
	visible = sx >= 0 && sx < w && sy >= 0 && sy < h
	return
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
