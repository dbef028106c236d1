package physics

import (
	"sort"

	"github.com/lumen2d/lumen/internal/vmath"
)

// RaycastAll returns the hits along dir (normalized) up to dist, nearest
// first. Phantom fixtures are skipped. A nil world or a non-positive
// distance yields nothing.
func RaycastAll(w World, pos, dir vmath.Vec2, dist float64) []Hit {
	if w == nil || dist <= 0 {
		return nil
	}
	unit, l := dir.Normalize()
	if l == 0 {
		return nil
	}
	raw := w.RayCast(pos, pos.Add(unit.Scale(dist)))
	hits := raw[:0]
	for _, h := range raw {
		if h.Owner.IsZero() {
			continue
		}
		hits = append(hits, h)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Fraction < hits[j].Fraction
	})
	return hits
}

// Raycast returns the nearest hit along dir up to dist.
func Raycast(w World, pos, dir vmath.Vec2, dist float64) (Hit, bool) {
	hits := RaycastAll(w, pos, dir, dist)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}
