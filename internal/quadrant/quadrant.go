// Package quadrant implements the axis-aligned square regions that
// govern every node of a Barnes-Hut tree.
package quadrant

import "fmt"

// Quadrant is an axis-aligned square region centered at (CX, CY) with
// side length S. Quadrants are value-like and immutable: every method
// returns a new Quadrant rather than mutating the receiver.
type Quadrant struct {
	CX, CY float64
	S      float64
}

// New returns a Quadrant centered at (cx, cy) with side s. s must be
// positive; callers that cannot guarantee this are misusing the type.
func New(cx, cy, s float64) Quadrant {
	return Quadrant{CX: cx, CY: cy, S: s}
}

// Contains reports whether (x, y) lies inside the quadrant, inclusive
// of its boundary.
func (q Quadrant) Contains(x, y float64) bool {
	half := q.S / 2
	return absf(x-q.CX) <= half && absf(y-q.CY) <= half
}

// Length returns the quadrant's side length.
func (q Quadrant) Length() float64 {
	return q.S
}

// NW, NE, SW, SE return the four sub-quadrants of half the side length,
// offset by a quarter side from the parent's center.
func (q Quadrant) NW() Quadrant { return New(q.CX-q.S/4, q.CY-q.S/4, q.S/2) }
func (q Quadrant) NE() Quadrant { return New(q.CX+q.S/4, q.CY-q.S/4, q.S/2) }
func (q Quadrant) SW() Quadrant { return New(q.CX-q.S/4, q.CY+q.S/4, q.S/2) }
func (q Quadrant) SE() Quadrant { return New(q.CX+q.S/4, q.CY+q.S/4, q.S/2) }

// Subdivide returns the four sub-quadrants in NW, NE, SW, SE order.
func (q Quadrant) Subdivide() [4]Quadrant {
	return [4]Quadrant{q.NW(), q.NE(), q.SW(), q.SE()}
}

func (q Quadrant) String() string {
	return fmt.Sprintf("Quadrant(center=(%g,%g), side=%g)", q.CX, q.CY, q.S)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
