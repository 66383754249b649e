// Package body implements the point-mass Body type shared by the
// Barnes-Hut tree, the ring force exchange, and the per-step
// integrator.
package body

import (
	"image/color"
	"math"

	"github.com/gravring/barneshut/internal/quadrant"
)

// G is Newton's gravitational constant.
const G = 6.67e-11

// Softening is the epsilon added (squared) to the denominator of the
// gravitational force law to keep it finite as two bodies approach
// the same position.
const Softening = 3.0e4

// Body is a point mass with position, velocity, accumulated force,
// and a color tag consumed only by the renderer.
type Body struct {
	RX, RY float64
	VX, VY float64
	FX, FY float64
	Mass   float64
	Color  color.RGBA
}

// New returns a Body at rest at (rx, ry) with the given mass.
func New(rx, ry, mass float64) Body {
	return Body{RX: rx, RY: ry, Mass: mass}
}

// Inside reports whether the body's position lies within q.
func (b Body) Inside(q quadrant.Quadrant) bool {
	return q.Contains(b.RX, b.RY)
}

// DistanceTo returns the Euclidean distance between b and other.
func (b Body) DistanceTo(other Body) float64 {
	dx := other.RX - b.RX
	dy := other.RY - b.RY
	return math.Sqrt(dx*dx + dy*dy)
}

// ResetForce zeroes the accumulated force.
func (b *Body) ResetForce() {
	b.FX, b.FY = 0, 0
}

// AddForce accumulates (dfx, dfy) into the running force.
func (b *Body) AddForce(dfx, dfy float64) {
	b.FX += dfx
	b.FY += dfy
}

// ComputeForceFrom sets b's force to the Newtonian gravitational pull
// exerted by other, discarding whatever force b previously held. When
// b and other occupy the same position the contribution is zero.
func (b *Body) ComputeForceFrom(other Body) {
	b.FX, b.FY = 0, 0
	b.AccumulateForceFrom(other)
}

// AccumulateForceFrom adds the Newtonian gravitational pull exerted by
// other onto b's running force. F = G*m1*m2 / (d^2 + eps^2), applied
// along the unit vector from b to other.
func (b *Body) AccumulateForceFrom(other Body) {
	dx := other.RX - b.RX
	dy := other.RY - b.RY
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		// Coincident bodies: the direction of the pull is undefined,
		// so the contribution is zero rather than NaN.
		return
	}
	denom := d*d + Softening*Softening
	f := G * b.Mass * other.Mass / denom
	b.FX += f * dx / d
	b.FY += f * dy / d
}

// Update advances b by one time step dt using semi-implicit
// (symplectic) Euler integration: velocity first, then position.
func (b *Body) Update(dt float64) {
	b.VX += (b.FX / b.Mass) * dt
	b.VY += (b.FY / b.Mass) * dt
	b.RX += b.VX * dt
	b.RY += b.VY * dt
}

// Plus returns the pseudo-body at the mass-weighted midpoint of b and
// other, with their summed mass. Used only during tree aggregation;
// the result has zero velocity and force and is never integrated.
func (b Body) Plus(other Body) Body {
	total := b.Mass + other.Mass
	if total == 0 {
		return Body{RX: (b.RX + other.RX) / 2, RY: (b.RY + other.RY) / 2}
	}
	rx := (b.RX*b.Mass + other.RX*other.Mass) / total
	ry := (b.RY*b.Mass + other.RY*other.Mass) / total
	return Body{RX: rx, RY: ry, Mass: total}
}
