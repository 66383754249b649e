package body

import (
	"math"
	"testing"

	"github.com/gravring/barneshut/internal/quadrant"
	"github.com/stretchr/testify/assert"
)

func TestInside(t *testing.T) {
	q := quadrant.New(0, 0, 10)
	b := New(3, 3, 1)
	assert.True(t, b.Inside(q))

	b2 := New(20, 20, 1)
	assert.False(t, b2.Inside(q))
}

func TestDistanceTo(t *testing.T) {
	a := New(0, 0, 1)
	b := New(3, 4, 1)
	assert.Equal(t, 5.0, a.DistanceTo(b))
}

func TestResetAndAddForce(t *testing.T) {
	b := New(0, 0, 1)
	b.AddForce(1, 2)
	b.AddForce(1, 2)
	assert.Equal(t, 2.0, b.FX)
	assert.Equal(t, 4.0, b.FY)
	b.ResetForce()
	assert.Equal(t, 0.0, b.FX)
	assert.Equal(t, 0.0, b.FY)
}

func TestComputeForceFromDirection(t *testing.T) {
	a := New(0, 0, 10)
	other := New(10, 0, 10)
	a.ComputeForceFrom(other)
	assert.Greater(t, a.FX, 0.0, "force should pull a toward other, +x")
	assert.Equal(t, 0.0, a.FY)
}

func TestAccumulateForceFromAdds(t *testing.T) {
	a := New(0, 0, 10)
	other := New(10, 0, 10)
	a.AccumulateForceFrom(other)
	fx1 := a.FX
	a.AccumulateForceFrom(other)
	assert.InDelta(t, 2*fx1, a.FX, 1e-12)
}

func TestCoincidentBodiesFinite(t *testing.T) {
	a := New(5, 5, 10)
	other := New(5, 5, 10)
	a.ComputeForceFrom(other)
	assert.False(t, math.IsNaN(a.FX))
	assert.False(t, math.IsNaN(a.FY))
	assert.False(t, math.IsInf(a.FX, 0))
	assert.Equal(t, 0.0, a.FX)
	assert.Equal(t, 0.0, a.FY)
}

func TestUpdateZeroDtIdempotent(t *testing.T) {
	b := New(1, 2, 5)
	b.VX, b.VY = 3, 4
	b.FX, b.FY = 10, -10
	b.Update(0)
	assert.Equal(t, 1.0, b.RX)
	assert.Equal(t, 2.0, b.RY)
	assert.Equal(t, 3.0, b.VX)
	assert.Equal(t, 4.0, b.VY)
}

func TestUpdateSymplecticEuler(t *testing.T) {
	b := New(0, 0, 2)
	b.FX, b.FY = 4, 0 // a = F/m = 2
	b.Update(1)
	assert.InDelta(t, 2.0, b.VX, 1e-12)
	assert.InDelta(t, 2.0, b.RX, 1e-12, "position uses the post-update velocity")
}

func TestPlus(t *testing.T) {
	a := New(0, 0, 1)
	b := New(10, 0, 3)
	p := a.Plus(b)
	assert.Equal(t, 4.0, p.Mass)
	assert.InDelta(t, 7.5, p.RX, 1e-12)
	assert.Equal(t, 0.0, p.RY)
}

func TestPlusZeroMass(t *testing.T) {
	a := New(0, 0, 0)
	b := New(10, 10, 0)
	p := a.Plus(b)
	assert.Equal(t, 0.0, p.Mass)
	assert.Equal(t, 5.0, p.RX)
	assert.Equal(t, 5.0, p.RY)
}
