package initcond

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortionSize(t *testing.T) {
	bodies := Generate(0, 4, 10, 1e6, 1)
	assert.Len(t, bodies, 10)
}

func TestRankZeroBlackHoleOverride(t *testing.T) {
	bodies := Generate(0, 4, 10, 1e6, 1)
	assert.Equal(t, BlackHoleMass, bodies[0].Mass)
	assert.Equal(t, 0.0, bodies[0].RX)
	assert.Equal(t, 0.0, bodies[0].RY)
	assert.Equal(t, 0.0, bodies[0].VX)
	assert.Equal(t, 0.0, bodies[0].VY)
	// count stays exactly portion: the black hole replaces index 0,
	// it does not add an 11th body.
	assert.Len(t, bodies, 10)
}

func TestNonRankZeroHasNoBlackHole(t *testing.T) {
	bodies := Generate(1, 4, 10, 1e6, 1)
	for _, b := range bodies {
		assert.NotEqual(t, BlackHoleMass, b.Mass)
		assert.Equal(t, BodyMass, b.Mass)
	}
}

func TestEvenRankNegatesX(t *testing.T) {
	bodies := Generate(2, 4, 20, 1e6, 5)
	for i, b := range bodies {
		assert.LessOrEqual(t, b.RX, 0.0, "body %d", i)
	}
}

func TestOddRankPositiveX(t *testing.T) {
	bodies := Generate(1, 4, 20, 1e6, 5)
	for i, b := range bodies {
		assert.GreaterOrEqual(t, b.RX, 0.0, "body %d", i)
	}
}

func TestUpperHalfNegatesY(t *testing.T) {
	bodies := Generate(3, 4, 20, 1e6, 5) // 3 >= 4/2
	for i, b := range bodies {
		assert.LessOrEqual(t, b.RY, 0.0, "body %d", i)
	}
}

func TestLowerHalfPositiveY(t *testing.T) {
	bodies := Generate(1, 4, 20, 1e6, 5) // 1 < 4/2
	for i, b := range bodies {
		assert.GreaterOrEqual(t, b.RY, 0.0, "body %d", i)
	}
}

func TestSeededDeterminism(t *testing.T) {
	a := Generate(1, 4, 5, 1e6, 42)
	b := Generate(1, 4, 5, 1e6, 42)
	assert.Equal(t, a, b)
}

func TestDifferentRanksDiffer(t *testing.T) {
	a := Generate(1, 4, 5, 1e6, 42)
	b := Generate(2, 4, 5, 1e6, 42)
	assert.NotEqual(t, a, b)
}

func TestVelocityMagnitudeStaysMild(t *testing.T) {
	r := 1e6
	bodies := Generate(1, 4, 50, r, 7)
	for i, b := range bodies {
		assert.LessOrEqual(t, math.Abs(b.VX), 0.1*r, "body %d vx", i)
		assert.LessOrEqual(t, math.Abs(b.VY), 0.1*r, "body %d vy", i)
	}
}
