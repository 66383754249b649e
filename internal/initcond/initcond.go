// Package initcond builds the initial owned-bodies array for one
// rank, following the distribution pinned in the specification's
// external interfaces section: positions uniform in [0, R], a mild
// inward velocity drift, quadrant-flipping by rank, and a central
// black hole overriding index 0 on rank 0.
package initcond

import (
	"image/color"
	"math/rand"

	"github.com/gravring/barneshut/internal/body"
)

// BodyMass is the constant mass assigned to every generated body
// except the central black hole.
const BodyMass = 6.4e21

// BlackHoleMass is the mass of the anchoring body placed at the
// origin on rank 0.
const BlackHoleMass = 6.4e26

// Generate returns portion bodies for the given rank out of procs
// total ranks, using an RNG seeded deterministically from seed and
// rank so every rank's stream is distinct but reproducible.
//
// Even ranks get their x (and vx) negated; ranks in the upper half of
// [0, procs) get their y (and vy) negated — so the procs processes'
// initial bodies occupy (up to) four spatial quadrants. On rank 0,
// body index 0 is replaced, not supplemented, by a central massive
// body at the origin with zero velocity, so the total body count
// across all ranks remains exactly portion*procs.
func Generate(rank, procs, portion int, r float64, seed int64) []body.Body {
	rng := rand.New(rand.NewSource(seed + int64(rank)))
	bodies := make([]body.Body, portion)

	negateX := rank%2 == 0
	negateY := rank >= procs/2

	for i := range bodies {
		rx := rng.Float64() * r
		vx := -rng.Float64() * rng.Float64() * rng.Float64() * r * 0.1
		if negateX {
			rx, vx = -rx, -vx
		}

		ry := rng.Float64() * r
		vy := -rng.Float64() * rng.Float64() * rng.Float64() * r * 0.1
		if negateY {
			ry, vy = -ry, -vy
		}

		bodies[i] = body.New(rx, ry, BodyMass)
		bodies[i].VX, bodies[i].VY = vx, vy
		bodies[i].Color = randomColor(rng)
	}

	if rank == 0 && portion > 0 {
		bodies[0] = body.New(0, 0, BlackHoleMass)
		bodies[0].Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	return bodies
}

func randomColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(rng.Intn(256)),
		G: uint8(rng.Intn(256)),
		B: uint8(rng.Intn(256)),
		A: 255,
	}
}
