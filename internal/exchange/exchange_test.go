package exchange

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/gravring/barneshut/internal/bhtree"
	"github.com/gravring/barneshut/internal/body"
	"github.com/gravring/barneshut/internal/quadrant"
	"github.com/gravring/barneshut/internal/transport"
	"github.com/stretchr/testify/assert"
)

// buildAndLocalForce mirrors Simulator's steps 1-3 for one rank: build
// a tree from the rank's owned bodies and compute each owned body's
// local-tree force.
func buildAndLocalForce(owned []body.Body, root quadrant.Quadrant, theta float64) *bhtree.Tree {
	tree := bhtree.New(root, theta)
	for i := range owned {
		if owned[i].Inside(root) {
			tree.Insert(&owned[i])
		}
	}
	for i := range owned {
		owned[i].ResetForce()
		tree.UpdateForce(&owned[i], &owned[i])
	}
	return tree
}

func TestRingParityAgainstDirectSum(t *testing.T) {
	n, p := 16, 4
	rng := rand.New(rand.NewSource(11))
	all := make([]body.Body, n)
	for i := range all {
		all[i] = body.New(rng.Float64()*400-200, rng.Float64()*400-200, rng.Float64()*1e10+1)
	}
	root := quadrant.New(0, 0, 2000)

	portion := n / p
	owned := make([][]body.Body, p)
	for rank := 0; rank < p; rank++ {
		owned[rank] = make([]body.Body, portion)
		copy(owned[rank], all[rank*portion:(rank+1)*portion])
	}

	ring := transport.NewRing(p)
	defer ring.Close()

	var wg sync.WaitGroup
	wg.Add(p)
	for rank := 0; rank < p; rank++ {
		go func(rank int) {
			defer wg.Done()
			tree := buildAndLocalForce(owned[rank], root, 0.0)
			ex := New(ring.Peer(rank), portion)
			err := ex.Run(tree, owned[rank])
			assert.NoError(t, err)
		}(rank)
	}
	wg.Wait()

	for rank := 0; rank < p; rank++ {
		for i, b := range owned[rank] {
			globalIdx := rank*portion + i
			var direct body.Body
			direct.RX, direct.RY, direct.Mass = all[globalIdx].RX, all[globalIdx].RY, all[globalIdx].Mass
			for j := range all {
				if j == globalIdx {
					continue
				}
				direct.AccumulateForceFrom(all[j])
			}
			assert.InDelta(t, direct.FX, b.FX, 1e-9*absOrOne(direct.FX), "rank %d body %d fx", rank, i)
			assert.InDelta(t, direct.FY, b.FY, 1e-9*absOrOne(direct.FY), "rank %d body %d fy", rank, i)
		}
	}
}

func absOrOne(v float64) float64 {
	if v < 0 {
		v = -v
	}
	if v < 1 {
		return 1
	}
	return v
}

func TestSingleProcessReducesToLocalPass(t *testing.T) {
	owned := []body.Body{
		body.New(0, 0, 10),
		body.New(10, 0, 10),
	}
	root := quadrant.New(0, 0, 1000)
	tree := buildAndLocalForce(owned, root, 0.0)

	ring := transport.NewRing(1)
	defer ring.Close()
	ex := New(ring.Peer(0), len(owned))
	err := ex.Run(tree, owned)
	assert.NoError(t, err)

	// With P=1 the exchange is a no-op; forces come entirely from the
	// local pass already folded into owned by buildAndLocalForce.
	assert.NotEqual(t, 0.0, owned[0].FX)
}
