// Package bhtree implements the Barnes-Hut quadtree: insertion,
// recursive center-of-mass aggregation, and approximate force
// evaluation against the multipole acceptance criterion.
package bhtree

import (
	"github.com/gravring/barneshut/internal/body"
	"github.com/gravring/barneshut/internal/quadrant"
)

// DefaultTheta is the Barnes-Hut acceptance ratio used when a caller
// does not specify one.
const DefaultTheta = 0.5

// node is one entry in the tree. An empty node has body == nil and no
// children. A leaf ("External" in the Barnes-Hut vocabulary) has
// body != nil and no children. An internal node has body == nil,
// agg holding the aggregate pseudo-body, and at least one non-nil
// child.
type node struct {
	quad     quadrant.Quadrant
	body     *body.Body
	agg      body.Body
	internal bool
	children [4]*node
}

// Tree is a Barnes-Hut quadtree rooted at a fixed Quadrant, built
// fresh from a snapshot of bodies once per simulation step and
// discarded at step end.
type Tree struct {
	root  *node
	theta float64
}

// New returns an empty tree governing root, using acceptance ratio
// theta. theta is normally in (0, 1]; theta = 0 never accepts an
// aggregate, so every leaf is visited and the force is the exact
// direct sum. A negative theta is a programmer error.
func New(root quadrant.Quadrant, theta float64) *Tree {
	return &Tree{
		root:  &node{quad: root},
		theta: theta,
	}
}

// Insert adds b to the tree. b must be a pointer into the caller's
// owned storage (not a local copy): the tree keeps the pointer itself
// rather than copying the body, so that UpdateForce's self-exclusion
// check can use ordinary pointer identity. The caller must ensure *b
// lies inside the tree's root quadrant (typically via body.Inside);
// Insert does not re-check containment below the root.
func (t *Tree) Insert(b *body.Body) {
	insert(t.root, b)
}

func insert(n *node, b *body.Body) {
	switch {
	case n.body == nil && !n.internal:
		// Empty: store the body directly.
		n.body = b

	case !n.internal:
		// External: promote to internal, aggregate, and reinsert both
		// the existing occupant and the new body into children.
		occupant := n.body
		n.body = nil
		n.internal = true
		n.agg = occupant.Plus(*b)
		insertIntoChild(n, occupant)
		insertIntoChild(n, b)

	default:
		// Internal: fold b into the aggregate and recurse.
		n.agg = n.agg.Plus(*b)
		insertIntoChild(n, b)
	}
}

func insertIntoChild(n *node, b *body.Body) {
	subs := n.quad.Subdivide()
	i := quadrantIndex(n.quad, b)
	if n.children[i] == nil {
		n.children[i] = &node{quad: subs[i]}
	}
	insert(n.children[i], b)
}

// quadrantIndex picks b's sub-quadrant by comparing directly against
// parent's own center, rather than re-testing Contains on each child
// (whose boundary arithmetic can disagree with the parent's by a ULP
// for points sitting exactly on a split line). The four half-planes
// this partitions into are exhaustive and mutually exclusive, so
// every body inside the parent lands in exactly one child, matching
// Subdivide's NW, NE, SW, SE order.
func quadrantIndex(q quadrant.Quadrant, b *body.Body) int {
	west := b.RX < q.CX
	north := b.RY < q.CY
	switch {
	case west && north:
		return 0 // NW
	case !west && north:
		return 1 // NE
	case west && !north:
		return 2 // SW
	default:
		return 3 // SE
	}
}

// identity distinguishes the probe body passed to UpdateForce from
// the bodies already stored in the tree, so a local body never
// exerts force on itself.
type identity = *body.Body

// UpdateForce recursively accumulates gravitational force from the
// tree's mass distribution onto probe, using self as the identity
// that must not contribute to itself (typically &probe for a locally
// owned body; nil or any other pointer for a remote probe, which by
// construction cannot match any local leaf).
func (t *Tree) UpdateForce(probe *body.Body, self identity) {
	updateForce(t.root, probe, self, t.theta)
}

func updateForce(n *node, probe *body.Body, self identity, theta float64) {
	switch {
	case n.body == nil && !n.internal:
		// Empty: no contribution.
		return

	case !n.internal:
		if n.body == self {
			return
		}
		probe.AccumulateForceFrom(*n.body)

	default:
		d := probe.DistanceTo(n.agg)
		s := n.quad.Length()
		if d != 0 && s/d < theta {
			probe.AccumulateForceFrom(n.agg)
			return
		}
		for _, c := range n.children {
			if c != nil {
				updateForce(c, probe, self, theta)
			}
		}
	}
}

// RootMass returns the tree's total aggregate mass, zero for an empty
// tree or a tree holding a single body of zero mass handled
// specially below.
func (t *Tree) RootMass() float64 {
	switch {
	case t.root.body != nil:
		return t.root.body.Mass
	case t.root.internal:
		return t.root.agg.Mass
	default:
		return 0
	}
}

// RootCenterOfMass returns the tree's aggregate position. Undefined
// (returns zeros) for an empty tree.
func (t *Tree) RootCenterOfMass() (float64, float64) {
	switch {
	case t.root.body != nil:
		return t.root.body.RX, t.root.body.RY
	case t.root.internal:
		return t.root.agg.RX, t.root.agg.RY
	default:
		return 0, 0
	}
}
