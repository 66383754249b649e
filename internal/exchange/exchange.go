// Package exchange implements the ring-rotation force exchange
// protocol: after each rank has evaluated the force its own tree
// exerts on its own bodies, this protocol lets every rank's tree also
// evaluate the force it exerts on every other rank's bodies, and
// returns those partial forces to their owners.
package exchange

import (
	"fmt"

	"github.com/gravring/barneshut/internal/bhtree"
	"github.com/gravring/barneshut/internal/body"
	"github.com/gravring/barneshut/internal/transport"
)

// Exchange owns the reusable send/receive buffers for one rank's
// participation in the ring protocol. Buffers are sized once, at
// construction, for the rank's fixed portion (N/P bodies), and reused
// round to round exactly as spec'd: they must not be read or written
// by anything else while a round is in flight.
type Exchange struct {
	peer    *transport.Peer
	portion int

	rx, ry, mass []float64
	fx, fy       []float64
}

// New returns an Exchange for peer, sized for portion bodies per rank.
func New(peer *transport.Peer, portion int) *Exchange {
	return &Exchange{
		peer:    peer,
		portion: portion,
		rx:      make([]float64, portion),
		ry:      make([]float64, portion),
		mass:    make([]float64, portion),
		fx:      make([]float64, portion),
		fy:      make([]float64, portion),
	}
}

// Run executes the P-1 ring rounds described in the force-exchange
// protocol, adding every remote contribution into owned via
// body.AddForce. tree is the rank's local tree; owned is the rank's
// full owned-bodies slice, which must already hold the local force
// pass's result, read for position/mass and written only through
// AddForce.
func (e *Exchange) Run(tree *bhtree.Tree, owned []body.Body) error {
	p := e.peer.Ring().Size()
	if p == 1 {
		return nil
	}
	rank := e.peer.Rank()

	for i, b := range owned {
		e.rx[i], e.ry[i], e.mass[i] = b.RX, b.RY, b.Mass
	}

	for r := 1; r < p; r++ {
		to := transport.Mod(rank+r, p)
		from := transport.Mod(rank-r, p)

		if err := e.peer.SendRecvReplace(e.rx, to, from); err != nil {
			return fmt.Errorf("exchange: round %d position x: %w", r, err)
		}
		if err := e.peer.SendRecvReplace(e.ry, to, from); err != nil {
			return fmt.Errorf("exchange: round %d position y: %w", r, err)
		}
		if err := e.peer.SendRecvReplace(e.mass, to, from); err != nil {
			return fmt.Errorf("exchange: round %d mass: %w", r, err)
		}

		for i := 0; i < e.portion; i++ {
			probe := body.Body{RX: e.rx[i], RY: e.ry[i], Mass: e.mass[i]}
			tree.UpdateForce(&probe, nil)
			e.fx[i], e.fy[i] = probe.FX, probe.FY
		}

		if err := e.peer.SendRecvReplace(e.fx, from, to); err != nil {
			return fmt.Errorf("exchange: round %d force x: %w", r, err)
		}
		if err := e.peer.SendRecvReplace(e.fy, from, to); err != nil {
			return fmt.Errorf("exchange: round %d force y: %w", r, err)
		}

		for i := range owned {
			owned[i].AddForce(e.fx[i], e.fy[i])
		}

		// Restore our own positions/masses for the next round's send,
		// since rx/ry/mass were just overwritten with round r's
		// remote payload.
		for i, b := range owned {
			e.rx[i], e.ry[i], e.mass[i] = b.RX, b.RY, b.Mass
		}
	}
	return nil
}
