// Package simulate drives one rank's per-step loop: build the local
// tree, compute local forces, run the ring force exchange, integrate,
// and optionally feed an all-gather to a Renderer before barriering
// with every other rank.
package simulate

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/gravring/barneshut/internal/bhtree"
	"github.com/gravring/barneshut/internal/body"
	"github.com/gravring/barneshut/internal/exchange"
	"github.com/gravring/barneshut/internal/quadrant"
	"github.com/gravring/barneshut/internal/render"
	"github.com/gravring/barneshut/internal/transport"
)

// Simulator owns one rank's slice of bodies and drives it through the
// per-step protocol described in the specification's component
// design: tree build, local force pass, ring exchange, integration,
// and an optional visualization phase.
type Simulator struct {
	Rank  int
	R     float64
	Dt    float64
	Theta float64

	Owned    []body.Body
	Peer     *transport.Peer
	Renderer render.Renderer // nil disables the visualization phase

	Log *log.Logger

	exchange *exchange.Exchange
}

// New returns a Simulator for one rank. owned is the rank's fixed
// portion of bodies, built by initcond.Generate; r is fixed over the
// whole run (the root quadrant is 2r on a side, recomputed fresh each
// step but always centered at the origin).
func New(rank int, owned []body.Body, peer *transport.Peer, r, dt, theta float64, renderer render.Renderer, logger *log.Logger) *Simulator {
	return &Simulator{
		Rank:     rank,
		R:        r,
		Dt:       dt,
		Theta:    theta,
		Owned:    owned,
		Peer:     peer,
		Renderer: renderer,
		Log:      logger,
		exchange: exchange.New(peer, len(owned)),
	}
}

// Step runs exactly one simulation step: tree build, local force
// pass, ring exchange, integration, and (if Renderer is set) the
// all-gather/draw/barrier visualization phase. background is the
// renderer's clear color and is ignored when Renderer is nil.
func (s *Simulator) Step(background color.RGBA) error {
	root := quadrant.New(0, 0, 2*s.R)
	tree := bhtree.New(root, s.Theta)

	for i := range s.Owned {
		s.Owned[i].ResetForce()
		if s.Owned[i].Inside(root) {
			tree.Insert(&s.Owned[i])
		}
	}

	for i := range s.Owned {
		tree.UpdateForce(&s.Owned[i], &s.Owned[i])
	}

	if err := s.exchange.Run(tree, s.Owned); err != nil {
		return fmt.Errorf("simulate: rank %d: %w", s.Rank, err)
	}

	for i := range s.Owned {
		s.Owned[i].Update(s.Dt)
	}

	if err := s.checkFinite(); err != nil {
		return err
	}

	if s.Renderer != nil {
		if err := s.visualize(background); err != nil {
			return fmt.Errorf("simulate: rank %d: %w", s.Rank, err)
		}
	}

	return nil
}

// Run drives the simulator for steps steps, or forever if steps is 0.
func (s *Simulator) Run(steps int, background color.RGBA) error {
	for step := 0; steps == 0 || step < steps; step++ {
		if err := s.Step(background); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) visualize(background color.RGBA) error {
	send := make([]float64, 2*len(s.Owned))
	for i, b := range s.Owned {
		send[2*i] = b.RX
		send[2*i+1] = b.RY
	}

	gathered, err := s.Peer.AllGather(send)
	if err != nil {
		return err
	}

	s.Renderer.Clear(background)
	colorByIndex := s.colorLookup()
	for i := 0; i+1 < len(gathered); i += 2 {
		s.Renderer.DrawPoint(gathered[i], gathered[i+1], colorByIndex(i/2))
	}
	s.Renderer.Present()

	s.Peer.Barrier()
	return nil
}

// colorLookup returns a function mapping a global body index to its
// color, using this rank's own bodies' colors where known and a
// neutral gray for bodies owned by other ranks (the all-gather
// carries only positions, per the specification's messaging
// primitives, not colors — a renderer that wants per-body colors
// across ranks needs a second, smaller all-gather or a fixed palette;
// the neutral gray keeps DrawPoint total over all N bodies without a
// second collective).
func (s *Simulator) colorLookup() func(globalIdx int) color.RGBA {
	portion := len(s.Owned)
	return func(globalIdx int) color.RGBA {
		rank := globalIdx / portion
		local := globalIdx % portion
		if rank == s.Rank {
			return s.Owned[local].Color
		}
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}

func (s *Simulator) checkFinite() error {
	for i, b := range s.Owned {
		if math.IsNaN(b.RX) || math.IsNaN(b.RY) || math.IsInf(b.RX, 0) || math.IsInf(b.RY, 0) ||
			math.IsNaN(b.FX) || math.IsNaN(b.FY) || math.IsInf(b.FX, 0) || math.IsInf(b.FY, 0) {
			return fmt.Errorf("simulate: rank %d: non-finite state on owned body %d: pos=(%g,%g) force=(%g,%g)",
				s.Rank, i, b.RX, b.RY, b.FX, b.FY)
		}
	}
	return nil
}
