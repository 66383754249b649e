// Package transport implements the messaging substrate that
// ForceExchange and Simulator are written against: send-and-receive-
// in-place exchanges between a pair of ranks, a collective all-gather,
// and a barrier. The substrate is a fixed ring of P goroutines
// connected by channels, one goroutine standing in for each "process"
// of the wider system — the same role the teacher's ucBegin/ucDone
// channel pairs play for its worker pool, generalized here from a
// one-shot fan-out/fan-in into a full peer-to-peer ring.
package transport

import (
	"fmt"
)

// envelope is one message on the wire between two peers.
type envelope struct {
	tag  int
	data []float64
}

// Ring is a fixed set of P peers. Construct with NewRing, hand each
// rank its *Peer, and Close the ring once every rank has finished.
type Ring struct {
	p     int
	peers []*Peer

	barrierIn  chan int
	barrierOut chan struct{}

	// gatherBufs holds one slot per rank; each rank only ever writes
	// its own slot and only reads any slot after a barrier confirms
	// every rank has written, so the slots never race.
	gatherBufs [][]float64
}

// Peer is one rank's handle onto the Ring. All of a rank's simulation
// code interacts with the messaging layer exclusively through its
// Peer; Peers are not safe for concurrent use by more than one
// goroutine.
type Peer struct {
	rank int
	ring *Ring

	// one inbound mailbox per sending rank, indexed by that rank, since the ring protocol only ever exchanges with
	// two specific peers per round and never needs broadcast.
	inbox []chan envelope
}

// NewRing constructs a ring of p peers, indexed 0..p-1 by rank.
func NewRing(p int) *Ring {
	if p < 1 {
		panic("transport: ring size must be positive")
	}
	r := &Ring{
		p:          p,
		barrierIn:  make(chan int),
		barrierOut: make(chan struct{}),
		gatherBufs: make([][]float64, p),
	}

	inboxes := make([][]chan envelope, p)
	for i := range inboxes {
		inboxes[i] = make([]chan envelope, p)
		for j := range inboxes[i] {
			inboxes[i][j] = make(chan envelope)
		}
	}

	r.peers = make([]*Peer, p)
	for rank := 0; rank < p; rank++ {
		peer := &Peer{rank: rank, ring: r}
		peer.inbox = make([]chan envelope, p)
		for from := 0; from < p; from++ {
			peer.inbox[from] = inboxes[from][rank]
		}
		r.peers[rank] = peer
	}
	go r.runBarrier()
	return r
}

// Peer returns the handle for the given rank.
func (r *Ring) Peer(rank int) *Peer { return r.peers[rank] }

// Size returns P, the number of peers in the ring.
func (r *Ring) Size() int { return r.p }

// Close finalizes the ring. Safe to call once all ranks have
// returned from their final Barrier.
func (r *Ring) Close() {
	close(r.barrierIn)
}

func (r *Ring) runBarrier() {
	for {
		arrived := 0
		for arrived < r.p {
			_, ok := <-r.barrierIn
			if !ok {
				return
			}
			arrived++
		}
		for i := 0; i < r.p; i++ {
			r.barrierOut <- struct{}{}
		}
	}
}

// outbox returns the channel peer `to` reads from when receiving from
// rank `from`.
func (p *Peer) outbox(to int) chan envelope {
	return p.ring.peers[to].inbox[p.rank]
}

// Rank returns this peer's rank in [0, P).
func (p *Peer) Rank() int { return p.rank }

// Ring returns the Ring this peer belongs to.
func (p *Peer) Ring() *Ring { return p.ring }

// Mod normalizes a mod b into [0, b), matching mathematical modulus
// rather than Go's truncating remainder for negative a.
func Mod(a, b int) int {
	return ((a % b) + b) % b
}

// SendRecvReplace exchanges len(buf) float64s with peers `to` and
// `from`, overwriting buf in place with the payload received from
// from. The send to `to` and the receive from `from` both happen
// unconditionally and in the same relative order on every peer, so
// that two peers exchanging with each other never both block waiting
// to send first.
func (p *Peer) SendRecvReplace(buf []float64, to, from int) error {
	if p.ring.p == 1 {
		return nil
	}
	tag := 0
	// Snapshot the outbound payload before the receive below can
	// overwrite buf.
	out := make([]float64, len(buf))
	copy(out, buf)
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("transport: send to rank %d failed: %v", to, r)
			}
		}()
		p.outbox(to) <- envelope{tag: tag, data: out}
		done <- nil
	}()

	env, ok := <-p.inbox[from]
	if !ok {
		<-done
		return fmt.Errorf("transport: rank %d's inbox from rank %d closed mid-exchange", p.rank, from)
	}
	if len(env.data) != len(buf) {
		<-done
		return fmt.Errorf("transport: rank %d received %d floats from rank %d, wanted %d", p.rank, len(env.data), from, len(buf))
	}
	copy(buf, env.data)

	if err := <-done; err != nil {
		return err
	}
	return nil
}

// AllGather concatenates every peer's send slice into a result of
// length P*len(send), ordered by rank, identical on every peer.
func (p *Peer) AllGather(send []float64) ([]float64, error) {
	r := p.ring
	if r.p == 1 {
		out := make([]float64, len(send))
		copy(out, send)
		return out, nil
	}

	r.gatherBufs[p.rank] = send
	p.Barrier()

	count := len(send)
	out := make([]float64, 0, count*r.p)
	for rank := 0; rank < r.p; rank++ {
		buf := r.gatherBufs[rank]
		if len(buf) != count {
			return nil, fmt.Errorf("transport: all-gather size mismatch: rank %d sent %d, rank %d sent %d", rank, len(buf), p.rank, count)
		}
		out = append(out, buf...)
	}

	p.Barrier()
	return out, nil
}

// Barrier blocks until every peer has called Barrier.
func (p *Peer) Barrier() {
	if p.ring.p == 1 {
		return
	}
	p.ring.barrierIn <- p.rank
	<-p.ring.barrierOut
}
