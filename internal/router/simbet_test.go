package router_test

import (
	"testing"

	"github.com/AgentDudu/the-one/internal/router"
	"github.com/AgentDudu/the-one/internal/sim"
)

func simBetHost(id sim.HostID, at sim.Point) *sim.Host {
	h := sim.NewHost(id, "N", int(id), 1_000_000, router.NewSimBet())
	h.Location = at
	h.AddInterface(sim.NewInterface(sim.InterfaceID{Host: id, Index: 0}, 5, 1_000_000))
	return h
}

// A peer that shares a contact with the destination should have higher
// Jaccard similarity to it than a peer with no shared contacts, and
// should therefore be favored as the next hop.
func TestSimBet_PrefersPeerWithSharedContactToDestination(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)
	// Each host parks at its own distant point so parked hosts never meet.
	far := sim.Point{X: 1_000_000, Y: 0}
	farP := sim.Point{X: 2_000_000, Y: 0}
	farD := sim.Point{X: 3_000_000, Y: 0}
	farX := sim.Point{X: 4_000_000, Y: 0}

	s := simBetHost(1, far)
	p := simBetHost(2, farP)
	x := simBetHost(5, sim.Point{X: 0, Y: 0})
	d := simBetHost(99, farD)
	w.AddHost(s)
	w.AddHost(p)
	w.AddHost(x)
	w.AddHost(d)

	// d meets x once, building d's contact set to {d, x}.
	d.Location = sim.Point{X: 1, Y: 0}
	w.Tick()
	d.Location = farD
	w.Tick()

	// p meets x once, building p's contact set to {p, x}, overlapping
	// d's contact set on x.
	p.Location = sim.Point{X: 1, Y: 0}
	w.Tick()
	p.Location = farP
	w.Tick()

	// x is done serving as the shared contact; move it away so it
	// can't also become a contact of s below.
	x.Location = farX
	w.Tick()

	// Now bring s and p together with a message addressed to d; p
	// shares a contact with d (x) and s does not, so p should be
	// favored as the next hop.
	s.Location = sim.Point{X: 0, Y: 0}
	p.Location = sim.Point{X: 1, Y: 0}

	m := sim.NewMessage("M1", 1, 99, 1000, 300, 0)
	w.NewMessage(m)

	for i := 0; i < 3 && !p.Buffer.Has("M1"); i++ {
		w.Tick()
	}

	if !p.Buffer.Has("M1") {
		t.Fatalf("expected the message to forward to the peer sharing a contact with the destination")
	}
}
